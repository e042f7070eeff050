package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nam2aidax/internal/config"
	"nam2aidax/internal/services"
)

const rootLongHelp = `nam2aidax renders a dry DI recording through a captured NAM profile,
trains an AIDA-X model against the resulting input/output pair, and
collects the exported artifact.`

func newRootCommand() *cobra.Command {
	var configFlag, logLevelFlag, logFormatFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)
	opts := &convertOptions{}

	rootCmd := &cobra.Command{
		Use:           "nam2aidax --nam profile.nam --di input.wav --trainer DIR [--out out.aidax]",
		Short:         "Convert a NAM capture into an AIDA-X model",
		Long:          rootLongHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: console or json")

	flags := rootCmd.Flags()
	flags.StringVar(&opts.profile, "nam", "", "Captured NAM profile (.nam)")
	flags.StringVar(&opts.stimulus, "di", "", "Dry DI recording (.wav)")
	flags.StringVar(&opts.trainerDir, "trainer", "", "Automated-AmpModeller checkout directory")
	flags.StringVar(&opts.destination, "out", defaultDestination, "Destination for the trained model")
	flags.IntVar(&opts.epochs, "epochs", 0, fmt.Sprintf("Training epochs (default %d)", config.DefaultEpochs))
	flags.StringVar(&opts.modelType, "model-type", "", fmt.Sprintf("Model capacity: Lightest, Light, Standard, or Heavy (default %s)", config.DefaultModelType))
	flags.BoolVar(&opts.skip, "skip", false, "Enable the skip connection")

	// Flag parse failures are usage errors; tag them so main exits with 2.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return services.Wrap(services.ErrInvalidInput, services.StageValidating, "parse flags", err.Error(), nil)
	})

	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newCleanCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
