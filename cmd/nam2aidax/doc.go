// Command nam2aidax converts a NAM capture into an AIDA-X model by driving
// the native re-amp renderer and the Automated-AmpModeller trainer.
package main
