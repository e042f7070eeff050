// Package wavinfo reads RIFF/WAVE headers so the pipeline can sanity-check
// the dataset pair (matching sample rates, comparable durations) before
// handing it to the trainer.
package wavinfo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Info summarizes the format of a wav file.
type Info struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	DataBytes     int64
	Duration      time.Duration
}

var errNotWave = errors.New("not a RIFF/WAVE file")

// Probe reads the wav header at path and returns its format summary. Only the
// chunk headers are read; sample data is never loaded.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()
	return probe(f)
}

func probe(r io.ReadSeeker) (Info, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Info{}, fmt.Errorf("read riff header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Info{}, errNotWave
	}

	var info Info
	haveFmt := false
	haveData := false

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return Info{}, fmt.Errorf("read chunk header: %w", err)
		}
		id := string(chunk[0:4])
		size := int64(binary.LittleEndian.Uint32(chunk[4:8]))

		switch id {
		case "fmt ":
			if size < 16 {
				return Info{}, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			var fmtChunk [16]byte
			if _, err := io.ReadFull(r, fmtChunk[:]); err != nil {
				return Info{}, fmt.Errorf("read fmt chunk: %w", err)
			}
			info.Channels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(fmtChunk[4:8]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(fmtChunk[14:16]))
			haveFmt = true
			if rest := size - 16; rest > 0 {
				if _, err := r.Seek(padded(rest), io.SeekCurrent); err != nil {
					return Info{}, err
				}
			}
		case "data":
			info.DataBytes = size
			haveData = true
			if _, err := r.Seek(padded(size), io.SeekCurrent); err != nil {
				return Info{}, err
			}
		default:
			if _, err := r.Seek(padded(size), io.SeekCurrent); err != nil {
				return Info{}, err
			}
		}

		if haveFmt && haveData {
			break
		}
	}

	if !haveFmt {
		return Info{}, errors.New("wav file missing fmt chunk")
	}
	if !haveData {
		return Info{}, errors.New("wav file missing data chunk")
	}

	byteRate := int64(info.SampleRate) * int64(info.Channels) * int64(info.BitsPerSample) / 8
	if byteRate > 0 {
		seconds := float64(info.DataBytes) / float64(byteRate)
		info.Duration = time.Duration(seconds * float64(time.Second))
	}
	return info, nil
}

// RIFF chunks are word aligned; odd-sized chunks carry a pad byte.
func padded(size int64) int64 {
	if size%2 == 1 {
		return size + 1
	}
	return size
}

// MaxDurationDrift is the largest acceptable difference between the dry input
// and the rendered reference before the pair is rejected.
const MaxDurationDrift = 3 * time.Second

// CheckPair validates that the dry input and rendered reference form a usable
// training pair: identical sample rates and durations within MaxDurationDrift.
func CheckPair(inputPath, outputPath string) error {
	in, err := Probe(inputPath)
	if err != nil {
		return fmt.Errorf("probe %s: %w", inputPath, err)
	}
	out, err := Probe(outputPath)
	if err != nil {
		return fmt.Errorf("probe %s: %w", outputPath, err)
	}

	if in.SampleRate != out.SampleRate {
		return fmt.Errorf("sample rates differ: input %d Hz, output %d Hz", in.SampleRate, out.SampleRate)
	}
	drift := in.Duration - out.Duration
	if drift < 0 {
		drift = -drift
	}
	if drift > MaxDurationDrift {
		return fmt.Errorf("input/output lengths differ too much: %s vs %s", in.Duration, out.Duration)
	}
	return nil
}
