package wavinfo

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeWav produces a minimal PCM wav with the given format and sample count.
func writeWav(t *testing.T, path string, sampleRate, channels, bits, samples int) {
	t.Helper()

	dataBytes := samples * channels * bits / 8
	buf := make([]byte, 0, 44+dataBytes)

	le := binary.LittleEndian
	u32 := func(v uint32) []byte { b := make([]byte, 4); le.PutUint32(b, v); return b }
	u16 := func(v uint16) []byte { b := make([]byte, 2); le.PutUint16(b, v); return b }

	buf = append(buf, "RIFF"...)
	buf = append(buf, u32(uint32(36+dataBytes))...)
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = append(buf, u32(16)...)
	buf = append(buf, u16(1)...) // PCM
	buf = append(buf, u16(uint16(channels))...)
	buf = append(buf, u32(uint32(sampleRate))...)
	buf = append(buf, u32(uint32(sampleRate*channels*bits/8))...)
	buf = append(buf, u16(uint16(channels*bits/8))...)
	buf = append(buf, u16(uint16(bits))...)

	buf = append(buf, "data"...)
	buf = append(buf, u32(uint32(dataBytes))...)
	buf = append(buf, make([]byte, dataBytes)...)

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")
	writeWav(t, path, 48000, 1, 16, 48000*2) // 2 seconds

	info, err := Probe(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.SampleRate != 48000 {
		t.Fatalf("sample rate = %d", info.SampleRate)
	}
	if info.Channels != 1 || info.BitsPerSample != 16 {
		t.Fatalf("format = %d ch / %d bits", info.Channels, info.BitsPerSample)
	}
	if got := info.Duration.Round(time.Millisecond); got != 2*time.Second {
		t.Fatalf("duration = %s", got)
	}
}

func TestProbeRejectsNonWave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not.wav")
	if err := os.WriteFile(path, []byte("this is definitely not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Probe(path); err == nil {
		t.Fatal("expected error for non-wav input")
	}
}

func TestCheckPair(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.wav")
	out := filepath.Join(dir, "output.wav")

	writeWav(t, in, 44100, 1, 16, 44100*10)
	writeWav(t, out, 44100, 1, 16, 44100*11) // 1 s drift, within tolerance

	if err := CheckPair(in, out); err != nil {
		t.Fatalf("pair should be accepted: %v", err)
	}
}

func TestCheckPairSampleRateMismatch(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.wav")
	out := filepath.Join(dir, "output.wav")

	writeWav(t, in, 44100, 1, 16, 44100)
	writeWav(t, out, 48000, 1, 16, 48000)

	if err := CheckPair(in, out); err == nil {
		t.Fatal("expected sample-rate mismatch error")
	}
}

func TestCheckPairDurationDrift(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.wav")
	out := filepath.Join(dir, "output.wav")

	writeWav(t, in, 8000, 1, 16, 8000*2)
	writeWav(t, out, 8000, 1, 16, 8000*10) // 8 s drift

	if err := CheckPair(in, out); err == nil {
		t.Fatal("expected duration drift error")
	}
}
