// Package testsupport provides fixture helpers shared by package tests.
package testsupport

import (
	"encoding/binary"
	"os"
	"testing"
)

// WriteFile writes content to path, failing the test on error.
func WriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

// WriteWav writes a minimal mono 16-bit PCM wav of the given sample rate and
// duration in seconds. Sample data is silence; only the header matters to
// the pipeline's sanity checks.
func WriteWav(t *testing.T, path string, sampleRate, seconds int) {
	t.Helper()

	samples := sampleRate * seconds
	dataBytes := samples * 2

	le := binary.LittleEndian
	buf := make([]byte, 0, 44+dataBytes)
	u32 := func(v uint32) []byte { b := make([]byte, 4); le.PutUint32(b, v); return b }
	u16 := func(v uint16) []byte { b := make([]byte, 2); le.PutUint16(b, v); return b }

	buf = append(buf, "RIFF"...)
	buf = append(buf, u32(uint32(36+dataBytes))...)
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = append(buf, u32(16)...)
	buf = append(buf, u16(1)...) // PCM
	buf = append(buf, u16(1)...) // mono
	buf = append(buf, u32(uint32(sampleRate))...)
	buf = append(buf, u32(uint32(sampleRate*2))...)
	buf = append(buf, u16(2)...)
	buf = append(buf, u16(16)...)
	buf = append(buf, "data"...)
	buf = append(buf, u32(uint32(dataBytes))...)
	buf = append(buf, make([]byte, dataBytes)...)

	WriteFile(t, path, buf)
}
