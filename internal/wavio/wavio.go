// Package wavio writes and reads mono 32-bit PCM WAV files for stimulus and
// recording dumps.
package wavio

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth  = 32
	pcmFormat = 1
	fullScale = math.MaxInt32
)

var (
	// ErrInvalidSampleRate is returned for a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("wavio: sample rate must be positive")
	// ErrEmpty is returned when there are no samples to write.
	ErrEmpty = errors.New("wavio: no samples")
	// ErrInvalidFile is returned when a file is not a readable WAV file.
	ErrInvalidFile = errors.New("wavio: invalid WAV file")
	// ErrNotMono is returned when a file has more than one channel.
	ErrNotMono = errors.New("wavio: expected a mono file")
)

// Write stores samples as a mono 32-bit PCM WAV file. Values outside
// [-1, 1] are clipped.
func Write(path string, samples []float32, sampleRate int) (err error) {
	if sampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	if len(samples) == 0 {
		return ErrEmpty
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("wavio: %w", cerr)
		}
	}()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, pcmFormat)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i, v := range samples {
		buf.Data[i] = toPCM(v)
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: finalize %s: %w", path, err)
	}

	return nil
}

// Read loads a mono PCM WAV file and returns its samples scaled to
// [-1, 1] with the file's sample rate.
func Read(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("wavio: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}
	if dec.NumChans != 1 {
		return nil, 0, fmt.Errorf("%w: %s has %d channels", ErrNotMono, path, dec.NumChans)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wavio: decode %s: %w", path, err)
	}

	scale := 1 / float64(int64(1)<<(buf.SourceBitDepth-1))
	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float32(float64(v) * scale)
	}

	return out, int(dec.SampleRate), nil
}

func toPCM(v float32) int {
	x := float64(v)
	switch {
	case x >= 1:
		return fullScale
	case x <= -1:
		return -fullScale
	case math.IsNaN(x):
		return 0
	}
	return int(math.Round(x * fullScale))
}
