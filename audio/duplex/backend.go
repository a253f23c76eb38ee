package duplex

import (
	"fmt"
	"strings"
)

// DeviceID identifies an audio device as numbered by the backend.
type DeviceID int

// DefaultDevice stands for the backend's default device in
// ResolveDevices.
const DefaultDevice DeviceID = -1

// DeviceInfo describes one device as reported by a backend.
type DeviceInfo struct {
	ID                DeviceID `json:"id"`
	Name              string   `json:"name"`
	MaxInputChannels  int      `json:"max_input_channels"`
	MaxOutputChannels int      `json:"max_output_channels"`
	DefaultSampleRate float64  `json:"default_sample_rate"`
}

// StatusFlags reports driver-side glitches for one block.
type StatusFlags uint32

const (
	InputUnderflow StatusFlags = 1 << iota
	InputOverflow
	OutputUnderflow
	OutputOverflow
	PrimingOutput
)

var statusNames = []struct {
	flag StatusFlags
	name string
}{
	{InputUnderflow, "input underflow"},
	{InputOverflow, "input overflow"},
	{OutputUnderflow, "output underflow"},
	{OutputOverflow, "output overflow"},
	{PrimingOutput, "priming output"},
}

func (f StatusFlags) String() string {
	if f == 0 {
		return "ok"
	}

	var parts []string
	for _, s := range statusNames {
		if f&s.flag != 0 {
			parts = append(parts, s.name)
		}
	}

	return strings.Join(parts, ", ")
}

// StreamConfig is the stream a Session asks its backend to open: one
// channel in each direction on the given devices.
type StreamConfig struct {
	Input           DeviceID
	Output          DeviceID
	SampleRate      float64
	FramesPerBuffer int
	LowLatency      bool
}

// BlockFunc processes one block. It is called from the driver's context
// with equally sized mono in and out buffers. It must not block or
// allocate.
type BlockFunc func(in, out []float32, status StatusFlags)

// Backend opens duplex streams on concrete devices.
type Backend interface {
	OpenStream(cfg StreamConfig, fn BlockFunc) (Stream, error)
}

// Stream is an open duplex stream. Stop lets queued blocks drain, Abort
// discards them. Close releases the device and is always called once.
type Stream interface {
	Start() error
	Stop() error
	Abort() error
	Close() error
}

// DeviceLister is implemented by backends that can enumerate their
// devices.
type DeviceLister interface {
	Devices() ([]DeviceInfo, error)
	DefaultDevices() (input, output DeviceID, err error)
}

// ResolveDevices replaces DefaultDevice in input or output by the
// backend's default device. Other IDs pass through unchanged.
func ResolveDevices(b Backend, input, output DeviceID) (DeviceID, DeviceID, error) {
	if input != DefaultDevice && output != DefaultDevice {
		return input, output, nil
	}

	lister, ok := b.(DeviceLister)
	if !ok {
		return 0, 0, ErrNoDefaultDevice
	}

	defIn, defOut, err := lister.DefaultDevices()
	if err != nil {
		return 0, 0, fmt.Errorf("duplex: default devices: %w", err)
	}
	if input == DefaultDevice {
		input = defIn
	}
	if output == DefaultDevice {
		output = defOut
	}

	return input, output, nil
}
