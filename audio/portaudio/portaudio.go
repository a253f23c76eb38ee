//go:build !headless

package portaudio

import (
	"fmt"
	"sync"

	pa "github.com/gordonklaus/portaudio"

	"github.com/cwbudde/algo-fresp/audio/duplex"
)

// Backend is a duplex.Backend on the host's default PortAudio API.
// Device IDs are indexes into the device list PortAudio reports at Open.
type Backend struct {
	mu      sync.Mutex
	devices []*pa.DeviceInfo
	closed  bool
}

// Open initializes PortAudio and snapshots the device list.
// Close must be called to release the library.
func Open() (*Backend, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}

	devs, err := pa.Devices()
	if err != nil {
		_ = pa.Terminate()
		return nil, fmt.Errorf("portaudio: list devices: %w", err)
	}

	return &Backend{devices: devs}, nil
}

// Close terminates PortAudio. Streams must be closed before.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	return pa.Terminate()
}

// Devices lists every device with its ID.
func (b *Backend) Devices() ([]duplex.DeviceInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	out := make([]duplex.DeviceInfo, len(b.devices))
	for i, d := range b.devices {
		out[i] = duplex.DeviceInfo{
			ID:                duplex.DeviceID(i),
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			MaxOutputChannels: d.MaxOutputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
		}
	}

	return out, nil
}

// DefaultDevices returns the IDs of the host API's default input and
// output devices.
func (b *Backend) DefaultDevices() (input, output duplex.DeviceID, err error) {
	in, err := pa.DefaultInputDevice()
	if err != nil {
		return 0, 0, fmt.Errorf("portaudio: default input: %w", err)
	}
	out, err := pa.DefaultOutputDevice()
	if err != nil {
		return 0, 0, fmt.Errorf("portaudio: default output: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	input, output = -1, -1
	for i, d := range b.devices {
		if sameDevice(d, in) {
			input = duplex.DeviceID(i)
		}
		if sameDevice(d, out) {
			output = duplex.DeviceID(i)
		}
	}
	if input < 0 || output < 0 {
		return 0, 0, ErrUnknownDevice
	}

	return input, output, nil
}

// OpenStream opens a mono full-duplex stream. fn runs on PortAudio's
// callback thread.
func (b *Backend) OpenStream(cfg duplex.StreamConfig, fn duplex.BlockFunc) (duplex.Stream, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	in, err := b.device(cfg.Input)
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	out, err := b.device(cfg.Output)
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var params pa.StreamParameters
	if cfg.LowLatency {
		params = pa.LowLatencyParameters(in, out)
	} else {
		params = pa.HighLatencyParameters(in, out)
	}
	params.Input.Channels = 1
	params.Output.Channels = 1
	params.SampleRate = cfg.SampleRate
	params.FramesPerBuffer = cfg.FramesPerBuffer

	callback := func(in, out []float32, _ pa.StreamCallbackTimeInfo, flags pa.StreamCallbackFlags) {
		fn(in, out, statusFromFlags(flags))
	}

	stream, err := pa.OpenStream(params, callback)
	if err != nil {
		return nil, fmt.Errorf("portaudio: open stream: %w", err)
	}

	return stream, nil
}

// sameDevice matches devices across separate PortAudio queries, which
// return fresh DeviceInfo values each time.
func sameDevice(a, b *pa.DeviceInfo) bool {
	if a.Name != b.Name {
		return false
	}
	if a.HostApi == nil || b.HostApi == nil {
		return a.HostApi == b.HostApi
	}
	return a.HostApi.Type == b.HostApi.Type
}

func (b *Backend) device(id duplex.DeviceID) (*pa.DeviceInfo, error) {
	if id < 0 || int(id) >= len(b.devices) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDevice, id)
	}
	return b.devices[id], nil
}

var flagMap = [...]struct {
	pa     pa.StreamCallbackFlags
	status duplex.StatusFlags
}{
	{pa.InputUnderflow, duplex.InputUnderflow},
	{pa.InputOverflow, duplex.InputOverflow},
	{pa.OutputUnderflow, duplex.OutputUnderflow},
	{pa.OutputOverflow, duplex.OutputOverflow},
	{pa.PrimingOutput, duplex.PrimingOutput},
}

func statusFromFlags(flags pa.StreamCallbackFlags) duplex.StatusFlags {
	var s duplex.StatusFlags
	for _, m := range flagMap {
		if flags&m.pa != 0 {
			s |= m.status
		}
	}
	return s
}
