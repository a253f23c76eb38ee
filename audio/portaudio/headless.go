//go:build headless

package portaudio

import "github.com/cwbudde/algo-fresp/audio/duplex"

// Backend is unavailable in headless builds.
type Backend struct{}

// Open always fails in headless builds.
func Open() (*Backend, error) { return nil, ErrUnavailable }

func (b *Backend) Close() error { return nil }

func (b *Backend) Devices() ([]duplex.DeviceInfo, error) { return nil, ErrUnavailable }

func (b *Backend) DefaultDevices() (input, output duplex.DeviceID, err error) {
	return 0, 0, ErrUnavailable
}

func (b *Backend) OpenStream(duplex.StreamConfig, duplex.BlockFunc) (duplex.Stream, error) {
	return nil, ErrUnavailable
}
