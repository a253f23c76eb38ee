package portaudio

import "errors"

// Errors returned by the PortAudio backend.
var (
	ErrUnavailable   = errors.New("portaudio: audio support not compiled in")
	ErrUnknownDevice = errors.New("portaudio: unknown device")
	ErrClosed        = errors.New("portaudio: backend is closed")
)
