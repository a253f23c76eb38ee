// Package portaudio implements duplex.Backend on the PortAudio C library.
//
// Builds tagged headless replace the driver with a stub whose Open always
// fails with ErrUnavailable, so the rest of the module builds and tests on
// machines without PortAudio headers.
package portaudio
