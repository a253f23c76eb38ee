// Package sweep generates the logarithmic sine sweep used as the
// measurement stimulus.
//
// A logarithmic sweep is the usual excitation for acoustic measurements:
// each octave takes equal time, so every band gets a comparable share of
// the signal energy. The generated stimulus is single precision, ready to
// be handed to an audio device.
//
// # Usage
//
//	s := sweep.LogSweep{
//	    StartFreq: 20, EndFreq: 20000,
//	    Duration: 5, SampleRate: 48000, BufferSize: 256,
//	}
//	stimulus, err := s.Generate()
package sweep
