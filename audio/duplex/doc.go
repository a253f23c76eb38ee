// Package duplex plays a stimulus on an output device while recording an
// input device, sample for sample, on one full-duplex stream.
//
// Output frame k and input frame k share the stream start as their time
// origin. The device driver calls the block handler from its own context;
// the handler does bounded, allocation-free work and publishes its cursor
// through a single atomic counter that the controlling goroutine reads to
// report progress and detect completion.
//
// Hardware access sits behind [Backend]; package portaudio provides the
// real implementation and package duplextest a loopback fake.
//
// # Usage
//
//	s := duplex.NewSession(backend, 48000, 256)
//	rec, err := s.PlayAndRecord(ctx, stimulus, in, out, func(p int) {
//	    fmt.Printf("\r%3d%%", p)
//	})
package duplex
