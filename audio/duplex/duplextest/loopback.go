// Package duplextest provides a loopback duplex backend for tests.
package duplextest

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-fresp/audio/duplex"
)

// Loopback is a duplex.Backend whose input is its own output, as if the
// output jack were cabled to the input. The capture path lags playback by
// one block plus Delay samples, so a stream at FramesPerBuffer frames shows
// a total round-trip delay of FramesPerBuffer + Delay samples.
//
// Blocks are delivered from a goroutine owned by the stream, like a
// driver callback thread.
type Loopback struct {
	Delay         int           // extra capture delay in samples
	Gain          float32       // input gain, 0 means 1
	Noise         float32       // amplitude of uniform noise added to the input
	Seed          int64         // noise seed
	BlockInterval time.Duration // pause between blocks, 0 runs flat out
	StallAfter    int           // stop delivering blocks after this many, 0 never stalls

	// Status maps a block index to flags reported with that block.
	Status map[int]duplex.StatusFlags

	// DeviceList and the default IDs are what Devices and DefaultDevices
	// report.
	DeviceList    []duplex.DeviceInfo
	DefaultInput  duplex.DeviceID
	DefaultOutput duplex.DeviceID

	OpenErr  error
	StartErr error
	StopErr  error

	mu      sync.Mutex
	configs []duplex.StreamConfig

	opened  atomic.Int32
	closed  atomic.Int32
	aborted atomic.Int32
	blocks  atomic.Int64
}

// OpenStream implements duplex.Backend.
func (l *Loopback) OpenStream(cfg duplex.StreamConfig, fn duplex.BlockFunc) (duplex.Stream, error) {
	if l.OpenErr != nil {
		return nil, l.OpenErr
	}

	l.mu.Lock()
	l.configs = append(l.configs, cfg)
	l.mu.Unlock()
	l.opened.Add(1)

	return &stream{l: l, cfg: cfg, fn: fn, stop: make(chan struct{})}, nil
}

// Devices implements duplex.DeviceLister.
func (l *Loopback) Devices() ([]duplex.DeviceInfo, error) {
	return append([]duplex.DeviceInfo(nil), l.DeviceList...), nil
}

// DefaultDevices implements duplex.DeviceLister.
func (l *Loopback) DefaultDevices() (input, output duplex.DeviceID, err error) {
	return l.DefaultInput, l.DefaultOutput, nil
}

// Configs returns the configurations of all streams opened so far.
func (l *Loopback) Configs() []duplex.StreamConfig {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]duplex.StreamConfig(nil), l.configs...)
}

// Opened, Closed and Aborted count stream lifecycle calls.
func (l *Loopback) Opened() int  { return int(l.opened.Load()) }
func (l *Loopback) Closed() int  { return int(l.closed.Load()) }
func (l *Loopback) Aborted() int { return int(l.aborted.Load()) }

// Blocks returns the number of blocks delivered across all streams.
func (l *Loopback) Blocks() int64 { return l.blocks.Load() }

type stream struct {
	l   *Loopback
	cfg duplex.StreamConfig
	fn  duplex.BlockFunc

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func (s *stream) Start() error {
	if s.l.StartErr != nil {
		return s.l.StartErr
	}

	s.wg.Add(1)
	go s.loop()
	return nil
}

func (s *stream) loop() {
	defer s.wg.Done()

	frames := s.cfg.FramesPerBuffer
	gain := s.l.Gain
	if gain == 0 {
		gain = 1
	}
	rng := rand.New(rand.NewSource(s.l.Seed))

	in := make([]float32, frames)
	out := make([]float32, frames)
	pending := make([]float32, frames+s.l.Delay)

	for block := 0; ; block++ {
		select {
		case <-s.stop:
			return
		default:
		}

		if s.l.StallAfter > 0 && block >= s.l.StallAfter {
			<-s.stop
			return
		}

		for i := range in {
			in[i] = gain*pending[i] + s.l.Noise*(2*rng.Float32()-1)
		}
		pending = pending[frames:]

		s.fn(in, out, s.l.Status[block])
		s.l.blocks.Add(1)

		pending = append(pending, out...)

		if s.l.BlockInterval > 0 {
			select {
			case <-s.stop:
				return
			case <-time.After(s.l.BlockInterval):
			}
		}
	}
}

func (s *stream) halt() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *stream) Stop() error {
	s.halt()
	return s.l.StopErr
}

func (s *stream) Abort() error {
	s.l.aborted.Add(1)
	s.halt()
	return nil
}

func (s *stream) Close() error {
	s.halt()
	s.l.closed.Add(1)
	return nil
}
