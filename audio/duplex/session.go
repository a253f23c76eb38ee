package duplex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultProgressInterval = 50 * time.Millisecond
	defaultStallTimeout     = 2 * time.Second
	percentScale            = 100
)

// ProgressFunc receives the completed share of the stimulus in percent.
type ProgressFunc func(percent int)

// Recording is the captured input of one session. Samples has the same
// length as the stimulus; ownership passes to the caller.
type Recording struct {
	Samples []float32

	// Duration is the wall-clock time from stream start to stop.
	Duration time.Duration

	// StatusEvents counts blocks that arrived with driver status flags set,
	// Status is the union of those flags.
	StatusEvents int
	Status       StatusFlags
}

// Session runs duplex play-and-record measurements on a backend.
// A Session holds no per-measurement state and may be reused; devices
// are held exclusively only while PlayAndRecord runs.
type Session struct {
	backend          Backend
	sampleRate       float64
	bufferSize       int
	progressInterval time.Duration
	stallTimeout     time.Duration
	log              logrus.FieldLogger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for stream lifecycle messages.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithProgressInterval sets how often progress is polled and reported.
func WithProgressInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.progressInterval = d
		}
	}
}

// WithStallTimeout sets how long the stream may go without delivering a
// block before the session fails with ErrStalled.
func WithStallTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.stallTimeout = d
		}
	}
}

// NewSession creates a session that opens streams at sampleRate with
// bufferSize frames per block.
func NewSession(backend Backend, sampleRate float64, bufferSize int, opts ...Option) *Session {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Session{
		backend:          backend,
		sampleRate:       sampleRate,
		bufferSize:       bufferSize,
		progressInterval: defaultProgressInterval,
		stallTimeout:     defaultStallTimeout,
		log:              discard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// PlayAndRecord plays stimulus on output while recording input, and
// returns once every stimulus frame has been played and captured.
//
// progress may be nil. It is called from the calling goroutine at most
// once per progress interval with non-decreasing values; the last call
// reports 100 and happens after the stream is closed.
//
// Cancelling ctx aborts the stream. The stream is closed and the devices
// released on every return path. Device failures are returned as
// *DeviceError and no recording is returned with them.
func (s *Session) PlayAndRecord(
	ctx context.Context,
	stimulus []float32,
	input, output DeviceID,
	progress ProgressFunc,
) (*Recording, error) {
	if len(stimulus) == 0 {
		return nil, ErrEmptyStimulus
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("duplex: measurement cancelled: %w", err)
	}

	cfg := StreamConfig{
		Input:           input,
		Output:          output,
		SampleRate:      s.sampleRate,
		FramesPerBuffer: s.bufferSize,
		LowLatency:      true,
	}

	release, err := devices.acquire(input, output)
	if err != nil {
		return nil, s.deviceError("acquire", cfg, err)
	}
	defer release()

	r := newRun(stimulus)

	stream, err := s.backend.OpenStream(cfg, r.process)
	if err != nil {
		return nil, s.deviceError("open", cfg, err)
	}

	log := s.log.WithFields(logrus.Fields{"input": input, "output": output, "frames": len(stimulus)})
	log.Debug("duplex stream opened")

	started := time.Now()
	if err := stream.Start(); err != nil {
		return nil, s.deviceError("start", cfg, errors.Join(err, stream.Close()))
	}

	rep := &progressReporter{fn: progress, total: int64(len(stimulus)), last: -1}
	waitErr := s.wait(ctx, cfg, r, rep)

	var stopErr error
	if waitErr != nil {
		stopErr = stream.Abort()
	} else {
		stopErr = stream.Stop()
	}
	elapsed := time.Since(started)
	closeErr := stream.Close()

	if waitErr != nil {
		log.WithError(waitErr).Warn("duplex stream aborted")
		if stopErr != nil || closeErr != nil {
			log.WithError(errors.Join(stopErr, closeErr)).Warn("duplex stream teardown failed")
		}
		return nil, waitErr
	}
	if stopErr != nil || closeErr != nil {
		return nil, s.deviceError("stop", cfg, errors.Join(stopErr, closeErr))
	}

	rec := &Recording{
		Samples:      r.recorded,
		Duration:     elapsed,
		StatusEvents: int(r.statusEvents.Load()),
		Status:       StatusFlags(r.statusUnion.Load()),
	}
	if rec.StatusEvents > 0 {
		log.WithFields(logrus.Fields{"events": rec.StatusEvents, "status": rec.Status}).
			Warn("device reported stream glitches")
	}
	log.WithField("duration", elapsed).Debug("duplex stream closed")

	rep.finish()
	return rec, nil
}

// wait blocks until the run has consumed the whole stimulus, ctx is done
// or the stream stalls, reporting progress on every tick.
func (s *Session) wait(ctx context.Context, cfg StreamConfig, r *run, rep *progressReporter) error {
	ticker := time.NewTicker(s.progressInterval)
	defer ticker.Stop()

	lastFrames := int64(-1)
	lastChange := time.Now()

	for {
		select {
		case <-r.done:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("duplex: measurement cancelled: %w", ctx.Err())
		case now := <-ticker.C:
			frames := r.frames.Load()
			rep.update(frames)

			if frames != lastFrames {
				lastFrames = frames
				lastChange = now
				continue
			}
			if now.Sub(lastChange) > s.stallTimeout {
				return s.deviceError("run", cfg, ErrStalled)
			}
		}
	}
}

func (s *Session) deviceError(op string, cfg StreamConfig, err error) error {
	return &DeviceError{Op: op, Input: cfg.Input, Output: cfg.Output, Err: err}
}

// run is the state shared between the driver's block handler (sole
// writer) and the controlling goroutine.
type run struct {
	stimulus []float32
	recorded []float32

	frames       atomic.Int64
	statusEvents atomic.Int64
	statusUnion  atomic.Uint32

	done chan struct{}
}

func newRun(stimulus []float32) *run {
	return &run{
		stimulus: stimulus,
		recorded: make([]float32, len(stimulus)),
		done:     make(chan struct{}, 1),
	}
}

// process is the BlockFunc handed to the backend. Output beyond the end of
// the stimulus is silence; input beyond it is dropped.
func (r *run) process(in, out []float32, status StatusFlags) {
	if status != 0 {
		r.statusEvents.Add(1)
		r.statusUnion.Or(uint32(status))
	}

	pos := int(r.frames.Load())
	n := min(len(out), len(r.stimulus)-pos)
	if n <= 0 {
		clear(out)
		return
	}

	copy(out[:n], r.stimulus[pos:pos+n])
	clear(out[n:])
	copy(r.recorded[pos:pos+n], in)

	next := pos + n
	r.frames.Store(int64(next))

	if next == len(r.stimulus) {
		select {
		case r.done <- struct{}{}:
		default:
		}
	}
}

// progressReporter turns frame counts into non-decreasing percentages.
type progressReporter struct {
	fn    ProgressFunc
	total int64
	last  int
}

func (p *progressReporter) update(frames int64) {
	if p.fn == nil {
		return
	}

	// 100 is reserved for finish, after the stream is closed.
	pct := min(int(percentScale*frames/p.total), percentScale-1)
	if pct > p.last {
		p.last = pct
		p.fn(pct)
	}
}

func (p *progressReporter) finish() {
	if p.fn != nil && p.last < percentScale {
		p.last = percentScale
		p.fn(percentScale)
	}
}
