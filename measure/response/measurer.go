package response

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-fresp/analysis/curve"
	"github.com/cwbudde/algo-fresp/audio/duplex"
	"github.com/cwbudde/algo-fresp/measure/sweep"
)

// Measurement is a completed sweep measurement. Stimulus and Recording
// are kept for diagnostic dumps.
type Measurement struct {
	Result

	ID         uuid.UUID          `json:"id"`
	MeasuredAt time.Time          `json:"measured_at"`
	Sweep      sweep.LogSweep     `json:"sweep"`
	Status     duplex.StatusFlags `json:"status"`

	Stimulus  []float32 `json:"-"`
	Recording []float32 `json:"-"`
}

// Metadata returns the metadata stored with the measured curve.
func (m *Measurement) Metadata() curve.Metadata {
	return curve.Metadata{
		curve.KeyStartFreq:     m.Sweep.StartFreq,
		curve.KeyEndFreq:       m.Sweep.EndFreq,
		curve.KeyDuration:      m.Sweep.Duration,
		curve.KeySampleRate:    m.Sweep.SampleRate,
		curve.KeyBufferSize:    m.Sweep.BufferSize,
		curve.KeyDelay:         m.Delay.Milliseconds,
		curve.KeyMeasurementID: m.ID.String(),
		curve.KeyMeasuredAt:    m.MeasuredAt.UTC().Format(time.RFC3339),
	}
}

// Measurer runs sweep measurements on a duplex backend.
type Measurer struct {
	backend     duplex.Backend
	log         logrus.FieldLogger
	sessionOpts []duplex.Option
	now         func() time.Time
}

// Option configures a Measurer.
type Option func(*Measurer)

// WithLogger sets the logger for measurement and stream messages.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Measurer) {
		if l != nil {
			m.log = l
		}
	}
}

// WithSessionOptions passes options to every duplex session the Measurer
// creates.
func WithSessionOptions(opts ...duplex.Option) Option {
	return func(m *Measurer) {
		m.sessionOpts = append(m.sessionOpts, opts...)
	}
}

// NewMeasurer creates a Measurer on backend.
func NewMeasurer(backend duplex.Backend, opts ...Option) *Measurer {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	m := &Measurer{backend: backend, log: discard, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Measure plays the sweep on output, records input and estimates the
// response. The sweep is validated before any device is touched.
// duplex.DefaultDevice for input or output selects the backend's default
// device. On failure no partial result is returned; device failures come
// back as *duplex.DeviceError.
func (m *Measurer) Measure(
	ctx context.Context,
	s sweep.LogSweep,
	input, output duplex.DeviceID,
	progress duplex.ProgressFunc,
) (*Measurement, error) {
	stimulus, err := s.Generate()
	if err != nil {
		return nil, err
	}

	input, output, err = duplex.ResolveDevices(m.backend, input, output)
	if err != nil {
		return nil, fmt.Errorf("response: measure: %w", err)
	}

	id := uuid.New()
	log := m.log.WithField("measurement_id", id)

	opts := append([]duplex.Option{duplex.WithLogger(log)}, m.sessionOpts...)
	session := duplex.NewSession(m.backend, s.SampleRate, s.BufferSize, opts...)

	measuredAt := m.now()
	rec, err := session.PlayAndRecord(ctx, stimulus, input, output, progress)
	if err != nil {
		return nil, fmt.Errorf("response: measure: %w", err)
	}

	res, err := Estimate(stimulus, rec.Samples, s.SampleRate)
	if err != nil {
		return nil, err
	}
	res.Debug.TotalDuration = rec.Duration
	res.Debug.StatusEvents = rec.StatusEvents

	if rec.StatusEvents > 0 {
		log.WithFields(logrus.Fields{
			"events": rec.StatusEvents,
			"status": rec.Status.String(),
		}).Warn("measurement had stream glitches")
	}
	log.WithFields(logrus.Fields{
		"delay_samples": res.Delay.Samples,
		"delay_ms":      res.Delay.Milliseconds,
		"duration":      rec.Duration,
	}).Info("measurement complete")

	return &Measurement{
		Result:     *res,
		ID:         id,
		MeasuredAt: measuredAt,
		Sweep:      s,
		Status:     rec.Status,
		Stimulus:   stimulus,
		Recording:  rec.Samples,
	}, nil
}
