package duplex_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-fresp/audio/duplex"
	"github.com/cwbudde/algo-fresp/audio/duplex/duplextest"
)

const (
	testRate   = 48000
	testFrames = 64
)

func ramp(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(0.01 * float64(i)))
	}
	return out
}

func newTestSession(b duplex.Backend, opts ...duplex.Option) *duplex.Session {
	opts = append([]duplex.Option{duplex.WithProgressInterval(5 * time.Millisecond)}, opts...)
	return duplex.NewSession(b, testRate, testFrames, opts...)
}

func TestPlayAndRecordLoopback(t *testing.T) {
	for _, delay := range []int{0, 5, 100} {
		lb := &duplextest.Loopback{Delay: delay}
		s := newTestSession(lb)

		stim := ramp(1000)
		rec, err := s.PlayAndRecord(context.Background(), stim, 1, 2, nil)
		require.NoError(t, err)
		require.Len(t, rec.Samples, len(stim))

		lag := testFrames + delay
		for i, v := range rec.Samples {
			if i < lag {
				assert.Zero(t, v, "delay %d sample %d", delay, i)
				continue
			}
			assert.Equal(t, stim[i-lag], v, "delay %d sample %d", delay, i)
		}

		assert.Equal(t, 1, lb.Opened())
		assert.Equal(t, 1, lb.Closed())
		assert.Zero(t, lb.Aborted())
		assert.Zero(t, rec.StatusEvents)
	}
}

func TestPlayAndRecordStreamConfig(t *testing.T) {
	lb := &duplextest.Loopback{}
	s := newTestSession(lb)

	_, err := s.PlayAndRecord(context.Background(), ramp(200), 3, 7, nil)
	require.NoError(t, err)

	cfgs := lb.Configs()
	require.Len(t, cfgs, 1)
	assert.Equal(t, duplex.StreamConfig{
		Input:           3,
		Output:          7,
		SampleRate:      testRate,
		FramesPerBuffer: testFrames,
		LowLatency:      true,
	}, cfgs[0])
}

func TestPlayAndRecordPartialBlock(t *testing.T) {
	lb := &duplextest.Loopback{}
	s := newTestSession(lb)

	// Not a multiple of the block size.
	stim := ramp(3*testFrames + 17)
	rec, err := s.PlayAndRecord(context.Background(), stim, 0, 0, nil)
	require.NoError(t, err)
	require.Len(t, rec.Samples, len(stim))
	assert.Equal(t, stim[len(stim)-1-testFrames], rec.Samples[len(stim)-1])
}

func TestPlayAndRecordProgress(t *testing.T) {
	lb := &duplextest.Loopback{BlockInterval: time.Millisecond}
	s := newTestSession(lb)

	var (
		mu   sync.Mutex
		seen []int
	)
	progress := func(p int) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, p)
	}

	_, err := s.PlayAndRecord(context.Background(), ramp(40*testFrames), 0, 1, progress)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, 100, seen[len(seen)-1])
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1], "progress went backwards at %d: %v", i, seen)
	}
	for _, p := range seen[:len(seen)-1] {
		assert.Less(t, p, 100)
	}
}

func TestPlayAndRecordEmptyStimulus(t *testing.T) {
	lb := &duplextest.Loopback{}
	s := newTestSession(lb)

	rec, err := s.PlayAndRecord(context.Background(), nil, 0, 1, nil)
	assert.ErrorIs(t, err, duplex.ErrEmptyStimulus)
	assert.Nil(t, rec)
	assert.Zero(t, lb.Opened())
}

func TestPlayAndRecordCancel(t *testing.T) {
	lb := &duplextest.Loopback{BlockInterval: 2 * time.Millisecond}
	s := newTestSession(lb)
	stim := ramp(10 * testRate)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		rec *duplex.Recording
		err error
	}
	done := make(chan result, 1)
	go func() {
		rec, err := s.PlayAndRecord(ctx, stim, 0, 1, nil)
		done <- result{rec, err}
	}()

	require.Eventually(t, func() bool { return lb.Blocks() > 0 }, time.Second, time.Millisecond)
	cancel()

	res := <-done
	assert.ErrorIs(t, res.err, context.Canceled)
	assert.Nil(t, res.rec)
	assert.Equal(t, 1, lb.Opened())
	assert.Equal(t, 1, lb.Aborted())
	assert.Equal(t, 1, lb.Closed())

	// The devices are free again.
	_, err := s.PlayAndRecord(context.Background(), ramp(100), 0, 1, nil)
	assert.NoError(t, err)
}

func TestPlayAndRecordCancelledBeforeStart(t *testing.T) {
	lb := &duplextest.Loopback{}
	s := newTestSession(lb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.PlayAndRecord(ctx, ramp(100), 0, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, lb.Opened())
}

func TestPlayAndRecordDeviceErrors(t *testing.T) {
	cause := errors.New("driver said no")

	tests := []struct {
		name   string
		lb     *duplextest.Loopback
		op     string
		closed int
	}{
		{"open", &duplextest.Loopback{OpenErr: cause}, "open", 0},
		{"start", &duplextest.Loopback{StartErr: cause}, "start", 1},
		{"stop", &duplextest.Loopback{StopErr: cause}, "stop", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(tt.lb)

			rec, err := s.PlayAndRecord(context.Background(), ramp(500), 4, 5, nil)
			require.Error(t, err)
			assert.Nil(t, rec)
			assert.ErrorIs(t, err, cause)

			var devErr *duplex.DeviceError
			require.ErrorAs(t, err, &devErr)
			assert.Equal(t, tt.op, devErr.Op)
			assert.Equal(t, duplex.DeviceID(4), devErr.Input)
			assert.Equal(t, duplex.DeviceID(5), devErr.Output)
			assert.Equal(t, tt.closed, tt.lb.Closed())
		})
	}
}

func TestPlayAndRecordDeviceBusy(t *testing.T) {
	slow := &duplextest.Loopback{BlockInterval: 2 * time.Millisecond}
	s := newTestSession(slow)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.PlayAndRecord(ctx, ramp(10*testRate), 10, 11, nil)
		done <- err
	}()

	require.Eventually(t, func() bool { return slow.Blocks() > 0 }, time.Second, time.Millisecond)

	other := &duplextest.Loopback{}
	_, err := newTestSession(other).PlayAndRecord(context.Background(), ramp(100), 11, 12, nil)
	assert.ErrorIs(t, err, duplex.ErrDeviceBusy)
	assert.Zero(t, other.Opened())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	_, err = newTestSession(other).PlayAndRecord(context.Background(), ramp(100), 11, 12, nil)
	assert.NoError(t, err)
}

func TestPlayAndRecordSameDeviceBothWays(t *testing.T) {
	lb := &duplextest.Loopback{}
	s := newTestSession(lb)

	_, err := s.PlayAndRecord(context.Background(), ramp(300), 2, 2, nil)
	require.NoError(t, err)
	_, err = s.PlayAndRecord(context.Background(), ramp(300), 2, 2, nil)
	require.NoError(t, err)
}

func TestPlayAndRecordStall(t *testing.T) {
	lb := &duplextest.Loopback{StallAfter: 2}
	s := newTestSession(lb, duplex.WithStallTimeout(40*time.Millisecond))

	rec, err := s.PlayAndRecord(context.Background(), ramp(20*testFrames), 4, 5, nil)
	assert.ErrorIs(t, err, duplex.ErrStalled)
	assert.Nil(t, rec)

	var devErr *duplex.DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, "run", devErr.Op)
	assert.Equal(t, duplex.DeviceID(4), devErr.Input)
	assert.Equal(t, duplex.DeviceID(5), devErr.Output)
	assert.Equal(t, 1, lb.Aborted())
	assert.Equal(t, 1, lb.Closed())
}

func TestPlayAndRecordStatusFlags(t *testing.T) {
	lb := &duplextest.Loopback{
		Status: map[int]duplex.StatusFlags{
			1: duplex.InputOverflow,
			3: duplex.OutputUnderflow,
		},
	}
	s := newTestSession(lb)

	rec, err := s.PlayAndRecord(context.Background(), ramp(10*testFrames), 0, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.StatusEvents)
	assert.Equal(t, duplex.InputOverflow|duplex.OutputUnderflow, rec.Status)
}

func TestPlayAndRecordGainAndNoise(t *testing.T) {
	lb := &duplextest.Loopback{Gain: 0.5, Noise: 1e-3, Seed: 7}
	s := newTestSession(lb)

	stim := ramp(2000)
	rec, err := s.PlayAndRecord(context.Background(), stim, 0, 1, nil)
	require.NoError(t, err)

	for i := testFrames; i < len(stim); i++ {
		assert.InDelta(t, 0.5*stim[i-testFrames], rec.Samples[i], 1.01e-3)
	}
}
