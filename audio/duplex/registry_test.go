package duplex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAcquire(t *testing.T) {
	r := &deviceRegistry{held: make(map[DeviceID]struct{})}

	release, err := r.acquire(1, 2)
	require.NoError(t, err)

	_, err = r.acquire(2, 3)
	assert.ErrorIs(t, err, ErrDeviceBusy)

	// A failed acquire must not hold anything.
	release3, err := r.acquire(3)
	require.NoError(t, err)
	release3()

	release()
	release() // idempotent

	again, err := r.acquire(1, 2)
	require.NoError(t, err)
	again()
	assert.Empty(t, r.held)
}

func TestRegistryAcquireDuplicateID(t *testing.T) {
	r := &deviceRegistry{held: make(map[DeviceID]struct{})}

	release, err := r.acquire(4, 4)
	require.NoError(t, err)
	assert.Len(t, r.held, 1)

	release()
	assert.Empty(t, r.held)
}

func TestStatusFlagsString(t *testing.T) {
	assert.Equal(t, "ok", StatusFlags(0).String())
	assert.Contains(t, (InputOverflow | OutputUnderflow).String(), "input overflow")
	assert.Contains(t, (InputOverflow | OutputUnderflow).String(), "output underflow")
}

type plainBackend struct{}

func (plainBackend) OpenStream(StreamConfig, BlockFunc) (Stream, error) { return nil, nil }

type listerBackend struct{ plainBackend }

func (listerBackend) Devices() ([]DeviceInfo, error) { return nil, nil }

func (listerBackend) DefaultDevices() (DeviceID, DeviceID, error) { return 3, 4, nil }

func TestResolveDevices(t *testing.T) {
	in, out, err := ResolveDevices(plainBackend{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, DeviceID(1), in)
	assert.Equal(t, DeviceID(2), out)

	_, _, err = ResolveDevices(plainBackend{}, DefaultDevice, 2)
	assert.ErrorIs(t, err, ErrNoDefaultDevice)

	in, out, err = ResolveDevices(listerBackend{}, DefaultDevice, 7)
	require.NoError(t, err)
	assert.Equal(t, DeviceID(3), in)
	assert.Equal(t, DeviceID(7), out)

	in, out, err = ResolveDevices(listerBackend{}, DefaultDevice, DefaultDevice)
	require.NoError(t, err)
	assert.Equal(t, DeviceID(3), in)
	assert.Equal(t, DeviceID(4), out)
}
