package duplex

import (
	"errors"
	"fmt"
)

// Errors returned by duplex sessions.
var (
	ErrEmptyStimulus = errors.New("duplex: stimulus is empty")
	ErrDeviceBusy    = errors.New("duplex: device is held by another measurement")
	ErrStalled       = errors.New("duplex: device stopped delivering blocks")

	ErrNoDefaultDevice = errors.New("duplex: backend has no default device")
)

// DeviceError reports a failure to open, run or release the duplex stream.
// Err holds the driver's cause.
type DeviceError struct {
	Op     string
	Input  DeviceID
	Output DeviceID
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("duplex: %s stream (input %d, output %d): %v", e.Op, e.Input, e.Output, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }
