package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cwbudde/algo-fresp/analysis/curve"
	"github.com/cwbudde/algo-fresp/analysis/smooth"
	"github.com/cwbudde/algo-fresp/audio/duplex"
	"github.com/cwbudde/algo-fresp/measure/response"
	"github.com/cwbudde/algo-fresp/measure/sweep"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// configErrors are caller mistakes; they map to 400.
var configErrors = []error{
	sweep.ErrInvalidFrequency,
	sweep.ErrInvalidDuration,
	sweep.ErrInvalidSampleRate,
	sweep.ErrInvalidBufferSize,
	sweep.ErrAboveNyquist,
	smooth.ErrUnknownMethod,
	smooth.ErrInvalidWindow,
	smooth.ErrWindowTooLarge,
	smooth.ErrLengthMismatch,
	curve.ErrLengthMismatch,
	curve.ErrEmptyTarget,
	curve.ErrInvalidTolerance,
	curve.ErrUnknownScale,
	response.ErrEmptyStimulus,
	response.ErrEmptyRecording,
	response.ErrInvalidSampleRate,
	duplex.ErrEmptyStimulus,
	duplex.ErrNoDefaultDevice,
}

// classify maps err to an HTTP status and a short error code.
func classify(err error) (int, string) {
	var devErr *duplex.DeviceError

	switch {
	case errors.Is(err, duplex.ErrDeviceBusy):
		return http.StatusConflict, "device_busy"
	case errors.As(err, &devErr), errors.Is(err, duplex.ErrStalled):
		return http.StatusBadGateway, "device_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	}

	for _, target := range configErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, "bad_request"
		}
	}

	return http.StatusInternalServerError, "internal_server_error"
}

func fail(c *gin.Context, err error) {
	status, code := classify(err)
	c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: message})
}
