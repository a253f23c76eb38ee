package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cwbudde/algo-fresp/analysis/curve"
	"github.com/cwbudde/algo-fresp/analysis/smooth"
	"github.com/cwbudde/algo-fresp/audio/duplex"
	"github.com/cwbudde/algo-fresp/dsp/core"
	"github.com/cwbudde/algo-fresp/measure/response"
	"github.com/cwbudde/algo-fresp/measure/sweep"
	"github.com/cwbudde/algo-fresp/pkg/version"
)

// MeasureRequest starts a measurement. Omitted fields take the server
// defaults.
type MeasureRequest struct {
	StartFreq    float64       `json:"start_freq"`
	EndFreq      float64       `json:"end_freq"`
	Duration     float64       `json:"duration"`
	SampleRate   float64       `json:"sample_rate"`
	BufferSize   int           `json:"buffer_size"`
	InputDevice  int           `json:"input_device"`
	OutputDevice int           `json:"output_device"`
	Smoothing    smooth.Config `json:"smoothing"`
}

// MeasureResponse is a finished measurement. SmoothedDB is set when a
// smoothing method other than None was applied.
type MeasureResponse struct {
	*response.Measurement
	Smoothing  smooth.Config `json:"smoothing"`
	SmoothedDB []float64     `json:"smoothed_db,omitempty"`
}

// SmoothRequest smooths a dB curve.
type SmoothRequest struct {
	Frequencies  []float64     `json:"frequencies"`
	MagnitudesDB []float64     `json:"magnitudes_db"`
	Smoothing    smooth.Config `json:"smoothing"`
}

// SmoothResponse carries the smoothed dB values.
type SmoothResponse struct {
	Smoothing    smooth.Config `json:"smoothing"`
	MagnitudesDB []float64     `json:"magnitudes_db"`
}

// CurvePayload is a curve on the wire, in dB like curve files.
type CurvePayload struct {
	Frequencies  []float64 `json:"frequencies"`
	MagnitudesDB []float64 `json:"magnitudes_db"`
}

func (p CurvePayload) curve() curve.Curve {
	return curve.Curve{Frequencies: p.Frequencies, Magnitudes: core.MagnitudesFromDB(p.MagnitudesDB)}
}

// CompareRequest evaluates a measured curve against a target.
type CompareRequest struct {
	Measured    CurvePayload `json:"measured"`
	Target      CurvePayload `json:"target"`
	ToleranceDB *float64     `json:"tolerance_db"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
}

func (s *Server) devices(c *gin.Context) {
	lister, ok := s.backend.(duplex.DeviceLister)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"devices": []duplex.DeviceInfo{}})
		return
	}

	devs, err := lister.Devices()
	if err != nil {
		fail(c, err)
		return
	}
	if devs == nil {
		devs = []duplex.DeviceInfo{}
	}

	c.JSON(http.StatusOK, gin.H{"devices": devs})
}

func (s *Server) measure(c *gin.Context) {
	d := s.defaults
	req := MeasureRequest{
		StartFreq:    d.Sweep.StartFreq,
		EndFreq:      d.Sweep.EndFreq,
		Duration:     d.Sweep.Duration,
		SampleRate:   d.Sweep.SampleRate,
		BufferSize:   d.Sweep.BufferSize,
		InputDevice:  d.Devices.Input,
		OutputDevice: d.Devices.Output,
		Smoothing:    d.Smoothing,
	}
	if !bindOptional(c, &req) {
		return
	}

	cfg := req.Smoothing.Normalize()
	if err := cfg.Validate(); err != nil {
		fail(c, err)
		return
	}

	sw := sweep.LogSweep{
		StartFreq:  req.StartFreq,
		EndFreq:    req.EndFreq,
		Duration:   req.Duration,
		SampleRate: req.SampleRate,
		BufferSize: req.BufferSize,
	}
	if err := sw.Validate(); err != nil {
		fail(c, err)
		return
	}

	in, out, err := duplex.ResolveDevices(s.backend, duplex.DeviceID(req.InputDevice), duplex.DeviceID(req.OutputDevice))
	if err != nil {
		fail(c, err)
		return
	}

	m, err := s.measurer.Measure(c.Request.Context(), sw, in, out, nil)
	if err != nil {
		fail(c, err)
		return
	}

	resp := MeasureResponse{Measurement: m, Smoothing: cfg}
	if cfg.Method != smooth.None {
		resp.SmoothedDB, err = smooth.Smooth(m.Curve.Frequencies, m.Curve.DB(), cfg, nil)
		if err != nil {
			fail(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) smooth(c *gin.Context) {
	var req SmoothRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	cfg := req.Smoothing.Normalize()
	out, err := smooth.Smooth(req.Frequencies, req.MagnitudesDB, cfg, nil)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, SmoothResponse{Smoothing: cfg, MagnitudesDB: out})
}

func (s *Server) compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tol := s.defaults.Comparison.ToleranceDB
	if req.ToleranceDB != nil {
		tol = *req.ToleranceDB
	}

	res, err := curve.Evaluate(req.Measured.curve(), req.Target.curve(), tol)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// bindOptional decodes a JSON body into dst if there is one. It writes the
// error response and returns false on malformed input.
func bindOptional(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	badRequest(c, err.Error())
	return false
}
