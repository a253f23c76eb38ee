package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-fresp/analysis/curve"
	"github.com/cwbudde/algo-fresp/analysis/smooth"
	"github.com/cwbudde/algo-fresp/audio/duplex"
	"github.com/cwbudde/algo-fresp/audio/portaudio"
	"github.com/cwbudde/algo-fresp/dsp/core"
	"github.com/cwbudde/algo-fresp/internal/config"
	"github.com/cwbudde/algo-fresp/internal/wavio"
	"github.com/cwbudde/algo-fresp/measure/response"
	"github.com/cwbudde/algo-fresp/pkg/logger"
)

// measureFlags holds command line overrides. Only flags given on the
// command line are applied.
type measureFlags struct {
	start, end, duration, rate float64
	buffer, in, out, window    int
	method                     smooth.Method
	curve, target              string
	tolerance                  float64
	stimulusWAV, recordingWAV  string
}

func (f *measureFlags) register(fs *flag.FlagSet) {
	fs.Float64Var(&f.start, "start", 0, "sweep start frequency in Hz")
	fs.Float64Var(&f.end, "end", 0, "sweep end frequency in Hz")
	fs.Float64Var(&f.duration, "duration", 0, "sweep duration in seconds (0.1-10)")
	fs.Float64Var(&f.rate, "rate", 0, "sample rate in Hz")
	fs.IntVar(&f.buffer, "buffer", 0, "frames per device block")
	fs.IntVar(&f.in, "in", 0, "input device ID (-1 for the default device)")
	fs.IntVar(&f.out, "out", 0, "output device ID (-1 for the default device)")
	fs.Func("smooth", "smoothing method (none, moving-average, savitzky-golay, gaussian, erb)", func(s string) error {
		m, err := smooth.ParseMethod(s)
		f.method = m
		return err
	})
	fs.IntVar(&f.window, "window", 0, "smoothing window in points")
	fs.StringVar(&f.curve, "o", "", "write the curve to this JSON file")
	fs.StringVar(&f.target, "target", "", "compare against this target curve")
	fs.Float64Var(&f.tolerance, "tolerance", 0, "pass/fail tolerance in dB")
	fs.StringVar(&f.stimulusWAV, "stimulus-wav", "", "dump the stimulus to this WAV file")
	fs.StringVar(&f.recordingWAV, "recording-wav", "", "dump the recording to this WAV file")
}

// apply copies every flag set on fs into cfg.
func (f *measureFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "start":
			cfg.Sweep.StartFreq = f.start
		case "end":
			cfg.Sweep.EndFreq = f.end
		case "duration":
			cfg.Sweep.Duration = f.duration
		case "rate":
			cfg.Sweep.SampleRate = f.rate
		case "buffer":
			cfg.Sweep.BufferSize = f.buffer
		case "in":
			cfg.Devices.Input = f.in
		case "out":
			cfg.Devices.Output = f.out
		case "smooth":
			cfg.Smoothing.Method = f.method
		case "window":
			cfg.Smoothing.Window = f.window
		case "o":
			cfg.Output.CurvePath = f.curve
		case "target":
			cfg.Comparison.TargetPath = f.target
		case "tolerance":
			cfg.Comparison.ToleranceDB = f.tolerance
		case "stimulus-wav":
			cfg.Output.StimulusWAV = f.stimulusWAV
		case "recording-wav":
			cfg.Output.RecordingWAV = f.recordingWAV
		}
	})
}

func runMeasure(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("measure", "")
	var mf measureFlags
	mf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath, func(cfg *config.Config) error {
		mf.apply(fs, cfg)
		return nil
	})
	if err != nil {
		return err
	}

	backend, err := portaudio.Open()
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return measure(ctx, backend, cfg, stdout, os.Stderr)
}

// measure runs one measurement on backend and handles everything cfg asks
// for afterwards: WAV dumps, smoothing, saving and the target comparison.
func measure(ctx context.Context, backend duplex.Backend, cfg *config.Config, stdout, progressOut io.Writer) error {
	in, out, err := duplex.ResolveDevices(backend, cfg.InputDevice(), cfg.OutputDevice())
	if err != nil {
		return err
	}

	logger.Debug("measuring with input device %d, output device %d", in, out)

	m := response.NewMeasurer(backend, response.WithLogger(logger.L()))

	last := -1
	progress := func(p int) {
		if p != last {
			fmt.Fprintf(progressOut, "\rmeasuring: %3d%%", p)
			last = p
		}
	}

	res, err := m.Measure(ctx, cfg.LogSweep(), in, out, progress)
	if last >= 0 {
		fmt.Fprintln(progressOut)
	}
	if err != nil {
		return err
	}

	printDebug(stdout, res)

	if err := dumpWAVs(cfg, res); err != nil {
		return err
	}

	c := res.Curve
	meta := res.Metadata()
	meta[curve.KeySmoothingMethod] = cfg.Smoothing.Method.String()
	meta[curve.KeySmoothingWindow] = cfg.Smoothing.Window

	if cfg.Smoothing.Method != smooth.None {
		smoothed, err := smooth.Smooth(c.Frequencies, c.DB(), cfg.Smoothing, nil)
		if err != nil {
			return err
		}
		c = curve.Curve{Frequencies: c.Frequencies, Magnitudes: core.MagnitudesFromDB(smoothed)}
	}

	if cfg.Output.CurvePath != "" {
		if err := curve.Save(cfg.Output.CurvePath, c, meta); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "curve saved to %s\n", cfg.Output.CurvePath)
	}

	if cfg.Comparison.TargetPath == "" {
		return nil
	}

	return compareWithTarget(stdout, c, cfg.Comparison.TargetPath, cfg.Comparison.ToleranceDB)
}

func printDebug(w io.Writer, m *response.Measurement) {
	d := m.Debug
	fmt.Fprintf(w, "measurement %s\n", m.ID)
	fmt.Fprintf(w, "  total duration:  %.2f s\n", d.TotalDuration.Seconds())
	fmt.Fprintf(w, "  delay:           %d samples (%.2f ms)\n", d.DelaySamples, d.DelayMS)
	fmt.Fprintf(w, "  recorded length: %d samples (expected %d)\n", d.RecordedLength, d.ExpectedLength)
	if d.StatusEvents > 0 {
		fmt.Fprintf(w, "  stream glitches: %d (%s)\n", d.StatusEvents, m.Status)
	}
	fmt.Fprintf(w, "  points:          %d\n", m.Curve.Len())
}

func dumpWAVs(cfg *config.Config, m *response.Measurement) error {
	rate := int(math.Round(cfg.Sweep.SampleRate))
	dumps := []struct {
		path    string
		samples []float32
	}{
		{cfg.Output.StimulusWAV, m.Stimulus},
		{cfg.Output.RecordingWAV, m.Recording},
	}

	for _, d := range dumps {
		if d.path == "" {
			continue
		}
		if err := wavio.Write(d.path, d.samples, rate); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"path": d.path, "samples": len(d.samples)}).Debug("wav written")
	}
	return nil
}
