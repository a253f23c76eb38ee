package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-fresp/analysis/curve"
	"github.com/cwbudde/algo-fresp/analysis/smooth"
	"github.com/cwbudde/algo-fresp/dsp/core"
	"github.com/cwbudde/algo-fresp/internal/config"
)

func runSmooth(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("smooth", "<curve.json>")
	var (
		method smooth.Method
		window int
		out    string
	)
	fs.Func("method", "smoothing method (moving-average, savitzky-golay, gaussian, erb, none)", func(s string) error {
		var err error
		method, err = smooth.ParseMethod(s)
		return err
	})
	fs.IntVar(&window, "window", 0, "window length in points")
	fs.StringVar(&out, "o", "", "output file (default: overwrite the input)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("smooth: expected one curve file")
	}

	cfg, err := loadConfig(*cfgPath, func(cfg *config.Config) error {
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "method":
				cfg.Smoothing.Method = method
			case "window":
				cfg.Smoothing.Window = window
			}
		})
		return nil
	})
	if err != nil {
		return err
	}

	in := fs.Arg(0)
	if out == "" {
		out = in
	}

	return smoothFile(stdout, in, out, cfg.Smoothing)
}

func smoothFile(w io.Writer, in, out string, cfg smooth.Config) error {
	c, meta, err := curve.Load(in)
	if err != nil {
		return err
	}

	c, err = c.Normalized()
	if err != nil {
		return err
	}

	smoothed, err := smooth.Smooth(c.Frequencies, c.DB(), cfg, nil)
	if err != nil {
		return err
	}

	meta[curve.KeySmoothingMethod] = cfg.Method.String()
	meta[curve.KeySmoothingWindow] = cfg.Window

	sc := curve.Curve{Frequencies: c.Frequencies, Magnitudes: core.MagnitudesFromDB(smoothed)}
	if err := curve.Save(out, sc, meta); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: %d points smoothed with %s", out, sc.Len(), cfg.Method)
	if cfg.Method.UsesWindow() {
		fmt.Fprintf(w, " (window %d)", cfg.Window)
	}
	fmt.Fprintln(w)

	return nil
}

func runCompare(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("compare", "<measured.json> <target.json>")
	var tolerance float64
	fs.Float64Var(&tolerance, "tolerance", 0, "pass/fail tolerance in dB")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errors.New("compare: expected a measured and a target curve file")
	}

	cfg, err := loadConfig(*cfgPath, func(cfg *config.Config) error {
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "tolerance" {
				cfg.Comparison.ToleranceDB = tolerance
			}
		})
		return nil
	})
	if err != nil {
		return err
	}

	measured, _, err := curve.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	return compareWithTarget(stdout, measured, fs.Arg(1), cfg.Comparison.ToleranceDB)
}

// compareWithTarget prints the comparison of c against the target file and
// returns errFailed if it does not pass.
func compareWithTarget(w io.Writer, c curve.Curve, targetPath string, toleranceDB float64) error {
	target, _, err := curve.Load(targetPath)
	if err != nil {
		return err
	}

	res, err := curve.Evaluate(c, target, toleranceDB)
	if err != nil {
		return err
	}

	worst, at := 0.0, 0.0
	for i, d := range res.DifferenceDB {
		if math.Abs(d) > math.Abs(worst) || math.IsNaN(d) {
			worst, at = d, res.Frequencies[i]
		}
	}

	verdict := "PASS"
	if !res.Passed {
		verdict = "FAIL"
	}
	fmt.Fprintf(w, "%s: max deviation %+.2f dB at %.1f Hz (tolerance ±%.2f dB)\n", verdict, worst, at, toleranceDB)

	if !res.Passed {
		return errFailed
	}
	return nil
}
