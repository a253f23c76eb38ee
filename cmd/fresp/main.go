// Command fresp measures the frequency response of an audio chain with a
// logarithmic sine sweep.
//
// Usage:
//
//	fresp <command> [flags] [args]
//
// Commands:
//
//	devices   list audio devices
//	measure   play a sweep, record it and save the response curve
//	smooth    smooth a saved curve
//	compare   compare a curve against a target curve
//	serve     run the HTTP API
//	version   print build information
//
// Every command accepts -config with a YAML file; FRESP_* environment
// variables override it and command flags override both.
//
// Examples:
//
//	fresp devices
//	fresp measure -in 2 -out 3 -duration 2 -o speaker.json
//	fresp measure -smooth erb -target target.json -tolerance 2
//	fresp smooth -method savitzky-golay -window 21 -o smooth.json speaker.json
//	fresp compare -tolerance 3 speaker.json target.json
//	fresp serve -addr :8080
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-fresp/internal/config"
	"github.com/cwbudde/algo-fresp/pkg/logger"
	"github.com/cwbudde/algo-fresp/pkg/version"
)

// errFailed marks a completed run whose result did not pass; main exits
// with status 1 without printing it again.
var errFailed = errors.New("fresp: response outside tolerance")

type command struct {
	name    string
	summary string
	run     func(args []string, stdout io.Writer) error
}

var commands = []command{
	{"devices", "list audio devices", runDevices},
	{"measure", "play a sweep, record it and save the response curve", runMeasure},
	{"smooth", "smooth a saved curve", runSmooth},
	{"compare", "compare a curve against a target curve", runCompare},
	{"serve", "run the HTTP API", runServe},
	{"version", "print build information", runVersion},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	name := os.Args[1]
	if name == "-h" || name == "-help" || name == "--help" || name == "help" {
		usage()
		return
	}

	for _, c := range commands {
		if c.name != name {
			continue
		}

		err := c.run(os.Args[2:], os.Stdout)
		switch {
		case err == nil:
			return
		case errors.Is(err, errFailed):
			os.Exit(1)
		case errors.Is(err, flag.ErrHelp):
			os.Exit(2)
		default:
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Fprintf(os.Stderr, "error: unknown command %q\n\n", name)
	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: fresp <command> [flags] [args]\n\n")
	fmt.Fprintf(os.Stderr, "Measures the frequency response of an audio chain with a log sweep.\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(os.Stderr, "\nRun 'fresp <command> -h' for the flags of a command.\n")
}

// newFlagSet returns a flag set with the shared -config flag.
func newFlagSet(name, args string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", "", "YAML configuration file")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: fresp %s [flags] %s\n\nFlags:\n", name, args)
		fs.PrintDefaults()
	}
	return fs, path
}

// loadConfig loads the configuration, lets apply override it from flags
// and initializes the process logger.
func loadConfig(path string, apply func(*config.Config) error) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if apply != nil {
		if err := apply(cfg); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	if err := logger.Initialize(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}

	return cfg, nil
}

func runVersion(_ []string, stdout io.Writer) error {
	fmt.Fprintf(stdout, "fresp %s (commit %s, built %s)\n", version.Version, version.Commit, version.BuildTime)
	return nil
}
