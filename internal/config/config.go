// Package config handles application configuration for the fresp binary.
//
// Configuration is read from an optional YAML file on top of built-in
// defaults, then FRESP_* environment variables override single fields.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-fresp/analysis/smooth"
	"github.com/cwbudde/algo-fresp/audio/duplex"
	"github.com/cwbudde/algo-fresp/measure/sweep"
)

// DefaultDevice selects the host's default input or output device.
const DefaultDevice = int(duplex.DefaultDevice)

// ErrInvalidTolerance is returned by Validate for a negative tolerance.
var ErrInvalidTolerance = errors.New("config: tolerance must not be negative")

// Config holds all application configuration.
type Config struct {
	Sweep      SweepConfig      `yaml:"sweep"`
	Devices    DeviceConfig     `yaml:"devices"`
	Smoothing  smooth.Config    `yaml:"smoothing"`
	Comparison ComparisonConfig `yaml:"comparison"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
}

// SweepConfig holds the measurement sweep.
type SweepConfig struct {
	StartFreq  float64 `yaml:"start_freq"`
	EndFreq    float64 `yaml:"end_freq"`
	Duration   float64 `yaml:"duration"`
	SampleRate float64 `yaml:"sample_rate"`
	BufferSize int     `yaml:"buffer_size"`
}

// DeviceConfig selects the audio devices by ID. DefaultDevice picks the
// host default.
type DeviceConfig struct {
	Input  int `yaml:"input"`
	Output int `yaml:"output"`
}

// ComparisonConfig holds the target curve and pass/fail tolerance.
type ComparisonConfig struct {
	TargetPath  string  `yaml:"target"`
	ToleranceDB float64 `yaml:"tolerance_db"`
}

// OutputConfig names files written after a measurement. Empty paths are
// skipped.
type OutputConfig struct {
	CurvePath    string `yaml:"curve"`
	StimulusWAV  string `yaml:"stimulus_wav"`
	RecordingWAV string `yaml:"recording_wav"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig holds the HTTP API listen address.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sweep: SweepConfig{
			StartFreq:  20,
			EndFreq:    20000,
			Duration:   5,
			SampleRate: 48000,
			BufferSize: 256,
		},
		Devices:    DeviceConfig{Input: DefaultDevice, Output: DefaultDevice},
		Smoothing:  smooth.Config{Method: smooth.None, Window: smooth.DefaultWindow},
		Comparison: ComparisonConfig{ToleranceDB: 3},
		Log:        LogConfig{Level: "info", Format: "text"},
		Server:     ServerConfig{Address: ":8080"},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}

		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LogSweep returns the sweep the configuration describes.
func (c *Config) LogSweep() sweep.LogSweep {
	return sweep.LogSweep{
		StartFreq:  c.Sweep.StartFreq,
		EndFreq:    c.Sweep.EndFreq,
		Duration:   c.Sweep.Duration,
		SampleRate: c.Sweep.SampleRate,
		BufferSize: c.Sweep.BufferSize,
	}
}

// InputDevice and OutputDevice return the configured device IDs.
func (c *Config) InputDevice() duplex.DeviceID  { return duplex.DeviceID(c.Devices.Input) }
func (c *Config) OutputDevice() duplex.DeviceID { return duplex.DeviceID(c.Devices.Output) }

// Validate reports the first configuration error. Smoothing windows are
// normalized first, the same way an interactive window control would.
func (c *Config) Validate() error {
	if err := c.LogSweep().Validate(); err != nil {
		return fmt.Errorf("config: sweep: %w", err)
	}

	c.Smoothing = c.Smoothing.Normalize()
	if err := c.Smoothing.Validate(); err != nil {
		return fmt.Errorf("config: smoothing: %w", err)
	}

	if !(c.Comparison.ToleranceDB >= 0) {
		return ErrInvalidTolerance
	}

	return nil
}

func (c *Config) applyEnv() error {
	var errs []error
	setFloat := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	setFloat("FRESP_START_FREQ", &c.Sweep.StartFreq)
	setFloat("FRESP_END_FREQ", &c.Sweep.EndFreq)
	setFloat("FRESP_DURATION", &c.Sweep.Duration)
	setFloat("FRESP_SAMPLE_RATE", &c.Sweep.SampleRate)
	setInt("FRESP_BUFFER_SIZE", &c.Sweep.BufferSize)
	setInt("FRESP_INPUT_DEVICE", &c.Devices.Input)
	setInt("FRESP_OUTPUT_DEVICE", &c.Devices.Output)
	setInt("FRESP_SMOOTHING_WINDOW", &c.Smoothing.Window)
	setFloat("FRESP_TOLERANCE_DB", &c.Comparison.ToleranceDB)

	if v := getEnv("FRESP_SMOOTHING_METHOD", ""); v != "" {
		m, err := smooth.ParseMethod(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: FRESP_SMOOTHING_METHOD: %w", err))
		} else {
			c.Smoothing.Method = m
		}
	}

	c.Comparison.TargetPath = getEnv("FRESP_TARGET", c.Comparison.TargetPath)
	c.Output.CurvePath = getEnv("FRESP_CURVE", c.Output.CurvePath)
	c.Log.Level = getEnv("FRESP_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("FRESP_LOG_FORMAT", c.Log.Format)
	c.Server.Address = getEnv("FRESP_SERVER_ADDRESS", c.Server.Address)

	return errors.Join(errs...)
}

// getEnv returns the value of the environment variable key, or defaultValue if unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
