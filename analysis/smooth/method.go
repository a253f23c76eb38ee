package smooth

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned for invalid smoothing configurations.
var (
	ErrUnknownMethod  = errors.New("smooth: unknown smoothing method")
	ErrInvalidWindow  = errors.New("smooth: window must be odd and within range")
	ErrWindowTooLarge = errors.New("smooth: window is longer than the input")
	ErrLengthMismatch = errors.New("smooth: frequencies and magnitudes differ in length")
)

// Method selects a smoothing algorithm.
type Method int

const (
	None Method = iota
	MovingAverage
	SavitzkyGolay
	Gaussian
	ERB
)

var methodNames = [...]string{
	None:          "None",
	MovingAverage: "Moving Average",
	SavitzkyGolay: "Savitzky-Golay",
	Gaussian:      "Gaussian",
	ERB:           "ERB",
}

// Window limits.
const (
	MinWindow              = 3
	MinSavitzkyGolayWindow = 5
	MaxWindow              = 101
	DefaultWindow          = 11
)

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// Valid reports whether m is one of the defined methods.
func (m Method) Valid() bool {
	return m >= 0 && int(m) < len(methodNames)
}

// UsesWindow reports whether the method reads Config.Window.
func (m Method) UsesWindow() bool {
	return m == MovingAverage || m == SavitzkyGolay || m == Gaussian
}

// MinWindow returns the smallest window the method accepts.
func (m Method) MinWindow() int {
	if m == SavitzkyGolay {
		return MinSavitzkyGolayWindow
	}
	return MinWindow
}

// ParseMethod accepts the display names ("Moving Average") as well as
// lower-case and kebab-case forms ("moving-average", "savgol").
func ParseMethod(s string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)

	switch key {
	case "none", "":
		return None, nil
	case "movingaverage", "moving", "ma":
		return MovingAverage, nil
	case "savitzkygolay", "savgol", "sg":
		return SavitzkyGolay, nil
	case "gaussian", "gauss":
		return Gaussian, nil
	case "erb":
		return ERB, nil
	}

	return None, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

func (m Method) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}
	return []byte(m.String()), nil
}

func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Config selects a method and its window length in samples.
type Config struct {
	Method Method `json:"method" yaml:"method"`
	Window int    `json:"window" yaml:"window"`
}

// Normalize returns c with the window moved to the nearest value the
// method accepts: even windows go up by one, then the result is clamped to
// [MinWindow(), MaxWindow]. Methods without a window are left alone.
func (c Config) Normalize() Config {
	if !c.Method.UsesWindow() {
		return c
	}

	if c.Window%2 == 0 {
		c.Window++
	}
	c.Window = min(max(c.Window, c.Method.MinWindow()), MaxWindow)

	return c
}

// Validate reports configuration errors without looking at any data.
func (c Config) Validate() error {
	if !c.Method.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMethod, int(c.Method))
	}
	if !c.Method.UsesWindow() {
		return nil
	}

	if c.Window%2 == 0 || c.Window < c.Method.MinWindow() || c.Window > MaxWindow {
		return fmt.Errorf("%w: %s needs an odd window in [%d, %d], got %d",
			ErrInvalidWindow, c.Method, c.Method.MinWindow(), MaxWindow, c.Window)
	}

	return nil
}
