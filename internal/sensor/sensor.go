// Package sensor provides the process measurement (temperature) source read
// by the sampling loop.
package sensor

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Source reads the process measurement.
type Source interface {
	// Read returns the current measurement in engineering units.
	Read() (float32, error)

	// Close releases resources.
	Close() error
}

// DefaultPath is the Raspberry Pi SoC thermal zone. Real installations point
// this at a hwmon temp*_input for the thermocouple amplifier.
const DefaultPath = "/sys/class/thermal/thermal_zone0/temp"

// MilliScale converts sysfs milli-degree integers to degrees.
const MilliScale = 0.001

// FileSource reads an integer from a sysfs-style file on every Read and
// multiplies it by Scale.
type FileSource struct {
	Path  string
	Scale float64
}

// NewFileSource creates a FileSource. A zero scale means MilliScale.
func NewFileSource(path string, scale float64) *FileSource {
	if scale == 0 {
		scale = MilliScale
	}
	return &FileSource{Path: path, Scale: scale}
}

// Read reads and scales the current value.
func (s *FileSource) Read() (float32, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return 0, fmt.Errorf("read sensor: %w", err)
	}
	n, err := parseInt(string(b))
	if err != nil {
		return 0, err
	}
	return float32(float64(n) * s.Scale), nil
}

// Close is a no-op; the file is opened per read.
func (s *FileSource) Close() error {
	return nil
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("sensor value empty")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse sensor value %q: %w", s, err)
	}
	return n, nil
}
