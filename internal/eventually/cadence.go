package eventually

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Cadence is how long to poll and how often.
type Cadence struct {
	Timeout  time.Duration `yaml:"timeout"`
	Interval time.Duration `yaml:"interval"`
}

// DefaultCadence applies when the caller does not pick an operation class.
var DefaultCadence = Cadence{Timeout: 30 * time.Second, Interval: time.Second}

// Operation classes with their own cadence
const (
	// ClassDefault is the fallback class
	ClassDefault = "default"
	// ClassData covers fast in-memory server operations: reads after writes, renames
	ClassData = "data"
	// ClassStream covers live data arriving through stream updates and channels
	ClassStream = "stream"
	// ClassAnalysis covers results produced by PI Analysis Service
	ClassAnalysis = "analysis"
	// ClassDelivery covers notifications delivered to external endpoints
	ClassDelivery = "delivery"
)

func (c Cadence) normalize() Cadence {
	if c.Timeout <= 0 {
		c.Timeout = DefaultCadence.Timeout
	}
	if c.Interval <= 0 {
		c.Interval = DefaultCadence.Interval
	}
	return c
}

// Cadences maps operation classes to cadences.
type Cadences map[string]Cadence

//go:embed cadences.yaml
var defaultCadencesYAML []byte

var (
	defaultCadencesOnce sync.Once
	defaultCadences     Cadences
)

// LoadCadences decodes a cadence table and validates it.
func LoadCadences(r io.Reader) (Cadences, error) {
	var doc struct {
		Cadences Cadences `yaml:"cadences"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode cadences: %w", err)
	}
	if err := doc.Cadences.Validate(); err != nil {
		return nil, err
	}
	return doc.Cadences, nil
}

// Validate rejects non-positive durations and intervals that exceed their timeout.
func (c Cadences) Validate() error {
	if _, ok := c[ClassDefault]; !ok {
		return fmt.Errorf("cadence table has no %q class", ClassDefault)
	}
	for name, cad := range c {
		if cad.Timeout <= 0 || cad.Interval <= 0 {
			return fmt.Errorf("cadence %q: timeout and interval must be positive", name)
		}
		if cad.Interval > cad.Timeout {
			return fmt.Errorf("cadence %q: interval %s exceeds timeout %s", name, cad.Interval, cad.Timeout)
		}
	}
	return nil
}

// For returns the cadence of an operation class, falling back to the default class.
func (c Cadences) For(class string) Cadence {
	if cad, ok := c[class]; ok {
		return cad
	}
	if cad, ok := c[ClassDefault]; ok {
		return cad
	}
	return DefaultCadence
}

// DefaultCadences returns the embedded cadence table.
func DefaultCadences() Cadences {
	defaultCadencesOnce.Do(func() {
		c, err := LoadCadences(bytes.NewReader(defaultCadencesYAML))
		if err != nil {
			panic(fmt.Sprintf("embedded cadence table is invalid: %v", err))
		}
		defaultCadences = c
	})
	return defaultCadences
}

// For returns the embedded cadence of an operation class.
func For(class string) Cadence {
	return DefaultCadences().For(class)
}
