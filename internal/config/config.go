// Package config handles drydock configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/drydock/pkg/formats"
	"github.com/Faultbox/drydock/pkg/math"
	"github.com/Faultbox/drydock/pkg/mesh"
)

// ErrInvalidConfig is wrapped by every error returned from Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all drydock settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	Formats FormatsConfig `yaml:"formats"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshConfig holds tolerances used by geometry operations.
type MeshConfig struct {
	Tolerances        mesh.Tolerances `yaml:"tolerances"`
	CoalesceTolerance float32         `yaml:"coalesce_tolerance"`
	CenterMethod      string          `yaml:"center_method"` // "mean" or "bounds"
}

// FormatsConfig holds codec settings.
type FormatsConfig struct {
	MaxVertsPerFace int    `yaml:"max_verts_per_face"`
	Oversize        string `yaml:"oversize"` // "reject", "truncate" or "split"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			Tolerances:        mesh.DefaultTolerances(),
			CoalesceTolerance: math.ComparisonMargin,
			CenterMethod:      mesh.CenterBounds.String(),
		},
		Formats: FormatsConfig{
			MaxVertsPerFace: mesh.MaxVertsPerFace,
			Oversize:        formats.OversizeSplit.String(),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if c.Mesh.Tolerances.Coplanarity < 0 || c.Mesh.Tolerances.Convexity < 0 {
		return fmt.Errorf("%w: tolerances must not be negative", ErrInvalidConfig)
	}
	if c.Mesh.CoalesceTolerance < 0 {
		return fmt.Errorf("%w: coalesce tolerance must not be negative", ErrInvalidConfig)
	}
	if _, err := c.CenterMethod(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Formats.MaxVertsPerFace < 3 || c.Formats.MaxVertsPerFace > mesh.MaxVertsPerFace {
		return fmt.Errorf("%w: max_verts_per_face must be between 3 and %d, got %d",
			ErrInvalidConfig, mesh.MaxVertsPerFace, c.Formats.MaxVertsPerFace)
	}
	if _, err := formats.ParseOversizePolicy(c.Formats.Oversize); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// CenterMethod returns the configured recentring method.
func (c *Config) CenterMethod() (mesh.CenterMethod, error) {
	return mesh.ParseCenterMethod(c.Mesh.CenterMethod)
}

// ReaderOptions converts the codec settings into reader options. name is
// used for formats that carry no model name.
func (c *Config) ReaderOptions(name string) (formats.Options, error) {
	policy, err := formats.ParseOversizePolicy(c.Formats.Oversize)
	if err != nil {
		return formats.Options{}, err
	}
	return formats.Options{
		Name:            name,
		MaxVertsPerFace: c.Formats.MaxVertsPerFace,
		Oversize:        policy,
	}, nil
}
