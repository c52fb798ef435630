package config

import (
	"fmt"
	"os"
	"time"

	"github.com/wricardo/karel-grid/game/engine"
	"gopkg.in/yaml.v3"
)

// Profile holds the construction-time options of a simulation
type Profile struct {
	Name   string  `yaml:"name"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Block  int     `yaml:"block"`
	Delay  float64 `yaml:"delay"` // seconds
	Debug  bool    `yaml:"debug"`
	Image  bool    `yaml:"image"`
	World  string  `yaml:"world,omitempty"`
}

// DefaultProfile mirrors engine.DefaultOptions with debug output enabled
func DefaultProfile() *Profile {
	return &Profile{
		Name:   "default",
		Width:  engine.DefaultWidth,
		Height: engine.DefaultHeight,
		Block:  engine.DefaultBlock,
		Delay:  engine.DefaultDelay.Seconds(),
		Debug:  true,
	}
}

// Options converts the profile to engine options
func (p *Profile) Options() engine.Options {
	return engine.Options{
		Width:  p.Width,
		Height: p.Height,
		Block:  p.Block,
		Delay:  time.Duration(p.Delay * float64(time.Second)),
		Debug:  p.Debug,
		Image:  p.Image,
	}
}

// ValidateProfile checks a profile for usable values. Zero sizes are allowed
// and take engine defaults.
func ValidateProfile(p *Profile) error {
	if p.Width < 0 || p.Height < 0 {
		return fmt.Errorf("profile validation: width and height must not be negative, got %dx%d", p.Width, p.Height)
	}
	if p.Block < 0 {
		return fmt.Errorf("profile validation: block must not be negative, got %d", p.Block)
	}
	if p.Delay < 0 {
		return fmt.Errorf("profile validation: delay must not be negative, got %v", p.Delay)
	}
	return nil
}

// LoadProfileFile reads and validates a YAML profile
func LoadProfileFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}

	if err := ValidateProfile(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	return &p, nil
}
