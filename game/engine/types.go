package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Heading is a cardinal direction stored in degrees.
type Heading int

const (
	East  Heading = 0
	North Heading = 90
	West  Heading = 180
	South Heading = 270

	// Infinity marks an inexhaustible beeper pile or beeper bag.
	Infinity = -1

	DefaultWidth  = 10
	DefaultHeight = 10
	DefaultBlock  = 50
	DefaultDelay  = 250 * time.Millisecond
)

// NormalizeHeading maps any multiple of 90 degrees onto one of the four headings.
func NormalizeHeading(degrees int) (Heading, error) {
	d := ((degrees % 360) + 360) % 360
	if d%90 != 0 {
		return East, fmt.Errorf("%w: %d degrees", ErrInvalidHeading, degrees)
	}
	return Heading(d), nil
}

// ParseHeading accepts a heading name ("east", "n", ...) or a degree value.
func ParseHeading(s string) (Heading, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "east", "e":
		return East, nil
	case "north", "n":
		return North, nil
	case "west", "w":
		return West, nil
	case "south", "s":
		return South, nil
	}
	deg, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return East, fmt.Errorf("%w: %q", ErrInvalidHeading, s)
	}
	return NormalizeHeading(deg)
}

// Left returns the heading after a quarter turn counterclockwise
func (h Heading) Left() Heading {
	return Heading((int(h) + 90) % 360)
}

// Right returns the heading after a quarter turn clockwise
func (h Heading) Right() Heading {
	return Heading((int(h) + 270) % 360)
}

// Back returns the opposite heading
func (h Heading) Back() Heading {
	return Heading((int(h) + 180) % 360)
}

// Delta returns the unit step for this heading
func (h Heading) Delta() (dx, dy int) {
	switch h {
	case East:
		return 1, 0
	case North:
		return 0, 1
	case West:
		return -1, 0
	case South:
		return 0, -1
	}
	return 0, 0
}

func (h Heading) String() string {
	switch h {
	case East:
		return "east"
	case North:
		return "north"
	case West:
		return "west"
	case South:
		return "south"
	}
	return fmt.Sprintf("heading(%d)", int(h))
}

// Position represents x,y grid coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the neighbouring cell in the given heading
func (p Position) Step(h Heading) Position {
	dx, dy := h.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Options holds the construction-time settings of a World.
type Options struct {
	Width  int
	Height int
	// Block is the cell size in pixels used by renderers.
	Block int
	// Delay is the pause after every refresh.
	Delay time.Duration
	// Debug logs a state line after every robot action.
	Debug bool
	// Image selects the cosmetic robot style in renderers.
	Image bool
}

// DefaultOptions returns the settings of a classic 10x10 world
func DefaultOptions() Options {
	return Options{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Block:  DefaultBlock,
		Delay:  DefaultDelay,
	}
}

// ValidateOptions checks world settings after defaults have been applied
func ValidateOptions(opts Options) error {
	if opts.Width < 1 || opts.Height < 1 {
		return fmt.Errorf("options validation: width and height must be positive, got %dx%d", opts.Width, opts.Height)
	}
	if opts.Block < 1 {
		return fmt.Errorf("options validation: block must be positive, got %d", opts.Block)
	}
	if opts.Delay < 0 {
		return fmt.Errorf("options validation: delay must not be negative, got %v", opts.Delay)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Block == 0 {
		o.Block = DefaultBlock
	}
	return o
}
