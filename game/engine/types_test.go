package engine

import (
	"errors"
	"testing"
)

func TestHeadingTurns(t *testing.T) {
	tests := []struct {
		heading Heading
		left    Heading
		right   Heading
		back    Heading
	}{
		{East, North, South, West},
		{North, West, East, South},
		{West, South, North, East},
		{South, East, West, North},
	}

	for _, tt := range tests {
		t.Run(tt.heading.String(), func(t *testing.T) {
			if got := tt.heading.Left(); got != tt.left {
				t.Errorf("Left() = %v, want %v", got, tt.left)
			}
			if got := tt.heading.Right(); got != tt.right {
				t.Errorf("Right() = %v, want %v", got, tt.right)
			}
			if got := tt.heading.Back(); got != tt.back {
				t.Errorf("Back() = %v, want %v", got, tt.back)
			}
		})
	}
}

func TestHeadingDelta(t *testing.T) {
	tests := []struct {
		heading Heading
		dx, dy  int
	}{
		{East, 1, 0},
		{North, 0, 1},
		{West, -1, 0},
		{South, 0, -1},
	}

	for _, tt := range tests {
		dx, dy := tt.heading.Delta()
		if dx != tt.dx || dy != tt.dy {
			t.Errorf("%v.Delta() = (%d,%d), want (%d,%d)", tt.heading, dx, dy, tt.dx, tt.dy)
		}
	}
}

func TestNormalizeHeading(t *testing.T) {
	tests := []struct {
		degrees int
		want    Heading
		wantErr bool
	}{
		{0, East, false},
		{90, North, false},
		{360, East, false},
		{450, North, false},
		{-90, South, false},
		{-180, West, false},
		{45, East, true},
	}

	for _, tt := range tests {
		got, err := NormalizeHeading(tt.degrees)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidHeading) {
				t.Errorf("NormalizeHeading(%d) error = %v, want ErrInvalidHeading", tt.degrees, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeHeading(%d) unexpected error: %v", tt.degrees, err)
		}
		if got != tt.want {
			t.Errorf("NormalizeHeading(%d) = %v, want %v", tt.degrees, got, tt.want)
		}
	}
}

func TestParseHeading(t *testing.T) {
	tests := map[string]Heading{
		"east":  East,
		"N":     North,
		" west": West,
		"s":     South,
		"270":   South,
	}
	for input, want := range tests {
		got, err := ParseHeading(input)
		if err != nil {
			t.Errorf("ParseHeading(%q) unexpected error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseHeading(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := ParseHeading("up"); !errors.Is(err, ErrInvalidHeading) {
		t.Errorf("ParseHeading(up) error = %v, want ErrInvalidHeading", err)
	}
}

func TestValidateOptions(t *testing.T) {
	if err := ValidateOptions(DefaultOptions()); err != nil {
		t.Errorf("default options should be valid: %v", err)
	}

	bad := []Options{
		{Width: 0, Height: 5, Block: 50},
		{Width: 5, Height: -1, Block: 50},
		{Width: 5, Height: 5, Block: 0},
		{Width: 5, Height: 5, Block: 50, Delay: -1},
	}
	for i, opts := range bad {
		if err := ValidateOptions(opts); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, opts)
		}
	}
}
