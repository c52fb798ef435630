package render

import (
	"math"

	"github.com/wricardo/karel-grid/game/engine"
)

// Point is a pixel coordinate, y growing downwards
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Canvas holds the pixel geometry of a world
type Canvas struct {
	Width  int `json:"width"`  // cells
	Height int `json:"height"` // cells
	Block  int `json:"block"`
	M      int `json:"m"` // pixel width
	N      int `json:"n"` // pixel height
}

// NewCanvas computes the geometry for a width x height world
func NewCanvas(width, height, block int) Canvas {
	return Canvas{
		Width:  width,
		Height: height,
		Block:  block,
		M:      block * (width + 3),
		N:      block * (height + 3),
	}
}

// PixelX returns the horizontal pixel of the centre of column x
func (c Canvas) PixelX(x int) float64 {
	return float64(c.Block + x*c.Block)
}

// PixelY returns the vertical pixel of the centre of row y
func (c Canvas) PixelY(y int) float64 {
	return float64(c.N - (c.Block + y*c.Block))
}

// Center returns the pixel centre of cell (x, y)
func (c Canvas) Center(x, y int) Point {
	return Point{X: c.PixelX(x), Y: c.PixelY(y)}
}

// BeeperRadius is the radius of a beeper marker
func (c Canvas) BeeperRadius() float64 {
	return float64(c.Block) / 3
}

// RobotTriangle returns the four vertices of a robot glyph at (x, y) facing
// degrees: the tip, one wing, the notch of the tail and the other wing.
func (c Canvas) RobotTriangle(x, y, degrees int) []Point {
	t := float64(c.Block) / 2
	center := c.Center(x, y)
	at := func(r float64, deg int) Point {
		rad := float64(deg) * math.Pi / 180
		return Point{
			X: round(center.X + r*math.Cos(rad)),
			Y: round(center.Y - r*math.Sin(rad)),
		}
	}

	return []Point{
		at(math.Sqrt(3)*t/2, degrees),
		at(t, degrees+120),
		at(t/4, degrees+180),
		at(t, degrees-120),
	}
}

// WallSegment returns the line drawn between two adjacent cells. The segment
// lies on the shared border of the cells, stretched by one pixel at each end.
func (c Canvas) WallSegment(from, to engine.Position) (Point, Point) {
	t := float64(c.Block)
	half := t / 2
	if to.X != from.X {
		// cells side by side: vertical segment east of the western cell
		x := min(from.X, to.X)
		px := c.PixelX(x) + half
		py := c.PixelY(from.Y)
		return Point{X: px, Y: py + half + 1}, Point{X: px, Y: py - half - 1}
	}
	// cells stacked: horizontal segment north of the southern cell
	y := min(from.Y, to.Y)
	px := c.PixelX(from.X)
	py := c.PixelY(y) - half
	return Point{X: px - half - 1, Y: py}, Point{X: px + half + 1, Y: py}
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}
