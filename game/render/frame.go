package render

import (
	"strconv"

	"github.com/wricardo/karel-grid/game/engine"
)

// Glyph styles for robots
const (
	StyleTriangle = "triangle"
	StyleImage    = "image"
)

// Line is a straight stroke
type Line struct {
	From  Point  `json:"from"`
	To    Point  `json:"to"`
	Color string `json:"color"`
	Width int    `json:"width"`
}

// Label is text centred on a point
type Label struct {
	At    Point  `json:"at"`
	Text  string `json:"text"`
	Color string `json:"color"`
	Size  int    `json:"size"`
}

// BeeperMarker is a filled disc with the pile count written on it
type BeeperMarker struct {
	Cell   engine.Position `json:"cell"`
	Center Point           `json:"center"`
	Radius float64         `json:"radius"`
	Label  string          `json:"label"`
}

// RobotGlyph is the polygon drawn for one robot
type RobotGlyph struct {
	ID      int             `json:"id"`
	Cell    engine.Position `json:"cell"`
	Heading engine.Heading  `json:"heading"`
	Style   string          `json:"style"`
	Points  []Point         `json:"points"`
	Color   string          `json:"color"`
}

// Frame is everything needed to draw one refresh of a world
type Frame struct {
	Canvas  Canvas         `json:"canvas"`
	Axes    []Line         `json:"axes"`
	Ticks   []Label        `json:"ticks"`
	Walls   []Line         `json:"walls"`
	Beepers []BeeperMarker `json:"beepers"`
	Robots  []RobotGlyph   `json:"robots"`
}

// BeeperLabel is the text written on a pile of count beepers
func BeeperLabel(count int) string {
	if count == engine.Infinity {
		return "∞"
	}
	return strconv.Itoa(count)
}

// BuildFrame converts a snapshot to drawing primitives
func BuildFrame(snap engine.Snapshot) Frame {
	c := NewCanvas(snap.Width, snap.Height, snap.Block)
	f := Frame{
		Canvas:  c,
		Walls:   make([]Line, 0, len(snap.Walls)),
		Beepers: make([]BeeperMarker, 0, len(snap.Beepers)),
		Robots:  make([]RobotGlyph, 0, len(snap.Robots)),
	}
	f.Axes, f.Ticks = axes(c)

	for _, w := range snap.Walls {
		from, to := c.WallSegment(w.From, w.To)
		f.Walls = append(f.Walls, Line{From: from, To: to, Color: "black", Width: 3})
	}

	for _, p := range snap.Beepers {
		if p.Count == 0 {
			continue
		}
		f.Beepers = append(f.Beepers, BeeperMarker{
			Cell:   p.Pos,
			Center: c.Center(p.Pos.X, p.Pos.Y),
			Radius: c.BeeperRadius(),
			Label:  BeeperLabel(p.Count),
		})
	}

	style := StyleTriangle
	if snap.Image {
		style = StyleImage
	}
	for _, r := range snap.Robots {
		if !r.Alive {
			continue
		}
		f.Robots = append(f.Robots, RobotGlyph{
			ID:      r.ID,
			Cell:    r.Pos,
			Heading: r.Heading,
			Style:   style,
			Points:  c.RobotTriangle(r.Pos.X, r.Pos.Y, int(r.Heading)),
			Color:   "blue",
		})
	}
	return f
}

// axes draws a red line through every column and row with its number, then
// the two black borders along the bottom and left edges.
func axes(c Canvas) ([]Line, []Label) {
	t := float64(c.Block)
	a := t + t/2
	right := float64(c.M) - t/2
	bottom := float64(c.N) - t/2
	size := tickSize(c.Block)

	lines := make([]Line, 0, c.Width+c.Height+2)
	ticks := make([]Label, 0, c.Width+c.Height)
	for x := 1; x <= c.Width; x++ {
		k := c.PixelX(x)
		lines = append(lines, Line{From: Point{k, bottom}, To: Point{k, a}, Color: "red", Width: 1})
		ticks = append(ticks, Label{At: Point{k, bottom + t/2}, Text: strconv.Itoa(x), Color: "black", Size: size})
	}
	for y := 1; y <= c.Height; y++ {
		k := c.PixelY(y)
		lines = append(lines, Line{From: Point{right, k}, To: Point{a, k}, Color: "red", Width: 1})
		ticks = append(ticks, Label{At: Point{a - t/2, k}, Text: strconv.Itoa(y), Color: "black", Size: size})
	}

	lines = append(lines,
		Line{From: Point{a, bottom}, To: Point{right, bottom}, Color: "black", Width: 3},
		Line{From: Point{a, a}, To: Point{a, bottom}, Color: "black", Width: 3},
	)
	return lines, ticks
}

// tickSize is the font size of axis numbers, capped at 15 pixels
func tickSize(block int) int {
	return min(block*2/3, 15)
}
