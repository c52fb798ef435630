package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wricardo/karel-grid/game/engine"
)

// TextRenderer prints the world as ASCII after every refresh
type TextRenderer struct {
	out   io.Writer
	clear bool
}

// NewTextRenderer creates a renderer writing to out. When clear is set every
// frame starts with an ANSI clear-screen sequence.
func NewTextRenderer(out io.Writer, clear bool) *TextRenderer {
	return &TextRenderer{out: out, clear: clear}
}

// Refresh implements engine.Observer
func (t *TextRenderer) Refresh(w *engine.World, ev engine.Event) {
	if t.clear {
		fmt.Fprint(t.out, "\033[H\033[2J")
	}
	if ev.Robot != nil {
		fmt.Fprintf(t.out, "[%s] %s\n", ev.Type, ev.Robot)
	} else {
		fmt.Fprintf(t.out, "[%s]\n", ev.Type)
	}
	fmt.Fprint(t.out, Text(w.Snapshot()))
}

// Text draws snap as rows of cells, north at the top. Robots show as an
// arrow for their heading ('@' when several share a cell), beeper piles as
// their count ('+' above nine, '*' when infinite). '|' and '-' mark walls.
func Text(snap engine.Snapshot) string {
	cells := make(map[engine.Position]byte)
	for _, p := range snap.Beepers {
		switch {
		case p.Count == engine.Infinity:
			cells[p.Pos] = '*'
		case p.Count > 9:
			cells[p.Pos] = '+'
		case p.Count > 0:
			cells[p.Pos] = byte('0' + p.Count)
		}
	}
	robots := make(map[engine.Position]int)
	for _, r := range snap.Robots {
		if !r.Alive {
			continue
		}
		robots[r.Pos]++
		cells[r.Pos] = arrow(r.Heading)
		if robots[r.Pos] > 1 {
			cells[r.Pos] = '@'
		}
	}
	walls := make(map[engine.Wall]bool, len(snap.Walls))
	for _, w := range snap.Walls {
		walls[w] = true
	}
	wall := func(a, b engine.Position) bool {
		return walls[engine.Wall{From: a, To: b}] || walls[engine.Wall{From: b, To: a}]
	}

	var sb strings.Builder
	for y := snap.Height; y >= 1; y-- {
		var row strings.Builder
		fmt.Fprintf(&row, "%2d ", y)
		for x := 1; x <= snap.Width; x++ {
			p := engine.Position{X: x, Y: y}
			c, ok := cells[p]
			if !ok {
				c = '.'
			}
			row.WriteByte(c)
			if wall(p, engine.Position{X: x + 1, Y: y}) {
				row.WriteByte('|')
			} else {
				row.WriteByte(' ')
			}
		}
		sb.WriteString(strings.TrimRight(row.String(), " "))
		sb.WriteByte('\n')

		if y == 1 {
			break
		}
		row.Reset()
		row.WriteString("   ")
		for x := 1; x <= snap.Width; x++ {
			if wall(engine.Position{X: x, Y: y - 1}, engine.Position{X: x, Y: y}) {
				row.WriteString("- ")
			} else {
				row.WriteString("  ")
			}
		}
		if line := strings.TrimRight(row.String(), " "); line != "" {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	sb.WriteString("  ")
	for x := 1; x <= snap.Width; x++ {
		sb.WriteByte(' ')
		s := strconv.Itoa(x)
		sb.WriteByte(s[len(s)-1])
	}
	sb.WriteByte('\n')
	return sb.String()
}

func arrow(h engine.Heading) byte {
	switch h {
	case engine.North:
		return '^'
	case engine.West:
		return '<'
	case engine.South:
		return 'v'
	}
	return '>'
}
