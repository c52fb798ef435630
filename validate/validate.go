// Package validate checks world description files against the size of the
// world they will be loaded into. It reports:
//   - directives that do not parse
//   - walls and beeper piles placed outside the world
//   - beeper counts below the infinite marker
//   - duplicate wall segments
//   - beeper piles a robot starting at (1,1) can never reach
package validate

import (
	"fmt"
	"path/filepath"

	"github.com/wricardo/karel-grid/game/engine"
	"github.com/wricardo/karel-grid/game/loader"
)

// Stats summarizes what a world file builds
type Stats struct {
	Walls         int `json:"walls"`
	Piles         int `json:"piles"`
	InfinitePiles int `json:"infinite_piles"`
	Beepers       int `json:"beepers"` // finite beepers only
	Cells         int `json:"cells"`
	Reachable     int `json:"reachable"`
}

// Result captures the outcome of validating a single file.
// Errors make the file invalid; Info holds notes that do not.
type Result struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
	Info   []string `json:"info"`
	Stats  Stats    `json:"stats"`
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) note(format string, args ...interface{}) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// File reads and validates the world file at path
func File(path string, opts engine.Options) Result {
	wf, err := loader.ReadFile(path)
	if err != nil {
		return Result{
			File:   filepath.Base(path),
			Valid:  false,
			Errors: []string{err.Error()},
		}
	}
	res := World(wf, opts)
	res.File = filepath.Base(path)
	return res
}

// World validates a parsed world file for a world of the given options
func World(wf *loader.WorldFile, opts engine.Options) Result {
	result := Result{
		File:   wf.Name + loader.Extension,
		Valid:  true,
		Errors: []string{},
		Info:   []string{},
	}

	opts.Delay = 0
	opts.Debug = false
	w, err := engine.NewWorld(opts)
	if err != nil {
		result.fail("Invalid world options: %v", err)
		return result
	}
	width, height := w.Options().Width, w.Options().Height

	inside := func(x, y int) bool {
		return x >= 1 && x <= width && y >= 1 && y <= height
	}

	seen := make(map[engine.Wall]int)
	for _, d := range wf.Directives {
		line := d.Pos.Line
		switch {
		case d.EastWest != nil:
			x, y := d.EastWest.X, d.EastWest.Y
			if !inside(x, y) {
				result.fail("Line %d: wall north of (%d,%d) is outside the %dx%d world", line, x, y, width, height)
			}
			checkDuplicate(&result, seen, engine.Wall{From: engine.Position{X: x, Y: y}, To: engine.Position{X: x, Y: y + 1}}, line)
		case d.NorthSouth != nil:
			x, y := d.NorthSouth.X, d.NorthSouth.Y
			if !inside(x, y) {
				result.fail("Line %d: wall east of (%d,%d) is outside the %dx%d world", line, x, y, width, height)
			}
			checkDuplicate(&result, seen, engine.Wall{From: engine.Position{X: x, Y: y}, To: engine.Position{X: x + 1, Y: y}}, line)
		case d.Beepers != nil:
			b := d.Beepers
			if !inside(b.X, b.Y) {
				result.fail("Line %d: beepers at (%d,%d) are outside the %dx%d world", line, b.X, b.Y, width, height)
			}
			if b.Count < engine.Infinity {
				result.fail("Line %d: beeper count %d is invalid (use -1 for an infinite pile)", line, b.Count)
			} else if b.Count == 0 {
				result.note("Line %d: empty beeper pile at (%d,%d) has no effect", line, b.X, b.Y)
			}
		}
	}

	if err := wf.Apply(w); err != nil {
		result.fail("Failed to apply: %v", err)
		return result
	}

	snap := w.Snapshot()
	result.Stats = statsOf(snap)

	reachable := Reachable(w, engine.Position{X: 1, Y: 1})
	result.Stats.Reachable = len(reachable)

	unreachable := []string{}
	for _, p := range snap.Beepers {
		if inside(p.Pos.X, p.Pos.Y) && !reachable[p.Pos] {
			unreachable = append(unreachable, fmt.Sprintf("Beepers at %s", p.Pos))
		}
	}
	if len(unreachable) > 0 {
		result.fail("Connectivity failure: %d/%d beeper piles unreachable from (1,1)", len(unreachable), len(snap.Beepers))
		for _, u := range unreachable {
			result.Errors = append(result.Errors, "Unreachable: "+u)
		}
	} else if len(snap.Beepers) > 0 {
		result.note("Connectivity: all %d beeper piles reachable from (1,1)", len(snap.Beepers))
	}

	return result
}

func checkDuplicate(result *Result, seen map[engine.Wall]int, wall engine.Wall, line int) {
	if first, ok := seen[wall]; ok {
		result.note("Line %d: wall %s-%s repeats line %d", line, wall.From, wall.To, first)
		return
	}
	seen[wall] = line
}

func statsOf(snap engine.Snapshot) Stats {
	s := Stats{
		Walls: len(snap.Walls),
		Piles: len(snap.Beepers),
		Cells: snap.Width * snap.Height,
	}
	for _, p := range snap.Beepers {
		if p.Count == engine.Infinity {
			s.InfinitePiles++
			continue
		}
		s.Beepers += p.Count
	}
	return s
}

// Reachable flood-fills the cells of w a robot at start can walk to, staying
// inside the advisory width and height.
func Reachable(w *engine.World, start engine.Position) map[engine.Position]bool {
	visited := make(map[engine.Position]bool)
	if !w.InBounds(start.X, start.Y) {
		return visited
	}

	queue := []engine.Position{start}
	visited[start] = true
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, h := range []engine.Heading{engine.East, engine.North, engine.West, engine.South} {
			next := current.Step(h)
			if visited[next] || !w.InBounds(next.X, next.Y) {
				continue
			}
			if w.HasWall(current.X, current.Y, next.X, next.Y) {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return visited
}
