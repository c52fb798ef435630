// Command analyze prints quick, human-readable statistics about the world
// files in the worlds directory: dimensions, wall and beeper counts, how much
// of the grid a robot starting at (1,1) can reach, and dead-end cells.
//
// Usage:
//
//	analyze [world ...]
//
// With no arguments every world in KAREL_WORLDS_DIR (default "worlds") is
// analyzed, sized by the KAREL_PROFILE profile from KAREL_CONFIG_DIR.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/wricardo/karel-grid/game/config"
	"github.com/wricardo/karel-grid/game/engine"
	"github.com/wricardo/karel-grid/game/loader"
	"github.com/wricardo/karel-grid/validate"
)

func main() {
	env := config.LoadEnv()

	manager, err := config.NewManager(env.WorldsDir, env.ConfigDir)
	if err != nil {
		log.Fatalf("Failed to open worlds directory: %v", err)
	}

	profile, err := manager.LoadProfile(env.Profile)
	if err != nil {
		log.Printf("Warning: %v, using defaults", err)
		profile = manager.GetDefault()
	}
	opts := profile.Options()

	names := os.Args[1:]
	if len(names) == 0 {
		worlds, err := manager.ListWorlds()
		if err != nil {
			log.Fatalf("Failed to list worlds: %v", err)
		}
		for _, info := range worlds {
			names = append(names, info.Name)
		}
	}

	for _, name := range names {
		fmt.Printf("\n=== Analyzing %s ===\n", name)
		path, err := loader.Resolve(name, manager.WorldsDir())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		if err := analyzeWorld(os.Stdout, path, opts); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func analyzeWorld(out io.Writer, path string, opts engine.Options) error {
	wf, err := loader.ReadFile(path)
	if err != nil {
		return err
	}

	opts.Delay = 0
	w, err := engine.NewWorld(opts)
	if err != nil {
		return err
	}
	if err := wf.Apply(w); err != nil {
		return err
	}

	res := validate.World(wf, opts)
	s := res.Stats

	fmt.Fprintf(out, "File: %s\n", filepath.Base(path))
	fmt.Fprintf(out, "Grid Size: %d x %d\n", w.Options().Width, w.Options().Height)
	fmt.Fprintf(out, "Walls: %d\n", s.Walls)
	fmt.Fprintf(out, "Beeper Piles: %d (%d infinite, %d beepers in finite piles)\n", s.Piles, s.InfinitePiles, s.Beepers)
	fmt.Fprintf(out, "Reachable Cells: %d/%d\n", s.Reachable, s.Cells)

	reachable := validate.Reachable(w, engine.Position{X: 1, Y: 1})
	deadEnds := findDeadEnds(w, reachable)
	if len(deadEnds) > 0 {
		fmt.Fprintf(out, "Dead Ends: %d\n", len(deadEnds))
		for i, p := range deadEnds {
			if i < 5 {
				fmt.Fprintf(out, "   Dead end: %s\n", p)
			}
		}
		if len(deadEnds) > 5 {
			fmt.Fprintf(out, "   ... and %d more\n", len(deadEnds)-5)
		}
	} else {
		fmt.Fprintf(out, "Dead Ends: 0\n")
	}

	if res.Valid {
		fmt.Fprintf(out, "✅ Every beeper pile is reachable from (1,1)\n")
	} else {
		fmt.Fprintf(out, "⚠️  %d problems found:\n", len(res.Errors))
		for _, e := range res.Errors {
			fmt.Fprintf(out, "   %s\n", e)
		}
	}
	return nil
}

// findDeadEnds lists reachable cells with exactly one open side, in row-major
// order from the top-left.
func findDeadEnds(w *engine.World, reachable map[engine.Position]bool) []engine.Position {
	var deadEnds []engine.Position
	opts := w.Options()
	for y := opts.Height; y >= 1; y-- {
		for x := 1; x <= opts.Width; x++ {
			p := engine.Position{X: x, Y: y}
			if !reachable[p] {
				continue
			}
			open := 0
			for _, h := range []engine.Heading{engine.East, engine.North, engine.West, engine.South} {
				dx, dy := h.Delta()
				if w.InBounds(x+dx, y+dy) && !w.HasWall(x, y, x+dx, y+dy) {
					open++
				}
			}
			if open == 1 {
				deadEnds = append(deadEnds, p)
			}
		}
	}
	return deadEnds
}
