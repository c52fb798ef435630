package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/karel-grid/game/engine"
)

// Extension is the file suffix of world descriptions
const Extension = ".wld"

var ErrWorldNotFound = errors.New("world file not found")

// WorldFile is a parsed world description
type WorldFile struct {
	Name       string
	Directives []*Directive
}

// Parse reads a world description. Lines whose first field is not a known
// directive are skipped.
func Parse(r io.Reader, name string) (*WorldFile, error) {
	wf := &WorldFile{Name: name}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !isDirective(line) {
			continue
		}

		d, err := directiveParser.ParseString(name, line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid directive %q: %w", name, lineNo, line, err)
		}
		d.Pos.Line = lineNo
		wf.Directives = append(wf.Directives, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read world file %s: %w", name, err)
	}

	return wf, nil
}

func isDirective(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case kwEastWest, kwNorthSouth, kwBeepers:
		return true
	}
	return false
}

// Apply replays the directives against w
func (wf *WorldFile) Apply(w *engine.World) error {
	for _, d := range wf.Directives {
		switch {
		case d.EastWest != nil:
			if err := w.AddWall(d.EastWest.X, d.EastWest.Y, -1, d.EastWest.Y); err != nil {
				return fmt.Errorf("%s:%d: %w", wf.Name, d.Pos.Line, err)
			}
		case d.NorthSouth != nil:
			if err := w.AddWall(d.NorthSouth.X, d.NorthSouth.Y, d.NorthSouth.X, -1); err != nil {
				return fmt.Errorf("%s:%d: %w", wf.Name, d.Pos.Line, err)
			}
		case d.Beepers != nil:
			b := d.Beepers
			if b.Count == engine.Infinity {
				w.AddInfiniteBeepers(b.X, b.Y)
				continue
			}
			for k := 0; k < b.Count; k++ {
				w.AddBeeper(b.X, b.Y)
			}
		}
	}
	return nil
}

// Resolve finds the file for a world name: <dir>/<name>.wld first, then the
// name taken as a literal path.
func Resolve(name, dir string) (string, error) {
	candidates := []string{}
	if dir != "" {
		candidates = append(candidates, filepath.Join(dir, name+Extension))
	}
	candidates = append(candidates, name)

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrWorldNotFound, name)
}

// ReadFile parses the world file at path
func ReadFile(path string) (*WorldFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrWorldNotFound, path)
		}
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), Extension)
	return Parse(bytes.NewReader(data), name)
}

// Load parses the world file at path and applies it to w
func Load(w *engine.World, path string) error {
	wf, err := ReadFile(path)
	if err != nil {
		return err
	}
	return wf.Apply(w)
}

// Write emits a world description reproducing the walls and beeper piles of snap
func Write(out io.Writer, snap engine.Snapshot) error {
	bw := bufio.NewWriter(out)

	for _, wall := range snap.Walls {
		a, b := wall.From, wall.To
		switch {
		case b.X == a.X+1 && b.Y == a.Y:
			fmt.Fprintf(bw, "%s %d %d\n", kwNorthSouth, a.X, a.Y)
		case b.Y == a.Y+1 && b.X == a.X:
			fmt.Fprintf(bw, "%s %d %d\n", kwEastWest, a.Y, a.X)
		}
	}

	for _, pile := range snap.Beepers {
		fmt.Fprintf(bw, "%s %d %d %d\n", kwBeepers, pile.Pos.Y, pile.Pos.X, pile.Count)
	}

	return bw.Flush()
}
