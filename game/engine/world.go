package engine

import (
	"fmt"
	"log"
	"sort"
	"time"
)

// Board is the part of the world a robot acts on: crash checks, beeper
// mutation, registry mutation and the refresh trigger.
type Board interface {
	HasWall(x1, y1, x2, y2 int) bool
	BeeperCountAt(x, y int) int
	AddBeeper(x, y int)
	RemoveBeeper(x, y int) error
	RobotCountAt(x, y int) int

	// Register adds r to the registry at its position and returns its new id.
	Register(r *Robot) int
	Deregister(r *Robot)
	MoveRobot(id int, from, to Position)

	Refresh(ev Event)
}

// World owns walls, beeper piles and the robot registry
type World struct {
	opts Options

	walls    map[Wall]struct{}
	beepers  map[Position]int
	registry map[Position][]int
	robots   map[int]*Robot
	lastID   int

	observers []Observer
	logger    *log.Logger
	sleep     func(time.Duration)
}

var _ Board = (*World)(nil)

// NewWorld creates an empty world. Zero Width, Height and Block take their defaults.
func NewWorld(opts Options) (*World, error) {
	opts = opts.withDefaults()
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}

	return &World{
		opts:     opts,
		walls:    make(map[Wall]struct{}),
		beepers:  make(map[Position]int),
		registry: make(map[Position][]int),
		robots:   make(map[int]*Robot),
		logger:   log.Default(),
		sleep:    time.Sleep,
	}, nil
}

// Options returns the construction-time settings
func (w *World) Options() Options {
	return w.opts
}

// SetLogger replaces the logger used for debug lines
func (w *World) SetLogger(l *log.Logger) {
	if l != nil {
		w.logger = l
	}
}

// Subscribe registers an observer for refresh notifications
func (w *World) Subscribe(o Observer) {
	w.observers = append(w.observers, o)
}

// InBounds reports whether (x,y) lies inside the declared width and height.
// Bounds are advisory; nothing in the engine rejects cells outside them.
func (w *World) InBounds(x, y int) bool {
	return x >= 1 && x <= w.opts.Width && y >= 1 && y <= w.opts.Height
}

// HasWall reports whether moving between (x1,y1) and (x2,y2) crashes
func (w *World) HasWall(x1, y1, x2, y2 int) bool {
	if x1 == 0 || y1 == 0 || x2 == 0 || y2 == 0 {
		return true
	}
	_, ok := w.walls[wallKey(Position{x1, y1}, Position{x2, y2})]
	return ok
}

// AddWall records a wall run. A run along a column (x1 == x2) blocks movement
// from (x, y) to (x+1, y) for every y in the range; a run along a row blocks
// movement from (x, y) to (x, y+1). An endpoint of -1 collapses the run to the
// other endpoint, which is how world files describe single segments.
func (w *World) AddWall(x1, y1, x2, y2 int) error {
	if x1 != x2 && y1 != y2 {
		return fmt.Errorf("%w: (%d,%d)-(%d,%d) is not along a row or column", ErrInvalidWall, x1, y1, x2, y2)
	}

	if x1 == x2 {
		lo, hi := min(y1, y2), max(y1, y2)
		if lo == -1 {
			lo = hi
		}
		for k := lo; k <= hi; k++ {
			w.walls[wallKey(Position{x1, k}, Position{x1 + 1, k})] = struct{}{}
		}
		return nil
	}

	lo, hi := min(x1, x2), max(x1, x2)
	if lo == -1 {
		lo = hi
	}
	for k := lo; k <= hi; k++ {
		w.walls[wallKey(Position{k, y1}, Position{k, y1 + 1})] = struct{}{}
	}
	return nil
}

// wallKey orders the two cells so each wall has a single map key
func wallKey(a, b Position) Wall {
	if b.X < a.X || (b.X == a.X && b.Y < a.Y) {
		a, b = b, a
	}
	return Wall{From: a, To: b}
}

// BeeperCountAt returns the pile size at (x,y), Infinity, or 0
func (w *World) BeeperCountAt(x, y int) int {
	return w.beepers[Position{x, y}]
}

// AddBeeper adds one beeper to the pile at (x,y). Infinite piles stay infinite.
func (w *World) AddBeeper(x, y int) {
	p := Position{x, y}
	if w.beepers[p] == Infinity {
		return
	}
	w.beepers[p]++
}

// AddInfiniteBeepers turns the pile at (x,y) into an inexhaustible one
func (w *World) AddInfiniteBeepers(x, y int) {
	w.beepers[Position{x, y}] = Infinity
}

// RemoveBeeper takes one beeper from the pile at (x,y)
func (w *World) RemoveBeeper(x, y int) error {
	p := Position{x, y}
	switch n := w.beepers[p]; n {
	case Infinity:
		return nil
	case 0:
		return fmt.Errorf("%w: no beepers at %s", ErrInvalidOperation, p)
	case 1:
		delete(w.beepers, p)
	default:
		w.beepers[p] = n - 1
	}
	return nil
}

// RobotCountAt returns how many robots occupy (x,y)
func (w *World) RobotCountAt(x, y int) int {
	return len(w.registry[Position{x, y}])
}

// RobotsAt returns the ids of the robots at (x,y) in arrival order
func (w *World) RobotsAt(x, y int) []int {
	ids := w.registry[Position{x, y}]
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// Register implements Board. Ids come from the world's own counter and are never reused.
func (w *World) Register(r *Robot) int {
	w.lastID++
	id := w.lastID
	w.robots[id] = r
	p := r.Position()
	w.registry[p] = append(w.registry[p], id)
	return id
}

// Deregister implements Board
func (w *World) Deregister(r *Robot) {
	w.removeFromCell(r.ID(), r.Position())
	delete(w.robots, r.ID())
}

// MoveRobot relocates id from one registry cell to another. It does nothing if
// id is not registered at from.
func (w *World) MoveRobot(id int, from, to Position) {
	if !w.removeFromCell(id, from) {
		return
	}
	w.registry[to] = append(w.registry[to], id)
}

func (w *World) removeFromCell(id int, p Position) bool {
	ids := w.registry[p]
	for i, v := range ids {
		if v != id {
			continue
		}
		ids = append(ids[:i:i], ids[i+1:]...)
		if len(ids) == 0 {
			delete(w.registry, p)
		} else {
			w.registry[p] = ids
		}
		return true
	}
	return false
}

// Robot returns the live robot with the given id
func (w *World) Robot(id int) (*Robot, bool) {
	r, ok := w.robots[id]
	return r, ok
}

// Robots returns the live robots ordered by id
func (w *World) Robots() []*Robot {
	out := make([]*Robot, 0, len(w.robots))
	for _, r := range w.robots {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Refresh notifies observers of ev, writes the debug line and pauses for the
// configured delay.
func (w *World) Refresh(ev Event) {
	if w.opts.Debug && ev.Robot != nil && ev.Type == EventRobotDestroyed {
		w.logger.Printf("DESTROYING... %s", ev.Robot)
	}

	for _, o := range w.observers {
		o.Refresh(w, ev)
	}

	if w.opts.Debug && ev.Robot != nil && ev.Type != EventRobotDestroyed {
		w.logger.Print(ev.Robot.String())
	}

	if w.opts.Delay > 0 {
		w.sleep(w.opts.Delay)
	}
}

// Ready refreshes observers once walls and beepers are in place, before any
// robot exists.
func (w *World) Ready() {
	w.Refresh(Event{Type: EventWorldReady})
}

// Snapshot returns a deep copy of the world state
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Width:   w.opts.Width,
		Height:  w.opts.Height,
		Block:   w.opts.Block,
		Image:   w.opts.Image,
		Walls:   make([]Wall, 0, len(w.walls)),
		Beepers: make([]BeeperPile, 0, len(w.beepers)),
		Robots:  make([]RobotState, 0, len(w.robots)),
	}

	for wall := range w.walls {
		s.Walls = append(s.Walls, wall)
	}
	sort.Slice(s.Walls, func(i, j int) bool {
		a, b := s.Walls[i], s.Walls[j]
		if a.From != b.From {
			return less(a.From, b.From)
		}
		return less(a.To, b.To)
	})

	for p, n := range w.beepers {
		s.Beepers = append(s.Beepers, BeeperPile{Pos: p, Count: n, Infinite: n == Infinity})
	}
	sort.Slice(s.Beepers, func(i, j int) bool { return less(s.Beepers[i].Pos, s.Beepers[j].Pos) })

	for _, r := range w.Robots() {
		s.Robots = append(s.Robots, r.State())
	}
	return s
}

func less(a, b Position) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}
