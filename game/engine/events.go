package engine

import "fmt"

// EventType names the state change that triggered a refresh
type EventType string

const (
	EventWorldReady     EventType = "world_ready"
	EventRobotCreated   EventType = "robot_created"
	EventRobotMoved     EventType = "robot_moved"
	EventRobotTurned    EventType = "robot_turned"
	EventBeeperPut      EventType = "beeper_put"
	EventBeeperPicked   EventType = "beeper_picked"
	EventRobotDestroyed EventType = "robot_destroyed"
)

// Event describes a completed state change. Robot is nil for world-level events.
type Event struct {
	Type  EventType   `json:"type"`
	Robot *RobotState `json:"robot,omitempty"`
	From  *Position   `json:"from,omitempty"`
}

// Observer is notified synchronously after every successful mutation.
type Observer interface {
	Refresh(w *World, ev Event)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(w *World, ev Event)

// Refresh calls f(w, ev)
func (f ObserverFunc) Refresh(w *World, ev Event) {
	f(w, ev)
}

// RobotState is an immutable copy of a robot's state
type RobotState struct {
	ID      int      `json:"id"`
	Pos     Position `json:"position"`
	Heading Heading  `json:"heading"`
	Facing  string   `json:"facing"`
	Beepers int      `json:"beepers"`
	Alive   bool     `json:"alive"`
}

func (s RobotState) String() string {
	bag := fmt.Sprintf("%d", s.Beepers)
	if s.Beepers == Infinity {
		bag = "infinite"
	}
	return fmt.Sprintf("Robot %d at (%d,%d) facing %s carrying %s beeper(s).",
		s.ID, s.Pos.X, s.Pos.Y, s.Heading, bag)
}

// Wall blocks movement between two axis-adjacent cells in both directions
type Wall struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// BeeperPile is the beeper count of one cell; Count is Infinity for inexhaustible piles
type BeeperPile struct {
	Pos      Position `json:"position"`
	Count    int      `json:"count"`
	Infinite bool     `json:"infinite,omitempty"`
}

// Snapshot is a deep copy of the world, ordered deterministically
type Snapshot struct {
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Block   int          `json:"block"`
	Image   bool         `json:"image,omitempty"`
	Walls   []Wall       `json:"walls"`
	Beepers []BeeperPile `json:"beepers"`
	Robots  []RobotState `json:"robots"`
}

// HasWall reports whether the snapshot records a wall between a and b
func (s *Snapshot) HasWall(a, b Position) bool {
	for _, w := range s.Walls {
		if (w.From == a && w.To == b) || (w.From == b && w.To == a) {
			return true
		}
	}
	return false
}
