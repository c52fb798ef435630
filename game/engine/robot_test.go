package engine

import (
	"errors"
	"testing"
)

func newTestRobot(t *testing.T, w *World, x, y int, h Heading, beepers int) *Robot {
	t.Helper()
	r, err := NewRobot(w, x, y, h, beepers)
	if err != nil {
		t.Fatalf("NewRobot failed: %v", err)
	}
	return r
}

func TestNewRobot(t *testing.T) {
	w := newTestWorld(t)

	r, err := NewDefaultRobot(w)
	if err != nil {
		t.Fatalf("NewDefaultRobot failed: %v", err)
	}
	if r.Position() != (Position{1, 1}) || r.Heading() != East || r.Beepers() != 0 || !r.Alive() {
		t.Errorf("unexpected default robot: %s", r)
	}

	wrapped := newTestRobot(t, w, 2, 2, Heading(-90), 0)
	if wrapped.Heading() != South {
		t.Errorf("heading -90 should normalize to south, got %v", wrapped.Heading())
	}

	if _, err := NewRobot(w, 1, 1, Heading(30), 0); !errors.Is(err, ErrInvalidHeading) {
		t.Errorf("expected ErrInvalidHeading, got %v", err)
	}
	if _, err := NewRobot(w, 1, 1, East, -5); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("expected ErrInvalidOperation for negative bag, got %v", err)
	}
	if _, err := NewRobot(nil, 1, 1, East, 0); err == nil {
		t.Error("expected error for nil board")
	}
}

func TestTurnLeftCycle(t *testing.T) {
	w := newTestWorld(t)
	for _, start := range []Heading{East, North, West, South} {
		r := newTestRobot(t, w, 1, 1, start, 0)
		for i := 0; i < 4; i++ {
			if err := r.TurnLeft(); err != nil {
				t.Fatalf("TurnLeft failed: %v", err)
			}
		}
		if r.Heading() != start {
			t.Errorf("after four turns heading = %v, want %v", r.Heading(), start)
		}
	}
}

func TestMoveScenario(t *testing.T) {
	w := newTestWorld(t)
	r := newTestRobot(t, w, 1, 1, East, 0)

	for i := 0; i < 3; i++ {
		if err := r.Move(); err != nil {
			t.Fatalf("move %d failed: %v", i+1, err)
		}
	}
	if r.Position() != (Position{4, 1}) {
		t.Fatalf("position = %v, want (4,1)", r.Position())
	}

	if err := r.TurnLeft(); err != nil {
		t.Fatalf("TurnLeft failed: %v", err)
	}
	if north, _ := r.FacingNorth(); !north {
		t.Fatalf("expected to face north, heading %v", r.Heading())
	}

	if err := r.Move(); err != nil {
		t.Fatalf("move north failed: %v", err)
	}
	if r.Position() != (Position{4, 2}) {
		t.Errorf("position = %v, want (4,2)", r.Position())
	}
	if w.RobotCountAt(4, 2) != 1 || w.RobotCountAt(1, 1) != 0 {
		t.Error("registry does not follow the robot")
	}
}

func TestWallScenario(t *testing.T) {
	w := newTestWorld(t)
	if err := w.AddWall(2, 1, 2, -1); err != nil {
		t.Fatalf("AddWall failed: %v", err)
	}
	r := newTestRobot(t, w, 2, 1, East, 0)

	clear, err := r.FrontIsClear()
	if err != nil {
		t.Fatalf("FrontIsClear failed: %v", err)
	}
	if clear {
		t.Fatal("front should be blocked by the wall")
	}

	err = r.Move()
	if !errors.Is(err, ErrBlockedByWall) {
		t.Fatalf("expected ErrBlockedByWall, got %v", err)
	}
	if r.Position() != (Position{2, 1}) {
		t.Errorf("position changed to %v after crash", r.Position())
	}
	if w.RobotCountAt(2, 1) != 1 || w.RobotCountAt(3, 1) != 0 {
		t.Error("registry changed after crash")
	}
}

func TestFrontIsClearAgreesWithMove(t *testing.T) {
	w := newTestWorld(t)
	_ = w.AddWall(3, 3, 3, -1)
	_ = w.AddWall(2, 4, -1, 4)

	starts := []struct {
		x, y int
		h    Heading
	}{
		{1, 1, West}, {1, 1, South}, {1, 1, East}, {3, 3, East},
		{4, 3, West}, {2, 4, North}, {2, 5, South}, {5, 5, North},
	}

	for _, s := range starts {
		r := newTestRobot(t, w, s.x, s.y, s.h, 0)
		clear, err := r.FrontIsClear()
		if err != nil {
			t.Fatalf("FrontIsClear failed: %v", err)
		}

		before := r.Position()
		err = r.Move()
		switch {
		case clear && err != nil:
			t.Errorf("(%d,%d) %v: front clear but Move failed: %v", s.x, s.y, s.h, err)
		case !clear && !errors.Is(err, ErrBlockedByWall):
			t.Errorf("(%d,%d) %v: front blocked but Move returned %v", s.x, s.y, s.h, err)
		case !clear && r.Position() != before:
			t.Errorf("(%d,%d) %v: position changed after blocked move", s.x, s.y, s.h)
		}
	}
}

func TestRelativeSensors(t *testing.T) {
	w := newTestWorld(t)
	// robot at (1,1) facing north: left is west edge, back is south edge
	r := newTestRobot(t, w, 1, 1, North, 0)

	tests := []struct {
		name  string
		sense func() (bool, error)
		want  bool
	}{
		{"front", r.FrontIsClear, true},
		{"left", r.LeftIsClear, false},
		{"right", r.RightIsClear, true},
		{"back", r.BackIsClear, false},
		{"facing north", r.FacingNorth, true},
		{"facing south", r.FacingSouth, false},
		{"facing east", r.FacingEast, false},
		{"facing west", r.FacingWest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sense()
			if err != nil {
				t.Fatalf("sensor failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPutThenPickRestoresState(t *testing.T) {
	w := newTestWorld(t)
	w.AddBeeper(3, 3)
	r := newTestRobot(t, w, 3, 3, East, 2)

	if err := r.PutBeeper(); err != nil {
		t.Fatalf("PutBeeper failed: %v", err)
	}
	if r.Beepers() != 1 || w.BeeperCountAt(3, 3) != 2 {
		t.Errorf("after put: bag %d pile %d", r.Beepers(), w.BeeperCountAt(3, 3))
	}
	if err := r.PickBeeper(); err != nil {
		t.Fatalf("PickBeeper failed: %v", err)
	}
	if r.Beepers() != 2 || w.BeeperCountAt(3, 3) != 1 {
		t.Errorf("after pick: bag %d pile %d, want 2 and 1", r.Beepers(), w.BeeperCountAt(3, 3))
	}
}

func TestPutBeeperEmptyBag(t *testing.T) {
	w := newTestWorld(t)
	r := newTestRobot(t, w, 1, 1, East, 0)

	if has, _ := r.AnyBeepersInBag(); has {
		t.Error("empty bag reported beepers")
	}
	err := r.PutBeeper()
	if !errors.Is(err, ErrEmptyBeeperBag) {
		t.Fatalf("expected ErrEmptyBeeperBag, got %v", err)
	}
	if w.BeeperCountAt(1, 1) != 0 || r.Beepers() != 0 {
		t.Error("failed put changed state")
	}
}

func TestPickBeeperScenario(t *testing.T) {
	w := newTestWorld(t)
	for i := 0; i < 3; i++ {
		w.AddBeeper(5, 5)
	}
	r := newTestRobot(t, w, 5, 5, East, 0)

	if next, _ := r.NextToABeeper(); !next {
		t.Fatal("robot should be next to a beeper")
	}

	if err := r.PickBeeper(); err != nil {
		t.Fatalf("PickBeeper failed: %v", err)
	}
	if r.Beepers() != 1 || w.BeeperCountAt(5, 5) != 2 {
		t.Fatalf("bag %d pile %d, want 1 and 2", r.Beepers(), w.BeeperCountAt(5, 5))
	}

	for i := 0; i < 2; i++ {
		if err := r.PickBeeper(); err != nil {
			t.Fatalf("PickBeeper %d failed: %v", i+2, err)
		}
	}
	if w.BeeperCountAt(5, 5) != 0 {
		t.Fatalf("pile = %d, want 0", w.BeeperCountAt(5, 5))
	}

	err := r.PickBeeper()
	if !errors.Is(err, ErrNoBeeperHere) {
		t.Fatalf("expected ErrNoBeeperHere, got %v", err)
	}
	if r.Beepers() != 3 {
		t.Errorf("failed pick changed bag to %d", r.Beepers())
	}
}

func TestInfiniteBag(t *testing.T) {
	w := newTestWorld(t)
	w.AddInfiniteBeepers(2, 1)
	r := newTestRobot(t, w, 2, 1, East, Infinity)

	for i := 0; i < 10; i++ {
		if err := r.PutBeeper(); err != nil {
			t.Fatalf("PutBeeper failed: %v", err)
		}
		if err := r.PickBeeper(); err != nil {
			t.Fatalf("PickBeeper failed: %v", err)
		}
		if err := r.PickBeeper(); err != nil {
			t.Fatalf("PickBeeper failed: %v", err)
		}
	}

	if r.Beepers() != Infinity {
		t.Errorf("infinite bag changed to %d", r.Beepers())
	}
	if w.BeeperCountAt(2, 1) != Infinity {
		t.Errorf("infinite pile changed to %d", w.BeeperCountAt(2, 1))
	}
	if has, _ := r.AnyBeepersInBag(); !has {
		t.Error("infinite bag should always have beepers")
	}
}

func TestNextToARobot(t *testing.T) {
	w := newTestWorld(t)
	a := newTestRobot(t, w, 1, 1, East, 0)

	if next, _ := a.NextToARobot(); next {
		t.Error("a lone robot is not next to another robot")
	}

	b := newTestRobot(t, w, 2, 1, West, 0)
	if err := b.Move(); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if next, _ := a.NextToARobot(); !next {
		t.Error("robots sharing a cell should see each other")
	}
}

func TestDestroy(t *testing.T) {
	w := newTestWorld(t)
	keep := newTestRobot(t, w, 4, 4, East, 0)
	r := newTestRobot(t, w, 4, 4, North, 3)

	if got := w.RobotCountAt(4, 4); got != 2 {
		t.Fatalf("RobotCountAt = %d, want 2", got)
	}
	if err := r.Destroy(); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if got := w.RobotCountAt(4, 4); got != 1 {
		t.Errorf("RobotCountAt after destroy = %d, want 1", got)
	}
	if r.Alive() {
		t.Error("destroyed robot reports alive")
	}
	if _, ok := w.Robot(r.ID()); ok {
		t.Error("destroyed robot still listed in world")
	}
	if next, _ := keep.NextToARobot(); next {
		t.Error("destroyed robot should not be visible to others")
	}

	actions := map[string]func() error{
		"Move":       r.Move,
		"TurnLeft":   r.TurnLeft,
		"PutBeeper":  r.PutBeeper,
		"PickBeeper": r.PickBeeper,
		"Destroy":    r.Destroy,
	}
	for name, act := range actions {
		if err := act(); !errors.Is(err, ErrDestroyedRobot) {
			t.Errorf("%s after destroy: got %v, want ErrDestroyedRobot", name, err)
		}
	}

	sensors := map[string]func() (bool, error){
		"FrontIsClear":    r.FrontIsClear,
		"LeftIsClear":     r.LeftIsClear,
		"RightIsClear":    r.RightIsClear,
		"BackIsClear":     r.BackIsClear,
		"FacingNorth":     r.FacingNorth,
		"FacingSouth":     r.FacingSouth,
		"FacingEast":      r.FacingEast,
		"FacingWest":      r.FacingWest,
		"NextToABeeper":   r.NextToABeeper,
		"NextToARobot":    r.NextToARobot,
		"AnyBeepersInBag": r.AnyBeepersInBag,
	}
	for name, sense := range sensors {
		if _, err := sense(); !errors.Is(err, ErrDestroyedRobot) {
			t.Errorf("%s after destroy: got %v, want ErrDestroyedRobot", name, err)
		}
	}

	if r.Position() != (Position{4, 4}) || r.Beepers() != 3 {
		t.Error("destroyed robot state should be frozen")
	}
}

func TestRobotString(t *testing.T) {
	w := newTestWorld(t)
	r := newTestRobot(t, w, 2, 3, West, 4)
	want := "Robot 1 at (2,3) facing west carrying 4 beeper(s)."
	if r.String() != want {
		t.Errorf("String() = %q, want %q", r.String(), want)
	}
}
