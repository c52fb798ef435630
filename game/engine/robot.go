package engine

import "fmt"

// Robot is a directional agent living on a Board
type Robot struct {
	board   Board
	id      int
	pos     Position
	heading Heading
	beepers int
	alive   bool
}

// NewDefaultRobot creates a robot at (1,1) facing east with an empty bag
func NewDefaultRobot(b Board) (*Robot, error) {
	return NewRobot(b, 1, 1, East, 0)
}

// NewRobot creates a robot, registers it with the board and triggers the
// initial refresh. beepers may be Infinity.
func NewRobot(b Board, x, y int, h Heading, beepers int) (*Robot, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: robot needs a board", ErrInvalidOperation)
	}
	heading, err := NormalizeHeading(int(h))
	if err != nil {
		return nil, err
	}
	if beepers < Infinity {
		return nil, fmt.Errorf("%w: beeper count %d", ErrInvalidOperation, beepers)
	}

	r := &Robot{
		board:   b,
		pos:     Position{X: x, Y: y},
		heading: heading,
		beepers: beepers,
		alive:   true,
	}
	r.id = b.Register(r)
	b.Refresh(r.event(EventRobotCreated))
	return r, nil
}

// ID returns the creation-order identity
func (r *Robot) ID() int { return r.id }

// Position returns the current cell
func (r *Robot) Position() Position { return r.pos }

// Heading returns the current heading
func (r *Robot) Heading() Heading { return r.heading }

// Beepers returns the carried count or Infinity
func (r *Robot) Beepers() int { return r.beepers }

// Alive reports whether the robot has not been destroyed
func (r *Robot) Alive() bool { return r.alive }

// State returns a copy of the robot's state
func (r *Robot) State() RobotState {
	return RobotState{
		ID:      r.id,
		Pos:     r.pos,
		Heading: r.heading,
		Facing:  r.heading.String(),
		Beepers: r.beepers,
		Alive:   r.alive,
	}
}

func (r *Robot) String() string {
	return r.State().String()
}

func (r *Robot) event(t EventType) Event {
	state := r.State()
	return Event{Type: t, Robot: &state}
}

func (r *Robot) check() error {
	if !r.alive {
		return fmt.Errorf("%w: robot %d", ErrDestroyedRobot, r.id)
	}
	return nil
}

// Move steps one cell forward
func (r *Robot) Move() error {
	if err := r.check(); err != nil {
		return err
	}

	from := r.pos
	to := from.Step(r.heading)
	if r.board.HasWall(from.X, from.Y, to.X, to.Y) {
		return fmt.Errorf("%w: robot %d at %s facing %s", ErrBlockedByWall, r.id, from, r.heading)
	}

	r.pos = to
	r.board.MoveRobot(r.id, from, to)

	ev := r.event(EventRobotMoved)
	ev.From = &from
	r.board.Refresh(ev)
	return nil
}

// TurnLeft rotates a quarter turn counterclockwise
func (r *Robot) TurnLeft() error {
	if err := r.check(); err != nil {
		return err
	}
	r.heading = r.heading.Left()
	r.board.Refresh(r.event(EventRobotTurned))
	return nil
}

// PutBeeper drops one beeper from the bag onto the current cell
func (r *Robot) PutBeeper() error {
	if err := r.check(); err != nil {
		return err
	}
	if r.beepers == 0 {
		return fmt.Errorf("%w: robot %d at %s", ErrEmptyBeeperBag, r.id, r.pos)
	}

	if r.beepers != Infinity {
		r.beepers--
	}
	r.board.AddBeeper(r.pos.X, r.pos.Y)
	r.board.Refresh(r.event(EventBeeperPut))
	return nil
}

// PickBeeper takes one beeper from the current cell into the bag
func (r *Robot) PickBeeper() error {
	if err := r.check(); err != nil {
		return err
	}
	if r.board.BeeperCountAt(r.pos.X, r.pos.Y) == 0 {
		return fmt.Errorf("%w: robot %d at %s", ErrNoBeeperHere, r.id, r.pos)
	}

	if err := r.board.RemoveBeeper(r.pos.X, r.pos.Y); err != nil {
		return err
	}
	if r.beepers != Infinity {
		r.beepers++
	}
	r.board.Refresh(r.event(EventBeeperPicked))
	return nil
}

// Destroy removes the robot from the world. Every later call fails with
// ErrDestroyedRobot, including a second Destroy.
func (r *Robot) Destroy() error {
	if err := r.check(); err != nil {
		return err
	}
	r.board.Deregister(r)
	r.alive = false
	r.board.Refresh(r.event(EventRobotDestroyed))
	return nil
}

func (r *Robot) isClear(h Heading) (bool, error) {
	if err := r.check(); err != nil {
		return false, err
	}
	to := r.pos.Step(h)
	return !r.board.HasWall(r.pos.X, r.pos.Y, to.X, to.Y), nil
}

// FrontIsClear reports whether Move would succeed
func (r *Robot) FrontIsClear() (bool, error) { return r.isClear(r.heading) }

// LeftIsClear checks the cell to the robot's left
func (r *Robot) LeftIsClear() (bool, error) { return r.isClear(r.heading.Left()) }

// RightIsClear checks the cell to the robot's right
func (r *Robot) RightIsClear() (bool, error) { return r.isClear(r.heading.Right()) }

// BackIsClear checks the cell behind the robot
func (r *Robot) BackIsClear() (bool, error) { return r.isClear(r.heading.Back()) }

func (r *Robot) facing(h Heading) (bool, error) {
	if err := r.check(); err != nil {
		return false, err
	}
	return r.heading == h, nil
}

func (r *Robot) FacingNorth() (bool, error) { return r.facing(North) }
func (r *Robot) FacingSouth() (bool, error) { return r.facing(South) }
func (r *Robot) FacingEast() (bool, error)  { return r.facing(East) }
func (r *Robot) FacingWest() (bool, error)  { return r.facing(West) }

// NextToABeeper reports whether the current cell holds beepers
func (r *Robot) NextToABeeper() (bool, error) {
	if err := r.check(); err != nil {
		return false, err
	}
	return r.board.BeeperCountAt(r.pos.X, r.pos.Y) != 0, nil
}

// NextToARobot reports whether another robot shares the current cell
func (r *Robot) NextToARobot() (bool, error) {
	if err := r.check(); err != nil {
		return false, err
	}
	return r.board.RobotCountAt(r.pos.X, r.pos.Y) > 1, nil
}

// AnyBeepersInBag reports whether the bag is not empty
func (r *Robot) AnyBeepersInBag() (bool, error) {
	if err := r.check(); err != nil {
		return false, err
	}
	return r.beepers != 0, nil
}
