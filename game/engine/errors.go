package engine

import "errors"

var (
	ErrDestroyedRobot   = errors.New("robot has been destroyed")
	ErrBlockedByWall    = errors.New("blocked by wall")
	ErrEmptyBeeperBag   = errors.New("no beepers to put")
	ErrNoBeeperHere     = errors.New("no beepers to pick")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrInvalidWall      = errors.New("invalid wall")
	ErrInvalidHeading   = errors.New("invalid heading")
)
