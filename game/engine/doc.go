// Package engine provides the world/robot simulation model for the robot grid simulator.
//
// The engine package implements:
//   - Grid coordinates and cardinal headings
//   - Wall and world-boundary crash detection
//   - Beeper accounting, including inexhaustible piles
//   - The per-cell robot registry
//   - Robot actions, sensors and lifecycle
//
// Core Types:
//
// World owns walls, beeper piles and the robot registry, and notifies subscribed
// Observers after every successful robot action. Robot depends only on the Board
// interface, which World implements, so robots can be driven headless in tests.
//
// Coordinates:
//
// x grows to the east and y to the north, starting at (1,1). A coordinate of 0 is
// outside the world and always counts as a crash. Width and height are advisory:
// cells beyond them are not rejected.
//
// Usage:
//
//	world, err := engine.NewWorld(engine.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	karel, err := engine.NewDefaultRobot(world)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := karel.Move(); errors.Is(err, engine.ErrBlockedByWall) {
//		log.Println("crashed")
//	}
//
// Errors:
//
// Robot actions either complete or fail without changing any state. Failures wrap
// one of the sentinel errors (ErrBlockedByWall, ErrEmptyBeeperBag, ErrNoBeeperHere,
// ErrDestroyedRobot) and can be matched with errors.Is.
package engine
