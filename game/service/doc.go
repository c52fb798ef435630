// Package service serializes access to a running simulation.
//
// The engine is single-threaded: a World and its robots must only be touched
// by one goroutine at a time. Remote surfaces such as the MCP server accept
// concurrent requests, so they go through a SimulationService, which guards
// the world with a single mutex and exposes robots by id.
//
// Usage:
//
//	catalog, _ := config.NewManager("worlds", "configs")
//	recorder := render.NewRecorder()
//	sim, err := service.NewSimulation(catalog, engine.Options{Width: 10, Height: 10},
//		service.WithObservers(recorder))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, err = sim.LoadWorld(ctx, "hurdles")
//	robot, err := sim.CreateRobot(ctx, service.CreateRobotRequest{X: 1, Y: 1, Heading: "east"})
//	result, err := sim.Act(ctx, robot.ID, "move")
//
// Robots keep their ids for the lifetime of the loaded world. Destroyed robots
// stay addressable so that later calls report engine.ErrDestroyedRobot rather
// than an unknown id. Loading or resetting a world discards all robots.
package service
