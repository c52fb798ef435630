// Package mcp exposes the simulation to AI agents over the Model Context
// Protocol.
//
// Tools:
//   - world_state: walls, beeper piles and robots, with an ASCII picture
//   - load_world / reset_world / list_worlds / save_world: world catalog
//   - create_robot / list_robots: robot lifecycle
//   - robot_action / bulk_actions: move, turnleft, putbeeper, pickbeeper, turnoff
//   - robot_sense: read one sensor such as front_is_clear
//   - run_script: run a small robot program
//   - instructions: rules of the world
//
// Robot errors (a wall in the way, an empty bag, a destroyed robot) come
// back as tool errors so the agent can correct course.
//
// Usage:
//
//	srv := mcp.NewServer(sim)
//	if err := srv.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
//
// The same server answers JSON-RPC over HTTP through HandleHTTP.
package mcp
