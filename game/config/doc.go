// Package config provides configuration management for the robot grid simulator.
//
// The config package handles:
//   - Simulator profiles (grid size, cell size, delay, debug) stored as YAML
//   - Environment defaults loaded from a .env file
//   - Discovery, loading and caching of world description files
//
// Profile Format:
//
// Profiles live in the configs directory as <name>.yaml:
//
//	name: classic
//	width: 10
//	height: 10
//	block: 50
//	delay: 0.25   # seconds paused after every refresh
//	debug: true
//	image: false
//	world: hurdles
//
// Usage:
//
//	manager, err := config.NewManager("worlds", "configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := manager.LoadProfile("classic")
//	world, err := manager.LoadWorld("hurdles")
//	worlds, err := manager.ListWorlds()
package config
