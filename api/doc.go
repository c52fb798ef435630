// Package api provides the read-only HTTP viewer for a running simulation.
//
// Endpoints:
//   - GET /api/world - latest snapshot with the event that produced it
//   - GET /api/frame - latest frame as JSON, or ?format=svg / ?format=text
//   - GET /api/worlds - world files in the catalog
//   - GET /api/robots - robots in the current world
//   - GET /ws - websocket stream of frame updates
//   - GET /health - liveness and viewer count
//   - GET / - browser viewer page
//
// Mutations go through the MCP surface; this package never changes the world.
package api
