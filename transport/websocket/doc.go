// Package websocket streams world frames to browser viewers.
//
// A Hub keeps the set of connected viewers and fans every published
// render.Update out to them as JSON. Viewers are read-only: incoming messages
// are discarded, the read side only keeps the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	recorder := render.NewRecorder()
//	recorder.OnUpdate(hub.Publish)
//	http.HandleFunc("/ws", hub.ServeWS)
//
// A viewer that connects after the first refresh immediately receives the
// latest frame. Publish never blocks the simulation: when the hub is behind,
// the update is dropped and the next one catches viewers up.
package websocket
