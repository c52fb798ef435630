package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/wricardo/karel-grid/game/engine"
	"github.com/wricardo/karel-grid/game/render"
	"github.com/wricardo/karel-grid/game/service"
	"github.com/wricardo/karel-grid/transport/websocket"
)

// Server represents the read-only viewer API
type Server struct {
	sim      service.SimulationService
	recorder *render.Recorder
	hub      *websocket.Hub
	router   *mux.Router
}

// NewServer creates a new API server. recorder may be nil, in which case
// every request reads the world state from sim.
func NewServer(sim service.SimulationService, recorder *render.Recorder, hub *websocket.Hub) *Server {
	s := &Server{
		sim:      sim,
		recorder: recorder,
		hub:      hub,
		router:   mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/world", s.handleGetWorld).Methods("GET")
	api.HandleFunc("/frame", s.handleGetFrame).Methods("GET")
	api.HandleFunc("/worlds", s.handleListWorlds).Methods("GET")
	api.HandleFunc("/robots", s.handleListRobots).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
}

// Router exposes the mux so callers can mount extra endpoints such as /mcp
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// latest returns the most recent recorded update, building one from the
// simulation state when nothing has been recorded yet.
func (s *Server) latest(r *http.Request) (render.Update, error) {
	if s.recorder != nil {
		if u, ok := s.recorder.Latest(); ok {
			return u, nil
		}
	}
	snap, err := s.sim.State(r.Context())
	if err != nil {
		return render.Update{}, err
	}
	return render.Update{
		Event:    engine.Event{Type: engine.EventWorldReady},
		Snapshot: *snap,
		Frame:    render.BuildFrame(*snap),
	}, nil
}

func (s *Server) handleGetWorld(w http.ResponseWriter, r *http.Request) {
	u, err := s.latest(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"world":    s.sim.WorldName(),
		"seq":      u.Seq,
		"event":    u.Event,
		"snapshot": u.Snapshot,
	})
}

func (s *Server) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	u, err := s.latest(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		respondJSON(w, http.StatusOK, u.Frame)
	case "svg":
		w.Header().Set("Content-Type", "image/svg+xml")
		if err := render.WriteSVG(w, u.Frame); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, render.Text(u.Snapshot))
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q, use json, svg or text", format))
	}
}

func (s *Server) handleListWorlds(w http.ResponseWriter, r *http.Request) {
	worlds, err := s.sim.ListWorlds(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"current": s.sim.WorldName(),
		"worlds":  worlds,
	})
}

func (s *Server) handleListRobots(w http.ResponseWriter, r *http.Request) {
	robots, err := s.sim.Robots(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, robots)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "live updates disabled", http.StatusServiceUnavailable)
		return
	}
	s.hub.ServeWS(w, r)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "healthy",
		"world":  s.sim.WorldName(),
	}
	if s.hub != nil {
		status["viewers"] = s.hub.ClientCount()
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Karel Grid</title>
<style>body{font-family:sans-serif;margin:2em}#status{color:#666}</style>
</head>
<body>
<h1>Karel Grid</h1>
<p id="status">connecting...</p>
<div id="frame"></div>
<script>
const frame = document.getElementById("frame");
const status = document.getElementById("status");
function redraw() {
  fetch("/api/frame?format=svg").then(r => r.text()).then(svg => { frame.innerHTML = svg; });
}
function connect() {
  const proto = location.protocol === "https:" ? "wss://" : "ws://";
  const ws = new WebSocket(proto + location.host + "/ws");
  ws.onopen = () => { status.textContent = "live"; };
  ws.onmessage = (msg) => {
    const m = JSON.parse(msg.data);
    if (m.type === "frame" && m.update) {
      status.textContent = "live: " + m.update.event.type + " (#" + m.update.seq + ")";
    }
    redraw();
  };
  ws.onclose = () => { status.textContent = "disconnected, retrying..."; setTimeout(connect, 2000); };
}
redraw();
connect();
</script>
</body>
</html>
`
