package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wricardo/karel-grid/game/config"
	"github.com/wricardo/karel-grid/game/engine"
	"github.com/wricardo/karel-grid/game/render"
	"github.com/wricardo/karel-grid/game/service"
	"github.com/wricardo/karel-grid/transport/websocket"
)

// MockSimulation implements service.SimulationService for testing
type MockSimulation struct {
	StateFunc      func(ctx context.Context) (*engine.Snapshot, error)
	RobotsFunc     func(ctx context.Context) ([]engine.RobotState, error)
	ListWorldsFunc func(ctx context.Context) ([]*config.WorldInfo, error)
	Name           string
}

func (m *MockSimulation) LoadWorld(ctx context.Context, name string) (*engine.Snapshot, error) {
	return nil, fmt.Errorf("not supported")
}

func (m *MockSimulation) Reset(ctx context.Context) (*engine.Snapshot, error) {
	return nil, fmt.Errorf("not supported")
}

func (m *MockSimulation) State(ctx context.Context) (*engine.Snapshot, error) {
	if m.StateFunc != nil {
		return m.StateFunc(ctx)
	}
	return testSnapshot(), nil
}

func (m *MockSimulation) WorldName() string {
	if m.Name == "" {
		return "blank"
	}
	return m.Name
}

func (m *MockSimulation) CreateRobot(ctx context.Context, req service.CreateRobotRequest) (*engine.RobotState, error) {
	return nil, fmt.Errorf("not supported")
}

func (m *MockSimulation) Robots(ctx context.Context) ([]engine.RobotState, error) {
	if m.RobotsFunc != nil {
		return m.RobotsFunc(ctx)
	}
	return []engine.RobotState{}, nil
}

func (m *MockSimulation) Act(ctx context.Context, id int, action string) (*service.ActionResult, error) {
	return nil, fmt.Errorf("not supported")
}

func (m *MockSimulation) BulkAct(ctx context.Context, id int, actions []string) (*service.BulkActionResult, error) {
	return nil, fmt.Errorf("not supported")
}

func (m *MockSimulation) Sense(ctx context.Context, id int, sensor string) (*service.SenseResult, error) {
	return nil, fmt.Errorf("not supported")
}

func (m *MockSimulation) RunScript(ctx context.Context, id int, src string) (*service.ScriptResult, error) {
	return nil, fmt.Errorf("not supported")
}

func (m *MockSimulation) ListWorlds(ctx context.Context) ([]*config.WorldInfo, error) {
	if m.ListWorldsFunc != nil {
		return m.ListWorldsFunc(ctx)
	}
	return []*config.WorldInfo{}, nil
}

func (m *MockSimulation) SaveWorld(ctx context.Context, name string) error {
	return fmt.Errorf("not supported")
}

var _ service.SimulationService = (*MockSimulation)(nil)

func testSnapshot() *engine.Snapshot {
	return &engine.Snapshot{
		Width:  4,
		Height: 3,
		Block:  50,
		Robots: []engine.RobotState{
			{ID: 1, Pos: engine.Position{X: 2, Y: 1}, Heading: engine.North, Facing: "north", Alive: true},
		},
	}
}

func setupTestServer(sim *MockSimulation, recorder *render.Recorder) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(sim, recorder, hub)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func TestGetWorld(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockSimulation)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "State from simulation",
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp struct {
					World    string          `json:"world"`
					Snapshot engine.Snapshot `json:"snapshot"`
				}
				parseResponse(t, w, &resp)
				if resp.World != "blank" {
					t.Errorf("Expected world blank, got %s", resp.World)
				}
				if resp.Snapshot.Width != 4 || len(resp.Snapshot.Robots) != 1 {
					t.Errorf("Unexpected snapshot %+v", resp.Snapshot)
				}
			},
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockSimulation) {
				m.StateFunc = func(ctx context.Context) (*engine.Snapshot, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected service error, got %q", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := &MockSimulation{}
			if tt.setupMock != nil {
				tt.setupMock(sim)
			}

			server := setupTestServer(sim, nil)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/world", nil)
			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestGetWorldPrefersRecorder(t *testing.T) {
	sim := &MockSimulation{
		StateFunc: func(ctx context.Context) (*engine.Snapshot, error) {
			t.Error("State should not be called when the recorder has an update")
			return nil, fmt.Errorf("unexpected")
		},
	}
	rec := render.NewRecorder()
	snap := testSnapshot()
	snap.Width = 7
	rec.Record(engine.Event{Type: engine.EventRobotMoved}, *snap)

	server := setupTestServer(sim, rec)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/api/world", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Seq      uint64          `json:"seq"`
		Event    engine.Event    `json:"event"`
		Snapshot engine.Snapshot `json:"snapshot"`
	}
	parseResponse(t, w, &resp)
	if resp.Seq != 1 {
		t.Errorf("Expected seq 1, got %d", resp.Seq)
	}
	if resp.Event.Type != engine.EventRobotMoved {
		t.Errorf("Expected event robot_moved, got %s", resp.Event.Type)
	}
	if resp.Snapshot.Width != 7 {
		t.Errorf("Expected recorded width 7, got %d", resp.Snapshot.Width)
	}
}

func TestGetFrame(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
		contentType    string
		contains       string
	}{
		{
			name:           "JSON frame by default",
			query:          "",
			expectedStatus: http.StatusOK,
			contentType:    "application/json",
			contains:       `"robots"`,
		},
		{
			name:           "SVG frame",
			query:          "?format=svg",
			expectedStatus: http.StatusOK,
			contentType:    "image/svg+xml",
			contains:       "<svg",
		},
		{
			name:           "Text frame",
			query:          "?format=text",
			expectedStatus: http.StatusOK,
			contentType:    "text/plain; charset=utf-8",
			contains:       " 1 . ^ . .",
		},
		{
			name:           "Unknown format",
			query:          "?format=png",
			expectedStatus: http.StatusBadRequest,
			contentType:    "application/json",
			contains:       "unknown format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(&MockSimulation{}, nil)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest("GET", "/api/frame"+tt.query, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Expected content type %q, got %q", tt.contentType, ct)
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("Expected body to contain %q, got:\n%s", tt.contains, w.Body.String())
			}
		})
	}
}

func TestGetFrameMatchesBuildFrame(t *testing.T) {
	server := setupTestServer(&MockSimulation{}, nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/api/frame", nil))

	var frame render.Frame
	parseResponse(t, w, &frame)
	want := render.BuildFrame(*testSnapshot())
	if frame.Canvas != want.Canvas {
		t.Errorf("Expected canvas %+v, got %+v", want.Canvas, frame.Canvas)
	}
	if len(frame.Robots) != 1 || len(frame.Robots[0].Points) != 4 {
		t.Errorf("Expected one robot glyph with 4 points, got %+v", frame.Robots)
	}
}

func TestListWorlds(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockSimulation)
		expectedStatus int
		expectedCount  int
	}{
		{
			name: "List worlds",
			setupMock: func(m *MockSimulation) {
				m.ListWorldsFunc = func(ctx context.Context) ([]*config.WorldInfo, error) {
					return []*config.WorldInfo{
						{Name: "hurdles", Filename: "hurdles.wld", Walls: 4, Piles: 1},
						{Name: "maze", Filename: "maze.wld", Walls: 12},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockSimulation) {
				m.ListWorldsFunc = func(ctx context.Context) ([]*config.WorldInfo, error) {
					return nil, fmt.Errorf("directory unreadable")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := &MockSimulation{Name: "hurdles"}
			tt.setupMock(sim)

			server := setupTestServer(sim, nil)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest("GET", "/api/worlds", nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var resp struct {
				Current string              `json:"current"`
				Worlds  []*config.WorldInfo `json:"worlds"`
			}
			parseResponse(t, w, &resp)
			if resp.Current != "hurdles" {
				t.Errorf("Expected current world hurdles, got %s", resp.Current)
			}
			if len(resp.Worlds) != tt.expectedCount {
				t.Errorf("Expected %d worlds, got %d", tt.expectedCount, len(resp.Worlds))
			}
		})
	}
}

func TestListRobots(t *testing.T) {
	sim := &MockSimulation{
		RobotsFunc: func(ctx context.Context) ([]engine.RobotState, error) {
			return []engine.RobotState{
				{ID: 1, Pos: engine.Position{X: 1, Y: 1}, Facing: "east", Alive: true},
				{ID: 2, Pos: engine.Position{X: 3, Y: 2}, Facing: "west", Alive: false},
			}, nil
		},
	}
	server := setupTestServer(sim, nil)
	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/api/robots", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var robots []engine.RobotState
	parseResponse(t, w, &robots)
	if len(robots) != 2 || robots[1].Alive {
		t.Errorf("Unexpected robots %+v", robots)
	}
}

func TestReadOnlyRoutes(t *testing.T) {
	server := setupTestServer(&MockSimulation{}, nil)
	for _, path := range []string{"/api/world", "/api/frame", "/api/worlds", "/api/robots"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest("POST", path, nil))
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected status 405 for POST %s, got %d", path, w.Code)
			}
		})
	}
}

func TestHealthAndIndex(t *testing.T) {
	server := setupTestServer(&MockSimulation{}, nil)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	var health map[string]interface{}
	parseResponse(t, w, &health)
	if health["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", health["status"])
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if !strings.Contains(w.Body.String(), "/api/frame?format=svg") {
		t.Error("Expected index page to load the SVG frame")
	}
}

func TestWebSocket(t *testing.T) {
	t.Run("Disabled without hub", func(t *testing.T) {
		server := NewServer(&MockSimulation{}, nil, nil)
		w := httptest.NewRecorder()
		server.handleWebSocket(w, httptest.NewRequest("GET", "/ws", nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})

	t.Run("Plain request is rejected by upgrader", func(t *testing.T) {
		server := setupTestServer(&MockSimulation{}, nil)
		w := httptest.NewRecorder()
		server.handleWebSocket(w, httptest.NewRequest("GET", "/ws", nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}
