package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/karel-grid/game/engine"
	"github.com/wricardo/karel-grid/game/render"
	"github.com/wricardo/karel-grid/game/script"
	"github.com/wricardo/karel-grid/game/service"
)

// Version reported to MCP clients
const Version = "1.0.0"

// Server is an MCP tool server backed by a simulation
type Server struct {
	sim       service.SimulationService
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server for sim
func NewServer(sim service.SimulationService) *Server {
	s := &Server{sim: sim}
	s.initMCPServer()
	return s
}

// initMCPServer initializes the MCP server with all tools
func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Karel Grid",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Karel Grid - MCP Interface

Robots live on a grid of streets and avenues. Cell (1,1) is the bottom-left
corner, x grows east and y grows north. Walls block movement between cells,
beepers can be picked up and put down.

AVAILABLE TOOLS:
- world_state: Current walls, beepers and robots with an ASCII picture
- load_world: Load a world file by name (see list_worlds)
- reset_world: Reload the current world, removing all robots
- create_robot: Place a new robot; returns its id
- list_robots: All robots with position, heading and bag
- robot_action: One action (move, turnleft, putbeeper, pickbeeper, turnoff)
- bulk_actions: Several actions, stopping at the first failure
- robot_sense: Read a sensor (front_is_clear, next_to_a_beeper, ...)
- run_script: Run a robot program (repeat/while/if/define)
- save_world: Save walls and beepers of the current world
- instructions: Full rules and script syntax`),
	)

	// Register all tools
	s.registerTools()
}

func robotIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Robot id returned by create_robot",
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	// World management
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "world_state",
		Description: "Get the current world: size, walls, beeper piles and robots",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleWorldState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "load_world",
		Description: "Replace the current world with a world file. All robots are removed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "World name as shown by list_worlds",
				},
			},
			Required: []string{"name"},
		},
	}, s.handleLoadWorld)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_world",
		Description: "Reload the current world, removing all robots",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleResetWorld)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_worlds",
		Description: "List the available world files",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListWorlds)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "save_world",
		Description: "Save the walls and beepers of the current world as a world file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the new world file",
				},
			},
			Required: []string{"name"},
		},
	}, s.handleSaveWorld)

	// Robots
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "create_robot",
		Description: "Place a new robot in the world",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Avenue (column), default 1",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Street (row), default 1",
				},
				"heading": map[string]interface{}{
					"type":        "string",
					"description": "east, north, west or south (default east)",
				},
				"beepers": map[string]interface{}{
					"type":        "integer",
					"description": "Beepers in the bag, -1 for an infinite bag (default 0)",
				},
			},
		},
	}, s.handleCreateRobot)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_robots",
		Description: "List all robots created in the current world, including destroyed ones",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListRobots)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "robot_action",
		Description: "Perform one action with a robot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"robot_id": robotIDProperty(),
				"action": map[string]interface{}{
					"type":        "string",
					"description": "move, turnleft, putbeeper, pickbeeper or turnoff",
					"enum":        script.Actions(),
				},
			},
			Required: []string{"robot_id", "action"},
		},
	}, s.handleRobotAction)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_actions",
		Description: fmt.Sprintf("Perform several actions in order, stopping at the first failure (max %d)", service.MaxBulkActions),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"robot_id": robotIDProperty(),
				"actions": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Actions to perform",
				},
			},
			Required: []string{"robot_id", "actions"},
		},
	}, s.handleBulkActions)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "robot_sense",
		Description: "Read one sensor of a robot",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"robot_id": robotIDProperty(),
				"sensor": map[string]interface{}{
					"type":        "string",
					"description": "Sensor name",
					"enum":        script.Sensors(),
				},
			},
			Required: []string{"robot_id", "sensor"},
		},
	}, s.handleRobotSense)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "run_script",
		Description: "Run a robot program. See instructions for the syntax.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"robot_id": robotIDProperty(),
				"script": map[string]interface{}{
					"type":        "string",
					"description": "Program source",
				},
			},
			Required: []string{"robot_id", "script"},
		},
	}, s.handleRunScript)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "instructions",
		Description: "Get the rules of the world and the script syntax",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleInstructions)
}

// GetMCPServer returns the underlying MCP server
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP over stdin/stdout until the input closes
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// HandleHTTP answers a single JSON-RPC message posted to the endpoint
func (s *Server) HandleHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := s.mcpServer.HandleMessage(r.Context(), body)

	w.Header().Set("Content-Type", "application/json")
	responseData, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Write(responseData)
}

// Argument helpers. JSON numbers arrive as float64.

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return args
}

func intArg(args map[string]interface{}, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case string:
		var i int
		if _, err := fmt.Sscanf(n, "%d", &i); err == nil {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s must be an integer", key)
}

func robotID(args map[string]interface{}) (int, error) {
	if _, ok := args["robot_id"]; !ok {
		return 0, fmt.Errorf("robot_id is required")
	}
	return intArg(args, "robot_id", 0)
}

// Tool handlers

func (s *Server) handleWorldState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.sim.State(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatWorld(s.sim.WorldName(), snap)), nil
}

func (s *Server) handleLoadWorld(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	snap, err := s.sim.LoadWorld(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Loaded world %s\n\n%s", name, formatWorld(name, snap))), nil
}

func (s *Server) handleResetWorld(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.sim.Reset(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("World reset\n\n" + formatWorld(s.sim.WorldName(), snap)), nil
}

func (s *Server) handleListWorlds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	worlds, err := s.sim.ListWorlds(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Available Worlds (%d):\n\n", len(worlds))
	for _, w := range worlds {
		fmt.Fprintf(&sb, "- %s (walls: %d, beeper piles: %d)\n", w.Name, w.Walls, w.Piles)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleSaveWorld(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	if err := s.sim.SaveWorld(ctx, name); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved world %s", name)), nil
}

func (s *Server) handleCreateRobot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	req := service.CreateRobotRequest{}
	var err error
	if req.X, err = intArg(args, "x", 1); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.Y, err = intArg(args, "y", 1); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.Beepers, err = intArg(args, "beepers", 0); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req.Heading, _ = args["heading"].(string)

	robot, err := s.sim.CreateRobot(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created robot %d\n%s", robot.ID, robot)), nil
}

func (s *Server) handleListRobots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	robots, err := s.sim.Robots(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Robots (%d):\n\n", len(robots))
	for _, r := range robots {
		status := ""
		if !r.Alive {
			status = " [destroyed]"
		}
		fmt.Fprintf(&sb, "- %s%s\n", r, status)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleRobotAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, err := robotID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	action, _ := args["action"].(string)

	result, err := s.sim.Act(ctx, id, action)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("OK %s\n%s", result.Action, result.Robot)), nil
}

func (s *Server) handleBulkActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, err := robotID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Convert actions to string array
	raw, _ := args["actions"].([]interface{})
	actions := make([]string, 0, len(raw))
	for _, a := range raw {
		if action, ok := a.(string); ok {
			actions = append(actions, action)
		}
	}

	result, err := s.sim.BulkAct(ctx, id, actions)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBulkResult(result)), nil
}

func (s *Server) handleRobotSense(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, err := robotID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sensor, _ := args["sensor"].(string)

	result, err := s.sim.Sense(ctx, id, sensor)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %t", result.Sensor, result.Value)), nil
}

func (s *Server) handleRunScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, err := robotID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	src, _ := args["script"].(string)

	result, err := s.sim.RunScript(ctx, id, src)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Steps: %d, actions: %d\n%s", result.Steps, result.Actions, result.Robot)
	if result.Error != "" {
		text = fmt.Sprintf("Stopped: %s\n%s", result.Error, text)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `# Karel Grid

## The world
- Cells are addressed (x, y): x is the avenue (east), y the street (north).
- (1,1) is the bottom-left corner. Moving to x=0 or y=0 always crashes.
- Walls sit between two neighbouring cells and block movement both ways.
- A cell holds a pile of beepers; "∞" piles never run out.

## Robots
- A robot has a position, a heading (east, north, west, south) and a bag of beepers.
- Several robots may share a cell.
- A failed action changes nothing. A destroyed robot (turnoff) refuses everything.

## Actions
move, turnleft, putbeeper, pickbeeper, turnoff

## Sensors
front_is_clear, left_is_clear, right_is_clear, back_is_clear,
facing_north, facing_south, facing_east, facing_west,
next_to_a_beeper, next_to_a_robot, any_beepers_in_beeper_bag

## Scripts
    define turnright { turnleft turnleft turnleft }
    repeat 4 { move }
    while front_is_clear { move }
    if not next_to_a_beeper { putbeeper } else { pickbeeper }
    # comments run to the end of the line

## ASCII map
'>' '^' '<' 'v' robots by heading, '@' several robots, digits beeper piles,
'*' infinite pile, '+' more than nine, '|' and '-' walls.`

// Formatting helpers

func formatWorld(name string, snap *engine.Snapshot) string {
	var sb strings.Builder
	if name == "" {
		name = "(blank)"
	}
	fmt.Fprintf(&sb, "World: %s (%dx%d)\n", name, snap.Width, snap.Height)
	fmt.Fprintf(&sb, "Walls: %d, beeper piles: %d, robots: %d\n\n", len(snap.Walls), len(snap.Beepers), len(snap.Robots))
	sb.WriteString(render.Text(*snap))

	if len(snap.Beepers) > 0 {
		sb.WriteString("\nBeepers:\n")
		for _, p := range snap.Beepers {
			fmt.Fprintf(&sb, "- %s: %s\n", p.Pos, render.BeeperLabel(p.Count))
		}
	}
	if len(snap.Robots) > 0 {
		sb.WriteString("\nRobots:\n")
		for _, r := range snap.Robots {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}
	return sb.String()
}

func formatBulkResult(result *service.BulkActionResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Executed %d of %d actions\n", result.Executed, result.Requested)
	if result.Truncated {
		fmt.Fprintf(&sb, "Truncated to the first %d actions\n", result.Limit)
	}
	if !result.Success {
		fmt.Fprintf(&sb, "Stopped: %s\n", result.StoppedReason)
	}
	fmt.Fprintf(&sb, "Start: %s\n", result.Start)
	fmt.Fprintf(&sb, "Now:   %s\n", result.Robot)
	return sb.String()
}
