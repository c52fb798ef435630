package service

import "github.com/wricardo/karel-grid/game/engine"

// MaxBulkActions bounds a single BulkAct call
const MaxBulkActions = 200

// CreateRobotRequest describes a new robot. Heading accepts a name such as
// "north" or a multiple of 90 degrees; empty means east. Beepers may be
// engine.Infinity.
type CreateRobotRequest struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Heading string `json:"heading"`
	Beepers int    `json:"beepers"`
}

// ActionResult is the outcome of one successful action
type ActionResult struct {
	Action string            `json:"action"`
	Robot  engine.RobotState `json:"robot"`
	From   engine.Position   `json:"from"`
}

// BulkActionResult reports a sequence of actions that stops at the first failure
type BulkActionResult struct {
	Requested     int               `json:"requested"`
	Executed      int               `json:"executed"`
	Success       bool              `json:"success"`
	StoppedOn     int               `json:"stopped_on,omitempty"` // 1-based index of the failing action
	StoppedReason string            `json:"stopped_reason,omitempty"`
	Truncated     bool              `json:"truncated,omitempty"`
	Limit         int               `json:"limit,omitempty"`
	Start         engine.RobotState `json:"start"`
	Robot         engine.RobotState `json:"robot"`
}

// SenseResult is one sensor reading
type SenseResult struct {
	Sensor string            `json:"sensor"`
	Value  bool              `json:"value"`
	Robot  engine.RobotState `json:"robot"`
}

// ScriptResult reports a script run
type ScriptResult struct {
	Steps   int               `json:"steps"`
	Actions int               `json:"actions"`
	Error   string            `json:"error,omitempty"`
	Robot   engine.RobotState `json:"robot"`
}
