package service

import (
	"context"
	"errors"

	"github.com/wricardo/karel-grid/game/config"
	"github.com/wricardo/karel-grid/game/engine"
	"github.com/wricardo/karel-grid/game/loader"
)

var ErrRobotNotFound = errors.New("robot not found")

// SimulationService defines the operations remote surfaces use
type SimulationService interface {
	// World management
	LoadWorld(ctx context.Context, name string) (*engine.Snapshot, error)
	Reset(ctx context.Context) (*engine.Snapshot, error)
	State(ctx context.Context) (*engine.Snapshot, error)
	WorldName() string

	// Robots
	CreateRobot(ctx context.Context, req CreateRobotRequest) (*engine.RobotState, error)
	Robots(ctx context.Context) ([]engine.RobotState, error)
	Act(ctx context.Context, id int, action string) (*ActionResult, error)
	BulkAct(ctx context.Context, id int, actions []string) (*BulkActionResult, error)
	Sense(ctx context.Context, id int, sensor string) (*SenseResult, error)
	RunScript(ctx context.Context, id int, src string) (*ScriptResult, error)

	// Catalog
	ListWorlds(ctx context.Context) ([]*config.WorldInfo, error)
	SaveWorld(ctx context.Context, name string) error
}

// WorldCatalog provides world files by name
type WorldCatalog interface {
	LoadWorld(name string) (*loader.WorldFile, error)
	ListWorlds() ([]*config.WorldInfo, error)
	SaveWorld(name string, snap engine.Snapshot) error
}

var _ WorldCatalog = (*config.Manager)(nil)
