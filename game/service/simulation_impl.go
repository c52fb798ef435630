package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/karel-grid/game/config"
	"github.com/wricardo/karel-grid/game/engine"
	"github.com/wricardo/karel-grid/game/loader"
	"github.com/wricardo/karel-grid/game/script"
)

// simulationImpl implements the SimulationService interface
type simulationImpl struct {
	catalog   WorldCatalog
	opts      engine.Options
	observers []engine.Observer
	maxSteps  int

	mu        sync.Mutex
	world     *engine.World
	worldFile *loader.WorldFile
	name      string
	robots    map[int]*engine.Robot
}

// Option configures a simulation
type Option func(*simulationImpl)

// WithObservers subscribes observers to every world the simulation builds
func WithObservers(observers ...engine.Observer) Option {
	return func(s *simulationImpl) { s.observers = append(s.observers, observers...) }
}

// WithMaxScriptSteps bounds RunScript
func WithMaxScriptSteps(n int) Option {
	return func(s *simulationImpl) { s.maxSteps = n }
}

// NewSimulation creates a simulation with an empty world. catalog may be nil,
// in which case LoadWorld and the catalog operations fail.
func NewSimulation(catalog WorldCatalog, opts engine.Options, options ...Option) (SimulationService, error) {
	s := &simulationImpl{
		catalog:  catalog,
		opts:     opts,
		maxSteps: script.DefaultMaxSteps,
	}
	for _, opt := range options {
		opt(s)
	}

	if err := s.rebuild(nil, ""); err != nil {
		return nil, err
	}
	return s, nil
}

// rebuild replaces the world with a fresh one populated from wf.
// Callers hold s.mu except during construction.
func (s *simulationImpl) rebuild(wf *loader.WorldFile, name string) error {
	w, err := engine.NewWorld(s.opts)
	if err != nil {
		return fmt.Errorf("failed to create world: %w", err)
	}
	for _, o := range s.observers {
		w.Subscribe(o)
	}
	if wf != nil {
		if err := wf.Apply(w); err != nil {
			return fmt.Errorf("failed to apply world %s: %w", name, err)
		}
	}

	s.world = w
	s.worldFile = wf
	s.name = name
	s.robots = make(map[int]*engine.Robot)
	w.Ready()
	return nil
}

func (s *simulationImpl) snapshot() *engine.Snapshot {
	snap := s.world.Snapshot()
	return &snap
}

// LoadWorld replaces the current world with the named world file
func (s *simulationImpl) LoadWorld(ctx context.Context, name string) (*engine.Snapshot, error) {
	if s.catalog == nil {
		return nil, errors.New("no world catalog configured")
	}

	wf, err := s.catalog.LoadWorld(name)
	if err != nil {
		if errors.Is(err, config.ErrWorldNotFound) {
			if worlds, listErr := s.catalog.ListWorlds(); listErr == nil && len(worlds) > 0 {
				names := make([]string, 0, len(worlds))
				for _, w := range worlds {
					names = append(names, w.Name)
				}
				return nil, fmt.Errorf("%w. Available worlds: %s", err, strings.Join(names, ", "))
			}
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rebuild(wf, name); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// Reset rebuilds the current world, discarding all robots
func (s *simulationImpl) Reset(ctx context.Context) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rebuild(s.worldFile, s.name); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// State returns a snapshot of the world
func (s *simulationImpl) State(ctx context.Context) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot(), nil
}

// WorldName returns the name of the loaded world file, empty for a blank world
func (s *simulationImpl) WorldName() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.name
}

// CreateRobot places a new robot in the world
func (s *simulationImpl) CreateRobot(ctx context.Context, req CreateRobotRequest) (*engine.RobotState, error) {
	heading := engine.East
	if req.Heading != "" {
		h, err := engine.ParseHeading(req.Heading)
		if err != nil {
			return nil, err
		}
		heading = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := engine.NewRobot(s.world, req.X, req.Y, heading, req.Beepers)
	if err != nil {
		return nil, err
	}
	s.robots[r.ID()] = r

	state := r.State()
	return &state, nil
}

// Robots returns every robot created in the current world, destroyed ones included
func (s *simulationImpl) Robots(ctx context.Context) ([]engine.RobotState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]engine.RobotState, 0, len(s.robots))
	for _, r := range s.robots {
		out = append(out, r.State())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *simulationImpl) robot(id int) (*engine.Robot, error) {
	r, ok := s.robots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRobotNotFound, id)
	}
	return r, nil
}

// Act runs one action on a robot
func (s *simulationImpl) Act(ctx context.Context, id int, action string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.robot(id)
	if err != nil {
		return nil, err
	}

	from := r.Position()
	if err := script.Perform(r, action); err != nil {
		return nil, err
	}

	return &ActionResult{
		Action: strings.ToLower(action),
		Robot:  r.State(),
		From:   from,
	}, nil
}

// BulkAct runs actions in order and stops at the first failure
func (s *simulationImpl) BulkAct(ctx context.Context, id int, actions []string) (*BulkActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.robot(id)
	if err != nil {
		return nil, err
	}

	result := &BulkActionResult{
		Requested: len(actions),
		Success:   true,
		Start:     r.State(),
	}

	// Limit actions to keep a single request bounded
	if len(actions) > MaxBulkActions {
		result.Truncated = true
		result.Limit = MaxBulkActions
		actions = actions[:MaxBulkActions]
	}

	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := script.Perform(r, action); err != nil {
			result.Success = false
			result.StoppedOn = i + 1
			result.StoppedReason = fmt.Sprintf("action %d (%s) failed: %v", i+1, action, err)
			break
		}
		result.Executed++
	}

	result.Robot = r.State()
	return result, nil
}

// Sense reads one sensor of a robot
func (s *simulationImpl) Sense(ctx context.Context, id int, sensor string) (*SenseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.robot(id)
	if err != nil {
		return nil, err
	}

	v, err := script.Sense(r, sensor)
	if err != nil {
		return nil, err
	}
	return &SenseResult{Sensor: strings.ToLower(sensor), Value: v, Robot: r.State()}, nil
}

// RunScript parses src and runs it on a robot. A robot error or the step
// limit ends the run and is reported in the result, not as an error.
func (s *simulationImpl) RunScript(ctx context.Context, id int, src string) (*ScriptResult, error) {
	prog, err := script.Parse("script", src)
	if err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.robot(id)
	if err != nil {
		return nil, err
	}

	stats, runErr := script.Run(ctx, prog, r, script.WithMaxSteps(s.maxSteps))
	result := &ScriptResult{
		Steps:   stats.Steps,
		Actions: stats.Actions,
		Robot:   r.State(),
	}
	if runErr != nil {
		result.Error = runErr.Error()
	}
	return result, nil
}

// ListWorlds lists the catalog
func (s *simulationImpl) ListWorlds(ctx context.Context) ([]*config.WorldInfo, error) {
	if s.catalog == nil {
		return nil, errors.New("no world catalog configured")
	}
	return s.catalog.ListWorlds()
}

// SaveWorld stores the walls and beepers of the current world in the catalog
func (s *simulationImpl) SaveWorld(ctx context.Context, name string) error {
	if s.catalog == nil {
		return errors.New("no world catalog configured")
	}

	s.mu.Lock()
	snap := s.world.Snapshot()
	s.mu.Unlock()

	return s.catalog.SaveWorld(name, snap)
}
