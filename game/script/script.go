package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultMaxSteps bounds the statements a single run may execute
const DefaultMaxSteps = 10000

var (
	ErrStepLimit     = errors.New("step limit exceeded")
	ErrUnknownSensor = errors.New("unknown sensor")
	ErrUnknownProc   = errors.New("unknown procedure")
	ErrUnknownAction = errors.New("unknown action")
)

// Robot is the set of operations a script can drive. *engine.Robot
// satisfies it.
type Robot interface {
	Move() error
	TurnLeft() error
	PutBeeper() error
	PickBeeper() error
	Destroy() error

	FrontIsClear() (bool, error)
	LeftIsClear() (bool, error)
	RightIsClear() (bool, error)
	BackIsClear() (bool, error)
	FacingNorth() (bool, error)
	FacingSouth() (bool, error)
	FacingEast() (bool, error)
	FacingWest() (bool, error)
	NextToABeeper() (bool, error)
	NextToARobot() (bool, error)
	AnyBeepersInBag() (bool, error)
}

var sensors = map[string]func(Robot) (bool, error){
	"front_is_clear":            Robot.FrontIsClear,
	"left_is_clear":             Robot.LeftIsClear,
	"right_is_clear":            Robot.RightIsClear,
	"back_is_clear":             Robot.BackIsClear,
	"facing_north":              Robot.FacingNorth,
	"facing_south":              Robot.FacingSouth,
	"facing_east":               Robot.FacingEast,
	"facing_west":               Robot.FacingWest,
	"next_to_a_beeper":          Robot.NextToABeeper,
	"next_to_a_robot":           Robot.NextToARobot,
	"any_beepers_in_beeper_bag": Robot.AnyBeepersInBag,
	"any_beepers_in_bag":        Robot.AnyBeepersInBag,
}

var actions = map[string]func(Robot) error{
	"move":       Robot.Move,
	"turnleft":   Robot.TurnLeft,
	"putbeeper":  Robot.PutBeeper,
	"pickbeeper": Robot.PickBeeper,
	"turnoff":    Robot.Destroy,
}

// Perform runs a single named action on r. Underscored spellings such as
// turn_left are accepted too.
func Perform(r Robot, action string) error {
	do, ok := actions[strings.ReplaceAll(strings.ToLower(action), "_", "")]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownAction, action)
	}
	return do(r)
}

// Sense reads a named sensor of r
func Sense(r Robot, sensor string) (bool, error) {
	read, ok := sensors[strings.ToLower(sensor)]
	if !ok {
		return false, fmt.Errorf("%w %q", ErrUnknownSensor, sensor)
	}
	return read(r)
}

// Actions returns the action names a script may use
func Actions() []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sensors returns the condition names a script may use
func Sensors() []string {
	names := make([]string, 0, len(sensors))
	for name := range sensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Program is a checked script ready to run
type Program struct {
	*File
	procs map[string]*Define
}

// Parse parses and checks a script. Unknown sensors, calls to undefined
// procedures and duplicate definitions are reported with their position.
func Parse(name, src string) (*Program, error) {
	file, err := scriptParser.ParseString(name, src)
	if err != nil {
		return nil, err
	}
	prog := &Program{File: file}
	if err := prog.check(); err != nil {
		return nil, err
	}
	return prog, nil
}

// ParseFile reads and parses the script at path
func ParseFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(path, string(data))
}

func (p *Program) check() error {
	p.procs = make(map[string]*Define)
	for _, item := range p.Items {
		if d := item.Define; d != nil {
			if _, dup := p.procs[d.Name]; dup {
				return fmt.Errorf("%s: procedure %q defined twice", d.Pos, d.Name)
			}
			p.procs[d.Name] = d
		}
	}

	for _, item := range p.Items {
		var err error
		if item.Define != nil {
			err = p.checkBlock(item.Define.Body)
		} else {
			err = p.checkBlock([]*Statement{item.Stmt})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Program) checkBlock(stmts []*Statement) error {
	for _, s := range stmts {
		var err error
		switch {
		case s.Repeat != nil:
			err = p.checkBlock(s.Repeat.Body)
		case s.While != nil:
			if err = s.While.Cond.check(); err == nil {
				err = p.checkBlock(s.While.Body)
			}
		case s.If != nil:
			if err = s.If.Cond.check(); err == nil {
				if err = p.checkBlock(s.If.Then); err == nil {
					err = p.checkBlock(s.If.Else)
				}
			}
		case s.Call != "":
			if _, ok := p.procs[s.Call]; !ok {
				err = fmt.Errorf("%s: %w %q", s.Pos, ErrUnknownProc, s.Call)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Condition) check() error {
	if _, ok := sensors[c.Sensor]; !ok {
		return fmt.Errorf("%s: %w %q", c.Pos, ErrUnknownSensor, c.Sensor)
	}
	return nil
}

// Stats reports what a run did
type Stats struct {
	Steps   int `json:"steps"`
	Actions int `json:"actions"`
}

// Option configures a run
type Option func(*Context)

// WithMaxSteps overrides DefaultMaxSteps. Zero or negative removes the limit.
func WithMaxSteps(n int) Option {
	return func(c *Context) { c.maxSteps = n }
}

// Context is the state of one run
type Context struct {
	ctx      context.Context
	robot    Robot
	prog     *Program
	maxSteps int
	stats    Stats
}

// Run executes prog against r. It stops at the first robot error, which is
// returned unchanged, when the step limit is reached, or when ctx is done.
func Run(ctx context.Context, prog *Program, r Robot, opts ...Option) (Stats, error) {
	c := &Context{ctx: ctx, robot: r, prog: prog, maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(c)
	}
	if prog.procs == nil {
		if err := prog.check(); err != nil {
			return c.stats, err
		}
	}

	for _, item := range prog.Items {
		if item.Stmt == nil {
			continue
		}
		if err := item.Stmt.Exec(c); err != nil {
			return c.stats, err
		}
	}
	return c.stats, nil
}

func (c *Context) step() error {
	if err := c.ctx.Err(); err != nil {
		return err
	}
	c.stats.Steps++
	if c.maxSteps > 0 && c.stats.Steps > c.maxSteps {
		return fmt.Errorf("%w: %d", ErrStepLimit, c.maxSteps)
	}
	return nil
}

func execBlock(c *Context, stmts []*Statement) error {
	for _, s := range stmts {
		if err := s.Exec(c); err != nil {
			return err
		}
	}
	return nil
}

// Exec runs one statement
func (s *Statement) Exec(c *Context) error {
	if err := c.step(); err != nil {
		return err
	}

	switch {
	case s.Action != "":
		c.stats.Actions++
		return Perform(c.robot, s.Action)
	case s.Repeat != nil:
		for i := 0; i < s.Repeat.Count; i++ {
			if err := c.step(); err != nil {
				return err
			}
			if err := execBlock(c, s.Repeat.Body); err != nil {
				return err
			}
		}
	case s.While != nil:
		for {
			ok, err := s.While.Cond.Eval(c)
			if err != nil || !ok {
				return err
			}
			if err := execBlock(c, s.While.Body); err != nil {
				return err
			}
			if err := c.step(); err != nil {
				return err
			}
		}
	case s.If != nil:
		ok, err := s.If.Cond.Eval(c)
		if err != nil {
			return err
		}
		if ok {
			return execBlock(c, s.If.Then)
		}
		return execBlock(c, s.If.Else)
	case s.Call != "":
		d, ok := c.prog.procs[s.Call]
		if !ok {
			return fmt.Errorf("%s: %w %q", s.Pos, ErrUnknownProc, s.Call)
		}
		return execBlock(c, d.Body)
	}
	return nil
}

// Eval reads the sensor and applies the negation
func (cond *Condition) Eval(c *Context) (bool, error) {
	v, err := Sense(c.robot, cond.Sensor)
	if err != nil {
		return false, err
	}
	return v != cond.Not, nil
}
