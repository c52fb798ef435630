package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/karel-grid/game/engine"
)

func newTestRobot(t *testing.T, x, y int, h engine.Heading, beepers int) (*engine.World, *engine.Robot) {
	t.Helper()
	w, err := engine.NewWorld(engine.Options{})
	require.NoError(t, err)
	r, err := engine.NewRobot(w, x, y, h, beepers)
	require.NoError(t, err)
	return w, r
}

func run(t *testing.T, src string, r Robot, opts ...Option) (Stats, error) {
	t.Helper()
	prog, err := Parse("test", src)
	require.NoError(t, err)
	return Run(context.Background(), prog, r, opts...)
}

func TestParse(t *testing.T) {
	src := `
# a comment
define turnright { turnleft turnleft turnleft }
move; turnright
repeat 3 { putbeeper }
while not facing_north { turnleft }
if next_to_a_beeper { pickbeeper } else { move }
turnoff
`
	prog, err := Parse("prog.k", src)
	require.NoError(t, err)
	require.Len(t, prog.Items, 7)
	assert.Equal(t, "turnright", prog.Items[0].Define.Name)
	assert.Equal(t, "move", prog.Items[1].Stmt.Action)
	assert.Equal(t, "turnright", prog.Items[2].Stmt.Call)
	assert.Equal(t, 3, prog.Items[3].Stmt.Repeat.Count)
	assert.True(t, prog.Items[4].Stmt.While.Cond.Not)
	assert.Equal(t, "facing_north", prog.Items[4].Stmt.While.Cond.Sensor)
	assert.Len(t, prog.Items[5].Stmt.If.Else, 1)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"unknown sensor", "while wall_ahead { move }", ErrUnknownSensor},
		{"unknown procedure", "move\njump", ErrUnknownProc},
		{"unknown procedure in body", "define a { b }", ErrUnknownProc},
		{"duplicate define", "define a { move }\ndefine a { move }", nil},
		{"unterminated block", "repeat 2 { move", nil},
		{"missing count", "repeat { move }", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad", tt.src)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walk.k")
	require.NoError(t, os.WriteFile(path, []byte("repeat 2 { move }\n"), 0644))

	prog, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, prog.Items, 1)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.k"))
	assert.Error(t, err)
}

func TestRunWalkToWall(t *testing.T) {
	w, r := newTestRobot(t, 1, 1, engine.East, 0)
	require.NoError(t, w.AddWall(5, 1, 5, -1))

	stats, err := run(t, "while front_is_clear { move }", r)
	require.NoError(t, err)
	assert.Equal(t, engine.Position{X: 5, Y: 1}, r.Position())
	assert.Equal(t, 4, stats.Actions)
}

func TestRunHarvest(t *testing.T) {
	w, r := newTestRobot(t, 1, 1, engine.East, 0)
	w.AddBeeper(2, 1)
	w.AddBeeper(3, 1)
	w.AddBeeper(3, 1)

	_, err := run(t, "repeat 3 { move while next_to_a_beeper { pickbeeper } }", r)
	require.NoError(t, err)
	assert.Equal(t, engine.Position{X: 4, Y: 1}, r.Position())
	assert.Equal(t, 3, r.Beepers())
	assert.Equal(t, 0, w.BeeperCountAt(3, 1))
}

func TestRunProcedures(t *testing.T) {
	w, r := newTestRobot(t, 1, 1, engine.North, 0)
	require.NoError(t, w.AddWall(1, 4, -1, 4))

	src := `
define turnright { turnleft turnleft turnleft }
define walk { if front_is_clear { move walk } }
walk
turnright
`
	_, err := run(t, src, r)
	require.NoError(t, err)
	assert.Equal(t, engine.Position{X: 1, Y: 4}, r.Position())
	assert.Equal(t, engine.East, r.Heading())
}

func TestRunIfElse(t *testing.T) {
	w, r := newTestRobot(t, 2, 2, engine.East, 1)

	src := "if not next_to_a_beeper { putbeeper } else { pickbeeper }"
	_, err := run(t, src, r)
	require.NoError(t, err)
	assert.Equal(t, 1, w.BeeperCountAt(2, 2))
	assert.Equal(t, 0, r.Beepers())

	_, err = run(t, src, r)
	require.NoError(t, err)
	assert.Equal(t, 0, w.BeeperCountAt(2, 2))
	assert.Equal(t, 1, r.Beepers())
}

func TestRunStats(t *testing.T) {
	_, r := newTestRobot(t, 1, 1, engine.East, 0)

	stats, err := run(t, "repeat 2 { move }", r)
	require.NoError(t, err)
	assert.Equal(t, Stats{Steps: 5, Actions: 2}, stats)
}

func TestRunStopsOnRobotError(t *testing.T) {
	_, r := newTestRobot(t, 1, 1, engine.East, 0)

	stats, err := run(t, "move pickbeeper move", r)
	assert.ErrorIs(t, err, engine.ErrNoBeeperHere)
	assert.Equal(t, 2, stats.Actions)
	assert.Equal(t, engine.Position{X: 2, Y: 1}, r.Position())

	_, err = run(t, "turnoff move", r)
	assert.ErrorIs(t, err, engine.ErrDestroyedRobot)
	assert.False(t, r.Alive())
}

func TestRunStepLimit(t *testing.T) {
	// bounds are advisory, so an unwalled robot walks east forever
	_, r := newTestRobot(t, 1, 1, engine.East, 0)

	stats, err := run(t, "while front_is_clear { move }", r, WithMaxSteps(50))
	assert.ErrorIs(t, err, ErrStepLimit)
	assert.Equal(t, 51, stats.Steps)
}

func TestRunCancelled(t *testing.T) {
	_, r := newTestRobot(t, 1, 1, engine.East, 0)
	prog, err := Parse("test", "move")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Run(ctx, prog, r)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, engine.Position{X: 1, Y: 1}, r.Position())
}

func TestRunEmptyRepeat(t *testing.T) {
	_, r := newTestRobot(t, 1, 1, engine.East, 0)
	prog, err := Parse("test", "repeat 9000000000000000000 { }")
	require.NoError(t, err)

	t.Run("Step limit", func(t *testing.T) {
		stats, err := Run(context.Background(), prog, r, WithMaxSteps(10))
		assert.ErrorIs(t, err, ErrStepLimit)
		assert.Equal(t, 11, stats.Steps)
	})

	t.Run("Deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := Run(ctx, prog, r, WithMaxSteps(0))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestSensors(t *testing.T) {
	names := Sensors()
	assert.Contains(t, names, "front_is_clear")
	assert.Contains(t, names, "any_beepers_in_beeper_bag")
	assert.Len(t, names, 12)
	assert.True(t, sort.StringsAreSorted(names))
	assert.Equal(t, names, Sensors())
}

func TestPerformAndSense(t *testing.T) {
	w, r := newTestRobot(t, 1, 1, engine.East, 1)

	require.NoError(t, Perform(r, "put_beeper"))
	assert.Equal(t, 1, w.BeeperCountAt(1, 1))

	require.NoError(t, Perform(r, "TurnLeft"))
	north, err := Sense(r, "facing_north")
	require.NoError(t, err)
	assert.True(t, north)

	assert.ErrorIs(t, Perform(r, "jump"), ErrUnknownAction)
	_, err = Sense(r, "is_happy")
	assert.ErrorIs(t, err, ErrUnknownSensor)

	assert.Equal(t, []string{"move", "pickbeeper", "putbeeper", "turnleft", "turnoff"}, Actions())
}
