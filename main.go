// Command karel runs the robot grid simulator.
//
// Subcommands:
//  1. "run" executes a robot script in a world, drawing the grid in the terminal after every action
//  2. "show" prints a world as text, SVG, JSON or a normalized world file
//  3. "serve" runs the HTTP viewer, a websocket stream of frames, and an /mcp endpoint
//  4. "mcp" serves the MCP tools over stdio, optionally with a loopback viewer
//  5. "validate" checks world files for problems
//
// Global flags pick the worlds directory, the YAML profile that sizes the
// world, and override its delay and debug settings. Defaults come from the
// environment and an optional .env file; KAREL_DELAY and KAREL_DEBUG sit
// between the profile and the flags.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/karel-grid/game/config"
	"github.com/wricardo/karel-grid/game/engine"
	"github.com/wricardo/karel-grid/game/loader"
	"github.com/wricardo/karel-grid/game/render"
	"github.com/wricardo/karel-grid/game/script"
	"github.com/wricardo/karel-grid/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "karel"
)

func main() {
	env := config.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(env).Run(ctx, os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

// newApp builds the command tree with defaults taken from env
func newApp(env config.Env) *cli.Command {
	return &cli.Command{
		Name:    AppName,
		Usage:   "robot grid simulator",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "worlds-dir",
				Value: env.WorldsDir,
				Usage: "directory containing .wld world files",
			},
			&cli.StringFlag{
				Name:  "config-dir",
				Value: env.ConfigDir,
				Usage: "directory containing YAML profiles",
			},
			&cli.StringFlag{
				Name:  "profile",
				Value: env.Profile,
				Usage: "profile name (configs/<name>.yaml)",
			},
			&cli.FloatFlag{
				Name:  "delay",
				Usage: "seconds to pause after every refresh (overrides the profile)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log a state line after every robot action (overrides the profile)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "include file and line in log output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			}
			return ctx, applyEnvOverrides(cmd, env)
		},
		Commands: []*cli.Command{
			runCommand(),
			showCommand(),
			serveCommand(env),
			mcpCommand(),
			validateCommand(),
		},
	}
}

// applyEnvOverrides fills --delay and --debug from KAREL_DELAY and
// KAREL_DEBUG unless they were given on the command line.
func applyEnvOverrides(cmd *cli.Command, env config.Env) error {
	if env.Delay != nil && !cmd.IsSet("delay") {
		if err := cmd.Set("delay", strconv.FormatFloat(*env.Delay, 'f', -1, 64)); err != nil {
			return fmt.Errorf("KAREL_DELAY: %w", err)
		}
	}
	if env.Debug != nil && !cmd.IsSet("debug") {
		if err := cmd.Set("debug", strconv.FormatBool(*env.Debug)); err != nil {
			return fmt.Errorf("KAREL_DEBUG: %w", err)
		}
	}
	return nil
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run a robot script",
		ArgsUsage: "<script>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "world", Aliases: []string{"w"}, Usage: "world to load (defaults to the profile's world)"},
			&cli.IntFlag{Name: "x", Value: 1, Usage: "starting column"},
			&cli.IntFlag{Name: "y", Value: 1, Usage: "starting row"},
			&cli.StringFlag{Name: "heading", Value: "east", Usage: "starting heading: east, north, west, south or degrees"},
			&cli.IntFlag{Name: "beepers", Value: 0, Usage: "beepers in the bag, -1 for infinite"},
			&cli.IntFlag{Name: "max-steps", Value: script.DefaultMaxSteps, Usage: "stop after this many statements, 0 for no limit"},
			&cli.BoolFlag{Name: "clear", Usage: "clear the terminal before every frame"},
		},
		Action: runScript,
	}
}

func runScript(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("run: missing script path")
	}
	out := cmd.Root().Writer

	prog, err := script.ParseFile(cmd.Args().First())
	if err != nil {
		return err
	}

	manager, profile, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	w, name, err := buildWorld(manager, profile, cmd.String("world"))
	if err != nil {
		return err
	}
	w.Subscribe(render.NewTextRenderer(out, cmd.Bool("clear")))
	w.Ready()

	heading, err := engine.ParseHeading(cmd.String("heading"))
	if err != nil {
		return err
	}
	robot, err := engine.NewRobot(w, int(cmd.Int("x")), int(cmd.Int("y")), heading, int(cmd.Int("beepers")))
	if err != nil {
		return err
	}

	stats, err := script.Run(ctx, prog, robot, script.WithMaxSteps(int(cmd.Int("max-steps"))))
	fmt.Fprintf(out, "%s: %d steps, %d actions in %s\n", filepath.Base(cmd.Args().First()), stats.Steps, stats.Actions, worldLabel(name))
	fmt.Fprintln(out, robot.String())
	if err != nil {
		return fmt.Errorf("script stopped: %w", err)
	}
	return nil
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "print a world",
		ArgsUsage: "[world]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "text, svg, json or wld"},
		},
		Action: showWorld,
	}
}

func showWorld(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	manager, profile, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	profile.Delay = 0
	w, _, err := buildWorld(manager, profile, cmd.Args().First())
	if err != nil {
		return err
	}
	snap := w.Snapshot()

	switch format := cmd.String("format"); format {
	case "text":
		_, err = io.WriteString(out, render.Text(snap))
	case "svg":
		err = render.WriteSVG(out, render.BuildFrame(snap))
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(snap)
	case "wld":
		err = loader.Write(out, snap)
	default:
		err = fmt.Errorf("show: unknown format %q", format)
	}
	return err
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check world files for problems",
		ArgsUsage: "[world ...]",
		Action:    validateWorlds,
	}
}

func validateWorlds(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer

	manager, profile, err := openCatalog(cmd)
	if err != nil {
		return err
	}

	var paths []string
	for _, name := range cmd.Args().Slice() {
		path, err := loader.Resolve(strings.TrimSuffix(name, loader.Extension), manager.WorldsDir())
		if err != nil {
			path = name
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		paths, err = filepath.Glob(filepath.Join(manager.WorldsDir(), "*"+loader.Extension))
		if err != nil {
			return fmt.Errorf("failed to list worlds: %w", err)
		}
	}

	allValid := true
	for _, path := range paths {
		result := validate.File(path, profile.Options())

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, e := range result.Errors {
				fmt.Fprintln(out, "  ❌ "+e)
			}
		}
		for _, info := range result.Info {
			fmt.Fprintln(out, "  "+info)
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return fmt.Errorf("some worlds have errors")
	}
	fmt.Fprintf(out, "✅ All %d worlds are valid!\n", len(paths))
	return nil
}

// openCatalog opens the world catalog and resolves the profile, applying the
// global --delay and --debug overrides. World names may also be file paths.
func openCatalog(cmd *cli.Command) (*config.Manager, *config.Profile, error) {
	manager, err := config.NewManager(cmd.String("worlds-dir"), cmd.String("config-dir"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create world catalog: %w", err)
	}
	manager.AllowPaths(true)

	profile, err := manager.LoadProfile(cmd.String("profile"))
	if err != nil {
		if cmd.IsSet("profile") {
			return nil, nil, err
		}
		profile = manager.GetDefault()
	}
	// Profiles are cached by the manager; overrides apply to a copy.
	p := *profile
	if cmd.IsSet("delay") {
		p.Delay = cmd.Float("delay")
	}
	if cmd.IsSet("debug") {
		p.Debug = cmd.Bool("debug")
	}
	if err := config.ValidateProfile(&p); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", config.ErrInvalidProfile, err)
	}
	return manager, &p, nil
}

// buildWorld creates a world sized by profile and populated from the named
// world file. An empty name falls back to the profile's world; an empty
// profile world leaves the grid bare.
func buildWorld(manager *config.Manager, profile *config.Profile, name string) (*engine.World, string, error) {
	if name == "" {
		name = profile.World
	}

	w, err := engine.NewWorld(profile.Options())
	if err != nil {
		return nil, "", err
	}
	if name == "" {
		return w, "", nil
	}

	wf, err := manager.LoadWorld(name)
	if err != nil {
		return nil, "", err
	}
	if err := wf.Apply(w); err != nil {
		return nil, "", err
	}
	return w, wf.Name, nil
}

func worldLabel(name string) string {
	if name == "" {
		return "an empty world"
	}
	return "world " + name
}
