package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/karel-grid/api"
	"github.com/wricardo/karel-grid/game/config"
	"github.com/wricardo/karel-grid/game/render"
	"github.com/wricardo/karel-grid/game/service"
	"github.com/wricardo/karel-grid/transport/mcp"
	"github.com/wricardo/karel-grid/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

func serveCommand(env config.Env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP viewer with websocket frames and an /mcp endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: env.Host, Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: env.Port, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "world", Aliases: []string{"w"}, Usage: "world to load at startup"},
			&cli.BoolFlag{Name: "ngrok", Usage: "share the viewer through an ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Value: env.NgrokToken, Usage: "ngrok auth token (or NGROK_AUTHTOKEN)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: serve,
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "serve the MCP tools over stdio",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "world", Aliases: []string{"w"}, Usage: "world to load at startup"},
			&cli.BoolFlag{Name: "viewer", Usage: "also start the HTTP viewer on a loopback port"},
		},
		Action: serveStdio,
	}
}

// simulation bundles a simulation with the recorder and hub that mirror it
type simulation struct {
	sim      service.SimulationService
	recorder *render.Recorder
	hub      *websocket.Hub
}

// newSimulation wires a simulation whose refreshes are recorded and
// broadcast to websocket viewers.
func newSimulation(ctx context.Context, cmd *cli.Command) (*simulation, error) {
	manager, profile, err := openCatalog(cmd)
	if err != nil {
		return nil, err
	}
	// load_world arrives from MCP clients; keep it inside the worlds directory
	manager.AllowPaths(false)

	recorder := render.NewRecorder()
	hub := websocket.NewHub()
	go hub.Run()
	recorder.OnUpdate(hub.Publish)

	sim, err := service.NewSimulation(manager, profile.Options(), service.WithObservers(recorder))
	if err != nil {
		return nil, fmt.Errorf("failed to create simulation: %w", err)
	}

	world := cmd.String("world")
	if world == "" {
		world = profile.World
	}
	if world != "" {
		if _, err := sim.LoadWorld(ctx, world); err != nil {
			return nil, err
		}
		log.Printf("Loaded world %s", world)
	}

	return &simulation{sim: sim, recorder: recorder, hub: hub}, nil
}

// handler mounts the viewer API and the MCP endpoint on one router
func (s *simulation) handler() http.Handler {
	apiServer := api.NewServer(s.sim, s.recorder, s.hub)
	mcpServer := mcp.NewServer(s.sim)
	apiServer.Router().HandleFunc("/mcp", mcpServer.HandleHTTP)
	return apiServer
}

// serve starts the HTTP server and, when enabled, an ngrok tunnel serving
// the same handler. It returns after ctx is cancelled and both have stopped.
func serve(ctx context.Context, cmd *cli.Command) error {
	s, err := newSimulation(ctx, cmd)
	if err != nil {
		return err
	}
	handler := s.handler()

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port")))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("Viewer: http://%s/", addr)
		log.Printf("WebSocket: ws://%s/ws", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runTunnel(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler)
		}()
	}

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// runTunnel serves handler through ngrok until ctx is cancelled
func runTunnel(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  Viewer (ngrok): %s/", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// serveStdio runs the MCP stdio server. With --viewer it also serves the
// HTTP viewer on a random loopback port so the run can be watched.
func serveStdio(ctx context.Context, cmd *cli.Command) error {
	s, err := newSimulation(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("viewer") {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		httpServer := &http.Server{Handler: s.handler()}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Viewer server error: %v", err)
			}
		}()
		defer httpServer.Close()
		log.Printf("Viewer: http://%s/", listener.Addr())
	}

	log.Println("MCP stdio server ready")
	return mcp.NewServer(s.sim).ServeStdio()
}
