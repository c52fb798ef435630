package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	headerHeight   = 24
	fallbackWidth  = 650
	fallbackHeight = 650
	reconnectDelay = 2 * time.Second
)

// Point is a pixel coordinate with the origin at the top-left of the canvas
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Cell is a grid coordinate
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Canvas mirrors the server's canvas geometry
type Canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Block  int `json:"block"`
	M      int `json:"m"`
	N      int `json:"n"`
}

// Line is a straight stroke
type Line struct {
	From  Point  `json:"from"`
	To    Point  `json:"to"`
	Color string `json:"color"`
	Width int    `json:"width"`
}

// Label is text centred on a point
type Label struct {
	At    Point  `json:"at"`
	Text  string `json:"text"`
	Color string `json:"color"`
	Size  int    `json:"size"`
}

// BeeperMarker is a disc with the pile count written on it
type BeeperMarker struct {
	Cell   Cell    `json:"cell"`
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
	Label  string  `json:"label"`
}

// RobotGlyph is the polygon drawn for one robot
type RobotGlyph struct {
	ID      int     `json:"id"`
	Cell    Cell    `json:"cell"`
	Heading int     `json:"heading"`
	Style   string  `json:"style"`
	Points  []Point `json:"points"`
	Color   string  `json:"color"`
}

// Frame is one refresh of the world as sent by the server
type Frame struct {
	Canvas  Canvas         `json:"canvas"`
	Axes    []Line         `json:"axes"`
	Ticks   []Label        `json:"ticks"`
	Walls   []Line         `json:"walls"`
	Beepers []BeeperMarker `json:"beepers"`
	Robots  []RobotGlyph   `json:"robots"`
}

// Event names the change that produced a frame
type Event struct {
	Type string `json:"type"`
}

// Update is one recorded refresh
type Update struct {
	Seq   uint64 `json:"seq"`
	Event Event  `json:"event"`
	Frame Frame  `json:"frame"`
}

// WSMessage is the websocket message wrapper
type WSMessage struct {
	Type   string  `json:"type"`
	Update *Update `json:"update,omitempty"`
}

// Viewer draws the latest frame received from a simulator
type Viewer struct {
	addr string

	mu        sync.RWMutex
	frame     *Frame
	seq       uint64
	event     string
	connected bool
	paused    bool
	status    string
}

// NewViewer creates a viewer for the simulator at addr (host:port)
func NewViewer(addr string) *Viewer {
	return &Viewer{addr: addr, status: "connecting..."}
}

// fetchFrame loads the current frame over HTTP so the window is not blank
// until the next refresh.
func (v *Viewer) fetchFrame() error {
	u := url.URL{Scheme: "http", Host: v.addr, Path: "/api/frame"}
	resp, err := http.Get(u.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	var f Frame
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return fmt.Errorf("failed to parse frame: %w", err)
	}

	v.mu.Lock()
	if v.frame == nil {
		v.frame = &f
	}
	v.mu.Unlock()
	return nil
}

// listen keeps a websocket connection open, reconnecting after failures
func (v *Viewer) listen() {
	wsURL := url.URL{Scheme: "ws", Host: v.addr, Path: "/ws"}
	for {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
		if err != nil {
			v.setStatus(false, fmt.Sprintf("disconnected: %v", err))
			time.Sleep(reconnectDelay)
			continue
		}
		log.Printf("WebSocket connected to %s", wsURL.String())
		v.setStatus(true, "live")

		v.read(conn)
		conn.Close()
		v.setStatus(false, "disconnected, retrying...")
		time.Sleep(reconnectDelay)
	}
}

func (v *Viewer) read(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error: %v", err)
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}
		if msg.Type != "frame" || msg.Update == nil {
			continue
		}

		v.mu.Lock()
		if !v.paused {
			frame := msg.Update.Frame
			v.frame = &frame
			v.seq = msg.Update.Seq
			v.event = msg.Update.Event.Type
		}
		v.mu.Unlock()
	}
}

func (v *Viewer) setStatus(connected bool, status string) {
	v.mu.Lock()
	v.connected = connected
	v.status = status
	v.mu.Unlock()
}

// Update handles keyboard input: space pauses, R refetches the frame
func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.mu.Lock()
		v.paused = !v.paused
		v.mu.Unlock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.mu.Lock()
		v.frame = nil
		v.mu.Unlock()
		go func() {
			if err := v.fetchFrame(); err != nil {
				log.Printf("Failed to fetch frame: %v", err)
			}
		}()
	}
	return nil
}

// Draw renders the header and the latest frame
func (v *Viewer) Draw(screen *ebiten.Image) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	screen.Fill(color.White)

	status := v.status
	if v.paused {
		status += " (paused)"
	}
	if v.event != "" {
		status = fmt.Sprintf("%s  #%d %s", status, v.seq, v.event)
	}
	ebitenutil.DebugPrintAt(screen, status, 4, 4)

	if v.frame == nil {
		ebitenutil.DebugPrintAt(screen, "Waiting for the first frame...", 4, headerHeight)
		return
	}
	drawFrame(screen, v.frame)
}

// Layout sizes the window to the canvas of the latest frame
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.frame == nil || v.frame.Canvas.M == 0 {
		return fallbackWidth, fallbackHeight + headerHeight
	}
	return v.frame.Canvas.M, v.frame.Canvas.N + headerHeight
}

func drawFrame(screen *ebiten.Image, f *Frame) {
	for _, l := range f.Axes {
		drawLine(screen, l)
	}
	for _, t := range f.Ticks {
		drawLabel(screen, t.At, t.Text)
	}
	for _, l := range f.Walls {
		drawLine(screen, l)
	}

	for _, b := range f.Beepers {
		cx, cy := float32(b.Center.X), float32(b.Center.Y+headerHeight)
		vector.DrawFilledCircle(screen, cx, cy, float32(b.Radius), colorByName("beeper"), true)
		vector.StrokeCircle(screen, cx, cy, float32(b.Radius), 1, color.Black, true)
		drawLabel(screen, b.Center, b.Label)
	}

	for _, r := range f.Robots {
		drawPolygon(screen, r.Points, colorByName(r.Color))
	}
}

func drawLine(screen *ebiten.Image, l Line) {
	width := float32(l.Width)
	if width <= 0 {
		width = 1
	}
	vector.StrokeLine(screen,
		float32(l.From.X), float32(l.From.Y+headerHeight),
		float32(l.To.X), float32(l.To.Y+headerHeight),
		width, colorByName(l.Color), true)
}

// drawPolygon strokes the closed outline through points
func drawPolygon(screen *ebiten.Image, points []Point, clr color.Color) {
	for i := range points {
		a := points[i]
		b := points[(i+1)%len(points)]
		vector.StrokeLine(screen,
			float32(a.X), float32(a.Y+headerHeight),
			float32(b.X), float32(b.Y+headerHeight),
			2, clr, true)
	}
}

// drawLabel centres text on p using the debug font (6x16 per glyph)
func drawLabel(screen *ebiten.Image, p Point, text string) {
	x := int(p.X) - 3*len([]rune(text))
	y := int(p.Y) + headerHeight - 8
	ebitenutil.DebugPrintAt(screen, text, x, y)
}

// colorByName maps the color names used in frames
func colorByName(name string) color.Color {
	switch name {
	case "red":
		return color.RGBA{220, 0, 0, 255}
	case "blue":
		return color.RGBA{0, 0, 220, 255}
	case "beeper":
		return color.RGBA{200, 200, 200, 255}
	case "black":
		return color.Black
	default:
		return color.RGBA{50, 50, 50, 255}
	}
}

func main() {
	addr := flag.String("addr", "localhost:8080", "simulator host:port (karel serve)")
	flag.Parse()

	viewer := NewViewer(*addr)
	if err := viewer.fetchFrame(); err != nil {
		log.Printf("Failed to fetch frame: %v (waiting for websocket)", err)
	}
	go viewer.listen()

	ebiten.SetWindowSize(fallbackWidth, fallbackHeight+headerHeight)
	ebiten.SetWindowTitle("Karel Grid")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
