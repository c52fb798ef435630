package render

import (
	"bufio"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
)

// WriteSVG draws f as an SVG document. Coordinates are rounded to whole
// pixels.
func WriteSVG(out io.Writer, f Frame) error {
	w := bufio.NewWriter(out)
	c := f.Canvas

	canvas := svg.New(w)
	canvas.Startview(c.M, c.N, 0, 0, c.M, c.N)
	canvas.Rect(0, 0, c.M, c.N, `fill="white"`)

	for _, l := range f.Axes {
		drawLine(canvas, l)
	}
	for _, t := range f.Ticks {
		canvas.Text(px(t.At.X), px(t.At.Y), t.Text, textAttrs(t.Size, t.Color)...)
	}
	for _, l := range f.Walls {
		drawLine(canvas, l)
	}

	beeperFont := min(c.Block/2, 20)
	for _, b := range f.Beepers {
		cx, cy := px(b.Center.X), px(b.Center.Y)
		canvas.Circle(cx, cy, px(b.Radius), `fill="black"`)
		canvas.Text(cx, cy, b.Label, textAttrs(beeperFont, "white")...)
	}

	for _, r := range f.Robots {
		xs := make([]int, len(r.Points))
		ys := make([]int, len(r.Points))
		for i, p := range r.Points {
			xs[i], ys[i] = px(p.X), px(p.Y)
		}
		attrs := []string{fmt.Sprintf(`data-robot="%d"`, r.ID), fmt.Sprintf(`fill="%s"`, r.Color)}
		if r.Style == StyleImage {
			attrs = append(attrs, `stroke="black"`, `stroke-width="2"`)
		}
		canvas.Polygon(xs, ys, attrs...)
	}

	canvas.End()
	return w.Flush()
}

func drawLine(canvas *svg.SVG, l Line) {
	canvas.Line(px(l.From.X), px(l.From.Y), px(l.To.X), px(l.To.Y),
		fmt.Sprintf(`stroke="%s"`, l.Color), fmt.Sprintf(`stroke-width="%d"`, l.Width))
}

func textAttrs(size int, color string) []string {
	return []string{
		`font-family="Times"`,
		fmt.Sprintf(`font-size="%d"`, size),
		`text-anchor="middle"`,
		`dominant-baseline="middle"`,
		fmt.Sprintf(`fill="%s"`, color),
	}
}

func px(v float64) int {
	return int(math.Round(v))
}
