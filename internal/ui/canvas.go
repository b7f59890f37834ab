package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type cell struct {
	r    rune
	tone tone
	// wide marks the second column of a double-width rune
	wide bool
}

// canvas is a fixed-size grid of styled cells. The calendar surface is drawn
// here so that the geometry used for hit-testing matches what is on screen.
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = cell{r: ' '}
		}
		c.cells[y] = row
	}
	return c
}

func (c *canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.w && y < c.h
}

// fill blanks a rectangle with tone t
func (c *canvas) fill(x, y, w, h int, t tone) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			if c.inside(x+dx, y+dy) {
				c.cells[y+dy][x+dx] = cell{r: ' ', tone: t}
			}
		}
	}
}

// tint changes the tone of a run without touching its text
func (c *canvas) tint(x, y, w int, t tone) {
	for dx := 0; dx < w; dx++ {
		if c.inside(x+dx, y) {
			c.cells[y][x+dx].tone = t
		}
	}
}

// text writes s at x, y clipped to maxW columns, with an ellipsis when cut
func (c *canvas) text(x, y, maxW int, s string, t tone) {
	if maxW <= 0 || y < 0 || y >= c.h {
		return
	}
	if runewidth.StringWidth(s) > maxW {
		s = runewidth.Truncate(s, maxW, "…")
	}

	col := x
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > x+maxW {
			break
		}
		if c.inside(col, y) {
			c.cells[y][col] = cell{r: r, tone: t}
		}
		if rw == 2 && c.inside(col+1, y) {
			c.cells[y][col+1] = cell{tone: t, wide: true}
		}
		col += rw
	}
}

// lines renders the grid, one styled run per tone change
func (c *canvas) lines() []string {
	out := make([]string, c.h)
	for y, row := range c.cells {
		var b strings.Builder
		var run strings.Builder
		current := toneNormal
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(toneStyles[current].Render(run.String()))
			run.Reset()
		}
		for _, cl := range row {
			if cl.wide {
				continue
			}
			if cl.tone != current {
				flush()
				current = cl.tone
			}
			run.WriteRune(cl.r)
		}
		flush()
		out[y] = b.String()
	}
	return out
}

func (c *canvas) String() string {
	return strings.Join(c.lines(), "\n")
}
