// Package render draws the arena as a character grid once per clock tick.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/arena/internal/core/models"
	"github.com/zeusync/arena/internal/core/observability/log"
	"github.com/zeusync/arena/internal/core/sim"
)

const (
	Empty = '.'

	DefaultViewWidth  = 80
	DefaultViewHeight = 30

	banner = "--------- NPC BATTLE --------"
	footer = "------------------------------"
)

// Legend lists each kind as glyph=Name(move/kill).
func Legend() string {
	parts := make([]string, 0, len(models.Kinds))
	for _, k := range models.Kinds {
		s := k.Spec()
		parts = append(parts, fmt.Sprintf("%c=%s(%d/%d)", s.Glyph, s.Name, s.MoveRange, s.KillRange))
	}
	return strings.Join(parts, " ")
}

// Grid returns height rows of width cells with one glyph per alive entity.
// Entities outside the grid are not drawn.
func Grid(entities []*models.Entity, width, height int) [][]byte {
	rows := make([][]byte, height)
	for y := range rows {
		rows[y] = bytes.Repeat([]byte{Empty}, width)
	}
	for _, e := range entities {
		if !e.IsAlive() {
			continue
		}
		p := e.Position()
		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		rows[p.Y][p.X] = e.Kind().Glyph()
	}
	return rows
}

type Option func(*Renderer)

// WithView limits the printed part of the grid to its top-left w x h cells.
func WithView(w, h int) Option {
	return func(r *Renderer) {
		r.viewW, r.viewH = w, h
	}
}

// WithSkipUnchanged prints only the header when the visible grid is identical
// to the previous frame.
func WithSkipUnchanged() Option {
	return func(r *Renderer) { r.skipUnchanged = true }
}

func WithLogger(l log.Log) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// Renderer writes frames to w. It is safe for concurrent use.
type Renderer struct {
	mu sync.Mutex
	w  io.Writer

	width, height int
	viewW, viewH  int
	skipUnchanged bool
	logger        log.Log

	last   uint64
	frames int
}

func New(w io.Writer, width, height int, opts ...Option) *Renderer {
	r := &Renderer{
		w:      w,
		width:  width,
		height: height,
		viewW:  DefaultViewWidth,
		viewH:  DefaultViewHeight,
		logger: log.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.viewW = min(r.viewW, width)
	r.viewH = min(r.viewH, height)
	return r
}

// Frame renders st as text and reports whether the visible grid changed
// since the previous frame.
func (r *Renderer) Frame(st sim.Status) (string, bool) {
	grid := Grid(st.Alive, r.width, r.height)

	h := xxhash.New()
	for _, row := range grid[:r.viewH] {
		_, _ = h.Write(row[:r.viewW])
	}
	sum := h.Sum64()

	r.mu.Lock()
	changed := r.frames == 0 || sum != r.last
	r.last = sum
	r.frames++
	r.mu.Unlock()

	var b strings.Builder
	b.WriteString(banner + "\n")
	fmt.Fprintf(&b, "Time: %d/%ds | Alive: %d | Pending fights: %d\n",
		int(st.Elapsed/time.Second), int(st.Duration/time.Second), len(st.Alive), st.Pending)
	fmt.Fprintf(&b, "Map: %dx%d\n", r.width, r.height)
	b.WriteString(Legend() + "\n\n")
	if changed || !r.skipUnchanged {
		for _, row := range grid[:r.viewH] {
			b.Write(row[:r.viewW])
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString(footer + "\n")
	return b.String(), changed
}

// Render writes one frame.
func (r *Renderer) Render(st sim.Status) error {
	frame, _ := r.Frame(st)
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := io.WriteString(r.w, frame)
	return err
}

// OnTick is a sim.TickHook that logs write failures.
func (r *Renderer) OnTick(st sim.Status) {
	if err := r.Render(st); err != nil {
		r.logger.Warn("Failed to render frame", log.Error(err))
	}
}
