package render

import (
	"context"
	"errors"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/chaoscope/internal/diverge"
	"github.com/san-kum/chaoscope/internal/dynamo"
	"github.com/san-kum/chaoscope/internal/mapping"
)

// ErrMemoryBudget rejects an allocation that would push the session
// past its memory budget. The session stays usable: existing frames
// can still be viewed, scrubbed and probed.
var ErrMemoryBudget = errors.New("render: session memory budget exhausted")

// DefaultMaxBytes caps cells plus frame history at 1 GiB.
const DefaultMaxBytes = 1 << 30

// FieldSet is one frame: every view recorded from the same cell
// states, so switching views never re-simulates.
type FieldSet struct {
	fields []*diverge.Field
}

func newFieldSet(res int) *FieldSet {
	fs := &FieldSet{fields: make([]*diverge.Field, len(diverge.Views()))}
	for i := range fs.fields {
		fs.fields[i] = diverge.NewField(res)
	}
	return fs
}

// Field returns the frame's field for one view.
func (fs *FieldSet) Field(v diverge.View) *diverge.Field {
	return fs.fields[int(v)]
}

func (fs *FieldSet) Clone() *FieldSet {
	out := &FieldSet{fields: make([]*diverge.Field, len(fs.fields))}
	for i, f := range fs.fields {
		out.fields[i] = f.Clone()
	}
	return out
}

// Probe is a read-only look at one live cell.
type Probe struct {
	State  dynamo.State
	Time   float64
	Chunks int
	Valid  bool
	Record [4]float32
}

// Session holds one live cell per pixel and a snapshot history. Each
// Advance steps every cell by the frame cadence and appends a frame;
// Seek moves the cursor through recorded frames without touching the
// cells.
type Session struct {
	sys      dynamo.System
	newInteg func() dynamo.Integrator
	cfg      diverge.Config
	res      int
	perFrame int
	workers  int
	maxBytes int64
	log      *zap.Logger

	cells  []*diverge.Cell
	snap   *diverge.PingPong[*FieldSet]
	frames []*FieldSet
	cursor int
	goal   int
	used   int64
}

// SessionOptions configures a session. Zero values pick defaults.
type SessionOptions struct {
	Workers  int
	MaxBytes int64
	// ChunksBetweenSamples is how many extra chunks run between
	// recorded frames. Zero records every chunk.
	ChunksBetweenSamples int
	Log                  *zap.Logger
}

// NewSession maps every pixel through the stack, allocates its cell,
// and records frame zero. Fails with ErrMemoryBudget before any
// allocation if the cells alone would exceed the budget.
func NewSession(sys dynamo.System, newInteg func() dynamo.Integrator, cfg diverge.Config, stack *mapping.Stack, res int, opts SessionOptions) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		sys:      sys,
		newInteg: newInteg,
		cfg:      cfg,
		res:      res,
		perFrame: opts.ChunksBetweenSamples + 1,
		workers:  opts.Workers,
		maxBytes: opts.MaxBytes,
		log:      opts.Log,
	}
	if s.workers <= 0 {
		s.workers = runtime.NumCPU()
	}
	if s.maxBytes <= 0 {
		s.maxBytes = DefaultMaxBytes
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}

	cellBytes := s.cellBytes()
	if cellBytes+s.frameBytes() > s.maxBytes {
		return nil, ErrMemoryBudget
	}
	s.used = cellBytes

	s.cells = make([]*diverge.Cell, res*res)
	s.forEachCell(context.Background(), func(i int, _ dynamo.Integrator) {
		px, py := i%res, i/res
		u, v := mapping.PixelCenter(px, py, res)
		x0, p := stack.At(u, v).Realize(sys)

		var rng *rand.Rand
		if cfg.Mode == diverge.OffsetGaussian {
			rng = rand.New(rand.NewSource(cfg.Seed + int64(i)))
		}
		s.cells[i] = diverge.NewCell(sys, cfg, x0, p, rng)
	})

	s.snap = diverge.NewPingPong(newFieldSet(res), newFieldSet(res))
	s.commitFrame()
	return s, nil
}

// Advance runs every cell up to the next frame boundary and records
// a new frame. On error the history is untouched and the next call
// resumes from wherever the cells stopped, so a cancelled frame can
// be finished later.
func (s *Session) Advance(ctx context.Context) error {
	if s.used+s.frameBytes() > s.maxBytes {
		return ErrMemoryBudget
	}

	goal := s.goal + s.perFrame
	start := time.Now()

	var firstErr error
	var mu sync.Mutex
	s.forEachCell(ctx, func(i int, integ dynamo.Integrator) {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			return
		}
		c := s.cells[i]
		for c.Chunks() < goal {
			c.Chunk(s.sys, integ)
		}
	})
	if firstErr != nil {
		return firstErr
	}

	s.goal = goal
	s.commitFrame()
	s.log.Debug("frame advanced",
		zap.Int("frame", len(s.frames)-1),
		zap.Int("chunks", s.goal),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// commitFrame records every view into the back snapshot, makes it
// current, and appends a copy to the history.
func (s *Session) commitFrame() {
	back := s.snap.Back()
	for _, view := range diverge.Views() {
		f := back.Field(view)
		for i, c := range s.cells {
			f.Set(i%s.res, i/s.res, c.Record(view))
		}
	}
	s.snap.Swap()

	s.frames = append(s.frames, s.snap.Front().Clone())
	s.used += s.frameBytes()
	s.cursor = len(s.frames) - 1
}

// forEachCell splits the cell range across workers, one integrator
// per worker.
func (s *Session) forEachCell(ctx context.Context, fn func(i int, integ dynamo.Integrator)) {
	n := len(s.cells)
	chunkSize := (n + s.workers - 1) / s.workers

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			lo := worker * chunkSize
			hi := lo + chunkSize
			if hi > n {
				hi = n
			}

			integ := s.newInteg()
			for i := lo; i < hi; i++ {
				fn(i, integ)
			}
		}(w)
	}
	wg.Wait()
}

// Frames returns how many frames have been recorded.
func (s *Session) Frames() int { return len(s.frames) }

// Frame returns recorded frame i. Frames are immutable once committed.
func (s *Session) Frame(i int) *FieldSet { return s.frames[i] }

// Cursor returns the index of the current frame.
func (s *Session) Cursor() int { return s.cursor }

// Current returns the frame under the cursor.
func (s *Session) Current() *FieldSet { return s.frames[s.cursor] }

// Seek moves the cursor to frame i, clamped to the recorded range.
// Cells are not touched, so seeking backward never re-simulates.
func (s *Session) Seek(i int) {
	if i < 0 {
		i = 0
	}
	if i >= len(s.frames) {
		i = len(s.frames) - 1
	}
	s.cursor = i
}

// Probe reads one live cell without disturbing it. The record shown
// is the requested view at the cell's present state, which can be
// ahead of the frame under the cursor.
func (s *Session) Probe(px, py int, view diverge.View) Probe {
	c := s.cells[py*s.res+px]
	return Probe{
		State:  c.Reference(),
		Time:   c.Time(),
		Chunks: c.Chunks(),
		Valid:  c.Valid(),
		Record: c.Record(view),
	}
}

// Resolution returns the session's field resolution.
func (s *Session) Resolution() int { return s.res }

func (s *Session) frameBytes() int64 {
	return int64(len(diverge.Views())) * int64(s.res) * int64(s.res) * 4 * 4
}

// cellBytes estimates the resident cost of the live cells: two state
// slabs per cell plus fixed overhead.
func (s *Session) cellBytes() int64 {
	dim := s.sys.StateDim()
	perCell := int64(2*(s.cfg.Samples+1)*dim*8) + 256
	return int64(s.res) * int64(s.res) * perCell
}
