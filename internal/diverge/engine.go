package diverge

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/chaoscope/internal/dynamo"
)

// MaxSamples caps the perturbed trajectories per pixel.
const MaxSamples = 32

// ratioFloor keeps log growth finite when trajectories coincide.
const ratioFloor = 1e-10

type OffsetMode uint8

const (
	OffsetFixed OffsetMode = iota
	OffsetGaussian
)

func (m OffsetMode) String() string {
	if m == OffsetGaussian {
		return "gaussian"
	}
	return "fixed"
}

func ParseOffsetMode(name string) (OffsetMode, error) {
	switch name {
	case "fixed":
		return OffsetFixed, nil
	case "gaussian":
		return OffsetGaussian, nil
	}
	return 0, fmt.Errorf("diverge: unknown perturbation mode %q", name)
}

// Config carries the per-pixel evolution settings. Validation happens
// at config load; cells assume a valid config.
type Config struct {
	Samples    int
	Scale      float64
	Mode       OffsetMode
	Seed       int64
	Dt         float64
	ChunkIters int
	Threshold  float64
}

func (c Config) Validate() error {
	if c.Samples < 1 || c.Samples > MaxSamples {
		return fmt.Errorf("diverge: perturbations must be 1..%d, got %d", MaxSamples, c.Samples)
	}
	if !(c.Scale > 0) {
		return fmt.Errorf("diverge: perturbation scale must be positive, got %g", c.Scale)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("diverge: dt must be positive, got %g", c.Dt)
	}
	if c.ChunkIters < 1 {
		return fmt.Errorf("diverge: iterations per chunk must be at least 1, got %d", c.ChunkIters)
	}
	if !(c.Threshold > 0) {
		return fmt.Errorf("diverge: threshold must be positive, got %g", c.Threshold)
	}
	return nil
}

// Cell evolves one pixel: a reference trajectory plus Samples perturbed
// ones, chunk by chunk, accumulating every view-mode statistic as it
// goes. Trajectory slabs ping-pong so a chunk always reads the previous
// chunk's committed states.
//
// A cell is owned by one goroutine at a time. Once any trajectory goes
// non-finite the cell latches invalid: accumulators freeze at their
// last finite values and the validity channel reports 0.
type Cell struct {
	cfg Config
	par dynamo.Params
	dim int

	states *PingPong[[]dynamo.State]
	d0     []float64
	maxLog []float64

	t     float64
	chunk int
	valid bool

	lastFTLE    float64
	lastMaxLog  float64
	lastMeanLog float64

	sumFTLE float64
	sumTime float64

	latchChunk int
	latched    bool

	pathLen      float64
	lastX, lastY float64
	hasPos       bool

	divChunk int
	maxSep   float64
}

// NewCell seeds a cell at x0. Offsets are drawn once: fixed mode cycles
// unit axes (sample j nudges coordinate j mod dim by +Scale), gaussian
// mode draws N(0, Scale) per coordinate from rng. rng may be nil in
// fixed mode.
func NewCell(sys dynamo.System, cfg Config, x0 dynamo.State, p dynamo.Params, rng *rand.Rand) *Cell {
	dim := sys.StateDim()
	n := cfg.Samples + 1

	front := makeSlab(n, dim)
	back := makeSlab(n, dim)
	copy(front[0], x0)

	c := &Cell{
		cfg:        cfg,
		par:        p,
		dim:        dim,
		states:     NewPingPong(front, back),
		d0:         make([]float64, cfg.Samples),
		maxLog:     make([]float64, cfg.Samples),
		valid:      x0.IsValid(),
		latchChunk: -1,
		divChunk:   -1,
	}

	for j := 0; j < cfg.Samples; j++ {
		s := front[j+1]
		copy(s, x0)
		if cfg.Mode == OffsetGaussian {
			for i := range s {
				s[i] += rng.NormFloat64() * cfg.Scale
			}
		} else {
			s[j%dim] += cfg.Scale
		}
		c.d0[j] = dynamo.Separation(sys, s, front[0])
		if c.d0[j] == 0 {
			c.d0[j] = cfg.Scale
		}
	}

	if pos, ok := sys.(dynamo.Positioned); ok && c.valid {
		c.lastX, c.lastY = pos.Position(x0, p)
		c.hasPos = true
	}
	return c
}

// makeSlab allocates n states of dim coordinates over one backing array.
func makeSlab(n, dim int) []dynamo.State {
	backing := make([]float64, n*dim)
	slab := make([]dynamo.State, n)
	for i := range slab {
		slab[i] = backing[i*dim : (i+1)*dim]
	}
	return slab
}

// Chunk advances every trajectory by ChunkIters steps and folds the
// results into the accumulators. The integrator is caller-supplied so
// one instance (and its scratch) serves a whole tile.
func (c *Cell) Chunk(sys dynamo.System, integ dynamo.Integrator) {
	if !c.valid {
		c.chunk++
		return
	}

	front := c.states.Front()
	back := c.states.Back()
	for i := range front {
		copy(back[i], front[i])
	}

	for j := range c.maxLog {
		c.maxLog[j] = math.Inf(-1)
	}

	dt := c.cfg.Dt
	for step := 0; step < c.cfg.ChunkIters; step++ {
		for i := range back {
			integ.Step(sys, back[i], c.par, c.t, dt, back[i])
		}
		c.t += dt

		for j := 0; j < c.cfg.Samples; j++ {
			d := dynamo.Separation(sys, back[j+1], back[0])
			if d > c.maxSep && d <= math.MaxFloat32 {
				c.maxSep = d
			}
			lg := math.Log(math.Max(d/c.d0[j], ratioFloor))
			if lg > c.maxLog[j] {
				c.maxLog[j] = lg
			}
		}
	}

	for i := range back {
		if !back[i].IsValid() {
			c.valid = false
			c.chunk++
			return
		}
	}
	c.states.Swap()

	maxLog, meanLog := math.Inf(-1), 0.0
	for _, lg := range c.maxLog {
		if lg > maxLog {
			maxLog = lg
		}
		meanLog += lg
	}
	meanLog /= float64(c.cfg.Samples)

	chunkTime := float64(c.cfg.ChunkIters) * dt
	c.lastMaxLog = maxLog
	c.lastMeanLog = meanLog
	c.lastFTLE = maxLog / chunkTime

	c.sumFTLE += c.lastFTLE * chunkTime
	c.sumTime += chunkTime

	if !c.latched && c.sumFTLE >= c.cfg.Threshold {
		c.latched = true
		c.latchChunk = c.chunk
	}
	if c.divChunk < 0 && c.maxSep > c.cfg.Threshold {
		c.divChunk = c.chunk
	}

	if pos, ok := sys.(dynamo.Positioned); ok {
		px, py := pos.Position(c.states.Front()[0], c.par)
		if c.hasPos {
			c.pathLen += math.Hypot(px-c.lastX, py-c.lastY)
		}
		c.lastX, c.lastY = px, py
		c.hasPos = true
	}

	c.chunk++
}

// Valid reports whether every trajectory is still finite.
func (c *Cell) Valid() bool { return c.valid }

// Chunks returns how many chunks have been applied.
func (c *Cell) Chunks() int { return c.chunk }

// Time returns the simulated time of the committed states.
func (c *Cell) Time() float64 { return c.t }

// Reference returns a copy of the committed reference state.
func (c *Cell) Reference() dynamo.State {
	return c.states.Front()[0].Clone()
}

// Record renders the cell into the four-float layout of view.
func (c *Cell) Record(view View) [4]float32 {
	valid := float32(0)
	if c.valid {
		valid = 1
	}

	switch view {
	case ViewInstant:
		return [4]float32{float32(c.lastFTLE), float32(c.lastMaxLog), float32(c.lastMeanLog), valid}

	case ViewAccumulated:
		mean := 0.0
		if c.sumTime > 0 {
			mean = c.sumFTLE / c.sumTime
		}
		return [4]float32{float32(mean), float32(c.sumFTLE), float32(c.sumTime), valid}

	case ViewThreshold:
		latched := float32(0)
		if c.latched {
			latched = 1
		}
		return [4]float32{float32(c.latchChunk), float32(c.sumFTLE), latched, valid}

	case ViewBobDist:
		return [4]float32{float32(c.pathLen), float32(c.lastX), float32(c.lastY), valid}

	case ViewDivTime:
		diverged := float32(0)
		if c.divChunk >= 0 {
			diverged = 1
		}
		return [4]float32{float32(c.divChunk), float32(c.maxSep), diverged, valid}

	case ViewPosition:
		var rec [4]float32
		ref := c.states.Front()[0]
		for i := 0; i < len(ref) && i < 4; i++ {
			rec[i] = float32(ref[i])
		}
		return rec
	}
	return [4]float32{}
}
