package diverge_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaoscope/internal/diverge"
	"github.com/san-kum/chaoscope/internal/dynamo"
	"github.com/san-kum/chaoscope/internal/integrators"
	"github.com/san-kum/chaoscope/internal/physics"
)

// runaway blows up in a handful of steps, exercising the invalid latch.
type runaway struct{}

func (runaway) Name() string  { return "runaway" }
func (runaway) StateDim() int { return 2 }
func (runaway) StateDims() []dynamo.Dimension {
	return []dynamo.Dimension{dynamo.DimTheta1, dynamo.DimOmega1}
}
func (runaway) ParamDims() []dynamo.Dimension { return nil }
func (runaway) Periodic(int) bool             { return false }

func (runaway) Derive(x dynamo.State, _ dynamo.Params, _ float64, dst dynamo.State) {
	dst[0] = x[0] * x[0] * 1e6
	dst[1] = x[1] * x[1] * 1e6
}

var _ = Describe("Cell", func() {
	var (
		sys *physics.DoublePendulum
		par dynamo.Params
		cfg diverge.Config
	)

	BeforeEach(func() {
		sys = physics.NewDoublePendulum()
		par = dynamo.Params{L1: 1, L2: 1, M1: 1, M2: 1, G: 9.81}
		cfg = diverge.Config{
			Samples:    4,
			Scale:      1e-7,
			Mode:       diverge.OffsetFixed,
			Dt:         0.002,
			ChunkIters: 5,
			Threshold:  0.05,
		}
	})

	chunks := func(c *diverge.Cell, n int) {
		integ := integrators.NewRK4()
		for i := 0; i < n; i++ {
			c.Chunk(sys, integ)
		}
	}

	It("validates its configuration", func() {
		Expect(cfg.Validate()).To(Succeed())

		bad := cfg
		bad.Samples = 0
		Expect(bad.Validate()).To(HaveOccurred())
		bad.Samples = diverge.MaxSamples + 1
		Expect(bad.Validate()).To(HaveOccurred())

		bad = cfg
		bad.Scale = 0
		Expect(bad.Validate()).To(HaveOccurred())

		bad = cfg
		bad.Dt = -0.01
		Expect(bad.Validate()).To(HaveOccurred())

		bad = cfg
		bad.ChunkIters = 0
		Expect(bad.Validate()).To(HaveOccurred())

		bad = cfg
		bad.Threshold = 0
		Expect(bad.Validate()).To(HaveOccurred())
	})

	It("is bit-identical across repeat runs in fixed mode", func() {
		run := func() []float32 {
			c := diverge.NewCell(sys, cfg, dynamo.State{2.5, 2.5, 0, 0}, par, nil)
			chunks(c, 40)
			var out []float32
			for _, v := range diverge.Views() {
				rec := c.Record(v)
				out = append(out, rec[:]...)
			}
			return out
		}
		Expect(run()).To(Equal(run()))
	})

	It("is reproducible in gaussian mode for a fixed seed", func() {
		run := func() [4]float32 {
			g := cfg
			g.Mode = diverge.OffsetGaussian
			rng := rand.New(rand.NewSource(7))
			c := diverge.NewCell(sys, g, dynamo.State{2.5, 2.5, 0, 0}, par, rng)
			chunks(c, 20)
			return c.Record(diverge.ViewAccumulated)
		}
		Expect(run()).To(Equal(run()))
	})

	It("integrates time monotonically", func() {
		c := diverge.NewCell(sys, cfg, dynamo.State{0.4, -0.1, 0, 0}, par, nil)
		prev := 0.0
		integ := integrators.NewVerlet()
		for i := 0; i < 25; i++ {
			c.Chunk(sys, integ)
			rec := c.Record(diverge.ViewAccumulated)
			Expect(float64(rec[2])).To(BeNumerically(">", prev))
			prev = float64(rec[2])
		}
		Expect(c.Time()).To(BeNumerically("~", 25*5*0.002, 1e-9))
	})

	It("measures strong growth for a chaotic start and weak for a regular one", func() {
		chaotic := diverge.NewCell(sys, cfg, dynamo.State{2.8, 2.8, 0, 0}, par, nil)
		regular := diverge.NewCell(sys, cfg, dynamo.State{0.05, 0.05, 0, 0}, par, nil)
		chunks(chaotic, 400)
		chunks(regular, 400)

		ch := chaotic.Record(diverge.ViewAccumulated)
		rg := regular.Record(diverge.ViewAccumulated)
		Expect(ch[3]).To(Equal(float32(1)))
		Expect(rg[3]).To(Equal(float32(1)))
		Expect(ch[0]).To(BeNumerically(">", rg[0]))
	})

	It("latches the threshold chunk permanently", func() {
		c := diverge.NewCell(sys, cfg, dynamo.State{2.9, 2.7, 0, 0}, par, nil)
		integ := integrators.NewRK4()

		latchAt := -1
		for i := 0; i < 600; i++ {
			c.Chunk(sys, integ)
			rec := c.Record(diverge.ViewThreshold)
			if rec[2] == 1 {
				latchAt = int(rec[0])
				break
			}
		}
		Expect(latchAt).To(BeNumerically(">=", 0), "chaotic start should cross the sum threshold")

		chunks(c, 100)
		rec := c.Record(diverge.ViewThreshold)
		Expect(int(rec[0])).To(Equal(latchAt))
		Expect(rec[2]).To(Equal(float32(1)))
	})

	It("freezes invalid cells without polluting the record", func() {
		c := diverge.NewCell(runaway{}, cfg, dynamo.State{1, 1}, dynamo.Params{}, nil)
		integ := integrators.NewRK4()
		for i := 0; i < 10; i++ {
			c.Chunk(runaway{}, integ)
		}

		Expect(c.Valid()).To(BeFalse())
		for _, v := range diverge.Views() {
			rec := c.Record(v)
			if v != diverge.ViewPosition {
				Expect(rec[3]).To(Equal(float32(0)), "validity channel for %s", v)
			}
			for ch := 0; ch < 3; ch++ {
				f := float64(rec[ch])
				Expect(math.IsNaN(f) || math.IsInf(f, 0)).To(BeFalse(),
					"channel %d of %s must stay finite", ch, v)
			}
		}
	})

	It("accumulates bob travel for a swinging pendulum", func() {
		c := diverge.NewCell(sys, cfg, dynamo.State{1.2, 0.3, 0, 0}, par, nil)
		chunks(c, 50)

		rec := c.Record(diverge.ViewBobDist)
		Expect(rec[3]).To(Equal(float32(1)))
		Expect(rec[0]).To(BeNumerically(">", 0))

		// Last position stays on the reachable disc.
		r := math.Hypot(float64(rec[1]), float64(rec[2]))
		Expect(r).To(BeNumerically("<=", par.L1+par.L2+1e-6))
	})

	It("reports the reference state through the position view", func() {
		x0 := dynamo.State{0.7, -0.4, 0.2, 0.1}
		c := diverge.NewCell(sys, cfg, x0, par, nil)

		rec := c.Record(diverge.ViewPosition)
		for i := range x0 {
			Expect(rec[i]).To(Equal(float32(x0[i])))
		}
	})
})

var _ = Describe("Twin", func() {
	var (
		sys *physics.DoublePendulum
		par dynamo.Params
	)

	BeforeEach(func() {
		sys = physics.NewDoublePendulum()
		par = dynamo.Params{L1: 1, L2: 1, M1: 1, M2: 1, G: 9.81}
	})

	It("latches within 20000 steps for the canonical near pair", func() {
		tw := diverge.NewTwin(
			dynamo.State{1.0, 0, 0, 0},
			dynamo.State{1.00001, 0, 0, 0},
			par, 0.05,
		)
		integ := integrators.NewVerlet()
		for i := 0; i < 20000 && !tw.Diverged(); i++ {
			tw.Step(sys, integ, 0.002)
		}
		Expect(tw.Diverged()).To(BeTrue())
		Expect(tw.DivergedAt).To(BeNumerically("<=", 20000))
	})

	It("never unlatches once diverged", func() {
		tw := diverge.NewTwin(
			dynamo.State{2.9, 2.9, 0, 0},
			dynamo.State{2.9001, 2.9, 0, 0},
			par, 0.01,
		)
		integ := integrators.NewRK4()
		for i := 0; i < 50000 && !tw.Diverged(); i++ {
			tw.Step(sys, integ, 0.002)
		}
		Expect(tw.Diverged()).To(BeTrue())

		at := tw.DivergedAt
		for i := 0; i < 2000; i++ {
			tw.Step(sys, integ, 0.002)
		}
		Expect(tw.DivergedAt).To(Equal(at))
		Expect(tw.Diverged()).To(BeTrue())
	})

	It("keeps coincident twins together", func() {
		x := dynamo.State{0.3, 0.1, 0, 0}
		tw := diverge.NewTwin(x, x, par, 0.05)
		integ := integrators.NewVerlet()
		for i := 0; i < 5000; i++ {
			tw.Step(sys, integ, 0.002)
		}
		Expect(tw.Diverged()).To(BeFalse())
		Expect(tw.Separation()).To(BeNumerically("<", 1e-12))
	})
})
