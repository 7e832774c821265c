package analysis

import (
	"math/rand"

	"github.com/san-kum/chaoscope/internal/diverge"
	"github.com/san-kum/chaoscope/internal/dynamo"
	"github.com/san-kum/chaoscope/internal/mapping"
)

// Reference evaluates cells one at a time on a single goroutine. It
// shares the cell engine with the renderer but none of its
// scheduling, so a tiled frame can be checked against it pixel by
// pixel, and single points can be probed without building a session.
type Reference struct {
	Sys   dynamo.System
	Integ dynamo.Integrator
	Cfg   diverge.Config
}

// Cell runs one initial condition for the given number of chunks and
// returns the finished cell for inspection.
func (r *Reference) Cell(x0 dynamo.State, p dynamo.Params, chunks int) *diverge.Cell {
	cell := diverge.NewCell(r.Sys, r.Cfg, x0, p, r.rng(0))
	for k := 0; k < chunks; k++ {
		cell.Chunk(r.Sys, r.Integ)
	}
	return cell
}

// Point maps a unit-square location through the stack and evaluates
// it, the probe path used by the CLI.
func (r *Reference) Point(stack *mapping.Stack, u, v float64, chunks int) *diverge.Cell {
	x0, p := stack.At(u, v).Realize(r.Sys)
	return r.Cell(x0, p, chunks)
}

// History evaluates a point chunk by chunk and returns the instant
// stretching rate after each chunk. Feeding the series to
// [PowerSpectrum] exposes periodicity a single end state would hide.
func (r *Reference) History(stack *mapping.Stack, u, v float64, chunks int) []float64 {
	x0, p := stack.At(u, v).Realize(r.Sys)
	cell := diverge.NewCell(r.Sys, r.Cfg, x0, p, r.rng(0))
	hist := make([]float64, 0, chunks)
	for k := 0; k < chunks; k++ {
		cell.Chunk(r.Sys, r.Integ)
		hist = append(hist, float64(cell.Record(diverge.ViewInstant)[0]))
	}
	return hist
}

// Field renders a whole field sequentially in pixel order. Gaussian
// offsets are seeded exactly as the tiled renderer seeds them, so the
// two must agree bit for bit.
func (r *Reference) Field(stack *mapping.Stack, res, chunks int, view diverge.View) *diverge.Field {
	field := diverge.NewField(res)
	for py := 0; py < res; py++ {
		for px := 0; px < res; px++ {
			u, v := mapping.PixelCenter(px, py, res)
			x0, p := stack.At(u, v).Realize(r.Sys)

			cell := diverge.NewCell(r.Sys, r.Cfg, x0, p, r.rng(int64(py)*int64(res)+int64(px)))
			for k := 0; k < chunks; k++ {
				cell.Chunk(r.Sys, r.Integ)
			}
			field.Set(px, py, cell.Record(view))
		}
	}
	return field
}

func (r *Reference) rng(pixel int64) *rand.Rand {
	if r.Cfg.Mode != diverge.OffsetGaussian {
		return nil
	}
	return rand.New(rand.NewSource(r.Cfg.Seed + pixel))
}
