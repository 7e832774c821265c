package render

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/chaoscope/internal/diverge"
	"github.com/san-kum/chaoscope/internal/dynamo"
	"github.com/san-kum/chaoscope/internal/mapping"
)

// Tiler renders one field in a single pass. Each pixel gets its own
// cell, each worker its own integrator, so nothing is shared between
// goroutines but the output field.
type Tiler struct {
	Sys      dynamo.System
	NewInteg func() dynamo.Integrator
	Cfg      diverge.Config
	Stack    *mapping.Stack
	Res      int
	TileSize int
	Chunks   int
	Workers  int
	Log      *zap.Logger
}

// Render runs every cell for the configured number of chunks and
// records the requested view. The context is checked before each
// tile; any tile failure aborts the whole frame.
func (t *Tiler) Render(ctx context.Context, view diverge.View) (*diverge.Field, error) {
	if err := t.Cfg.Validate(); err != nil {
		return nil, err
	}
	workers := t.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	log := t.Log
	if log == nil {
		log = zap.NewNop()
	}

	field := diverge.NewField(t.Res)
	tiles := Tiles(t.Res, t.TileSize)
	start := time.Now()

	var wg sync.WaitGroup
	errs := make([]error, workers)
	chunkSize := (len(tiles) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			lo := worker * chunkSize
			hi := lo + chunkSize
			if hi > len(tiles) {
				hi = len(tiles)
			}

			integ := t.NewInteg()
			for _, tile := range tiles[lo:hi] {
				if err := ctx.Err(); err != nil {
					errs[worker] = &TileError{Tile: tile, Err: err}
					return
				}
				t.renderTile(tile, view, integ, field)
			}
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	log.Info("frame rendered",
		zap.Int("resolution", t.Res),
		zap.Int("tiles", len(tiles)),
		zap.Int("workers", workers),
		zap.Int("chunks", t.Chunks),
		zap.String("view", view.String()),
		zap.Duration("elapsed", time.Since(start)))
	return field, nil
}

func (t *Tiler) renderTile(tile Tile, view diverge.View, integ dynamo.Integrator, field *diverge.Field) {
	for py := tile.Y0; py < tile.Y1; py++ {
		for px := tile.X0; px < tile.X1; px++ {
			cell := t.newCell(px, py)
			for k := 0; k < t.Chunks; k++ {
				cell.Chunk(t.Sys, integ)
			}
			field.Set(px, py, cell.Record(view))
		}
	}
}

// newCell maps the pixel center through the stack and seeds the
// cell. Gaussian offsets get a per-pixel source so the result does
// not depend on worker scheduling.
func (t *Tiler) newCell(px, py int) *diverge.Cell {
	u, v := mapping.PixelCenter(px, py, t.Res)
	x0, p := t.Stack.At(u, v).Realize(t.Sys)

	var rng *rand.Rand
	if t.Cfg.Mode == diverge.OffsetGaussian {
		rng = rand.New(rand.NewSource(t.Cfg.Seed + int64(py)*int64(t.Res) + int64(px)))
	}
	return diverge.NewCell(t.Sys, t.Cfg, x0, p, rng)
}
