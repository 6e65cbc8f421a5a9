package pipeline

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// rowBand is a half-open range of rows [y0, y1).
type rowBand struct {
	y0, y1 int
}

// rowBands splits h rows into at most workers contiguous bands.
func rowBands(h, workers int) []rowBand {
	if h <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > h {
		workers = h
	}
	bands := make([]rowBand, 0, workers)
	step := (h + workers - 1) / workers
	for y := 0; y < h; y += step {
		bands = append(bands, rowBand{y0: y, y1: min(y+step, h)})
	}
	return bands
}

// runBands calls fn once per band on at most workers goroutines and waits
// for all of them. A panic inside fn is returned as ErrProcessing.
func runBands(bands []rowBand, workers int, fn func(i int, b rowBand)) error {
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, b := range bands {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: rows %d-%d: %v", ErrProcessing, b.y0, b.y1, r)
				}
			}()
			fn(i, b)
			return nil
		})
	}
	return g.Wait()
}
