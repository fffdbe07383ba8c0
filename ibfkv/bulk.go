package ibfkv

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/go-ibf/ibf"
)

// hashedRecord pairs a record with its precomputed primary and reverse
// positioning seeds, so the sequential Add loop in BulkLoad does no
// hashing of its own.
type hashedRecord struct {
	record      ibf.Record
	primarySeed uint32
	reverseSeed uint32
}

// BulkLoad adds many records to p, computing each record's hash seeds
// concurrently before applying them one at a time. Cell mutation stays
// single-threaded, matching the rest of the sketch's concurrency model;
// only the hashing, which dominates cost for a large batch with a
// non-trivial value hasher, is parallelized.
func (p *Paired) BulkLoad(ctx context.Context, records []ibf.Record) error {
	hashed := make([]hashedRecord, len(records))
	g, ctx := errgroup.WithContext(ctx)
	workers := runtime.GOMAXPROCS(0)
	if workers > len(records) {
		workers = len(records)
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (len(records) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= len(records) {
			break
		}
		if end > len(records) {
			end = len(records)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				hashed[i] = hashedRecord{
					record:      records[i],
					primarySeed: p.Primary.Seed(records[i]),
					reverseSeed: p.Reverse.Seed(records[i]),
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, h := range hashed {
		p.Primary.AddSeeded(h.primarySeed, h.record.ID)
		p.Reverse.AddSeeded(h.reverseSeed, h.record.ID)
	}
	return nil
}
