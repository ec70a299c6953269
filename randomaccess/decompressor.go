package randomaccess

import (
	"context"
	"io"

	"github.com/grailbio/bamra/encoding/bgzf"
	"github.com/grailbio/base/errors"
)

// RawBlockSource is anything that yields raw BGZF blocks in order, one at a
// time, terminating with io.EOF. bgzf.BlockSource satisfies this.
type RawBlockSource interface {
	Next() (bgzf.RawBlock, error)
}

// Decompressor turns a raw-block stream into a same-ordered stream of
// decompressed blocks, per §4.4. With Workers <= 1 it decompresses
// synchronously on the caller's goroutine; with Workers >= 2 it prefetches
// up to Workers blocks ahead and reaps them in submission order, using a
// per-task future channel rather than a shared results channel so the FIFO
// join is structural rather than a fan-out/fan-in reorder (see §9).
type Decompressor struct {
	src      RawBlockSource
	inflate  bgzf.Decompressor
	cache    bgzf.Cache
	sourceID string
	workers  int

	// pending holds in-flight (or already-satisfied) futures, oldest first.
	pending []chan blockResult
	// ctx is the cancelable context every prefetch task is submitted under,
	// constructor-time and later batches alike; cancel cancels it.
	ctx     context.Context
	cancel  context.CancelFunc
	errOnce *errors.Once
}

type blockResult struct {
	block bgzf.DecompressedBlock
	err   error
}

// NewDecompressor returns a Decompressor reading from src. workers <= 1
// means synchronous decompression; cache may be nil to disable memoization.
func NewDecompressor(ctx context.Context, src RawBlockSource, sourceID string, workers int, cache bgzf.Cache) *Decompressor {
	dctx, cancel := context.WithCancel(ctx)
	d := &Decompressor{
		src:      src,
		inflate:  bgzf.NewDecompressor(),
		cache:    cache,
		sourceID: sourceID,
		workers:  workers,
		ctx:      dctx,
		cancel:   cancel,
		errOnce:  new(errors.Once),
	}
	if workers >= 2 {
		d.fill(d.ctx)
	}
	return d
}

// fill tops up the prefetch queue to d.workers outstanding tasks.
func (d *Decompressor) fill(ctx context.Context) {
	for len(d.pending) < d.workers {
		raw, err := d.src.Next()
		ch := make(chan blockResult, 1)
		d.pending = append(d.pending, ch)
		if err != nil {
			ch <- blockResult{err: err}
			return // the stream ends (or errors) here; nothing more to submit
		}
		go func(raw bgzf.RawBlock, ch chan blockResult) {
			select {
			case <-ctx.Done():
				ch <- blockResult{err: ctx.Err()}
			default:
				blk, err := d.decompressOne(raw)
				ch <- blockResult{block: blk, err: err}
			}
		}(raw, ch)
	}
}

func (d *Decompressor) decompressOne(raw bgzf.RawBlock) (bgzf.DecompressedBlock, error) {
	if d.cache != nil {
		if blk, ok := d.cache.Get(bgzf.CacheKey{SourceID: d.sourceID, Offset: raw.StartOffset}); ok {
			return blk, nil
		}
	}
	blk, err := d.inflate.Decompress(raw)
	if err != nil {
		return bgzf.DecompressedBlock{}, err
	}
	if d.cache != nil {
		d.cache.Put(bgzf.CacheKey{SourceID: d.sourceID, Offset: raw.StartOffset}, blk)
	}
	return blk, nil
}

// Next returns the next decompressed block in raw-stream order.
func (d *Decompressor) Next(ctx context.Context) (bgzf.DecompressedBlock, error) {
	if d.workers < 2 {
		raw, err := d.src.Next()
		if err != nil {
			return bgzf.DecompressedBlock{}, err
		}
		blk, err := d.decompressOne(raw)
		if err != nil {
			return bgzf.DecompressedBlock{}, classifyBlockErr(err)
		}
		return blk, nil
	}

	if d.errOnce.Err() != nil {
		return bgzf.DecompressedBlock{}, d.errOnce.Err()
	}
	if len(d.pending) == 0 {
		return bgzf.DecompressedBlock{}, io.EOF
	}
	ch := d.pending[0]
	d.pending = d.pending[1:]

	var res blockResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		return bgzf.DecompressedBlock{}, ctx.Err()
	}
	if res.err != nil {
		classified := classifyBlockErr(res.err)
		d.errOnce.Set(classified)
		return bgzf.DecompressedBlock{}, classified
	}
	d.fill(d.ctx)
	return res.block, nil
}

// Close cancels any in-flight prefetch tasks; their results (if produced
// after cancellation) are discarded, per §4.4's cancellation contract.
func (d *Decompressor) Close() {
	d.cancel()
}
