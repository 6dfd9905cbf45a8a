// Copyright 2026 go-radiosky Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides the shared execution substrate for the
// transform engines. A Pool is created once and reused across many calls;
// each call supplies its own thread count, and the pool never runs a call
// on more workers than requested.
//
// Work units (rings, w-planes, row blocks) are handed out either as static
// interleaved chunks or via dynamic work stealing. Callers must write to
// disjoint output regions per chunk; the pool makes no ordering promise
// inside a chunk.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent worker pool. Workers are spawned once at creation
// and reused; every parallel call blocks the caller until complete.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

var (
	defaultPool *Pool
	defaultOnce sync.Once
)

// Default returns the shared process-wide pool, sized to GOMAXPROCS.
func Default() *Pool {
	defaultOnce.Do(func() {
		defaultPool = New(0)
	})
	return defaultPool
}

// New creates a pool with the given number of workers. If numWorkers <= 0,
// GOMAXPROCS is used.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the pool. Pending work completes; further parallel
// calls fall back to sequential execution. Safe to call multiple times.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// clampThreads resolves a caller-supplied thread count against the pool
// size and the amount of work.
func (p *Pool) clampThreads(nthreads, nwork int) int {
	if nthreads <= 0 {
		nthreads = p.numWorkers
	}
	return min(nthreads, p.numWorkers, nwork)
}

// Static executes fn over [0, nwork) split into contiguous chunks handed
// out round-robin to nthreads workers. chunk <= 0 selects one chunk per
// worker. nthreads <= 0 uses the pool size. Blocks until all work is done.
func (p *Pool) Static(nthreads, nwork, chunk int, fn func(lo, hi int)) {
	if nwork <= 0 {
		return
	}
	nthreads = p.clampThreads(nthreads, nwork)
	if chunk <= 0 {
		chunk = (nwork + nthreads - 1) / nthreads
	}
	if nthreads == 1 || chunk >= nwork || p.closed.Load() {
		fn(0, nwork)
		return
	}

	var wg sync.WaitGroup
	wg.Add(nthreads)
	for i := 0; i < nthreads; i++ {
		start := i * chunk
		if start >= nwork {
			wg.Done()
			continue
		}
		p.workC <- workItem{
			fn: func() {
				// Each worker walks its interleaved chunk sequence.
				for lo := start; lo < nwork; lo += nthreads * chunk {
					fn(lo, min(lo+chunk, nwork))
				}
			},
			barrier: &wg,
		}
	}
	wg.Wait()
}

// Dynamic executes fn over [0, nwork) using atomic work stealing in chunks
// of minChunk. Use when per-item cost varies (w-planes, variable-length
// rings). nthreads <= 0 uses the pool size. Blocks until all work is done.
func (p *Pool) Dynamic(nthreads, nwork, minChunk int, fn func(lo, hi int)) {
	if nwork <= 0 {
		return
	}
	if minChunk <= 0 {
		minChunk = 1
	}
	nthreads = p.clampThreads(nthreads, (nwork+minChunk-1)/minChunk)
	if nthreads == 1 || p.closed.Load() {
		fn(0, nwork)
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(nthreads)
	for i := 0; i < nthreads; i++ {
		p.workC <- workItem{
			fn: func() {
				for {
					lo := int(next.Add(int64(minChunk))) - minChunk
					if lo >= nwork {
						return
					}
					fn(lo, min(lo+minChunk, nwork))
				}
			},
			barrier: &wg,
		}
	}
	wg.Wait()
}
