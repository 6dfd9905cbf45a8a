// Copyright 2026 go-radiosky Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fft wraps gonum's FFTPACK-style plans with the conventions used
// by the transform engines: arbitrary lengths, unnormalized transforms
// (forward kernel e^{-2πi jk/n}, backward e^{+2πi jk/n}; a forward/backward
// round trip gains a factor n), a bounded plan cache, and a threaded 2-D
// complex transform.
//
// Plans returned by RealPlan and CmplxPlan are safe for concurrent use;
// each call borrows a per-goroutine gonum plan from an internal pool.
package fft

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/astrope/go-radiosky/sky/workerpool"
)

// planCacheSize bounds the number of distinct transform lengths whose
// plans are retained. Rings of many different lengths can occur in exotic
// pixelizations; old lengths are evicted LRU.
const planCacheSize = 64

var (
	realCache  *lru.Cache[int, *Real]
	cmplxCache *lru.Cache[int, *Cmplx]
	cacheOnce  sync.Once
)

func caches() (*lru.Cache[int, *Real], *lru.Cache[int, *Cmplx]) {
	cacheOnce.Do(func() {
		realCache, _ = lru.New[int, *Real](planCacheSize)
		cmplxCache, _ = lru.New[int, *Cmplx](planCacheSize)
	})
	return realCache, cmplxCache
}

// Real is a cached real-to-half-complex transform plan of fixed length.
type Real struct {
	n     int
	plans sync.Pool
}

// RealPlan returns the shared plan for real transforms of length n.
func RealPlan(n int) *Real {
	rc, _ := caches()
	if p, ok := rc.Get(n); ok {
		return p
	}
	p := &Real{n: n}
	p.plans.New = func() any { return fourier.NewFFT(n) }
	rc.Add(n, p)
	return p
}

// Len returns the sequence length of the plan.
func (r *Real) Len() int { return r.n }

// HalfLen returns the half-complex spectrum length, n/2+1.
func (r *Real) HalfLen() int { return r.n/2 + 1 }

// Coefficients computes the unnormalized forward transform of src (length
// n) into dst (length n/2+1).
func (r *Real) Coefficients(dst []complex128, src []float64) {
	p := r.plans.Get().(*fourier.FFT)
	p.Coefficients(dst, src)
	r.plans.Put(p)
}

// Sequence computes the unnormalized backward transform of the
// half-complex spectrum src (length n/2+1) into dst (length n).
func (r *Real) Sequence(dst []float64, src []complex128) {
	p := r.plans.Get().(*fourier.FFT)
	p.Sequence(dst, src)
	r.plans.Put(p)
}

// Cmplx is a cached complex transform plan of fixed length.
type Cmplx struct {
	n     int
	plans sync.Pool
}

// CmplxPlan returns the shared plan for complex transforms of length n.
func CmplxPlan(n int) *Cmplx {
	_, cc := caches()
	if p, ok := cc.Get(n); ok {
		return p
	}
	p := &Cmplx{n: n}
	p.plans.New = func() any { return fourier.NewCmplxFFT(n) }
	cc.Add(n, p)
	return p
}

// Len returns the sequence length of the plan.
func (c *Cmplx) Len() int { return c.n }

// Forward computes the unnormalized forward transform (e^{-2πi}) of src
// into dst. dst and src must not alias.
func (c *Cmplx) Forward(dst, src []complex128) {
	p := c.plans.Get().(*fourier.CmplxFFT)
	p.Coefficients(dst, src)
	c.plans.Put(p)
}

// Backward computes the unnormalized backward transform (e^{+2πi}) of src
// into dst. dst and src must not alias.
func (c *Cmplx) Backward(dst, src []complex128) {
	p := c.plans.Get().(*fourier.CmplxFFT)
	p.Sequence(dst, src)
	c.plans.Put(p)
}

// transform2D runs a 1-D transform along both axes of a rows×cols
// row-major grid, in place, parallelized over the pool.
func transform2D(grid []complex128, rows, cols, nthreads int, pool *workerpool.Pool, backward bool) {
	rowPlan := CmplxPlan(cols)
	colPlan := CmplxPlan(rows)

	apply := func(plan *Cmplx, dst, src []complex128) {
		if backward {
			plan.Backward(dst, src)
		} else {
			plan.Forward(dst, src)
		}
	}

	// First pass: rows are contiguous.
	pool.Static(nthreads, rows, 0, func(lo, hi int) {
		scratch := make([]complex128, cols)
		for i := lo; i < hi; i++ {
			row := grid[i*cols : (i+1)*cols]
			apply(rowPlan, scratch, row)
			copy(row, scratch)
		}
	})

	// Second pass: columns are strided; gather, transform, scatter.
	pool.Static(nthreads, cols, 0, func(lo, hi int) {
		in := make([]complex128, rows)
		out := make([]complex128, rows)
		for j := lo; j < hi; j++ {
			for i := 0; i < rows; i++ {
				in[i] = grid[i*cols+j]
			}
			apply(colPlan, out, in)
			for i := 0; i < rows; i++ {
				grid[i*cols+j] = out[i]
			}
		}
	})
}

// Fwd2D computes the unnormalized forward 2-D transform of a rows×cols
// row-major complex grid, in place.
func Fwd2D(grid []complex128, rows, cols, nthreads int, pool *workerpool.Pool) {
	transform2D(grid, rows, cols, nthreads, pool, false)
}

// Inv2D computes the unnormalized backward 2-D transform of a rows×cols
// row-major complex grid, in place. Fwd2D followed by Inv2D multiplies the
// grid by rows*cols.
func Inv2D(grid []complex128, rows, cols, nthreads int, pool *workerpool.Pool) {
	transform2D(grid, rows, cols, nthreads, pool, true)
}
