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

package sht

import (
	"fmt"

	"github.com/astrope/go-radiosky/sky"
	"github.com/astrope/go-radiosky/sky/workerpool"
)

// Job holds the configuration of a transform: the coefficient layout, the
// grid geometry and the thread count. The layout and geometry must both be
// set before a transform call; either may be replaced between calls, and
// the replaced descriptors themselves are never mutated.
//
// T is the real storage precision of maps, C the complex storage
// precision of coefficients; they must match (float32/complex64 or
// float64/complex128). All internal accumulation runs in float64.
type Job[T sky.Floats, C sky.Complexes] struct {
	layout   *AlmLayout
	geom     *Geometry
	gen      *ylmGen
	nthreads int
	pool     *workerpool.Pool
}

// NewJob creates an unconfigured Job using the shared worker pool.
// It fails with ErrPrecisionMismatch for inconsistent (T, C) pairings.
func NewJob[T sky.Floats, C sky.Complexes]() (*Job[T, C], error) {
	if err := sky.SamePrecision[T, C](); err != nil {
		return nil, err
	}
	return &Job[T, C]{pool: workerpool.Default()}, nil
}

// SetTriangularAlmInfo configures the packed triangular coefficient
// layout for the given truncation.
func (j *Job[T, C]) SetTriangularAlmInfo(lmax, mmax int) error {
	layout, err := NewAlmLayout(lmax, mmax)
	if err != nil {
		return err
	}
	j.layout = layout
	j.gen = nil // rebuilt lazily for the new truncation
	return nil
}

// SetGaussGeometry selects a Gauss-Legendre grid with nlat rings and nlon
// pixels per ring.
func (j *Job[T, C]) SetGaussGeometry(nlat, nlon int) error {
	g, err := NewGaussGeometry(nlat, nlon)
	if err != nil {
		return err
	}
	j.geom = g
	return nil
}

// SetDHGeometry selects a Driscoll-Healy grid with nlat rings and nlon
// pixels per ring.
func (j *Job[T, C]) SetDHGeometry(nlat, nlon int) error {
	g, err := NewDHGeometry(nlat, nlon)
	if err != nil {
		return err
	}
	j.geom = g
	return nil
}

// SetNThreads sets the thread count used by subsequent transforms.
// n <= 0 selects the worker pool size.
func (j *Job[T, C]) SetNThreads(n int) {
	j.nthreads = n
}

// Layout returns the configured coefficient layout, or nil.
func (j *Job[T, C]) Layout() *AlmLayout { return j.layout }

// Geometry returns the configured grid geometry, or nil.
func (j *Job[T, C]) Geometry() *Geometry { return j.geom }

// ready validates the configuration and the coefficient/map lengths
// before any computation starts.
func (j *Job[T, C]) ready(nalm, npix int) error {
	if j.layout == nil {
		return fmt.Errorf("%w: coefficient layout not configured", sky.ErrConfiguration)
	}
	if j.geom == nil {
		return fmt.Errorf("%w: grid geometry not configured", sky.ErrConfiguration)
	}
	if err := j.geom.supports(j.layout.Lmax(), j.layout.Mmax()); err != nil {
		return err
	}
	if nalm >= 0 && nalm != j.layout.NumAlms() {
		return fmt.Errorf("%w: alm length %d, layout needs %d", sky.ErrShapeMismatch, nalm, j.layout.NumAlms())
	}
	if npix >= 0 && npix != j.geom.NPix() {
		return fmt.Errorf("%w: map length %d, geometry has %d pixels", sky.ErrShapeMismatch, npix, j.geom.NPix())
	}
	if j.gen == nil {
		j.gen = newYlmGen(j.layout)
	}
	return nil
}

// Alm2Map synthesizes a map from spherical harmonic coefficients.
func (j *Job[T, C]) Alm2Map(alm []C) ([]T, error) {
	if err := j.ready(len(alm), -1); err != nil {
		return nil, err
	}
	work := almToC128(alm)
	mp := synthesize(j.geom, j.layout, j.gen, work, j.nthreads, j.pool)
	out := make([]T, len(mp))
	for i, v := range mp {
		out[i] = T(v)
	}
	return out, nil
}

// Map2Alm analyzes a map into spherical harmonic coefficients. It is the
// adjoint of Alm2Map under the geometry's quadrature weights; for the
// Gauss-Legendre geometry it is the exact inverse for band-limited input.
func (j *Job[T, C]) Map2Alm(mp []T) ([]C, error) {
	if err := j.ready(-1, len(mp)); err != nil {
		return nil, err
	}
	work := make([]float64, len(mp))
	for i, v := range mp {
		work[i] = float64(v)
	}
	alm := analyze(j.geom, j.layout, j.gen, work, j.nthreads, j.pool)
	out := make([]C, len(alm))
	for i, v := range alm {
		out[i] = C(v)
	}
	return out, nil
}

func almToC128[C sky.Complexes](alm []C) []complex128 {
	if a, ok := any(alm).([]complex128); ok {
		return a
	}
	out := make([]complex128, len(alm))
	for i, v := range alm {
		out[i] = complex128(v)
	}
	return out
}
