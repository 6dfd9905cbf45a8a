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

package gridder

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"gonum.org/v1/gonum/integrate/quad"
)

// esKernel is the exponential-of-semicircle gridding kernel
//
//	k(z) = exp(beta * (sqrt(1-z^2) - 1))   for |z| <= 1, else 0.
//
// It is smooth on its support, which makes its Fourier transform decay
// super-algebraically; the achievable aliasing error for a given support
// and oversampling factor is within a few percent of the optimal
// least-misfit kernel.
type esKernel struct {
	supp int
	beta float64
	// Gauss-Legendre rule on [-1, 1] used to evaluate the kernel
	// transform; exact enough once the point count grows with supp.
	qx, qw []float64
}

// kernelSupport picks the kernel half-extent (in grid cells, times two)
// needed to push aliasing error below eps at oversampling factor ofactor.
func kernelSupport(eps, ofactor float64) int {
	supp := int(math.Ceil(math.Log(1/eps)/(math.Pi*math.Sqrt(1-1/ofactor)))) + 1
	if supp < 4 {
		supp = 4
	}
	if supp > 16 {
		supp = 16
	}
	return supp
}

func newESKernel(supp int, ofactor float64) *esKernel {
	k := &esKernel{
		supp: supp,
		beta: 0.976 * math.Pi * float64(supp) * (1 - 1/(2*ofactor)),
	}
	p := int(1.5*float64(supp)) + 2
	k.qx = make([]float64, p)
	k.qw = make([]float64, p)
	quad.Legendre{}.FixedLocations(k.qx, k.qw, -1, 1)
	return k
}

// eval returns k(z); z is the offset from the kernel center in units of
// the half-support.
func (k *esKernel) eval(z float64) float64 {
	if z <= -1 || z >= 1 {
		return 0
	}
	return math.Exp(k.beta * (math.Sqrt(1-z*z) - 1))
}

// ft is the kernel transform integral(k(z)*cos(pi*s*z), z=-1..1).
func (k *esKernel) ft(s float64) float64 {
	var acc float64
	for i, x := range k.qx {
		acc += k.qw[i] * k.eval(x) * math.Cos(math.Pi*s*x)
	}
	return acc
}

// corr is the grid-space correction divisor for a mode j grid cells from
// the image center on an axis of n grid cells.
func (k *esKernel) corr(j, n int) float64 {
	return 0.5 * float64(k.supp) * k.ft(float64(k.supp)*float64(j)/float64(n))
}

// wCorr is the correction divisor for the w axis at direction cosine
// offset nm1, with planes spaced dw apart.
func (k *esKernel) wCorr(dw, nm1 float64) float64 {
	return 0.5 * float64(k.supp) * k.ft(float64(k.supp)*dw*nm1)
}

type corrKey struct {
	n, npix, supp int
	beta          float64
}

var corrCache, _ = lru.New[corrKey, []float64](64)

// corrVector returns the per-pixel correction divisors for an image axis
// of npix pixels embedded in a grid axis of n cells. Transform
// evaluations are the expensive part of plan setup, so vectors are
// shared across plans through an LRU cache.
func (k *esKernel) corrVector(n, npix int) []float64 {
	key := corrKey{n: n, npix: npix, supp: k.supp, beta: k.beta}
	if v, ok := corrCache.Get(key); ok {
		return v
	}
	v := make([]float64, npix)
	for i := range v {
		v[i] = k.corr(i-npix/2, n)
	}
	corrCache.Add(key, v)
	return v
}
