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
	"math"
	"math/cmplx"

	"github.com/astrope/go-radiosky/sky/fft"
	"github.com/astrope/go-radiosky/sky/workerpool"
)

// analyze extracts coefficients from a map; the adjoint of synthesize
// under the ring quadrature weights.
//
// Stage one (parallel over rings) applies a forward real FFT per ring and
// folds in the ring weight and longitude offset, producing the weighted
// spectral matrix G[r][m]. Stage two (parallel over m) accumulates
//
//	a(l,m) = sum_r G[r][m] * lambda_lm(theta_r)
//
// across rings; each order owns a disjoint slice of the output array.
func analyze(geom *Geometry, layout *AlmLayout, gen *ylmGen, mp []float64,
	nthreads int, pool *workerpool.Pool) []complex128 {

	lmax, mmax := layout.Lmax(), layout.Mmax()
	nrings := geom.NRings()
	mstride := mmax + 1
	weighted := make([]complex128, nrings*mstride)
	maxHalf := geom.maxNph()/2 + 1

	pool.Static(nthreads, nrings, 0, func(lo, hi int) {
		spec := make([]complex128, maxHalf)
		for r := lo; r < hi; r++ {
			ring := geom.Ring(r)
			half := ring.Nph/2 + 1
			fft.RealPlan(ring.Nph).Coefficients(spec[:half], mp[ring.Ofs:ring.Ofs+ring.Nph])
			w := complex(ring.Weight, 0)
			for m := 0; m <= mmax; m++ {
				g := spec[m] * w
				if m != 0 && ring.Phi0 != 0 {
					g *= cmplx.Exp(complex(0, -float64(m)*ring.Phi0))
				}
				weighted[r*mstride+m] = g
			}
		}
	})

	alm := make([]complex128, layout.NumAlms())
	pool.Static(nthreads, mmax+1, 1, func(mlo, mhi int) {
		lam := make([]float64, lmax+1)
		accRe := make([]float64, lmax+1)
		accIm := make([]float64, lmax+1)
		for m := mlo; m < mhi; m++ {
			nl := lmax - m + 1
			for i := 0; i < nl; i++ {
				accRe[i], accIm[i] = 0, 0
			}
			for r := 0; r < nrings; r++ {
				ring := geom.Ring(r)
				g := weighted[r*mstride+m]
				if g == 0 {
					continue
				}
				gen.row(m, math.Cos(ring.Theta), math.Sin(ring.Theta), lam[:nl])
				gre, gim := real(g), imag(g)
				for i := 0; i < nl; i++ {
					accRe[i] += lam[i] * gre
					accIm[i] += lam[i] * gim
				}
			}
			base := layout.Index(m, m)
			for i := 0; i < nl; i++ {
				alm[base+i] = complex(accRe[i], accIm[i])
			}
		}
	})
	return alm
}
