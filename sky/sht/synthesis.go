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

// synthesize evaluates the map from coefficients. Work is partitioned by
// ring: each ring owns a disjoint slice of the output map, so no
// synchronization is needed beyond the final barrier.
//
// Per ring, the Legendre stage contracts the coefficients into one complex
// Fourier coefficient per order m,
//
//	F_m(theta) = sum_l a(l,m) * lambda_lm(theta),
//
// and the longitude stage turns the half-complex spectrum into Nph real
// pixels with an unnormalized backward real FFT:
//
//	map(phi_k) = F_0 + 2 * sum_{m>=1} Re(F_m e^{i m phi_k}).
func synthesize(geom *Geometry, layout *AlmLayout, gen *ylmGen, alm []complex128,
	nthreads int, pool *workerpool.Pool) []float64 {

	lmax, mmax := layout.Lmax(), layout.Mmax()
	out := make([]float64, geom.NPix())
	maxHalf := geom.maxNph()/2 + 1

	pool.Static(nthreads, geom.NRings(), 0, func(lo, hi int) {
		lam := make([]float64, lmax+1)
		spec := make([]complex128, maxHalf)
		for r := lo; r < hi; r++ {
			ring := geom.Ring(r)
			cth, sth := math.Cos(ring.Theta), math.Sin(ring.Theta)
			half := ring.Nph/2 + 1

			for i := 0; i < half; i++ {
				spec[i] = 0
			}
			for m := 0; m <= mmax; m++ {
				row := lam[:lmax-m+1]
				gen.row(m, cth, sth, row)
				base := layout.Index(m, m)
				var fre, fim float64
				for i, l := 0, m; l <= lmax; i, l = i+1, l+1 {
					a := alm[base+l-m]
					fre += real(a) * row[i]
					fim += imag(a) * row[i]
				}
				if m == 0 {
					// m=0 coefficients are real for a real field.
					spec[0] = complex(fre, 0)
					continue
				}
				f := complex(fre, fim)
				if ring.Phi0 != 0 {
					f *= cmplx.Exp(complex(0, float64(m)*ring.Phi0))
				}
				spec[m] = f
			}

			fft.RealPlan(ring.Nph).Sequence(out[ring.Ofs:ring.Ofs+ring.Nph], spec[:half])
		}
	})
	return out
}
