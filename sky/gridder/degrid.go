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

	"github.com/astrope/go-radiosky/sky/fft"
)

// imageToVis runs the adjoint of gridToImage: the corrected image is
// embedded into the oversampled grid once per w plane, transformed to uv
// space and interpolated at each baseline's grid coordinates.
func (pl *plan) imageToVis(vc *visCoords, dirty []float64) []complex128 {
	nx, ny := pl.NXDirty, pl.NYDirty
	nu, nv := pl.Nu, pl.Nv
	corr, nm1Img := pl.correctionImage()

	gcorr := make([]float64, nx*ny)
	for i := range gcorr {
		gcorr[i] = dirty[i] * corr[i]
	}

	vis := make([]complex128, len(vc.u))
	grid := make([]complex128, nu*nv)

	for p := 0; p < pl.nplanes; p++ {
		wp := pl.w0 + float64(p)*pl.dw
		pl.pool.Static(pl.NThreads, nu, 1, func(lo, hi int) {
			for gi := lo; gi < hi; gi++ {
				row := grid[gi*nv : (gi+1)*nv]
				clear(row)
				i := (gi + nx/2) % nu
				if i >= nx {
					continue
				}
				for j := 0; j < ny; j++ {
					g := gcorr[i*ny+j]
					if g == 0 {
						continue
					}
					gj := ((j-ny/2)%nv + nv) % nv
					if pl.ApplyW {
						s, c := math.Sincos(2 * math.Pi * wp * nm1Img[i*ny+j])
						row[gj] = complex(g*c, g*s)
					} else {
						row[gj] = complex(g, 0)
					}
				}
			}
		})

		fft.Fwd2D(grid, nu, nv, pl.NThreads, pl.pool)

		pl.pool.Static(pl.NThreads, len(vis), 64, func(lo, hi int) {
			ku := make([]float64, pl.supp)
			kv := make([]float64, pl.supp)
			kw := make([]float64, pl.supp)
			pl.interpBlock(grid, vc, vis, lo, hi, p, ku, kv, kw)
		})
	}
	return vis
}

// interpBlock evaluates visibilities [lo, hi) against w plane p.
func (pl *plan) interpBlock(grid []complex128, vc *visCoords, vis []complex128, lo, hi, p int, ku, kv, kw []float64) {
	nu, nv := pl.Nu, pl.Nv
	for idx := lo; idx < hi; idx++ {
		kwv := 1.0
		if pl.ApplyW {
			p0 := pl.wFootprint(vc.w[idx], kw)
			if p < p0 || p >= p0+pl.supp {
				continue
			}
			kwv = kw[p-p0]
			if kwv == 0 {
				continue
			}
		}
		iu0 := pl.footprint(vc.u[idx], ku)
		iv0 := pl.footprint(vc.v[idx], kv)
		var acc complex128
		for a := 0; a < pl.supp; a++ {
			if ku[a] == 0 {
				continue
			}
			iu := ((iu0+a)%nu + nu) % nu
			row := grid[iu*nv:]
			var rowAcc complex128
			for b := 0; b < pl.supp; b++ {
				iv := ((iv0+b)%nv + nv) % nv
				rowAcc += row[iv] * complex(kv[b], 0)
			}
			acc += rowAcc * complex(ku[a], 0)
		}
		vis[idx] += acc * complex(kwv, 0)
	}
}
