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

// gridToImage spreads the weighted visibilities onto the oversampled uv
// grid, one w plane at a time, transforms each plane to image space and
// accumulates the phased planes into the dirty image.
func (pl *plan) gridToImage(vc *visCoords, vis []complex128) []float64 {
	nx, ny := pl.NXDirty, pl.NYDirty
	nu, nv := pl.Nu, pl.Nv
	img := make([]float64, nx*ny)
	corr, nm1Img := pl.correctionImage()

	// Visibilities are split into contiguous blocks, one scratch grid
	// per block, so spreading never contends on grid cells; the blocks
	// are then reduced cell-wise.
	nblocks := pl.NThreads
	if nblocks > len(vis) {
		nblocks = len(vis)
	}
	if nblocks < 1 {
		nblocks = 1
	}
	grids := make([][]complex128, nblocks)
	for b := range grids {
		grids[b] = make([]complex128, nu*nv)
	}
	per := (len(vis) + nblocks - 1) / nblocks

	for p := 0; p < pl.nplanes; p++ {
		pl.pool.Static(pl.NThreads, nblocks, 1, func(lo, hi int) {
			ku := make([]float64, pl.supp)
			kv := make([]float64, pl.supp)
			kw := make([]float64, pl.supp)
			for b := lo; b < hi; b++ {
				clear(grids[b])
				end := (b + 1) * per
				if end > len(vis) {
					end = len(vis)
				}
				pl.spreadBlock(grids[b], vc, vis, b*per, end, p, ku, kv, kw)
			}
		})
		grid := grids[0]
		if nblocks > 1 {
			pl.pool.Static(pl.NThreads, nu*nv, 4096, func(lo, hi int) {
				for b := 1; b < nblocks; b++ {
					src := grids[b]
					for i := lo; i < hi; i++ {
						grid[i] += src[i]
					}
				}
			})
		}

		fft.Inv2D(grid, nu, nv, pl.NThreads, pl.pool)

		wp := pl.w0 + float64(p)*pl.dw
		pl.pool.Static(pl.NThreads, nx, 1, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				gi := ((i-nx/2)%nu + nu) % nu
				row := grid[gi*nv:]
				for j := 0; j < ny; j++ {
					gj := ((j-ny/2)%nv + nv) % nv
					val := row[gj]
					if pl.ApplyW {
						// Undo the e^(-2*pi*i*w_p*(n-1)) phase of this
						// plane; only the real part survives the sum
						// over conjugate baseline pairs.
						s, c := math.Sincos(2 * math.Pi * wp * nm1Img[i*ny+j])
						img[i*ny+j] += real(val)*c + imag(val)*s
					} else {
						img[i*ny+j] += real(val)
					}
				}
			}
		})
	}

	pl.pool.Static(pl.NThreads, nx*ny, 4096, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			img[i] *= corr[i]
		}
	})
	return img
}

// spreadBlock grids visibilities [lo, hi) that touch w plane p.
func (pl *plan) spreadBlock(grid []complex128, vc *visCoords, vis []complex128, lo, hi, p int, ku, kv, kw []float64) {
	nu, nv := pl.Nu, pl.Nv
	for idx := lo; idx < hi; idx++ {
		v := vis[idx]
		if v == 0 {
			continue
		}
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
		for a := 0; a < pl.supp; a++ {
			if ku[a] == 0 {
				continue
			}
			iu := ((iu0+a)%nu + nu) % nu
			row := grid[iu*nv:]
			f := kwv * ku[a]
			vr := complex(real(v)*f, imag(v)*f)
			for b := 0; b < pl.supp; b++ {
				iv := ((iv0+b)%nv + nv) % nv
				row[iv] += vr * complex(kv[b], 0)
			}
		}
	}
}
