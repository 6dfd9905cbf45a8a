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
	"fmt"
	"math"

	"github.com/astrope/go-radiosky/sky"
)

// MsToDirty grids the visibilities onto an oversampled uv grid and
// transforms them into a dirty image of p.NXDirty x p.NYDirty pixels
// (row-major, x fastest varying along rows).
//
// vis holds nrow*nchan visibilities in row-major order with
// nrow = len(uvw) and nchan = len(freq). wgt, if non-nil, multiplies
// each visibility; mask, if non-nil, drops entries where it is zero.
func MsToDirty[T sky.Floats, C sky.Complexes](p Params, uvw []UVW, freq []float64, vis []C, wgt []T, mask []uint8) ([]T, error) {
	pl, err := newPlan[T, C](p, uvw, freq, wgt, mask)
	if err != nil {
		return nil, err
	}
	if len(vis) != len(uvw)*len(freq) {
		return nil, fmt.Errorf("%w: visibility length %d, want %d", sky.ErrShapeMismatch, len(vis), len(uvw)*len(freq))
	}
	vc := pl.visCoords(uvw, freq)
	eff := make([]complex128, len(vis))
	for i, v := range vis {
		if mask != nil && mask[i] == 0 {
			continue
		}
		ev := complex128(v)
		if wgt != nil {
			w := float64(wgt[i])
			ev = complex(real(ev)*w, imag(ev)*w)
		}
		if vc.flip[i/len(freq)] {
			ev = complex(real(ev), -imag(ev))
		}
		eff[i] = ev
	}
	img := pl.gridToImage(vc, eff)
	out := make([]T, len(img))
	for i, v := range img {
		out[i] = T(v)
	}
	return out, nil
}

// DirtyToMs is the adjoint of MsToDirty: it predicts visibilities from a
// dirty image. Masked entries come back as zero; weights multiply the
// prediction just as they multiply the data in MsToDirty.
func DirtyToMs[T sky.Floats, C sky.Complexes](p Params, uvw []UVW, freq []float64, dirty []T, wgt []T, mask []uint8) ([]C, error) {
	pl, err := newPlan[T, C](p, uvw, freq, wgt, mask)
	if err != nil {
		return nil, err
	}
	if len(dirty) != p.NXDirty*p.NYDirty {
		return nil, fmt.Errorf("%w: dirty image length %d, want %d", sky.ErrShapeMismatch, len(dirty), p.NXDirty*p.NYDirty)
	}
	img := make([]float64, len(dirty))
	for i, v := range dirty {
		img[i] = float64(v)
	}
	vc := pl.visCoords(uvw, freq)
	vis := pl.imageToVis(vc, img)

	out := make([]C, len(vis))
	nchan := len(freq)
	for i, v := range vis {
		if mask != nil && mask[i] == 0 {
			continue
		}
		if wgt != nil {
			w := float64(wgt[i])
			v = complex(real(v)*w, imag(v)*w)
		}
		if vc.flip[i/nchan] {
			v = complex(real(v), -imag(v))
		}
		out[i] = C(v)
	}
	return out, nil
}

// visCoords holds per-visibility grid coordinates: u and v in grid
// cells, wrapped into [0, Nu) and [0, Nv), and w in wavelengths with
// the sign flip to w >= 0 already applied.
type visCoords struct {
	u, v, w []float64
	flip    []bool
	nchan   int
}

func (pl *plan) visCoords(uvw []UVW, freq []float64) *visCoords {
	nchan := len(freq)
	vc := &visCoords{
		u:     make([]float64, len(uvw)*nchan),
		v:     make([]float64, len(uvw)*nchan),
		w:     make([]float64, len(uvw)*nchan),
		flip:  make([]bool, len(uvw)),
		nchan: nchan,
	}
	for r, b := range uvw {
		u, v, w := b.U, b.V, b.W
		if pl.ApplyW && w < 0 {
			// Conjugate symmetry of a real sky: flipping the baseline
			// and conjugating the visibility leaves the image
			// unchanged, and keeps all w on one side of the stack.
			u, v, w = -u, -v, -w
			vc.flip[r] = true
		}
		for c, f := range freq {
			scale := f / sky.SpeedOfLight
			idx := r*nchan + c
			vc.u[idx] = wrap(u*scale*pl.PixSizeX*float64(pl.Nu), pl.Nu)
			vc.v[idx] = wrap(v*scale*pl.PixSizeY*float64(pl.Nv), pl.Nv)
			vc.w[idx] = w * scale
		}
	}
	return vc
}

func wrap(x float64, n int) float64 {
	x = math.Mod(x, float64(n))
	if x < 0 {
		x += float64(n)
	}
	return x
}

// footprint returns the first grid index of the kernel support around
// center x, and fills k with the kernel values at the supp cells.
func (pl *plan) footprint(x float64, k []float64) int {
	half := 0.5 * float64(pl.supp)
	i0 := int(math.Floor(x-half)) + 1
	for a := 0; a < pl.supp; a++ {
		k[a] = pl.kern.eval((float64(i0+a) - x) / half)
	}
	return i0
}

// wFootprint is footprint along the w axis, in plane indices.
func (pl *plan) wFootprint(w float64, k []float64) int {
	half := 0.5 * float64(pl.supp)
	xw := (w - pl.w0) / pl.dw
	p0 := int(math.Floor(xw-half)) + 1
	for a := 0; a < pl.supp; a++ {
		k[a] = pl.kern.eval((float64(p0+a) - xw) / half)
	}
	return p0
}

// correctionImage returns, per pixel, the combined reciprocal of the uv
// deapodization, the w deapodization and the SIN-projection n factor,
// along with the n(x,y)-1 image needed for the per-plane phases.
// Pixels beyond the horizon get a zero correction.
func (pl *plan) correctionImage() (corr, nm1Img []float64) {
	nx, ny := pl.NXDirty, pl.NYDirty
	corr = make([]float64, nx*ny)
	nm1Img = make([]float64, nx*ny)
	for i := 0; i < nx; i++ {
		x := float64(i-nx/2) * pl.PixSizeX
		for j := 0; j < ny; j++ {
			y := float64(j-ny/2) * pl.PixSizeY
			idx := i*ny + j
			c := 1 / (pl.corrU[i] * pl.corrV[j])
			if pl.ApplyW {
				nm := nm1(x, y)
				nm1Img[idx] = nm
				n := 1 + nm
				if n <= 0 {
					corr[idx] = 0
					continue
				}
				c /= n * pl.kern.wCorr(pl.dw, nm)
			}
			corr[idx] = c
		}
	}
	return corr, nm1Img
}
