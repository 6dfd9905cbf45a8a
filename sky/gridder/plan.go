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
	"log"
	"math"
	"os"
	"runtime"

	"github.com/astrope/go-radiosky/sky"
	"github.com/astrope/go-radiosky/sky/workerpool"
)

// UVW is a baseline coordinate triple in meters.
type UVW struct {
	U, V, W float64
}

// Params configures a gridding or degridding operation.
type Params struct {
	// Dirty image dimensions, in pixels.
	NXDirty, NYDirty int
	// Pixel sizes along x and y, in radians.
	PixSizeX, PixSizeY float64
	// Oversampled uv grid dimensions. Zero selects twice the image
	// size; explicit values must be even and larger than the image.
	Nu, Nv int
	// Requested accuracy; the kernel support is chosen so that
	// aliasing error stays below this.
	Epsilon float64
	// ApplyW enables w-stacking, correcting for non-coplanar
	// baselines. When false the w coordinate is ignored.
	ApplyW bool
	// NThreads limits worker parallelism; 0 uses all cores.
	NThreads int
	// Verbosity > 0 logs a plan summary.
	Verbosity int
}

var planLog = log.New(os.Stderr, "gridder: ", 0)

// plan holds everything derived from Params that both directions share.
type plan struct {
	Params
	kern       *esKernel
	pool       *workerpool.Pool
	corrU      []float64 // per-pixel x-axis correction divisors
	corrV      []float64 // per-pixel y-axis correction divisors
	nm1Min     float64   // most negative n-1 over the image
	supp       int
	dw         float64 // w plane spacing
	w0         float64 // w of plane 0
	nplanes    int
	shiftedEps float64
}

func minEps[T sky.Floats]() float64 {
	if sky.IsSingle[T]() {
		return 5e-6
	}
	return 1e-13
}

// newPlan validates p and the array shapes shared by both directions,
// then derives grid geometry and kernel parameters. T and C are the
// caller's precision pair.
func newPlan[T sky.Floats, C sky.Complexes](p Params, uvw []UVW, freq []float64, wgt []T, mask []uint8) (*plan, error) {
	if err := sky.SamePrecision[T, C](); err != nil {
		return nil, err
	}
	if p.NXDirty <= 0 || p.NYDirty <= 0 {
		return nil, fmt.Errorf("%w: dirty image dimensions %dx%d", sky.ErrShapeMismatch, p.NXDirty, p.NYDirty)
	}
	if p.PixSizeX <= 0 || p.PixSizeY <= 0 {
		return nil, fmt.Errorf("%w: pixel sizes must be positive", sky.ErrConfiguration)
	}
	if p.Epsilon <= 0 || p.Epsilon >= 1 {
		return nil, fmt.Errorf("%w: epsilon %g outside (0, 1)", sky.ErrTolerance, p.Epsilon)
	}
	if lo := minEps[T](); p.Epsilon < lo {
		return nil, fmt.Errorf("%w: epsilon %g below achievable %g", sky.ErrTolerance, p.Epsilon, lo)
	}
	if len(uvw) == 0 || len(freq) == 0 {
		return nil, fmt.Errorf("%w: need at least one baseline and channel", sky.ErrShapeMismatch)
	}
	nvis := len(uvw) * len(freq)
	if wgt != nil && len(wgt) != nvis {
		return nil, fmt.Errorf("%w: weights length %d, want %d", sky.ErrShapeMismatch, len(wgt), nvis)
	}
	if mask != nil && len(mask) != nvis {
		return nil, fmt.Errorf("%w: mask length %d, want %d", sky.ErrShapeMismatch, len(mask), nvis)
	}

	pl := &plan{Params: p}
	if pl.Nu == 0 && pl.Nv == 0 {
		pl.Nu, pl.Nv = 2*p.NXDirty, 2*p.NYDirty
	}
	if pl.Nu&1 != 0 || pl.Nv&1 != 0 {
		return nil, fmt.Errorf("%w: grid dimensions %dx%d must be even", sky.ErrConfiguration, pl.Nu, pl.Nv)
	}
	if pl.Nu <= p.NXDirty || pl.Nv <= p.NYDirty {
		return nil, fmt.Errorf("%w: grid %dx%d does not oversample image %dx%d",
			sky.ErrConfiguration, pl.Nu, pl.Nv, p.NXDirty, p.NYDirty)
	}

	ofactor := math.Min(float64(pl.Nu)/float64(p.NXDirty), float64(pl.Nv)/float64(p.NYDirty))
	pl.shiftedEps = p.Epsilon
	if p.ApplyW {
		// The w axis convolution contributes its own aliasing error.
		pl.shiftedEps = p.Epsilon / 2
	}
	pl.supp = kernelSupport(pl.shiftedEps, ofactor)
	if half := min(pl.Nu, pl.Nv) / 2; pl.supp > half {
		pl.supp = half
	}
	pl.kern = newESKernel(pl.supp, ofactor)
	pl.corrU = pl.kern.corrVector(pl.Nu, p.NXDirty)
	pl.corrV = pl.kern.corrVector(pl.Nv, p.NYDirty)

	pl.pool = workerpool.Default()
	if pl.NThreads <= 0 {
		pl.NThreads = runtime.GOMAXPROCS(0)
	}

	pl.nm1Min = nm1(float64(p.NXDirty/2)*p.PixSizeX, float64(p.NYDirty/2)*p.PixSizeY)
	pl.nplanes = 1
	if p.ApplyW {
		// Masked and zero-weight entries never touch the grid, so they
		// must not stretch the plane stack either.
		skip := func(idx int) bool {
			return (mask != nil && mask[idx] == 0) || (wgt != nil && wgt[idx] == 0)
		}
		wmin, wmax := wRange(uvw, freq, len(freq), skip)
		pl.dw = 0.25 / math.Abs(pl.nm1Min)
		if pl.nm1Min == 0 {
			// Degenerate image where every pixel sits at the phase
			// center: n-1 vanishes everywhere, so the plane spacing
			// is arbitrary; one spacing covering the whole w range
			// keeps the stack minimal.
			pl.dw = math.Max(1, wmax-wmin)
		}
		pl.nplanes = int(math.Ceil((wmax-wmin)/pl.dw)) + pl.supp
		pl.w0 = wmin - pl.dw*float64(pl.supp-1)/2
	}

	if p.Verbosity > 0 {
		planLog.Printf("nrow=%d nchan=%d image=%dx%d grid=%dx%d supp=%d nplanes=%d wstacking=%v",
			len(uvw), len(freq), p.NXDirty, p.NYDirty, pl.Nu, pl.Nv, pl.supp, pl.nplanes, p.ApplyW)
	}
	return pl, nil
}

// nm1 computes n(x,y)-1 = sqrt(1-x^2-y^2)-1 for direction cosines x, y,
// in a form that avoids cancellation for small offsets. Offsets beyond
// the horizon clamp the square root at zero.
func nm1(x, y float64) float64 {
	s := x*x + y*y
	return -s / (math.Sqrt(math.Max(1-s, 0)) + 1)
}

// wRange scans the contributing visibilities for the extreme |w| values
// in wavelengths, after the sign flip that gridding applies to w < 0 rows.
func wRange(uvw []UVW, freq []float64, nchan int, skip func(idx int) bool) (wmin, wmax float64) {
	wmin, wmax = math.Inf(1), math.Inf(-1)
	for r := range uvw {
		aw := math.Abs(uvw[r].W)
		for c, f := range freq {
			if skip(r*nchan + c) {
				continue
			}
			w := aw * f / sky.SpeedOfLight
			if w < wmin {
				wmin = w
			}
			if w > wmax {
				wmax = w
			}
		}
	}
	if wmin > wmax {
		// Everything masked; any finite range works.
		wmin, wmax = 0, 0
	}
	return wmin, wmax
}
