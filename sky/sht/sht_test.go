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
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/astrope/go-radiosky/sky"
)

// randomAlm draws band-limited coefficients with the m=0 imaginary part
// zeroed, as required for a real-valued field.
func randomAlm(rng *rand.Rand, layout *AlmLayout) []complex128 {
	alm := make([]complex128, layout.NumAlms())
	for i := range alm {
		alm[i] = complex(2*rng.Float64()-1, 2*rng.Float64()-1)
	}
	for l := 0; l <= layout.Lmax(); l++ {
		alm[layout.Index(l, 0)] = complex(real(alm[layout.Index(l, 0)]), 0)
	}
	return alm
}

func l2Error(a, b []complex128) float64 {
	var num, den float64
	for i := range a {
		d := a[i] - b[i]
		num += real(d)*real(d) + imag(d)*imag(d)
		den += real(a[i])*real(a[i]) + imag(a[i])*imag(a[i])
	}
	return math.Sqrt(num / den)
}

func TestRoundTrip_GaussLegendre(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, tc := range []struct{ lmax, mmax int }{
		{0, 0},
		{1, 1},
		{10, 10},
		{63, 63},
		{64, 32},
		{127, 127},
	} {
		t.Run(fmt.Sprintf("lmax=%d,mmax=%d", tc.lmax, tc.mmax), func(t *testing.T) {
			job, err := NewJob[float64, complex128]()
			require.NoError(t, err)
			require.NoError(t, job.SetTriangularAlmInfo(tc.lmax, tc.mmax))
			require.NoError(t, job.SetGaussGeometry(tc.lmax+1, 2*tc.lmax+2))

			alm := randomAlm(rng, job.Layout())
			mp, err := job.Alm2Map(alm)
			require.NoError(t, err)
			require.Len(t, mp, job.Geometry().NPix())

			alm2, err := job.Map2Alm(mp)
			require.NoError(t, err)
			require.Less(t, l2Error(alm, alm2), 1e-11,
				"Gauss-Legendre analysis must invert synthesis for band-limited input")
		})
	}
}

func TestRoundTrip_GaussLegendre_SinglePrecision(t *testing.T) {
	rng := rand.New(rand.NewSource(43))
	job, err := NewJob[float32, complex64]()
	require.NoError(t, err)
	require.NoError(t, job.SetTriangularAlmInfo(40, 40))
	require.NoError(t, job.SetGaussGeometry(41, 96))

	ref := randomAlm(rng, job.Layout())
	alm := make([]complex64, len(ref))
	for i, v := range ref {
		alm[i] = complex64(v)
	}
	mp, err := job.Alm2Map(alm)
	require.NoError(t, err)
	alm2, err := job.Map2Alm(mp)
	require.NoError(t, err)

	back := make([]complex128, len(alm2))
	for i, v := range alm2 {
		back[i] = complex128(v)
	}
	// Storage rounding dominates; accumulation runs in double precision.
	require.Less(t, l2Error(ref, back), 1e-4)
}

func TestRoundTrip_DriscollHealy(t *testing.T) {
	rng := rand.New(rand.NewSource(44))
	for _, lmax := range []int{0, 5, 32, 85} {
		t.Run(fmt.Sprintf("lmax=%d", lmax), func(t *testing.T) {
			job, err := NewJob[float64, complex128]()
			require.NoError(t, err)
			require.NoError(t, job.SetTriangularAlmInfo(lmax, lmax))
			require.NoError(t, job.SetDHGeometry(2*lmax+2, 2*lmax+2))

			alm := randomAlm(rng, job.Layout())
			mp, err := job.Alm2Map(alm)
			require.NoError(t, err)
			alm2, err := job.Map2Alm(mp)
			require.NoError(t, err)
			// The DH quadrature inverts the synthesis for band-limited
			// input as well, but through a less well-conditioned weight
			// construction; allow more slack than Gauss-Legendre.
			require.Less(t, l2Error(alm, alm2), 1e-9)
		})
	}
}

func TestThreadCountInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(45))
	job, err := NewJob[float64, complex128]()
	require.NoError(t, err)
	require.NoError(t, job.SetTriangularAlmInfo(48, 48))
	require.NoError(t, job.SetGaussGeometry(49, 128))
	alm := randomAlm(rng, job.Layout())

	job.SetNThreads(1)
	mp1, err := job.Alm2Map(alm)
	require.NoError(t, err)
	alm1, err := job.Map2Alm(mp1)
	require.NoError(t, err)

	for _, nt := range []int{2, 7} {
		job.SetNThreads(nt)
		mp, err := job.Alm2Map(alm)
		require.NoError(t, err)
		require.Equal(t, mp1, mp, "synthesis must not depend on thread count (nthreads=%d)", nt)
		almN, err := job.Map2Alm(mp)
		require.NoError(t, err)
		require.Equal(t, alm1, almN, "analysis must not depend on thread count (nthreads=%d)", nt)
	}
}

func TestAdjointness_SHT(t *testing.T) {
	// <synthesize(a), m> == Re <a, analyze_w(m)> with the quadrature
	// weights folded into analysis; checked via random vectors.
	rng := rand.New(rand.NewSource(46))
	job, err := NewJob[float64, complex128]()
	require.NoError(t, err)
	require.NoError(t, job.SetTriangularAlmInfo(24, 24))
	require.NoError(t, job.SetGaussGeometry(25, 64))

	alm := randomAlm(rng, job.Layout())
	mp := make([]float64, job.Geometry().NPix())
	for i := range mp {
		mp[i] = 2*rng.Float64() - 1
	}

	synth, err := job.Alm2Map(alm)
	require.NoError(t, err)
	ana, err := job.Map2Alm(mp)
	require.NoError(t, err)

	// Analysis folds the quadrature weights in, so the matching
	// pixel-space product is the weighted one.
	var lhs float64
	geom := job.Geometry()
	for r := 0; r < geom.NRings(); r++ {
		ring := geom.Ring(r)
		lhs += ring.Weight * sky.Dot(synth[ring.Ofs:ring.Ofs+ring.Nph], mp[ring.Ofs:ring.Ofs+ring.Nph])
	}
	// The packed array stores only m >= 0; the implied negative orders
	// double every m > 0 term of the coefficient-space inner product.
	var rhs float64
	layout := job.Layout()
	for m := 0; m <= layout.Mmax(); m++ {
		f := 2.0
		if m == 0 {
			f = 1.0
		}
		for l := m; l <= layout.Lmax(); l++ {
			i := layout.Index(l, m)
			rhs += f * (real(alm[i])*real(ana[i]) + imag(alm[i])*imag(ana[i]))
		}
	}
	require.InEpsilon(t, lhs, rhs, 1e-10)
}

func TestConfigurationErrors(t *testing.T) {
	job, err := NewJob[float64, complex128]()
	require.NoError(t, err)

	_, err = job.Alm2Map(nil)
	require.ErrorIs(t, err, sky.ErrConfiguration, "transform before configuration")

	require.ErrorIs(t, job.SetTriangularAlmInfo(10, 11), sky.ErrConfiguration, "mmax > lmax")
	require.ErrorIs(t, job.SetTriangularAlmInfo(-1, 0), sky.ErrConfiguration)
	require.ErrorIs(t, job.SetGaussGeometry(0, 12), sky.ErrConfiguration)
	require.ErrorIs(t, job.SetGaussGeometry(12, 0), sky.ErrConfiguration)

	require.NoError(t, job.SetTriangularAlmInfo(10, 10))
	require.NoError(t, job.SetGaussGeometry(11, 32))

	// nlat too small for lmax.
	require.NoError(t, job.SetGaussGeometry(10, 32))
	_, err = job.Alm2Map(make([]complex128, NumAlms(10, 10)))
	require.ErrorIs(t, err, sky.ErrConfiguration)

	// nlon too small for mmax.
	require.NoError(t, job.SetGaussGeometry(11, 20))
	_, err = job.Alm2Map(make([]complex128, NumAlms(10, 10)))
	require.ErrorIs(t, err, sky.ErrConfiguration)

	// DH ring count requirement.
	require.NoError(t, job.SetDHGeometry(21, 32))
	_, err = job.Alm2Map(make([]complex128, NumAlms(10, 10)))
	require.ErrorIs(t, err, sky.ErrConfiguration)
}

func TestShapeErrors(t *testing.T) {
	job, err := NewJob[float64, complex128]()
	require.NoError(t, err)
	require.NoError(t, job.SetTriangularAlmInfo(8, 8))
	require.NoError(t, job.SetGaussGeometry(9, 24))

	_, err = job.Alm2Map(make([]complex128, NumAlms(8, 8)-1))
	require.ErrorIs(t, err, sky.ErrShapeMismatch)

	_, err = job.Map2Alm(make([]float64, 9*24+3))
	require.ErrorIs(t, err, sky.ErrShapeMismatch)
}

func TestPrecisionMismatch(t *testing.T) {
	_, err := NewJob[float32, complex128]()
	require.ErrorIs(t, err, sky.ErrPrecisionMismatch)
	_, err = NewJob[float64, complex64]()
	require.ErrorIs(t, err, sky.ErrPrecisionMismatch)
	if !errors.Is(err, sky.ErrPrecisionMismatch) {
		t.Error("wrapped sentinel must survive errors.Is")
	}
}

func TestAlmLayoutIndexing(t *testing.T) {
	layout, err := NewAlmLayout(5, 3)
	require.NoError(t, err)
	require.Equal(t, 5, layout.Lmax())
	require.Equal(t, 3, layout.Mmax())
	// Column-major by m: all l for m=0 first.
	require.Equal(t, 0, layout.Index(0, 0))
	require.Equal(t, 5, layout.Index(5, 0))
	require.Equal(t, 6, layout.Index(1, 1))
	require.Equal(t, 10, layout.Index(5, 1))
	require.Equal(t, 11, layout.Index(2, 2))
	require.Equal(t, NumAlms(5, 3)-1, layout.Index(5, 3))

	// Walking (m, then l) must enumerate 0..NumAlms-1 exactly.
	next := 0
	for m := 0; m <= 3; m++ {
		for l := m; l <= 5; l++ {
			require.Equal(t, next, layout.Index(l, m))
			next++
		}
	}
	require.Equal(t, layout.NumAlms(), next)
}

func TestGeometryWeights(t *testing.T) {
	const nlat, nlon = 33, 67
	gauss, err := NewGaussGeometry(nlat, nlon)
	require.NoError(t, err)
	dh, err := NewDHGeometry(nlat, nlon)
	require.NoError(t, err)

	for name, g := range map[string]*Geometry{"gauss": gauss, "dh": dh} {
		var sum float64
		for r := 0; r < g.NRings(); r++ {
			ring := g.Ring(r)
			sum += ring.Weight * float64(ring.Nph)
			require.GreaterOrEqual(t, ring.Weight, 0.0, "%s ring %d", name, r)
			if r > 0 {
				require.Greater(t, ring.Theta, g.Ring(r-1).Theta, "%s rings must go north to south", name)
			}
		}
		// Total weight is the sphere surface 4*pi.
		require.InEpsilon(t, 4*math.Pi, sum, 1e-12, "%s", name)
	}

	// DH includes the North Pole with zero weight and excludes the South Pole.
	require.Equal(t, 0.0, dh.Ring(0).Theta)
	require.Equal(t, 0.0, dh.Ring(0).Weight)
	require.Less(t, dh.Ring(nlat-1).Theta, math.Pi)

	// Descriptors compare by value.
	gauss2, err := NewGaussGeometry(nlat, nlon)
	require.NoError(t, err)
	require.True(t, gauss.Equal(gauss2))
	require.False(t, gauss.Equal(dh))

	la, err := NewAlmLayout(12, 7)
	require.NoError(t, err)
	lb, err := NewAlmLayout(12, 7)
	require.NoError(t, err)
	lc, err := NewAlmLayout(12, 8)
	require.NoError(t, err)
	require.True(t, la.Equal(lb))
	require.False(t, la.Equal(lc))
}
