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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLegendreClosedForms(t *testing.T) {
	layout, err := NewAlmLayout(2, 2)
	require.NoError(t, err)
	gen := newYlmGen(layout)

	row := make([]float64, 3)
	for _, theta := range []float64{0, 0.3, math.Pi / 2, 2.2, math.Pi} {
		cth, sth := math.Cos(theta), math.Sin(theta)
		if sth < 0 {
			sth = 0
		}

		gen.row(0, cth, sth, row)
		require.InDelta(t, 1/math.Sqrt(4*math.Pi), row[0], 1e-15)
		require.InDelta(t, math.Sqrt(3/(4*math.Pi))*cth, row[1], 1e-14)
		require.InDelta(t, math.Sqrt(5/(16*math.Pi))*(3*cth*cth-1), row[2], 1e-14)

		gen.row(1, cth, sth, row[:2])
		require.InDelta(t, math.Sqrt(3/(8*math.Pi))*sth, row[0], 1e-14)
		require.InDelta(t, math.Sqrt(15/(8*math.Pi))*sth*cth, row[1], 1e-14)

		gen.row(2, cth, sth, row[:1])
		require.InDelta(t, 0.25*math.Sqrt(15/(2*math.Pi))*sth*sth, row[0], 1e-14)
	}
}

// TestLegendreOrthonormality integrates lambda_lm^2 with Gauss-Legendre
// quadrature at a band limit and order high enough that lambda_mm
// underflows double precision near the poles, validating the scaled
// recurrence end to end: sum_r W_r lambda_lm(theta_r)^2 == 1 for every l.
func TestLegendreOrthonormality(t *testing.T) {
	const lmax, m = 600, 580
	layout, err := NewAlmLayout(lmax, lmax)
	require.NoError(t, err)
	gen := newYlmGen(layout)

	geom, err := NewGaussGeometry(lmax+1, 1)
	require.NoError(t, err)

	row := make([]float64, lmax-m+1)
	norms := make([]float64, lmax-m+1)
	for r := 0; r < geom.NRings(); r++ {
		ring := geom.Ring(r)
		gen.row(m, math.Cos(ring.Theta), math.Sin(ring.Theta), row)
		for i, v := range row {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "l=%d ring=%d", m+i, r)
			norms[i] += ring.Weight * v * v
		}
	}
	for i, n := range norms {
		require.InEpsilon(t, 1.0, n, 1e-10, "l=%d", m+i)
	}
}

func TestLegendrePoleRow(t *testing.T) {
	layout, err := NewAlmLayout(16, 16)
	require.NoError(t, err)
	gen := newYlmGen(layout)

	row := make([]float64, 12)
	gen.row(5, 1, 0, row)
	for i, v := range row {
		require.Zero(t, v, "l=%d", 5+i)
	}
}

func TestPowScaled(t *testing.T) {
	for _, tc := range []struct {
		x float64
		n int
	}{
		{0.5, 10},
		{0.9999, 3},
		{1, 100000},
		{0.1, 0},
	} {
		mant, scale := powScaled(tc.x, tc.n)
		got := mant * math.Pow(2, float64(scaleShift*scale))
		require.InEpsilon(t, math.Pow(tc.x, float64(tc.n)), got, 1e-12, "x=%v n=%d", tc.x, tc.n)
	}

	// Deep underflow territory: 0.01^3000 ~ 10^-6000 is far below the
	// double range but must stay representable in mantissa/scale form.
	mant, scale := powScaled(0.01, 3000)
	require.NotZero(t, mant)
	require.Negative(t, scale)
	// log2(0.01^3000) recovered from the scaled pair.
	log2 := math.Log2(math.Abs(mant)) + float64(scaleShift*scale)
	require.InEpsilon(t, 3000*math.Log2(0.01), log2, 1e-12)
}
