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

import "math"

// ylmGen evaluates fully normalized associated Legendre functions
//
//	lambda_lm(theta) = sqrt((2l+1)/(4*pi) * (l-m)!/(l+m)!) * P_lm(cos theta)
//
// for all l in [m, lmax] at a given colatitude, via the standard
// three-term recurrence in l. The starting value lambda_mm contains
// sin(theta)^m, which underflows double precision long before the
// recurrence has climbed back to representable magnitudes, so the
// generator carries values in a (mantissa, scale) representation with
// scale steps of 2^scaleShift until they re-enter the normal range.
//
// Recurrence coefficients depend only on (l, m) and are precomputed once
// per (lmax, mmax); a generator is shared read-only between threads, each
// thread filling its own output row.
type ylmGen struct {
	lmax, mmax int
	// mfac[m] = 1/sqrt(4*pi) * prod_{k=1..m} sqrt((2k+1)/(2k)); the
	// prefactor of lambda_mm before the sin^m(theta) power.
	mfac []float64
	// r1, r2 are the recurrence coefficients of
	// lambda_l = r1*cos(theta)*lambda_{l-1} - r2*lambda_{l-2},
	// stored triangularly at layout index (l, m).
	r1, r2 []float64
	layout *AlmLayout
}

const (
	scaleShift = 250
	scaleBig   = 0x1p+250
	scaleSmall = 0x1p-250
)

// corfac converts a scale count into a multiplier; scales too far below
// the normal range flush to zero.
func corfac(scale int) float64 {
	if scale >= 0 {
		return 1
	}
	if scale < -4 {
		return 0
	}
	return math.Ldexp(1, scaleShift*scale)
}

func newYlmGen(layout *AlmLayout) *ylmGen {
	lmax, mmax := layout.Lmax(), layout.Mmax()
	g := &ylmGen{
		lmax:   lmax,
		mmax:   mmax,
		mfac:   make([]float64, mmax+1),
		r1:     make([]float64, layout.NumAlms()),
		r2:     make([]float64, layout.NumAlms()),
		layout: layout,
	}
	g.mfac[0] = 1 / math.Sqrt(4*math.Pi)
	for m := 1; m <= mmax; m++ {
		g.mfac[m] = g.mfac[m-1] * math.Sqrt(float64(2*m+1)/float64(2*m))
	}
	for m := 0; m <= mmax; m++ {
		for l := m + 2; l <= lmax; l++ {
			fl, fm := float64(l), float64(m)
			c := math.Sqrt((4*fl*fl - 1) / (fl*fl - fm*fm))
			d := math.Sqrt(((fl-1)*(fl-1) - fm*fm) / (4*(fl-1)*(fl-1) - 1))
			i := layout.Index(l, m)
			g.r1[i] = c
			g.r2[i] = c * d
		}
	}
	return g
}

// powScaled computes x^n (0 <= x) as mant * 2^(scaleShift*scale) with
// |mant| kept inside the normal range, via binary exponentiation.
func powScaled(x float64, n int) (mant float64, scale int) {
	mant, scale = 1, 0
	p, pscale := x, 0
	for n > 0 {
		if n&1 == 1 {
			mant *= p
			scale += pscale
			for mant != 0 && math.Abs(mant) < scaleSmall {
				mant *= scaleBig
				scale--
			}
		}
		n >>= 1
		if n == 0 {
			break
		}
		p *= p
		pscale *= 2
		for p != 0 && math.Abs(p) < scaleSmall {
			p *= scaleBig
			pscale--
		}
	}
	return mant, scale
}

// row fills out[0..lmax-m] with lambda_lm(theta) for l = m..lmax.
// cth and sth are cos(theta) and sin(theta); sth must be >= 0.
func (g *ylmGen) row(m int, cth, sth float64, out []float64) {
	nl := g.lmax - m + 1
	out = out[:nl]

	mant, scale := powScaled(sth, m)
	mant *= g.mfac[m]
	for mant != 0 && math.Abs(mant) < scaleSmall {
		mant *= scaleBig
		scale--
	}
	if mant == 0 {
		// On a pole ring every lambda with m > 0 vanishes exactly.
		for i := range out {
			out[i] = 0
		}
		return
	}

	lm2 := 0.0  // lambda_{l-2}, scaled
	lm1 := mant // lambda_{l-1}, scaled
	out[0] = lm1 * corfac(scale)
	if nl == 1 {
		return
	}

	lm2, lm1 = lm1, cth*math.Sqrt(float64(2*m+3))*lm1
	out[1] = lm1 * corfac(scale)

	l := m + 2
	// Scaled phase: values are far below the normal range; keep the
	// recurrence mantissas bounded and emit flushed/corrected values.
	for ; l <= g.lmax && scale < 0; l++ {
		i := g.layout.Index(l, m)
		lam := g.r1[i]*cth*lm1 - g.r2[i]*lm2
		lm2, lm1 = lm1, lam
		if math.Abs(lm1) > scaleBig {
			lm1 *= scaleSmall
			lm2 *= scaleSmall
			scale++
		}
		out[l-m] = lm1 * corfac(scale)
	}
	// Normal phase: plain recurrence, no scaling checks needed since
	// |lambda_lm| grows at most polynomially in l.
	for ; l <= g.lmax; l++ {
		i := g.layout.Index(l, m)
		lam := g.r1[i]*cth*lm1 - g.r2[i]*lm2
		lm2, lm1 = lm1, lam
		out[l-m] = lm1
	}
}
