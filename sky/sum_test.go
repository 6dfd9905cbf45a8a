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

package sky

import (
	"math"
	"testing"
)

func TestSum_CancellingSeries(t *testing.T) {
	// 1 + tiny repeated, then -1: naive summation loses the tiny terms.
	const n = 1_000_000
	const tiny = 1e-16
	xs := make([]float64, 0, n+2)
	xs = append(xs, 1.0)
	for i := 0; i < n; i++ {
		xs = append(xs, tiny)
	}
	xs = append(xs, -1.0)

	got := Sum(xs)
	want := float64(n) * tiny
	if math.Abs(got-want) > 1e-18 {
		t.Errorf("compensated sum: got %g, want %g", got, want)
	}

	naive := 0.0
	for _, x := range xs {
		naive += x
	}
	if math.Abs(naive-want) < math.Abs(got-want) {
		t.Errorf("naive sum unexpectedly more accurate: naive=%g compensated=%g", naive, got)
	}
}

func TestDot_MatchesExactSmall(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{5, 6, 7, 8}
	if got := Dot(a, b); got != 70 {
		t.Errorf("Dot = %g, want 70", got)
	}
}

func TestDotC_Hermitian(t *testing.T) {
	a := []complex128{1 + 2i, 3 - 1i}
	b := []complex128{2 - 1i, 1 + 4i}
	// conj(a)·b computed by hand.
	want := (1-2i)*(2-1i) + (3+1i)*(1+4i)
	got := DotC(a, b)
	if math.Abs(real(got-want)) > 1e-15 || math.Abs(imag(got-want)) > 1e-15 {
		t.Errorf("DotC = %v, want %v", got, want)
	}
}

func TestSamePrecision(t *testing.T) {
	if err := SamePrecision[float64, complex128](); err != nil {
		t.Errorf("float64/complex128: unexpected error %v", err)
	}
	if err := SamePrecision[float32, complex64](); err != nil {
		t.Errorf("float32/complex64: unexpected error %v", err)
	}
	if err := SamePrecision[float32, complex128](); err == nil {
		t.Error("float32/complex128: expected precision mismatch")
	}
	if err := SamePrecision[float64, complex64](); err == nil {
		t.Error("float64/complex64: expected precision mismatch")
	}
}
