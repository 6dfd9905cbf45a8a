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

import "math"

// Accumulator is a Neumaier-compensated floating-point accumulator. The
// running compensation keeps long reductions within a few ULPs of an exact
// sum regardless of term ordering.
type Accumulator struct {
	sum, comp float64
}

// Add folds x into the accumulator.
func (a *Accumulator) Add(x float64) {
	t := a.sum + x
	if math.Abs(a.sum) >= math.Abs(x) {
		a.comp += (a.sum - t) + x
	} else {
		a.comp += (x - t) + a.sum
	}
	a.sum = t
}

// Value returns the compensated sum.
func (a *Accumulator) Value() float64 {
	return a.sum + a.comp
}

// Sum returns the compensated sum of xs.
func Sum(xs []float64) float64 {
	var a Accumulator
	for _, x := range xs {
		a.Add(x)
	}
	return a.Value()
}

// Dot returns the compensated inner product of two real vectors of equal
// length.
func Dot[T Floats](a, b []T) float64 {
	var acc Accumulator
	for i := range a {
		acc.Add(float64(a[i]) * float64(b[i]))
	}
	return acc.Value()
}

// DotC returns the compensated Hermitian inner product conj(a)·b of two
// complex vectors of equal length.
func DotC[C Complexes](a, b []C) complex128 {
	var re, im Accumulator
	for i := range a {
		x := complex128(a[i])
		y := complex128(b[i])
		pr := real(x)*real(y) + imag(x)*imag(y)
		pi := real(x)*imag(y) - imag(x)*real(y)
		re.Add(pr)
		im.Add(pi)
	}
	return complex(re.Value(), im.Value())
}
