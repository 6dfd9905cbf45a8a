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

// Package sky provides the shared core for the radiosky transform engines:
// precision type constraints, precision-consistency validation, typed
// sentinel errors, and compensated summation helpers.
//
// All engines store data in the caller's precision (float32/complex64 or
// float64/complex128) but accumulate internally in float64.
package sky

import "fmt"

// Floats is a constraint for the supported real storage precisions.
type Floats interface {
	~float32 | ~float64
}

// Complexes is a constraint for the supported complex storage precisions.
type Complexes interface {
	~complex64 | ~complex128
}

// SpeedOfLight is the vacuum speed of light in m/s, used to convert
// baseline coordinates from meters to wavelengths.
const SpeedOfLight = 299792458.0

// IsSingle reports whether T is the single-precision storage type.
func IsSingle[T Floats]() bool {
	var z T
	_, ok := any(z).(float32)
	return ok
}

// SamePrecision verifies that the real type T and the complex type C belong
// to the same storage precision: (float32, complex64) or
// (float64, complex128). Mixed pairings return ErrPrecisionMismatch.
func SamePrecision[T Floats, C Complexes]() error {
	var zr T
	var zc C
	_, r32 := any(zr).(float32)
	_, c64 := any(zc).(complex64)
	if r32 != c64 {
		return fmt.Errorf("%w: real %T paired with complex %T", ErrPrecisionMismatch, zr, zc)
	}
	return nil
}

// Eps returns the machine epsilon of the storage precision T.
func Eps[T Floats]() float64 {
	if IsSingle[T]() {
		return 0x1p-23
	}
	return 0x1p-52
}
