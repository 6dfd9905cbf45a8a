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
	"fmt"

	"github.com/astrope/go-radiosky/sky"
)

// NumAlms returns the number of stored coefficients for a triangular
// truncation at (lmax, mmax): sum over m of (lmax-m+1).
func NumAlms(lmax, mmax int) int {
	return (mmax+1)*(mmax+2)/2 + (mmax+1)*(lmax-mmax)
}

// AlmLayout describes the packed storage order of spherical harmonic
// coefficients for a given truncation. The per-order start offsets are
// computed once at construction; Index(l, m) is pure table lookup plus an
// addition.
type AlmLayout struct {
	lmax, mmax int
	// mstart[m] + l is the array index of a(l,m).
	mstart []int
}

// NewAlmLayout validates (lmax, mmax) and builds the index map.
func NewAlmLayout(lmax, mmax int) (*AlmLayout, error) {
	if lmax < 0 || mmax < 0 {
		return nil, fmt.Errorf("%w: negative lmax/mmax (%d, %d)", sky.ErrConfiguration, lmax, mmax)
	}
	if mmax > lmax {
		return nil, fmt.Errorf("%w: mmax %d exceeds lmax %d", sky.ErrConfiguration, mmax, lmax)
	}
	l := &AlmLayout{lmax: lmax, mmax: mmax, mstart: make([]int, mmax+1)}
	idx := 0
	for m := 0; m <= mmax; m++ {
		l.mstart[m] = idx - m
		idx += lmax - m + 1
	}
	return l, nil
}

// Lmax returns the maximum degree.
func (l *AlmLayout) Lmax() int { return l.lmax }

// Mmax returns the maximum order.
func (l *AlmLayout) Mmax() int { return l.mmax }

// NumAlms returns the total coefficient count of the layout.
func (l *AlmLayout) NumAlms() int { return NumAlms(l.lmax, l.mmax) }

// Index returns the array index of a(l, m). Arguments must satisfy
// 0 <= m <= mmax and m <= l <= lmax.
func (l *AlmLayout) Index(lq, m int) int {
	return l.mstart[m] + lq
}

// Equal reports whether two layouts describe the same packing.
func (l *AlmLayout) Equal(other *AlmLayout) bool {
	return other != nil && l.lmax == other.lmax && l.mmax == other.mmax
}
