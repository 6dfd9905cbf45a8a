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

// Package gridder converts between radio interferometer visibilities
// and dirty images.
//
// MsToDirty approximates, for every image pixel with direction cosines
// (x, y) and n = sqrt(1 - x^2 - y^2),
//
//	I(x,y) = sum_{row,chan} V * exp(2*pi*i * f/c * (u*x + v*y - w*(n-1))) / n
//
// and DirtyToMs is its exact adjoint. Instead of evaluating the sums
// directly, visibilities are convolved onto an oversampled uv grid with
// a finite exponential-of-semicircle kernel, transformed with FFTs and
// corrected for the kernel's taper in image space, which reduces the
// cost from O(npix*nvis) to roughly O(ngrid*log(ngrid) + nvis). The
// Epsilon parameter bounds the aliasing error of this approximation.
//
// The w-dependent phase cannot be absorbed into a single 2D transform.
// With Params.ApplyW set, the visibilities are additionally convolved
// along w onto a stack of equispaced w planes, each plane is imaged
// separately and phased by its w before the planes are summed; the
// w-axis kernel taper is divided out per pixel. Baselines with negative
// w are mapped onto the stack through the conjugate symmetry of a real
// sky. With ApplyW unset, w is ignored (a valid approximation for small
// fields of view or coplanar arrays) and a single plane is processed.
//
// Visibilities are laid out row-major as nrow x nchan with
// nrow = len(uvw) and nchan = len(freq); uvw is in meters, freq in Hz.
// Optional per-visibility weights and a mask follow the same layout.
// Both operations accept float32/complex64 or float64/complex128 data;
// internal computation always runs in double precision.
package gridder
