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

// Package sht implements spherical harmonic transforms between packed
// a_lm coefficient arrays and real-valued maps on iso-latitude
// pixelizations of the sphere.
//
// # Coefficient layout
//
// Maps are real-valued, so only coefficients with m >= 0 are stored; the
// symmetry a(l,-m) = (-1)^m conj(a(l,m)) is implied. Coefficients are
// packed column-major by order:
//
//	a(0,0), a(1,0), ..., a(lmax,0), a(1,1), ..., a(lmax,1), ..., a(lmax,mmax)
//
// Coefficients with m == 0 must have zero imaginary part.
//
// # Geometries
//
// Two iso-latitude ring families are provided:
//
//   - Gauss-Legendre: nlat rings at Gauss-Legendre quadrature nodes.
//     With nlat >= lmax+1 the analysis is the exact mathematical inverse
//     of synthesis for band-limited input.
//   - Driscoll-Healy: nlat equidistant rings theta_j = j*pi/nlat. The
//     North Pole ring is included, the South Pole is not. The quadrature
//     is exact for the weight integrals it is built from, but the full
//     round trip is accurate rather than bit-exact; this is a property of
//     the geometry, not a defect.
//
// # Usage
//
//	job, _ := sht.NewJob[float64, complex128]()
//	job.SetTriangularAlmInfo(lmax, lmax)
//	job.SetGaussGeometry(lmax+1, 2*lmax+2)
//	m, _ := job.Alm2Map(alm)
//	alm2, _ := job.Map2Alm(m)
//
// Synthesis parallelizes over rings and analysis over orders m; both
// directions write disjoint output regions per work unit, so results are
// independent of the thread count up to floating-point accumulation
// order.
package sht
