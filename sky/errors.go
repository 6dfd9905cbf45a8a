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

import "errors"

// All validation runs before any heavy computation starts; a call either
// fails with one of these sentinels (possibly wrapped with detail) or runs
// to completion. Use errors.Is to classify.
var (
	// ErrConfiguration indicates inconsistent transform configuration:
	// lmax/mmax/nlat/nlon constraints, a missing layout or geometry, or an
	// invalid oversampled grid size.
	ErrConfiguration = errors.New("sky: invalid configuration")

	// ErrShapeMismatch indicates array dimensions that disagree with the
	// configured problem shape, or non-positive image dimensions.
	ErrShapeMismatch = errors.New("sky: shape mismatch")

	// ErrPrecisionMismatch indicates single- and double-precision arguments
	// mixed within one call.
	ErrPrecisionMismatch = errors.New("sky: mixed precision arguments")

	// ErrTolerance indicates a requested accuracy tolerance that is not
	// positive or not representable at the requested storage precision.
	ErrTolerance = errors.New("sky: invalid tolerance")
)
