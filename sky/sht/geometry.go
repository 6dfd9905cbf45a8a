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
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/astrope/go-radiosky/sky"
)

// Ring describes one iso-latitude circle of pixels.
type Ring struct {
	// Theta is the ring colatitude in [0, pi].
	Theta float64
	// Nph is the number of pixels on the ring.
	Nph int
	// Phi0 is the longitude of the first pixel.
	Phi0 float64
	// Weight is the analysis quadrature weight, including the 2*pi/Nph
	// longitude measure.
	Weight float64
	// Ofs is the offset of the ring's first pixel in the flat map array.
	Ofs int
}

type geomKind int

const (
	geomGauss geomKind = iota
	geomDH
)

// Geometry is an immutable iso-latitude pixelization descriptor: the ring
// table plus derived totals. Maps are flat arrays grouped ring by ring;
// per-ring pixel counts may differ in principle, so all indexing goes
// through the ring offset table.
type Geometry struct {
	rings []Ring
	npix  int
	kind  geomKind
}

// NewGaussGeometry builds a Gauss-Legendre geometry with nlat rings at the
// Gauss-Legendre quadrature colatitudes and nlon equally spaced pixels per
// ring. Quadrature is exact for band-limited analysis when
// nlat >= lmax+1.
func NewGaussGeometry(nlat, nlon int) (*Geometry, error) {
	if err := checkRingCounts(nlat, nlon); err != nil {
		return nil, err
	}
	x := make([]float64, nlat)
	w := make([]float64, nlat)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)

	g := &Geometry{rings: make([]Ring, nlat), kind: geomGauss}
	for r := 0; r < nlat; r++ {
		// gonum returns nodes in ascending cos(theta); rings run from the
		// North Pole southwards.
		i := nlat - 1 - r
		g.rings[r] = Ring{
			Theta:  math.Acos(x[i]),
			Nph:    nlon,
			Phi0:   0,
			Weight: w[i] * 2 * math.Pi / float64(nlon),
			Ofs:    r * nlon,
		}
	}
	g.npix = nlat * nlon
	return g, nil
}

// NewDHGeometry builds a Driscoll-Healy geometry with nlat equidistant
// rings theta_j = j*pi/nlat (North Pole included, South Pole excluded) and
// nlon equally spaced pixels per ring. The canonical ring count for a
// truncation at lmax is 2*lmax+2.
func NewDHGeometry(nlat, nlon int) (*Geometry, error) {
	if err := checkRingCounts(nlat, nlon); err != nil {
		return nil, err
	}
	g := &Geometry{rings: make([]Ring, nlat), kind: geomDH}
	for r := 0; r < nlat; r++ {
		theta := math.Pi * float64(r) / float64(nlat)
		g.rings[r] = Ring{
			Theta:  theta,
			Nph:    nlon,
			Phi0:   0,
			Weight: dhWeight(r, nlat) * 2 * math.Pi / float64(nlon),
			Ofs:    r * nlon,
		}
	}
	g.npix = nlat * nlon
	return g, nil
}

// dhWeight returns the Driscoll-Healy quadrature weight for ring r of
// nlat, normalized so the weights sum to 2 (the measure of dcos(theta)).
// It integrates cos(m*theta)*sin(theta) exactly for m <= nlat-2.
func dhWeight(r, nlat int) float64 {
	theta := math.Pi * float64(r) / float64(nlat)
	var acc sky.Accumulator
	for j := 0; j < nlat/2; j++ {
		acc.Add(math.Sin(float64(2*j+1)*theta) / float64(2*j+1))
	}
	return 4 / float64(nlat) * math.Sin(theta) * acc.Value()
}

func checkRingCounts(nlat, nlon int) error {
	if nlat < 1 {
		return fmt.Errorf("%w: nlat %d < 1", sky.ErrConfiguration, nlat)
	}
	if nlon < 1 {
		return fmt.Errorf("%w: nlon %d < 1", sky.ErrConfiguration, nlon)
	}
	return nil
}

// NRings returns the number of rings.
func (g *Geometry) NRings() int { return len(g.rings) }

// NPix returns the total pixel count.
func (g *Geometry) NPix() int { return g.npix }

// Ring returns the descriptor of ring r.
func (g *Geometry) Ring(r int) Ring { return g.rings[r] }

// Equal reports whether two geometries describe identical pixelizations.
func (g *Geometry) Equal(other *Geometry) bool {
	if g.kind != other.kind || len(g.rings) != len(other.rings) {
		return false
	}
	for i := range g.rings {
		if g.rings[i] != other.rings[i] {
			return false
		}
	}
	return true
}

// maxNph returns the largest per-ring pixel count.
func (g *Geometry) maxNph() int {
	n := 0
	for i := range g.rings {
		if g.rings[i].Nph > n {
			n = g.rings[i].Nph
		}
	}
	return n
}

// minNph returns the smallest per-ring pixel count.
func (g *Geometry) minNph() int {
	n := g.rings[0].Nph
	for i := range g.rings {
		if g.rings[i].Nph < n {
			n = g.rings[i].Nph
		}
	}
	return n
}

// supports reports whether the geometry can carry an alias-free transform
// at the given truncation, and the reason if not.
func (g *Geometry) supports(lmax, mmax int) error {
	switch g.kind {
	case geomGauss:
		if len(g.rings) < lmax+1 {
			return fmt.Errorf("%w: Gauss-Legendre geometry needs nlat >= lmax+1 (nlat %d, lmax %d)",
				sky.ErrConfiguration, len(g.rings), lmax)
		}
	case geomDH:
		if len(g.rings) < 2*lmax+2 {
			return fmt.Errorf("%w: Driscoll-Healy geometry needs nlat >= 2*lmax+2 (nlat %d, lmax %d)",
				sky.ErrConfiguration, len(g.rings), lmax)
		}
	}
	if g.minNph() < 2*mmax+1 {
		return fmt.Errorf("%w: rings need nlon >= 2*mmax+1 (nlon %d, mmax %d)",
			sky.ErrConfiguration, g.minNph(), mmax)
	}
	return nil
}
