// seehuhn.de/go/varcff - merge CFF fonts into CFF2 variable fonts
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package varcff

import (
	"math"
	"testing"

	"github.com/go-text/typesetting/font/opentype/tables"

	"seehuhn.de/go/varcff/internal/testmasters"
	"seehuhn.de/go/varcff/varmodel"
)

// TestVarStoreScalars checks that the regions of the variation store
// give the same scalars as the supports of the variation model they
// were built from.
func TestVarStoreScalars(t *testing.T) {
	wght, wdth := testmasters.Wght, testmasters.Wdth
	locs := []varmodel.Location{
		{},
		{wght: 1},
		{wght: -1},
		{wght: 0.5},
		{wdth: 1},
		{wght: 1, wdth: 1},
		{wght: 0.5, wdth: -0.5},
	}
	model, err := varmodel.New(locs, testmasters.Axes)
	if err != nil {
		t.Fatal(err)
	}
	present := make([]bool, len(locs))
	for i := range present {
		present[i] = true
	}
	acc := newAccumulator()
	acc.register(present, model)

	for _, axes := range [][]tables.Tag{testmasters.Axes, nil} {
		vs := buildVarStore(acc, axes)
		if len(vs.Regions) != len(acc.supports) {
			t.Fatalf("%d regions for %d supports", len(vs.Regions), len(acc.supports))
		}
		for x := -1.0; x <= 1; x += 0.125 {
			for y := -1.0; y <= 1; y += 0.125 {
				loc := varmodel.Location{wght: x, wdth: y}
				coords := make([]float64, len(vs.AxisTags))
				for j, tag := range vs.AxisTags {
					coords[j] = loc[tag]
				}
				for i, s := range acc.supports {
					want := varmodel.SupportScalar(loc, s)
					got := vs.Regions[i].Scalar(coords)
					if math.Abs(got-want) > 1e-12 {
						t.Errorf("region %d at %s: got %g, want %g", i, loc, got, want)
					}
				}
			}
		}
	}
}
