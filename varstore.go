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
	"slices"

	"github.com/go-text/typesetting/font/opentype/tables"

	"seehuhn.de/go/varcff/cff"
)

// buildVarStore converts the regions and records collected while
// merging into a CFF2 variation store.  The axes give the order of the
// region coordinates.  If axes is nil, all axes used by the regions are
// included, sorted by tag.
func buildVarStore(acc *accumulator, axes []tables.Tag) *cff.VarStore {
	if axes == nil {
		seen := make(map[tables.Tag]bool)
		for _, s := range acc.supports {
			for tag := range s {
				if !seen[tag] {
					seen[tag] = true
					axes = append(axes, tag)
				}
			}
		}
		slices.Sort(axes)
	}

	vs := &cff.VarStore{
		AxisTags: slices.Clone(axes),
		Regions:  make([]cff.Region, len(acc.supports)),
		Data:     make([]cff.VarData, len(acc.records)),
	}
	for i, s := range acc.supports {
		region := make(cff.Region, len(axes))
		for j, tag := range axes {
			if t, ok := s[tag]; ok {
				region[j] = cff.RegionAxis{Start: t.Lower, Peak: t.Peak, End: t.Upper}
			}
		}
		vs.Regions[i] = region
	}
	for i, rec := range acc.records {
		vs.Data[i] = cff.VarData{RegionIndices: slices.Clone(rec.regions)}
	}
	return vs
}
