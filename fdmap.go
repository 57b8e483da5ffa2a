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
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/varcff/cff"
)

// FDMap describes which font DICTs of the region masters correspond to
// the font DICTs of the default master.  FDMap[fd][i] is the index of the
// font DICT in master i which corresponds to font DICT fd of the default
// master.  Master indices start at 1, since master 0 is the default
// master.
type FDMap map[int]map[int]int

func (m FDMap) set(defaultFD, master, regionFD int) {
	row := m[defaultFD]
	if row == nil {
		row = make(map[int]int)
		m[defaultFD] = row
	}
	row[master] = regionFD
}

// BuildFDMap matches the font DICTs of the region masters to the font
// DICTs of the default master masters[0].  Font DICTs are paired by
// looking at the glyphs the masters have in common.  The first glyph
// which establishes a pairing wins.  If strict is set, later glyphs which
// contradict an established pairing cause an *FDConflictError.
func BuildFDMap(masters []*cff.Font, strict bool) (FDMap, error) {
	res := FDMap{}
	if len(masters) == 0 {
		return res, nil
	}

	def := masters[0]
	if def.FDSelect == nil {
		for i := 1; i < len(masters); i++ {
			res.set(0, i, 0)
		}
		return res, nil
	}

	defIndex := def.GlyphIndex()
	for i := 1; i < len(masters); i++ {
		region := masters[i]

		if region.FDSelect == nil {
			// All glyphs of the region master share the same font DICT.
			if len(region.GlyphOrder) == 0 {
				continue
			}
			gid, ok := defIndex[region.GlyphOrder[0]]
			if !ok {
				continue
			}
			res.set(def.FD(gid), i, 0)
			continue
		}

		for regionGid, name := range region.GlyphOrder {
			gid, ok := defIndex[name]
			if !ok {
				continue
			}
			defFD := def.FD(gid)
			regionFD := region.FD(glyph.ID(regionGid))
			if prev, seen := res[defFD][i]; seen {
				if strict && prev != regionFD {
					return nil, &FDConflictError{
						Glyph:     name,
						Master:    i,
						DefaultFD: defFD,
						Want:      prev,
						Got:       regionFD,
					}
				}
				continue
			}
			res.set(defFD, i, regionFD)
		}
	}
	tracer().Debugf("FD map: %v", res)
	return res, nil
}
