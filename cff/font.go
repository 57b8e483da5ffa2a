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

package cff

import (
	"slices"

	"seehuhn.de/go/sfnt/glyph"
)

// Font is a decoded CFF or CFF2 font.
type Font struct {
	// Major is the major version of the font format:
	// 1 for CFF fonts and 2 for CFF2 fonts.
	Major int

	// Top is the top DICT.
	Top Dict

	GlyphOrder  []string
	CharStrings []Program
	GlobalSubrs []Program

	// Private is the private DICT of a CFF font without FDArray.
	// This is always nil for CFF2 fonts.
	Private *PrivateDict

	// FDArray, if non-nil, lists the font DICTs.
	FDArray []*FontDict

	// FDSelect maps glyphs to entries in FDArray.
	// If FDSelect is nil, all glyphs use the first font DICT.
	FDSelect FDSelectFn

	// VarStore is the variation store of a CFF2 font.
	VarStore *VarStore
}

// FontDict is an element of the FDArray.
type FontDict struct {
	Dict    Dict
	Private *PrivateDict
}

// PrivateDict is a private DICT together with its local subroutines.
type PrivateDict struct {
	Dict  Dict
	Subrs []Program
}

// IsCFF2 reports whether the font uses the CFF2 layout.
func (f *Font) IsCFF2() bool {
	return f.Major == 2
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	return len(f.CharStrings)
}

// GlyphIndex returns a map from glyph names to glyph IDs.
func (f *Font) GlyphIndex() map[string]glyph.ID {
	res := make(map[string]glyph.ID, len(f.GlyphOrder))
	for i, name := range f.GlyphOrder {
		if _, seen := res[name]; !seen {
			res[name] = glyph.ID(i)
		}
	}
	return res
}

// FD returns the index of the font DICT used by the given glyph.
func (f *Font) FD(gid glyph.ID) int {
	if f.FDSelect == nil {
		return 0
	}
	return f.FDSelect(gid)
}

// Privates returns the private DICTs of the font, in FDArray order.
// For fonts without FDArray this is a slice containing Private.
func (f *Font) Privates() []*PrivateDict {
	if f.FDArray == nil {
		if f.Private == nil {
			return nil
		}
		return []*PrivateDict{f.Private}
	}
	res := make([]*PrivateDict, len(f.FDArray))
	for i, fd := range f.FDArray {
		res[i] = fd.Private
	}
	return res
}

// privateFor returns the private DICT used by the given glyph.
func (f *Font) privateFor(gid glyph.ID) (*PrivateDict, error) {
	if f.FDArray == nil {
		return f.Private, nil
	}
	fd := f.FD(gid)
	if fd < 0 || fd >= len(f.FDArray) {
		return nil, invalidSince("FDSelect out of range")
	}
	return f.FDArray[fd].Private, nil
}

func (f *Font) localSubrs(gid glyph.ID) ([]Program, error) {
	p, err := f.privateFor(gid)
	if err != nil || p == nil {
		return nil, err
	}
	return p.Subrs, nil
}

// Clone returns a deep copy of the font.
// The FDSelect function is shared between the copies.
func (f *Font) Clone() *Font {
	c := &Font{
		Major:       f.Major,
		Top:         f.Top.Clone(),
		GlyphOrder:  slices.Clone(f.GlyphOrder),
		CharStrings: clonePrograms(f.CharStrings),
		GlobalSubrs: clonePrograms(f.GlobalSubrs),
		FDSelect:    f.FDSelect,
		VarStore:    f.VarStore.Clone(),
	}

	// keep sharing of private DICTs between font DICTs intact
	privs := map[*PrivateDict]*PrivateDict{}
	clonePrivate := func(p *PrivateDict) *PrivateDict {
		if p == nil {
			return nil
		}
		if q, ok := privs[p]; ok {
			return q
		}
		q := &PrivateDict{Dict: p.Dict.Clone(), Subrs: clonePrograms(p.Subrs)}
		privs[p] = q
		return q
	}

	c.Private = clonePrivate(f.Private)
	if f.FDArray != nil {
		c.FDArray = make([]*FontDict, len(f.FDArray))
		for i, fd := range f.FDArray {
			c.FDArray[i] = &FontDict{
				Dict:    fd.Dict.Clone(),
				Private: clonePrivate(fd.Private),
			}
		}
	}
	return c
}

func clonePrograms(pp []Program) []Program {
	if pp == nil {
		return nil
	}
	res := make([]Program, len(pp))
	for i, p := range pp {
		res[i] = p.Clone()
	}
	return res
}
