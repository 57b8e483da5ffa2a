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

// Package varcff merges several CFF master fonts into one CFF2 variable
// font.
//
// The masters are given as decoded [cff.Font] values, together with a
// [varmodel.Model] describing the master locations in design space.
// The first master is the default master.  All other masters are
// region masters.  A glyph may be missing from region masters; in this
// case a sub-model over the remaining masters is used for the glyph.
//
// The result is a CFF2 font with one charstring per glyph.  Coordinates
// which differ between masters are encoded using the blend operator;
// all other coordinates are stored as plain numbers.  Hinting
// parameters in the private DICTs are blended in the same way.
//
// Merging requires that corresponding glyphs in all masters use the
// same sequence of drawing commands.  If this is not the case, a
// [*StructuralMismatchError] is returned.
package varcff

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'varcff'.
func tracer() tracing.Trace {
	return tracing.Select("varcff")
}
