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

// Package cff implements the in-memory representation of CFF and CFF2
// fonts needed to build variable CFF2 fonts.
//
// The package contains codecs for DICT data and charstrings, an outline
// interpreter for Type 2 and CFF2 charstrings, an encoder which turns
// path commands (optionally with blended operands) into compact
// charstrings, and the conversion of a CFF font into the CFF2 layout.
//
// Reading and writing complete font files is not part of this package.
package cff

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'varcff.cff'.
func tracer() tracing.Trace {
	return tracing.Select("varcff.cff")
}
