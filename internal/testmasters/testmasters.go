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

// Package testmasters provides synthetic master fonts for tests.
package testmasters

import (
	"fmt"

	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/font/opentype/tables"

	"seehuhn.de/go/varcff/cff"
	"seehuhn.de/go/varcff/varmodel"
)

// Axis tags used by the test fonts.
var (
	Wght = opentype.MustNewTag("wght")
	Wdth = opentype.MustNewTag("wdth")
)

// Axes lists the axes of the test fonts.
var Axes = []tables.Tag{Wght, Wdth}

// Glyph is a glyph of a test font.
type Glyph struct {
	Name string

	// Width, if non-zero, is stored at the start of the charstring.
	Width float64

	Draw func(p cff.PathSink)
}

// MakeFont returns a CFF font with the given glyphs and private DICT.
// The font has no FDArray.
func MakeFont(glyphs []Glyph, private cff.Dict) *cff.Font {
	f := newFont(glyphs)
	f.Private = &cff.PrivateDict{Dict: private}
	return f
}

// MakeCIDFont returns a CID-keyed CFF font.  Glyph i uses the font DICT
// fds[i], and privates gives the private DICT of every font DICT.
func MakeCIDFont(glyphs []Glyph, fds []int, privates []cff.Dict) *cff.Font {
	if len(fds) != len(glyphs) {
		panic(fmt.Sprintf("%d FD indices for %d glyphs", len(fds), len(glyphs)))
	}
	f := newFont(glyphs)
	f.Top[cff.OpROS] = []cff.Operand{{Val: 391}, {Val: 392}, {Val: 0}}
	for _, p := range privates {
		f.FDArray = append(f.FDArray, &cff.FontDict{
			Dict:    cff.Dict{},
			Private: &cff.PrivateDict{Dict: p},
		})
	}
	f.FDSelect = cff.FDSelectFromSlice(fds)
	return f
}

func newFont(glyphs []Glyph) *cff.Font {
	f := &cff.Font{
		Major: 1,
		Top:   cff.Dict{},
	}
	f.Top.SetNums(cff.OpFontMatrix, 0.001, 0, 0, 0.001, 0, 0)
	for _, g := range glyphs {
		o := &cff.Outline{}
		if g.Draw != nil {
			g.Draw(o)
		}
		prog, err := o.Program(false)
		if err != nil {
			panic(fmt.Sprintf("glyph %q: %v", g.Name, err))
		}
		if g.Width != 0 {
			prog = append(cff.Program{cff.Num(g.Width)}, prog...)
		}
		f.GlyphOrder = append(f.GlyphOrder, g.Name)
		f.CharStrings = append(f.CharStrings, prog)
	}
	return f
}

// Polygon returns a drawing function for a closed polygon.
func Polygon(xy ...float64) func(p cff.PathSink) {
	return func(p cff.PathSink) {
		p.MoveTo(xy[0], xy[1])
		for i := 2; i+1 < len(xy); i += 2 {
			p.LineTo(xy[i], xy[i+1])
		}
		p.ClosePath()
	}
}

// The master locations used by ThreeMasters.
var (
	DefaultLoc = varmodel.Location{}
	BoldLoc    = varmodel.Location{Wght: 1}
	WideLoc    = varmodel.Location{Wdth: 1}
)

// ThreeMasters returns a default master and two region masters, at the
// locations DefaultLoc, BoldLoc and WideLoc, together with the
// corresponding variation model.
//
// The glyphs are:
//   - ".notdef": empty in all masters.
//   - "A": the end point of the final curve moves 10 units to the right
//     in the bold master.
//   - "B" and "C": changed in the bold master and missing from the wide
//     master.
//   - "D": the same in all masters.
//
// The private DICTs differ in BlueValues and StdHW between the default
// and the bold master.
func ThreeMasters() ([]*cff.Font, *varmodel.Model) {
	glyphA := func(dx float64) func(p cff.PathSink) {
		return func(p cff.PathSink) {
			p.MoveTo(10, 0)
			p.LineTo(200, 0)
			p.CurveTo(250, 50, 250, 150, 200+dx, 200)
			p.ClosePath()
		}
	}
	glyphD := Polygon(0, 0, 50, 50, 0, 50)

	regular := MakeFont([]Glyph{
		{Name: ".notdef", Width: 500},
		{Name: "A", Width: 600, Draw: glyphA(0)},
		{Name: "B", Width: 500, Draw: Polygon(0, 0, 100, 0, 100, 100, 0, 100)},
		{Name: "C", Draw: Polygon(50, 50, 150, 50, 100, 150)},
		{Name: "D", Width: 300, Draw: glyphD},
	}, cff.Dict{
		cff.OpBlueValues: {{Val: -10}, {Val: 0}, {Val: 500}, {Val: 510}},
		cff.OpBlueScale:  {{Val: 0.039625}},
		cff.OpStdHW:      {{Val: 50}},
	})
	bold := MakeFont([]Glyph{
		{Name: ".notdef", Width: 500},
		{Name: "A", Width: 620, Draw: glyphA(10)},
		{Name: "B", Width: 520, Draw: Polygon(0, 0, 100, 0, 120, 100, 0, 100)},
		{Name: "C", Draw: Polygon(50, 50, 150, 50, 100, 170)},
		{Name: "D", Width: 300, Draw: glyphD},
	}, cff.Dict{
		cff.OpBlueValues: {{Val: -12}, {Val: 0}, {Val: 510}, {Val: 520}},
		cff.OpBlueScale:  {{Val: 0.039625}},
		cff.OpStdHW:      {{Val: 60}},
	})
	wide := MakeFont([]Glyph{
		{Name: ".notdef", Width: 500},
		{Name: "A", Width: 700, Draw: glyphA(0)},
		{Name: "D", Width: 300, Draw: glyphD},
	}, cff.Dict{
		cff.OpBlueValues: {{Val: -10}, {Val: 0}, {Val: 500}, {Val: 510}},
		cff.OpBlueScale:  {{Val: 0.039625}},
		cff.OpStdHW:      {{Val: 50}},
	})

	model, err := varmodel.New([]varmodel.Location{DefaultLoc, BoldLoc, WideLoc}, Axes)
	if err != nil {
		panic(err)
	}
	return []*cff.Font{regular, bold, wide}, model
}
