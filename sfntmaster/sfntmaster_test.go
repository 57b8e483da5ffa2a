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

package sfntmaster

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/varcff"
	"seehuhn.de/go/varcff/cff"
	"seehuhn.de/go/varcff/internal/testmasters"
	"seehuhn.de/go/varcff/varmodel"
)

func TestLoad(t *testing.T) {
	f, err := Load(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}

	ref, err := sfnt.Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if f.NumGlyphs() != ref.NumGlyphs() {
		t.Errorf("got %d glyphs, expected %d", f.NumGlyphs(), ref.NumGlyphs())
	}
	scale := 1 / float64(ref.UnitsPerEm())
	if diff := cmp.Diff([]float64{scale, 0, 0, scale, 0, 0}, f.Top.Nums(cff.OpFontMatrix)); diff != "" {
		t.Errorf("wrong font matrix (-want +got):\n%s", diff)
	}

	seen := make(map[string]bool)
	for _, name := range f.GlyphOrder {
		if seen[name] {
			t.Errorf("duplicate glyph name %q", name)
		}
		seen[name] = true
	}

	nonEmpty := 0
	for gid := range f.CharStrings {
		o := &cff.Outline{}
		err := f.DrawGlyph(glyph.ID(gid), o)
		if err != nil {
			t.Fatal(err)
		}
		if len(o.Cmds) > 0 {
			nonEmpty++
			if o.Cmds[0].Op != cff.OpMoveTo {
				t.Errorf("glyph %d does not start with a move", gid)
			}
		}
	}
	if nonEmpty < f.NumGlyphs()/2 {
		t.Errorf("only %d of %d glyphs have an outline", nonEmpty, f.NumGlyphs())
	}
}

// TestMergeIdentical merges two copies of the same font.  The result must
// not contain any blend operators.
func TestMergeIdentical(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode")
	}

	regular, err := Load(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	copy2, err := Load(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	model, err := varmodel.New([]varmodel.Location{{}, {testmasters.Wght: 1}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	res, err := varcff.Merge([]*cff.Font{regular, copy2}, model, nil, &varcff.Options{
		RoundTolerance: 0.5,
		Workers:        4,
	})
	if err != nil {
		t.Fatal(err)
	}
	for gid, prog := range res.Font.CharStrings {
		if prog.HasBlend() {
			t.Errorf("glyph %q: unexpected blend", res.Font.GlyphOrder[gid])
		}
	}
}
