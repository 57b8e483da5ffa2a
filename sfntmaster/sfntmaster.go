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

// Package sfntmaster loads glyph outlines from OpenType and TrueType
// fonts, for use as master fonts.
//
// Quadratic outlines are converted to cubic outlines.  Hinting
// information is not preserved.
package sfntmaster

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/varcff/cff"
)

// Load converts the glyphs of an OpenType or TrueType font into a CFF
// font.  The glyph widths are stored in the charstrings.
//
// Glyphs without a name in the font are named "gid" followed by the
// glyph index.
func Load(data []byte) (*cff.Font, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	return convert(f)
}

func convert(f *sfnt.Font) (*cff.Font, error) {
	var buf sfnt.Buffer

	unitsPerEm := float64(f.UnitsPerEm())
	// At this size, one unit of fixed.Int26_6 is one font design unit.
	ppem := fixed.Int26_6(f.UnitsPerEm())

	res := &cff.Font{
		Major:   1,
		Top:     cff.Dict{},
		Private: &cff.PrivateDict{Dict: cff.Dict{}},
	}
	res.Top.SetNums(cff.OpFontMatrix, 1/unitsPerEm, 0, 0, 1/unitsPerEm, 0, 0)

	seen := make(map[string]bool)
	n := f.NumGlyphs()
	for i := range n {
		gid := sfnt.GlyphIndex(i)

		name, err := f.GlyphName(&buf, gid)
		if err != nil {
			return nil, fmt.Errorf("glyph %d: %w", i, err)
		}
		if name == "" || seen[name] {
			name = fmt.Sprintf("gid%d", i)
		}
		seen[name] = true

		segments, err := f.LoadGlyph(&buf, gid, ppem, nil)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", name, err)
		}
		o := &cff.Outline{}
		drawSegments(o, segments)
		prog, err := o.Program(false)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", name, err)
		}

		advance, err := f.GlyphAdvance(&buf, gid, ppem, font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", name, err)
		}
		if advance != 0 {
			prog = append(cff.Program{cff.Num(float64(advance))}, prog...)
		}

		res.GlyphOrder = append(res.GlyphOrder, name)
		res.CharStrings = append(res.CharStrings, prog)
	}
	return res, nil
}

// drawSegments draws an sfnt outline, flipping the y axis so that it
// points upwards.
func drawSegments(sink cff.PathSink, segments sfnt.Segments) {
	var cur vec.Vec2
	open := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				sink.ClosePath()
			}
			cur = toVec(seg.Args[0])
			sink.MoveTo(cur.X, cur.Y)
			open = true
		case sfnt.SegmentOpLineTo:
			cur = toVec(seg.Args[0])
			sink.LineTo(cur.X, cur.Y)
		case sfnt.SegmentOpQuadTo:
			ctrl := toVec(seg.Args[0])
			end := toVec(seg.Args[1])
			c1 := cur.Add(ctrl.Sub(cur).Mul(2.0 / 3.0))
			c2 := end.Add(ctrl.Sub(end).Mul(2.0 / 3.0))
			sink.CurveTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			cur = end
		case sfnt.SegmentOpCubeTo:
			c1 := toVec(seg.Args[0])
			c2 := toVec(seg.Args[1])
			cur = toVec(seg.Args[2])
			sink.CurveTo(c1.X, c1.Y, c2.X, c2.Y, cur.X, cur.Y)
		}
	}
	if open {
		sink.ClosePath()
	}
}

func toVec(p fixed.Point26_6) vec.Vec2 {
	return vec.Vec2{X: float64(p.X), Y: -float64(p.Y)}
}
