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
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/sfnt/glyph"
)

// PathSink receives the outline of a glyph.
// All coordinates are absolute, in font design units.
type PathSink interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CurveTo(x1, y1, x2, y2, x3, y3 float64)
	ClosePath()
}

// DrawGlyph draws the outline of a glyph.  For CFF2 fonts, the default
// instance is drawn.
//
// For CFF fonts, the optional glyph width at the start of the charstring
// is discarded.
func (f *Font) DrawGlyph(gid glyph.ID, sink PathSink) error {
	return f.drawGlyph(gid, sink, nil)
}

// DrawGlyphAt draws the outline of a glyph of a CFF2 font at the given
// normalized design coordinates.  The coordinates are given in the
// order of VarStore.AxisTags.
func (f *Font) DrawGlyphAt(gid glyph.ID, coords []float64, sink PathSink) error {
	if coords == nil {
		coords = []float64{}
	}
	return f.drawGlyph(gid, sink, coords)
}

func (f *Font) drawGlyph(gid glyph.ID, sink PathSink, coords []float64) error {
	if int(gid) >= len(f.CharStrings) {
		return invalidSince(fmt.Sprintf("glyph %d out of range", gid))
	}
	local, err := f.localSubrs(gid)
	if err != nil {
		return err
	}
	d := &drawer{
		sink:   sink,
		vs:     f.VarStore,
		local:  local,
		global: f.GlobalSubrs,
		legacy: !f.IsCFF2(),
		coords: coords,
	}
	_, err = d.run(f.CharStrings[gid], 0)
	if err != nil {
		return fmt.Errorf("glyph %d: %w", gid, err)
	}
	d.closePath()
	return nil
}

type drawer struct {
	sink   PathSink
	vs     *VarStore
	local  []Program
	global []Program
	legacy bool
	coords []float64 // nil means default instance

	stack     []float64
	storage   [32]float64
	widthDone bool
	vsindex   int
	scalars   []float64 // for vsindex, nil until needed
	posX      float64
	posY      float64
	open      bool
}

func (d *drawer) closePath() {
	if d.open {
		d.sink.ClosePath()
		d.open = false
	}
}

func (d *drawer) rMoveTo(dx, dy float64) {
	d.closePath()
	d.posX += dx
	d.posY += dy
	d.sink.MoveTo(d.posX, d.posY)
	d.open = true
}

func (d *drawer) rLineTo(dx, dy float64) {
	d.posX += dx
	d.posY += dy
	d.sink.LineTo(d.posX, d.posY)
	d.open = true
}

func (d *drawer) rCurveTo(dxa, dya, dxb, dyb, dxc, dyc float64) {
	xa := d.posX + dxa
	ya := d.posY + dya
	xb := xa + dxb
	yb := ya + dyb
	d.posX = xb + dxc
	d.posY = yb + dyc
	d.sink.CurveTo(xa, ya, xb, yb, d.posX, d.posY)
	d.open = true
}

// stripWidth removes the glyph width from the stack of a Type 2
// charstring.  The width is present if it is the first stack-clearing
// operator and the number of arguments has the unexpected parity.
func (d *drawer) stripWidth(isPresent bool) {
	if !d.legacy || d.widthDone {
		return
	}
	if isPresent && len(d.stack) > 0 {
		d.stack = d.stack[1:]
	}
	d.widthDone = true
}

// run interprets a charstring or subroutine.  The return value indicates
// whether the end of the glyph was reached.
func (d *drawer) run(prog Program, depth int) (bool, error) {
	for _, t := range prog {
		if t.IsNumber() {
			d.stack = append(d.stack, t.Val)
			if len(d.stack) > MaxStackCFF2 {
				return false, errStackOverflow
			}
			continue
		}

		stack := d.stack
		switch op := t.Op; op {
		case T2RMoveTo:
			d.stripWidth(len(stack) > 2)
			stack = d.stack
			if len(stack) >= 2 {
				d.rMoveTo(stack[0], stack[1])
			}
			d.stack = d.stack[:0]

		case T2HMoveTo:
			d.stripWidth(len(stack) > 1)
			stack = d.stack
			if len(stack) >= 1 {
				d.rMoveTo(stack[0], 0)
			}
			d.stack = d.stack[:0]

		case T2VMoveTo:
			d.stripWidth(len(stack) > 1)
			stack = d.stack
			if len(stack) >= 1 {
				d.rMoveTo(0, stack[0])
			}
			d.stack = d.stack[:0]

		case T2RLineTo:
			for len(stack) >= 2 {
				d.rLineTo(stack[0], stack[1])
				stack = stack[2:]
			}
			d.stack = d.stack[:0]

		case T2HLineTo, T2VLineTo:
			horizontal := op == T2HLineTo
			for _, z := range stack {
				if horizontal {
					d.rLineTo(z, 0)
				} else {
					d.rLineTo(0, z)
				}
				horizontal = !horizontal
			}
			d.stack = d.stack[:0]

		case T2RRCurveTo, T2RCurveLine, T2RLineCurve:
			for op == T2RLineCurve && len(stack) >= 8 {
				d.rLineTo(stack[0], stack[1])
				stack = stack[2:]
			}
			for len(stack) >= 6 {
				d.rCurveTo(stack[0], stack[1],
					stack[2], stack[3],
					stack[4], stack[5])
				stack = stack[6:]
			}
			if op == T2RCurveLine && len(stack) >= 2 {
				d.rLineTo(stack[0], stack[1])
			}
			d.stack = d.stack[:0]

		case T2HHCurveTo:
			var dy1 float64
			if len(stack)%4 != 0 {
				dy1, stack = stack[0], stack[1:]
			}
			for len(stack) >= 4 {
				d.rCurveTo(stack[0], dy1,
					stack[1], stack[2],
					stack[3], 0)
				stack = stack[4:]
				dy1 = 0
			}
			d.stack = d.stack[:0]

		case T2VVCurveTo:
			var dx1 float64
			if len(stack)%4 != 0 {
				dx1, stack = stack[0], stack[1:]
			}
			for len(stack) >= 4 {
				d.rCurveTo(dx1, stack[0],
					stack[1], stack[2],
					0, stack[3])
				stack = stack[4:]
				dx1 = 0
			}
			d.stack = d.stack[:0]

		case T2HVCurveTo, T2VHCurveTo:
			horizontal := op == T2HVCurveTo
			for len(stack) >= 4 {
				var extra float64
				if len(stack) == 5 {
					extra = stack[4]
				}
				if horizontal {
					d.rCurveTo(stack[0], 0,
						stack[1], stack[2],
						extra, stack[3])
				} else {
					d.rCurveTo(0, stack[0],
						stack[1], stack[2],
						stack[3], extra)
				}
				stack = stack[4:]
				horizontal = !horizontal
			}
			d.stack = d.stack[:0]

		case T2Flex:
			if len(stack) >= 13 {
				d.rCurveTo(stack[0], stack[1],
					stack[2], stack[3],
					stack[4], stack[5])
				d.rCurveTo(stack[6], stack[7],
					stack[8], stack[9],
					stack[10], stack[11])
			}
			d.stack = d.stack[:0]
		case T2Flex1:
			if len(stack) >= 11 {
				d.rCurveTo(stack[0], stack[1],
					stack[2], stack[3],
					stack[4], stack[5])
				extra := stack[10]
				dx := stack[0] + stack[2] + stack[4] + stack[6] + stack[8]
				dy := stack[1] + stack[3] + stack[5] + stack[7] + stack[9]
				if math.Abs(dx) > math.Abs(dy) {
					d.rCurveTo(stack[6], stack[7],
						stack[8], stack[9],
						extra, -dy)
				} else {
					d.rCurveTo(stack[6], stack[7],
						stack[8], stack[9],
						-dx, extra)
				}
			}
			d.stack = d.stack[:0]
		case T2HFlex:
			if len(stack) >= 7 {
				d.rCurveTo(stack[0], 0,
					stack[1], stack[2],
					stack[3], 0)
				d.rCurveTo(stack[4], 0,
					stack[5], -stack[2],
					stack[6], 0)
			}
			d.stack = d.stack[:0]
		case T2HFlex1:
			if len(stack) >= 9 {
				d.rCurveTo(stack[0], stack[1],
					stack[2], stack[3],
					stack[4], 0)
				dy := stack[1] + stack[3] + stack[7]
				d.rCurveTo(stack[5], 0,
					stack[6], stack[7],
					stack[8], -dy)
			}
			d.stack = d.stack[:0]

		case T2HStem, T2VStem, T2HStemHM, T2VStemHM, T2HintMask, T2CntrMask:
			d.stripWidth(len(stack)%2 == 1)
			d.stack = d.stack[:0]

		case T2DotSection:
			d.stack = d.stack[:0]

		case T2VSIndex:
			k := len(stack) - 1
			if k < 0 {
				return false, errStackUnderflow
			}
			d.vsindex = int(stack[k])
			d.scalars = nil
			d.stack = stack[:k]

		case T2Blend:
			err := d.blend()
			if err != nil {
				return false, err
			}

		case T2CallSubr, T2CallGSubr:
			k := len(stack) - 1
			if k < 0 {
				return false, errStackUnderflow
			}
			biased := int(stack[k])
			d.stack = stack[:k]

			if depth >= 10 {
				return false, errors.New("cff: maximum call stack size exceeded")
			}
			subrs := d.local
			if op == T2CallGSubr {
				subrs = d.global
			}
			idx := biased + subrBias(len(subrs))
			if idx < 0 || idx >= len(subrs) {
				return false, errInvalidSubroutine
			}
			done, err := d.run(subrs[idx], depth+1)
			if err != nil || done {
				return done, err
			}

		case T2Return:
			return false, nil

		case T2EndChar:
			d.stripWidth(len(stack) == 1 || len(stack) > 4)
			if len(d.stack) >= 4 {
				return false, notSupported("seac-style endchar")
			}
			d.stack = d.stack[:0]
			return true, nil

		default:
			stack, ok, err := applyArith(op, stack, &d.storage)
			if !ok {
				return false, fmt.Errorf("cff: unsupported charstring operator %s", op)
			} else if err != nil {
				return false, err
			}
			d.stack = stack
		}
	}
	return false, nil
}

// blend resolves the blend operator on the stack.  For the default
// instance, the deltas are discarded.
func (d *drawer) blend() error {
	k := len(d.stack) - 1
	if k < 0 {
		return errStackUnderflow
	}
	n := int(d.stack[k])
	d.stack = d.stack[:k]

	nRegions, err := d.vs.NumRegions(d.vsindex)
	if err != nil {
		return err
	}
	if n < 0 || n*(nRegions+1) > len(d.stack) {
		return errStackUnderflow
	}

	base := len(d.stack) - n*(nRegions+1)
	if d.coords != nil {
		if d.scalars == nil {
			d.scalars, err = d.vs.Scalars(d.vsindex, d.coords)
			if err != nil {
				return err
			}
		}
		deltas := d.stack[base+n:]
		for i := range n {
			v := d.stack[base+i]
			for j, s := range d.scalars {
				v += deltas[i*nRegions+j] * s
			}
			d.stack[base+i] = v
		}
	}
	d.stack = d.stack[:base+n]
	return nil
}
