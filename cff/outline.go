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
	"fmt"
	"strings"
)

// Outline is a glyph outline with absolute coordinates.
// Outline implements the PathSink interface.
type Outline struct {
	Cmds []GlyphOp
}

// GlyphOp is a CFF glyph drawing command.
type GlyphOp struct {
	Op   GlyphOpType
	Args []float64
}

func (c GlyphOp) String() string {
	return fmt.Sprint(c.Op, c.Args)
}

// GlyphOpType is the type of a CFF glyph drawing command.
type GlyphOpType byte

func (op GlyphOpType) String() string {
	switch op {
	case OpMoveTo:
		return "moveto"
	case OpLineTo:
		return "lineto"
	case OpCurveTo:
		return "curveto"
	default:
		return fmt.Sprintf("GlyphOpType(%d)", op)
	}
}

const (
	// OpMoveTo closes the previous subpath and starts a new one at the given point.
	OpMoveTo GlyphOpType = iota + 1

	// OpLineTo appends a straight line segment from the previous point to the given point.
	OpLineTo

	// OpCurveTo appends a Bezier curve segment from the previous point to the given point.
	OpCurveTo
)

// MoveTo starts a new sub-path and moves the current point to (x, y).
// The previous sub-path, if any, is closed.
func (o *Outline) MoveTo(x, y float64) {
	o.Cmds = append(o.Cmds, GlyphOp{Op: OpMoveTo, Args: []float64{x, y}})
}

// LineTo adds a straight line to the current sub-path.
func (o *Outline) LineTo(x, y float64) {
	o.Cmds = append(o.Cmds, GlyphOp{Op: OpLineTo, Args: []float64{x, y}})
}

// CurveTo adds a cubic Bezier curve to the current sub-path.
func (o *Outline) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	o.Cmds = append(o.Cmds, GlyphOp{
		Op:   OpCurveTo,
		Args: []float64{x1, y1, x2, y2, x3, y3},
	})
}

// ClosePath does nothing, since sub-paths in CFF fonts are always closed.
func (o *Outline) ClosePath() {}

func (o *Outline) String() string {
	b := &strings.Builder{}
	for i, cmd := range o.Cmds {
		fmt.Fprintf(b, "  - Cmds[%d]: %s\n", i, cmd)
	}
	return b.String()
}

// Relative converts the outline into path commands with relative
// coordinates, as used in charstrings.
func (o *Outline) Relative() []BlendOp {
	res := make([]BlendOp, len(o.Cmds))
	var posX, posY float64
	for i, cmd := range o.Cmds {
		var args []Arg
		switch cmd.Op {
		case OpMoveTo, OpLineTo:
			args = []Arg{
				{Val: cmd.Args[0] - posX},
				{Val: cmd.Args[1] - posY},
			}
			posX, posY = cmd.Args[0], cmd.Args[1]
		case OpCurveTo:
			args = []Arg{
				{Val: cmd.Args[0] - posX},
				{Val: cmd.Args[1] - posY},
				{Val: cmd.Args[2] - cmd.Args[0]},
				{Val: cmd.Args[3] - cmd.Args[1]},
				{Val: cmd.Args[4] - cmd.Args[2]},
				{Val: cmd.Args[5] - cmd.Args[3]},
			}
			posX, posY = cmd.Args[4], cmd.Args[5]
		}
		res[i] = BlendOp{Op: cmd.Op, Args: args}
	}
	return res
}

// Program encodes the outline as a charstring.  For CFF fonts, the
// program is terminated by an endchar operator and carries no width.
func (o *Outline) Program(cff2 bool) (Program, error) {
	maxStack := MaxStackCFF1
	if cff2 {
		maxStack = MaxStackCFF2
	}
	ins, err := Specialize(o.Relative(), maxStack)
	if err != nil {
		return nil, err
	}
	prog, err := Compile(ins, maxStack, nil, nil)
	if err != nil {
		return nil, err
	}
	if !cff2 {
		prog = append(prog, Token{Op: T2EndChar})
	}
	if prog == nil {
		prog = Program{}
	}
	return prog, nil
}
