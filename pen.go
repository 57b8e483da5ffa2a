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
	"seehuhn.de/go/varcff/cff"
	"seehuhn.de/go/varcff/varmodel"
)

// mergePen collects the outlines of one glyph from all masters taking
// part in the glyph.  The default master is drawn first and defines the
// command sequence; every region master must then draw the same sequence
// of commands.
//
// mergePen implements the cff.PathSink interface.
type mergePen struct {
	glyph string
	round func(float64) float64

	cmds []penCmd

	// master is the position of the current master within the
	// participating masters, origMaster its index in the master list.
	master     int
	origMaster int
	pos        int

	err error
}

// penCmd is one drawing command.  coords[i][m] is the absolute value of
// coordinate i in master m.
type penCmd struct {
	op     cff.GlyphOpType
	coords [][]float64
}

func (p *mergePen) MoveTo(x, y float64) {
	p.add(cff.OpMoveTo, x, y)
}

func (p *mergePen) LineTo(x, y float64) {
	p.add(cff.OpLineTo, x, y)
}

func (p *mergePen) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	p.add(cff.OpCurveTo, x1, y1, x2, y2, x3, y3)
}

// ClosePath does nothing, since sub-paths in CFF fonts are always closed.
func (p *mergePen) ClosePath() {}

func (p *mergePen) add(op cff.GlyphOpType, coords ...float64) {
	if p.err != nil {
		return
	}

	if p.master == 0 {
		cmd := penCmd{op: op, coords: make([][]float64, len(coords))}
		for i, x := range coords {
			cmd.coords[i] = []float64{p.round(x)}
		}
		p.cmds = append(p.cmds, cmd)
		p.pos++
		return
	}

	if p.pos >= len(p.cmds) {
		p.mismatch("end", op.String())
		return
	}
	cmd := &p.cmds[p.pos]
	if cmd.op != op {
		p.mismatch(cmd.op.String(), op.String())
		return
	}
	for i, x := range coords {
		cmd.coords[i] = append(cmd.coords[i], p.round(x))
	}
	p.pos++
}

func (p *mergePen) mismatch(want, got string) {
	p.err = &StructuralMismatchError{
		Glyph:  p.glyph,
		Index:  p.pos,
		Master: p.origMaster,
		Want:   want,
		Got:    got,
	}
}

// restart prepares the pen for drawing the next master.
func (p *mergePen) restart(master, origMaster int) {
	p.master = master
	p.origMaster = origMaster
	p.pos = 0
}

// done must be called after each master has been drawn.
func (p *mergePen) done() error {
	if p.err == nil && p.master > 0 && p.pos < len(p.cmds) {
		p.mismatch(p.cmds[p.pos].op.String(), "end")
	}
	return p.err
}

// startsWithMove reports whether the default outline begins with a
// move command.
func (p *mergePen) startsWithMove() bool {
	return len(p.cmds) > 0 && p.cmds[0].op == cff.OpMoveTo
}

// finalize converts the collected outlines into a CFF2 charstring.
// The model sub must have one master for every master drawn into the
// pen, in the same order.
func (p *mergePen) finalize(sub *varmodel.Model, round func(float64) float64) (cff.Program, error) {
	n := sub.NumMasters()

	prevX := make([]float64, n)
	prevY := make([]float64, n)
	ops := make([]cff.BlendOp, len(p.cmds))
	for k, cmd := range p.cmds {
		args := make([]cff.Arg, len(cmd.coords))
		for i, coord := range cmd.coords {
			prev := prevX
			if i%2 == 1 {
				prev = prevY
			}
			rel := make([]float64, n)
			for m := range rel {
				rel[m] = coord[m] - prev[m]
			}
			copy(prev, coord)
			args[i] = collapse(rel)
		}
		ops[k] = cff.BlendOp{Op: cmd.op, Args: args}
	}

	ins, err := cff.Specialize(ops, cff.MaxStackCFF2)
	if err != nil {
		return nil, err
	}
	return cff.Compile(ins, cff.MaxStackCFF2, sub.Deltas, round)
}

// collapse turns per-master values into an argument, which is plain if
// all masters agree.
func collapse(vals []float64) cff.Arg {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return cff.Arg{Val: vals[0], Masters: vals}
		}
	}
	return cff.Arg{Val: vals[0]}
}
