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
	"slices"
	"strings"

	"seehuhn.de/go/dijkstra"
)

// Arg is a relative coordinate in a glyph outline.  If Masters is
// non-nil, the argument varies between masters: Masters gives the value
// for every master taking part in the glyph, and Val is the value of the
// default master.
type Arg struct {
	Val     float64
	Masters []float64
}

// IsZero reports whether the argument is zero for all masters.
func (a Arg) IsZero() bool {
	return a.Masters == nil && a.Val == 0
}

func (a Arg) isBlend() bool {
	return a.Masters != nil
}

// numRegions returns the number of deltas needed to blend the argument.
func (a Arg) numRegions() int {
	return len(a.Masters) - 1
}

func (a Arg) String() string {
	if a.Masters == nil {
		return fmt.Sprint(a.Val)
	}
	return fmt.Sprint(a.Masters)
}

// BlendOp is a path construction command with relative coordinates.
// Move and line commands have the arguments dx dy, curves have the
// arguments dxa dya dxb dyb dxc dyc.
type BlendOp struct {
	Op   GlyphOpType
	Args []Arg
}

// Instruction is a charstring operator together with its arguments.
type Instruction struct {
	Op   T2Op
	Args []Arg
}

func (ins Instruction) String() string {
	parts := make([]string, 0, len(ins.Args)+1)
	for _, a := range ins.Args {
		parts = append(parts, a.String())
	}
	parts = append(parts, ins.Op.String())
	return strings.Join(parts, " ")
}

// DeltaFunc converts per-master values into the default value followed
// by one delta per region.
type DeltaFunc func(masterValues []float64) []float64

// RoundFunc is used to round numbers before they are stored in a
// charstring.
type RoundFunc func(float64) float64

// Specialize converts a sequence of path commands into charstring
// instructions, choosing the operators which give the shortest encoding.
// The operand stack of the resulting instructions never exceeds
// maxStack entries, counting the temporary entries used by blend
// operators.
func Specialize(cmds []BlendOp, maxStack int) ([]Instruction, error) {
	var res []Instruction
	for len(cmds) > 0 {
		switch cmds[0].Op {
		case OpMoveTo:
			mov := cmds[0]
			var ins Instruction
			if mov.Args[0].IsZero() {
				ins = Instruction{Op: T2VMoveTo, Args: mov.Args[1:2]}
			} else if mov.Args[1].IsZero() {
				ins = Instruction{Op: T2HMoveTo, Args: mov.Args[0:1]}
			} else {
				ins = Instruction{Op: T2RMoveTo, Args: mov.Args[0:2]}
			}
			if !fits(ins.Args, maxStack) {
				return nil, errStackOverflow
			}
			res = append(res, ins)
			cmds = cmds[1:]

		case OpLineTo, OpCurveTo:
			k := 1
			for k < len(cmds) && (cmds[k].Op == OpLineTo || cmds[k].Op == OpCurveTo) {
				k++
			}
			g := &specializer{cmds: cmds[:k], maxStack: maxStack}
			ee, err := dijkstra.ShortestPath[int, specEdge, int](g, 0, k)
			if err != nil {
				return nil, err
			}
			for _, e := range ee {
				res = append(res, e.ins)
			}
			cmds = cmds[k:]

		default:
			return nil, fmt.Errorf("cff: unexpected path command %s", cmds[0].Op)
		}
	}
	return res, nil
}

// Compile converts instructions into a charstring program.  Runs of
// consecutive blended arguments are combined into a single blend
// operator where the stack allows it.  For blended arguments, deltas
// computes the default value and the region deltas.  All numbers are
// passed through round before they are stored.
func Compile(ins []Instruction, maxStack int, deltas DeltaFunc, round RoundFunc) (Program, error) {
	if round == nil {
		round = func(x float64) float64 { return x }
	}
	var res Program
	for _, in := range ins {
		groups, ok := blendGroups(in.Args, maxStack)
		if !ok {
			return nil, fmt.Errorf("cff: arguments for %s exceed the stack", in.Op)
		}
		for i := 0; i < len(in.Args); {
			a := in.Args[i]
			if !a.isBlend() {
				res = append(res, Num(round(a.Val)))
				i++
				continue
			}
			if deltas == nil {
				return nil, errors.New("cff: blended argument without delta function")
			}

			j := groups[i]
			k := a.numRegions()
			all := make([][]float64, 0, j-i)
			for _, b := range in.Args[i:j] {
				d := deltas(b.Masters)
				if len(d) != k+1 {
					return nil, fmt.Errorf("cff: got %d deltas, expected %d", len(d), k+1)
				}
				all = append(all, d)
			}
			for _, d := range all {
				res = append(res, Num(round(d[0])))
			}
			for _, d := range all {
				for _, x := range d[1:] {
					res = append(res, Num(round(x)))
				}
			}
			res = append(res, Num(float64(j-i)), Token{Op: T2Blend})
			i = j
		}
		res = append(res, Token{Op: in.Op})
	}
	return res, nil
}

// blendGroups splits the blended arguments into runs which can be
// combined into one blend operator each.  For every argument i which
// starts a run, the result contains the end index of the run at
// position i.  The boolean result is false if the arguments cannot be
// placed on a stack of the given size.
func blendGroups(args []Arg, maxStack int) ([]int, bool) {
	if len(args) > maxStack {
		return nil, false
	}
	var ends []int
	for i := 0; i < len(args); {
		if !args[i].isBlend() {
			i++
			continue
		}
		k := args[i].numRegions()
		// i entries are on the stack already, each blended value needs
		// k+1 entries, plus one for the count
		need := func(n int) int { return i + n*(k+1) + 1 }
		if need(1) > maxStack {
			return nil, false
		}
		j := i + 1
		for j < len(args) && args[j].isBlend() && args[j].numRegions() == k &&
			need(j+1-i) <= maxStack {
			j++
		}
		if ends == nil {
			ends = make([]int, len(args))
		}
		ends[i] = j
		i = j
	}
	return ends, true
}

func fits(args []Arg, maxStack int) bool {
	_, ok := blendGroups(args, maxStack)
	return ok
}

// argsCost estimates the number of bytes used to encode the arguments.
// Deltas are assumed to fit into one byte each.
func argsCost(args []Arg, maxStack int) int {
	groups, _ := blendGroups(args, maxStack)
	cost := 0
	for i, a := range args {
		cost += len(encodeNumber(a.Val))
		if a.isBlend() {
			cost += a.numRegions()
			if groups[i] > i {
				cost += 2
			}
		}
	}
	return cost
}

type specEdge struct {
	ins  Instruction
	to   int
	cost int
}

// specializer is the graph searched by Specialize.  Vertex i represents
// the state where the first i commands of the sub-path have been
// encoded.
type specializer struct {
	cmds     []BlendOp
	maxStack int
}

func (s *specializer) To(_ int, e specEdge) int {
	return e.to
}

func (s *specializer) Length(_ int, e specEdge) int {
	return e.cost
}

func (s *specializer) AppendEdges(dst []specEdge, from int) []specEdge {
	return append(dst, s.edges(from)...)
}

func (s *specializer) edges(from int) []specEdge {
	if from >= len(s.cmds) {
		return nil
	}
	cmds := s.cmds[from:]

	var edges []specEdge
	add := func(op T2Op, args []Arg, n int) bool {
		if !fits(args, s.maxStack) {
			return false
		}
		edges = append(edges, specEdge{
			ins:  Instruction{Op: op, Args: slices.Clone(args)},
			to:   from + n,
			cost: argsCost(args, s.maxStack) + len(op.Bytes()),
		})
		return true
	}

	if cmds[0].Op == OpLineTo {
		// {dx dy}+  rlineto
		var args []Arg
		pos := 0
		for pos < len(cmds) && cmds[pos].Op == OpLineTo {
			args = append(args, cmds[pos].Args...)
			pos++
			if !add(T2RLineTo, args, pos) {
				args = args[:len(args)-2]
				pos--
				break
			}
		}

		// {dx dy}+ xb yb xc yc xd yd  rlinecurve
		if pos > 0 && pos < len(cmds) && cmds[pos].Op == OpCurveTo {
			add(T2RLineCurve, append(slices.Clone(args), cmds[pos].Args...), pos+1)
		}

		// dx {dy dx}* dy?  hlineto
		// dy {dx dy}* dx?  vlineto
		for _, op := range []T2Op{T2HLineTo, T2VLineTo} {
			horizontal := op == T2HLineTo
			args = args[:0]
			pos = 0
			for pos < len(cmds) && cmds[pos].Op == OpLineTo {
				a := cmds[pos].Args
				var next Arg
				if horizontal && a[1].IsZero() {
					next = a[0]
				} else if !horizontal && a[0].IsZero() {
					next = a[1]
				} else {
					break
				}
				args = append(args, next)
				pos++
				if !add(op, args, pos) {
					break
				}
				horizontal = !horizontal
			}
		}
		return edges
	}

	// (dxa dya dxb dyb dxc dyc)+ rrcurveto
	// (dxa dya dxb dyb dxc dyc)+ dxd dyd rcurveline
	var args []Arg
	pos := 0
	for pos < len(cmds) && cmds[pos].Op == OpCurveTo {
		args = append(args, cmds[pos].Args...)
		pos++
		if !add(T2RRCurveTo, args, pos) {
			args = args[:len(args)-6]
			pos--
			break
		}
	}
	if pos > 0 && pos < len(cmds) && cmds[pos].Op == OpLineTo {
		add(T2RCurveLine, append(slices.Clone(args), cmds[pos].Args...), pos+1)
	}

	// Args: 0=dxa 1=dya   2=dxb 3=dyb   4=dxc 5=dyc

	// dya? {dxa dxb dyb dxc}+  hhcurveto
	// dxa? {dya dxb dyb dyc}+  vvcurveto
	hhvv := []struct {
		op   T2Op
		offs int
	}{
		{T2HHCurveTo, 1},
		{T2VVCurveTo, 0},
	}
	for _, hv := range hhvv {
		args = args[:0]
		pos = 0
		for pos < len(cmds) && cmds[pos].Op == OpCurveTo {
			a := cmds[pos].Args
			if !a[4+hv.offs].IsZero() {
				break
			}
			if !a[0+hv.offs].IsZero() {
				if pos > 0 {
					break
				}
				args = append(args, a[0+hv.offs])
			}
			args = append(args, a[1-hv.offs], a[2], a[3], a[5-hv.offs])
			pos++
			if !add(hv.op, args, pos) {
				break
			}
		}
	}

	// dx1 dx2 dy2 dy3 {dya dxb dyb dxc  dxd dxe dye dyf}* dxf?  hvcurveto
	// dy1 dx2 dy2 dx3 {dxa dxb dyb dyc  dyd dxe dye dxf}* dyf?  vhcurveto
	for _, op := range []T2Op{T2HVCurveTo, T2VHCurveTo} {
		offs := 0 // 0 = curve starts horizontally
		if op == T2VHCurveTo {
			offs = 1
		}
		args = args[:0]
		pos = 0
		for pos < len(cmds) && cmds[pos].Op == OpCurveTo {
			a := cmds[pos].Args
			if !a[1-offs].IsZero() {
				break
			}
			args = append(args, a[offs], a[2], a[3], a[5-offs])
			pos++
			if !a[4+offs].IsZero() {
				// the final curve may end in any direction
				add(op, append(args, a[4+offs]), pos)
				break
			}
			if !add(op, args, pos) {
				break
			}
			offs = 1 - offs
		}
	}

	if len(cmds) >= 2 && cmds[0].Op == OpCurveTo && cmds[1].Op == OpCurveTo {
		// We only generate flex operators for arguments which are the same
		// in all masters.
		a, b := cmds[0].Args, cmds[1].Args
		plain := true
		for _, x := range append(slices.Clone(a), b...) {
			if x.isBlend() {
				plain = false
				break
			}
		}
		if plain && a[5].IsZero() && b[1].IsZero() {
			if a[1].IsZero() && b[5].IsZero() && a[3].Val+b[3].Val == 0 {
				// dx1 dx2 dy2 dx3 dx4 dx5 dx6  hflex
				add(T2HFlex, []Arg{a[0], a[2], a[3], a[4], b[0], b[2], b[4]}, 2)
			} else if a[1].Val+a[3].Val+b[3].Val+b[5].Val == 0 {
				// dx1 dy1 dx2 dy2 dx3 dx4 dx5 dy5 dx6  hflex1
				add(T2HFlex1, []Arg{a[0], a[1], a[2], a[3], a[4], b[0], b[2], b[3], b[4]}, 2)
			}
		}

		// We don't generate flex and flex1 operators, since these are
		// never shorter than the corresponding rrcurveto.
	}

	return edges
}
