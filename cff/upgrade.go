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

	"seehuhn.de/go/sfnt/glyph"
)

// UpgradeToCFF2 converts a CFF font into the CFF2 layout, in place.
// Fonts which already use the CFF2 layout are left unchanged.
//
// The conversion moves the private DICT into a newly created FDArray
// if needed, removes all DICT entries not allowed in CFF2 fonts, and
// removes glyph widths as well as endchar and return operators from the
// charstrings.  Finally, all DICTs and charstrings are encoded and
// decoded once, so that the in-memory representation matches what a
// CFF2 reader would see.
func (f *Font) UpgradeToCFF2() error {
	if f.IsCFF2() {
		return nil
	}

	if f.FDArray == nil {
		priv := f.Private
		if priv == nil {
			priv = &PrivateDict{Dict: Dict{}}
		}
		f.FDArray = []*FontDict{{Dict: Dict{}, Private: priv}}
		f.FDSelect = nil
	}
	f.Private = nil
	if len(f.FDArray) > 256 {
		return notSupported(fmt.Sprintf("%d font DICTs", len(f.FDArray)))
	}

	for i, prog := range f.CharStrings {
		gid := glyph.ID(i)
		local, err := f.localSubrs(gid)
		if err != nil {
			return err
		}
		prog, err = stripWidth(prog, local, f.GlobalSubrs)
		if err != nil {
			return fmt.Errorf("glyph %d: %w", gid, err)
		}
		prog, err = stripTerminator(prog, T2EndChar)
		if err != nil {
			return fmt.Errorf("glyph %d: %w", gid, err)
		}
		f.CharStrings[i] = prog
	}
	for i, prog := range f.GlobalSubrs {
		prog, err := stripSubr(prog)
		if err != nil {
			return fmt.Errorf("global subroutine %d: %w", i, err)
		}
		f.GlobalSubrs[i] = prog
	}

	f.Top = f.Top.filter(cff2TopOps)
	seen := map[*PrivateDict]bool{}
	for _, fd := range f.FDArray {
		fd.Dict = fd.Dict.filter(cff2FontDictOps)
		if fd.Private == nil {
			fd.Private = &PrivateDict{Dict: Dict{}}
		}
		p := fd.Private
		if seen[p] {
			continue
		}
		seen[p] = true
		p.Dict = p.Dict.filter(cff2PrivateOps)
		for i, prog := range p.Subrs {
			prog, err := stripSubr(prog)
			if err != nil {
				return fmt.Errorf("local subroutine %d: %w", i, err)
			}
			p.Subrs[i] = prog
		}
	}

	f.Major = 2
	tracer().Debugf("upgraded font with %d glyphs to CFF2", len(f.CharStrings))

	return f.roundTrip()
}

func stripSubr(prog Program) (Program, error) {
	prog, err := stripTerminator(prog, T2EndChar)
	if err != nil {
		return nil, err
	}
	return stripTerminator(prog, T2Return)
}

// stripTerminator truncates the program at the first occurrence of op,
// and removes all dotsection operators.
func stripTerminator(prog Program, op T2Op) (Program, error) {
	res := make(Program, 0, len(prog))
	for i, t := range prog {
		if t.Op == op {
			if op == T2EndChar && i >= 4 &&
				prog[i-1].IsNumber() && prog[i-2].IsNumber() &&
				prog[i-3].IsNumber() && prog[i-4].IsNumber() {
				return nil, notSupported("seac-style endchar")
			}
			break
		}
		if t.Op == T2DotSection {
			continue
		}
		res = append(res, t)
	}
	return res, nil
}

// stripWidth removes the glyph width from a Type 2 charstring.  The stack
// is simulated up to the first operator which may carry a width, keeping
// track of which token pushed each stack entry.
func stripWidth(prog Program, local, global []Program) (Program, error) {
	w := &widthFinder{local: local, global: global}
	_, err := w.run(prog, true, 0)
	if err != nil {
		return nil, err
	}
	if w.widthToken < 0 {
		return prog, nil
	}
	res := make(Program, 0, len(prog)-1)
	res = append(res, prog[:w.widthToken]...)
	res = append(res, prog[w.widthToken+1:]...)
	return res, nil
}

type widthFinder struct {
	local  []Program
	global []Program

	stack      []float64
	src        []int // index of the pushing token in the glyph, or -1
	storage    [32]float64
	widthToken int
}

func (w *widthFinder) run(prog Program, top bool, depth int) (bool, error) {
	if top {
		w.widthToken = -1
	}
	for i, t := range prog {
		if t.IsNumber() {
			src := -1
			if top {
				src = i
			}
			w.stack = append(w.stack, t.Val)
			w.src = append(w.src, src)
			continue
		}

		n := len(w.stack)
		var hasWidth bool
		switch t.Op {
		case T2RMoveTo:
			hasWidth = n > 2
		case T2HMoveTo, T2VMoveTo:
			hasWidth = n > 1
		case T2HStem, T2VStem, T2HStemHM, T2VStemHM, T2HintMask, T2CntrMask:
			hasWidth = n%2 == 1
		case T2EndChar:
			hasWidth = n == 1 || n == 5

		case T2CallSubr, T2CallGSubr:
			if n == 0 {
				return false, errStackUnderflow
			}
			biased := int(w.stack[n-1])
			w.stack = w.stack[:n-1]
			w.src = w.src[:n-1]
			if depth >= 10 {
				return false, errInvalidSubroutine
			}
			subrs := w.local
			if t.Op == T2CallGSubr {
				subrs = w.global
			}
			idx := biased + subrBias(len(subrs))
			if idx < 0 || idx >= len(subrs) {
				return false, errInvalidSubroutine
			}
			done, err := w.run(subrs[idx], false, depth+1)
			if err != nil || done {
				return done, err
			}
			continue

		case T2Return:
			return false, nil

		default:
			if t.Op.isPath() || t.Op == T2DotSection {
				w.stack = w.stack[:0]
				w.src = w.src[:0]
				continue
			}
			stack, ok, err := applyArith(t.Op, w.stack, &w.storage)
			if !ok {
				return false, fmt.Errorf("cff: unsupported charstring operator %s", t.Op)
			} else if err != nil {
				return false, err
			}
			// results of arithmetic are never literal tokens
			w.stack = stack
			w.src = w.src[:0]
			for range stack {
				w.src = append(w.src, -1)
			}
			continue
		}

		if hasWidth {
			if w.src[0] < 0 {
				return false, notSupported("glyph width outside the charstring")
			}
			w.widthToken = w.src[0]
		}
		return true, nil
	}
	return false, nil
}

func (op T2Op) isPath() bool {
	switch op {
	case T2RLineTo, T2HLineTo, T2VLineTo, T2RRCurveTo, T2HHCurveTo,
		T2HVCurveTo, T2RCurveLine, T2RLineCurve, T2VHCurveTo, T2VVCurveTo,
		T2Flex, T2HFlex, T2HFlex1, T2Flex1:
		return true
	}
	return false
}

// roundTrip encodes and decodes all DICTs and charstrings of a CFF2
// font.
func (f *Font) roundTrip() error {
	nRegions := f.VarStore.NumRegions

	rt := func(d Dict) (Dict, error) {
		buf, err := d.encode(true)
		if err != nil {
			return nil, err
		}
		return decodeDict(buf, true, nRegions)
	}

	var err error
	f.Top, err = rt(f.Top)
	if err != nil {
		return err
	}

	type subrInfo struct {
		code [][]byte
		out  []Program
	}
	privs := map[*PrivateDict]*subrInfo{}
	for _, fd := range f.FDArray {
		fd.Dict, err = rt(fd.Dict)
		if err != nil {
			return err
		}
		p := fd.Private
		if _, seen := privs[p]; seen {
			continue
		}
		p.Dict, err = rt(p.Dict)
		if err != nil {
			return err
		}
		info := &subrInfo{
			code: encodePrograms(p.Subrs),
			out:  make([]Program, len(p.Subrs)),
		}
		privs[p] = info
	}

	nGlyphs := len(f.CharStrings)
	if f.FDSelect != nil {
		buf := f.FDSelect.encode(nGlyphs)
		f.FDSelect, err = decodeFDSelect(buf, nGlyphs, len(f.FDArray))
		if err != nil {
			return err
		}
	}

	dec := NewDecoder(true, encodePrograms(f.GlobalSubrs))
	dec.NumRegions = nRegions
	for i, prog := range f.CharStrings {
		p, err := f.privateFor(glyph.ID(i))
		if err != nil {
			return err
		}
		info := privs[p]
		f.CharStrings[i], err = dec.Decode(prog.Encode(), info.code, info.out)
		if err != nil {
			return fmt.Errorf("glyph %d: %w", i, err)
		}
	}

	// Subroutines which are never called keep their previous form.
	mergeSubrs := func(orig, decoded []Program) {
		for i, prog := range decoded {
			if prog != nil {
				orig[i] = prog
			}
		}
	}
	mergeSubrs(f.GlobalSubrs, dec.GlobalSubrs())
	for p, info := range privs {
		mergeSubrs(p.Subrs, info.out)
	}

	return nil
}

func encodePrograms(pp []Program) [][]byte {
	res := make([][]byte, len(pp))
	for i, p := range pp {
		res[i] = p.Encode()
	}
	return res
}
