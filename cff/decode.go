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
)

// Decoder converts binary charstrings into programs.
//
// The length of the data following hintmask operators depends on the
// number of stem hints declared so far, which may be declared inside
// subroutines.  The decoder therefore follows subroutine calls, and
// decodes every subroutine the first time it is called.
type Decoder struct {
	// CFF2 selects the CFF2 charstring format.
	CFF2 bool

	// NumRegions returns the number of regions of the given variation
	// data.  This is only used for CFF2 charstrings containing blend
	// operators.
	NumRegions func(vsindex int) (int, error)

	gsubrs    [][]byte
	gsubrsOut []Program
}

// NewDecoder allocates a new Decoder.  The global subroutines are decoded
// on demand and can be retrieved using GlobalSubrs.
func NewDecoder(cff2 bool, gsubrs [][]byte) *Decoder {
	return &Decoder{
		CFF2:      cff2,
		gsubrs:    gsubrs,
		gsubrsOut: make([]Program, len(gsubrs)),
	}
}

// GlobalSubrs returns the global subroutines decoded so far.
// Subroutines which were never called are nil.
func (d *Decoder) GlobalSubrs() []Program {
	return d.gsubrsOut
}

// Decode decodes a charstring.  Local subroutines called by the glyph
// are decoded into the corresponding slots of localOut, which must have
// the same length as localSubrs.
func (d *Decoder) Decode(code []byte, localSubrs [][]byte, localOut []Program) (Program, error) {
	if len(localOut) != len(localSubrs) {
		panic("inconsistent local subroutine slices")
	}
	s := &decodeState{
		Decoder:  d,
		local:    localSubrs,
		localOut: localOut,
	}
	var res Program
	_, err := s.run(code, &res, 0)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = Program{}
	}
	return res, nil
}

type decodeState struct {
	*Decoder
	local    [][]byte
	localOut []Program

	stack   []float64
	storage [32]float64
	nStems  int
	vsindex int
}

// run decodes code and appends the tokens to out, unless out is nil.
// The return value indicates whether the end of the glyph was reached.
func (s *decodeState) run(code []byte, out *Program, depth int) (bool, error) {
	emit := func(t Token) {
		if out != nil {
			*out = append(*out, t)
		}
	}
	push := func(x float64) {
		s.stack = append(s.stack, x)
		emit(Num(x))
	}

	for len(code) > 0 {
		maxStack := MaxStackCFF1
		if s.CFF2 {
			maxStack = MaxStackCFF2
		}
		if len(s.stack) > maxStack {
			return false, errStackOverflow
		}

		op := T2Op(code[0])
		switch {
		case op >= 32 && op <= 246:
			push(float64(int32(op) - 139))
			code = code[1:]
			continue
		case op >= 247 && op <= 250:
			if len(code) < 2 {
				return false, errIncomplete
			}
			push(float64(int32(op)*256 + int32(code[1]) + (108 - 247*256)))
			code = code[2:]
			continue
		case op >= 251 && op <= 254:
			if len(code) < 2 {
				return false, errIncomplete
			}
			push(float64(-int32(op)*256 - int32(code[1]) - (108 - 251*256)))
			code = code[2:]
			continue
		case op == 28:
			if len(code) < 3 {
				return false, errIncomplete
			}
			push(float64(int16(code[1])<<8 + int16(code[2])))
			code = code[3:]
			continue
		case op == 255:
			if len(code) < 5 {
				return false, errIncomplete
			}
			// 16-bit signed integer with 16 bits of fraction
			val := int32(code[1])<<24 + int32(code[2])<<16 +
				int32(code[3])<<8 + int32(code[4])
			push(float64(val) / 65536)
			code = code[5:]
			continue
		case op == 12:
			if len(code) < 2 {
				return false, errIncomplete
			}
			op = op<<8 | T2Op(code[1])
			code = code[2:]
		default:
			code = code[1:]
		}

		switch op {
		case T2HStem, T2VStem, T2HStemHM, T2VStemHM:
			s.nStems += len(s.stack) / 2
			s.stack = s.stack[:0]
			emit(Token{Op: op})

		case T2HintMask, T2CntrMask:
			// an implicit vstem may precede the first hintmask
			s.nStems += len(s.stack) / 2
			s.stack = s.stack[:0]
			k := (s.nStems + 7) / 8
			if k > len(code) {
				return false, errIncomplete
			}
			emit(Token{Op: op, Mask: append([]byte{}, code[:k]...)})
			code = code[k:]

		case T2RMoveTo, T2HMoveTo, T2VMoveTo, T2RLineTo, T2HLineTo, T2VLineTo,
			T2RRCurveTo, T2HHCurveTo, T2HVCurveTo, T2RCurveLine, T2RLineCurve,
			T2VHCurveTo, T2VVCurveTo, T2Flex, T2HFlex, T2HFlex1, T2Flex1,
			T2DotSection:
			s.stack = s.stack[:0]
			emit(Token{Op: op})

		case T2VSIndex:
			if !s.CFF2 {
				return false, fmt.Errorf("cff: vsindex in Type 2 charstring")
			}
			k := len(s.stack) - 1
			if k < 0 {
				return false, errStackUnderflow
			}
			s.vsindex = int(s.stack[k])
			s.stack = s.stack[:k]
			emit(Token{Op: op})

		case T2Blend:
			if !s.CFF2 {
				return false, fmt.Errorf("cff: blend in Type 2 charstring")
			}
			if s.NumRegions == nil {
				return false, invalidSince("blend without variation store")
			}
			k := len(s.stack) - 1
			if k < 0 {
				return false, errStackUnderflow
			}
			n := int(s.stack[k])
			s.stack = s.stack[:k]
			nRegions, err := s.NumRegions(s.vsindex)
			if err != nil {
				return false, err
			}
			if n < 0 || n*(nRegions+1) > len(s.stack) {
				return false, errStackUnderflow
			}
			s.stack = s.stack[:len(s.stack)-n*nRegions]
			emit(Token{Op: op})

		case T2CallSubr, T2CallGSubr:
			k := len(s.stack) - 1
			if k < 0 {
				return false, errStackUnderflow
			}
			biased := int(s.stack[k])
			s.stack = s.stack[:k]
			emit(Token{Op: op})

			if depth >= 10 {
				return false, errors.New("cff: maximum call stack size exceeded")
			}

			subrs, subrsOut := s.local, s.localOut
			if op == T2CallGSubr {
				subrs, subrsOut = s.gsubrs, s.gsubrsOut
			}
			idx := biased + subrBias(len(subrs))
			if idx < 0 || idx >= len(subrs) {
				return false, errInvalidSubroutine
			}
			var target *Program
			if subrsOut[idx] == nil {
				subrsOut[idx] = Program{}
				target = &subrsOut[idx]
			}
			done, err := s.run(subrs[idx], target, depth+1)
			if err != nil {
				return false, err
			}
			if done {
				return true, nil
			}

		case T2Return:
			if s.CFF2 {
				return false, fmt.Errorf("cff: return in CFF2 charstring")
			}
			emit(Token{Op: op})
			return false, nil

		case T2EndChar:
			if s.CFF2 {
				return false, fmt.Errorf("cff: endchar in CFF2 charstring")
			}
			s.stack = s.stack[:0]
			emit(Token{Op: op})
			return true, nil

		default:
			stack, ok, err := applyArith(op, s.stack, &s.storage)
			if !ok {
				return false, fmt.Errorf("cff: unsupported charstring operator %d", op)
			} else if err != nil {
				return false, err
			}
			s.stack = stack
			emit(Token{Op: op})
		}
	}

	return false, nil
}

// MaxStackCFF1 and MaxStackCFF2 give the maximal operand stack depths
// for Type 2 and CFF2 charstrings.
const (
	MaxStackCFF1 = 48
	MaxStackCFF2 = 513
)

var (
	errStackOverflow     = errors.New("cff: operand stack overflow")
	errStackUnderflow    = errors.New("cff: operand stack underflow")
	errIncomplete        = errors.New("cff: incomplete charstring")
	errInvalidSubroutine = errors.New("cff: invalid subroutine index")
	errInvalidStore      = errors.New("cff: invalid store index")
	errInvalidIndex      = errors.New("cff: invalid index")
	errInvalidRoll       = errors.New("cff: invalid roll count")
	errDivByZero         = errors.New("cff: division by zero")
)
