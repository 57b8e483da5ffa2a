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
	"math"
	"slices"
	"strings"

	"seehuhn.de/go/varcff/internal/float"
)

// Token is an element of a charstring program.  Tokens with Op == 0
// are numeric operands, all other tokens are operators.
type Token struct {
	Op   T2Op
	Val  float64
	Mask []byte // data following a hintmask or cntrmask operator
}

// Num returns a token representing the number x.
func Num(x float64) Token {
	return Token{Val: x}
}

// IsNumber reports whether the token is an operand.
func (t Token) IsNumber() bool {
	return t.Op == 0
}

func (t Token) String() string {
	if t.Op == 0 {
		return float.Format(t.Val, 5)
	}
	if t.Mask != nil {
		return fmt.Sprintf("%s[% x]", t.Op, t.Mask)
	}
	return t.Op.String()
}

// Program is a decoded Type 2 or CFF2 charstring.
type Program []Token

func (p Program) String() string {
	parts := make([]string, len(p))
	for i, t := range p {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Clone returns a deep copy of the program.
func (p Program) Clone() Program {
	if p == nil {
		return nil
	}
	res := make(Program, len(p))
	for i, t := range p {
		res[i] = Token{Op: t.Op, Val: t.Val, Mask: slices.Clone(t.Mask)}
	}
	return res
}

// HasBlend reports whether the program contains a blend operator.
func (p Program) HasBlend() bool {
	for _, t := range p {
		if t.Op == T2Blend {
			return true
		}
	}
	return false
}

// Encode returns the binary form of the program.
func (p Program) Encode() []byte {
	var res []byte
	for _, t := range p {
		if t.Op == 0 {
			res = append(res, encodeNumber(t.Val)...)
			continue
		}
		res = append(res, t.Op.Bytes()...)
		res = append(res, t.Mask...)
	}
	return res
}

// encodeNumber encodes x as a Type 2 charstring operand.  Integers use
// the short integer forms, all other values are stored as 16.16 fixed
// point numbers.
func encodeNumber(x float64) []byte {
	if x == math.Trunc(x) && x >= -32768 && x <= 32767 {
		return encodeInt(int16(x))
	}
	v := int32(math.Round(x * 65536))
	return []byte{255, byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func encodeInt(x int16) []byte {
	switch {
	case x >= -107 && x <= 107:
		return []byte{byte(x + 139)}
	case x > 107 && x <= 1131:
		x -= 108
		b1 := byte(x)
		x >>= 8
		b0 := byte(x + 247)
		return []byte{b0, b1}
	case x < -107 && x >= -1131:
		x = -108 - x
		b1 := byte(x)
		x >>= 8
		b0 := byte(x + 251)
		return []byte{b0, b1}
	default:
		return []byte{28, byte(x >> 8), byte(x)}
	}
}

// T2Op is a Type 2 or CFF2 charstring operator.  Two-byte operators
// 12 x are represented as 0x0C00+x.
type T2Op uint16

// Bytes returns the binary encoding of the operator.
func (op T2Op) Bytes() []byte {
	if op > 255 {
		return []byte{byte(op >> 8), byte(op)}
	}
	return []byte{byte(op)}
}

func (op T2Op) String() string {
	if name, ok := t2OpNames[op]; ok {
		return name
	}
	return fmt.Sprintf("t2op(%d)", op)
}

// clearsStack reports whether op is one of the operators which may carry
// the glyph width in a Type 2 charstring.
func (op T2Op) clearsStack() bool {
	switch op {
	case T2HStem, T2VStem, T2HStemHM, T2VStemHM, T2HintMask, T2CntrMask,
		T2RMoveTo, T2HMoveTo, T2VMoveTo, T2EndChar:
		return true
	}
	return false
}

// These are the charstring operators.
const (
	T2HStem      T2Op = 0x0001
	T2VStem      T2Op = 0x0003
	T2VMoveTo    T2Op = 0x0004
	T2RLineTo    T2Op = 0x0005
	T2HLineTo    T2Op = 0x0006
	T2VLineTo    T2Op = 0x0007
	T2RRCurveTo  T2Op = 0x0008
	T2CallSubr   T2Op = 0x000a
	T2Return     T2Op = 0x000b // Type 2 only
	T2EndChar    T2Op = 0x000e // Type 2 only
	T2VSIndex    T2Op = 0x000f // CFF2 only
	T2Blend      T2Op = 0x0010 // CFF2 only
	T2HStemHM    T2Op = 0x0012
	T2HintMask   T2Op = 0x0013
	T2CntrMask   T2Op = 0x0014
	T2RMoveTo    T2Op = 0x0015
	T2HMoveTo    T2Op = 0x0016
	T2VStemHM    T2Op = 0x0017
	T2RCurveLine T2Op = 0x0018
	T2RLineCurve T2Op = 0x0019
	T2VVCurveTo  T2Op = 0x001a
	T2HHCurveTo  T2Op = 0x001b
	T2CallGSubr  T2Op = 0x001d
	T2VHCurveTo  T2Op = 0x001e
	T2HVCurveTo  T2Op = 0x001f

	T2DotSection T2Op = 0x0c00 // deprecated
	T2And        T2Op = 0x0c03
	T2Or         T2Op = 0x0c04
	T2Not        T2Op = 0x0c05
	T2Abs        T2Op = 0x0c09
	T2Add        T2Op = 0x0c0a
	T2Sub        T2Op = 0x0c0b
	T2Div        T2Op = 0x0c0c
	T2Neg        T2Op = 0x0c0e
	T2Eq         T2Op = 0x0c0f
	T2Drop       T2Op = 0x0c12
	T2Put        T2Op = 0x0c14
	T2Get        T2Op = 0x0c15
	T2IfElse     T2Op = 0x0c16
	T2Random     T2Op = 0x0c17
	T2Mul        T2Op = 0x0c18
	T2Sqrt       T2Op = 0x0c1a
	T2Dup        T2Op = 0x0c1b
	T2Exch       T2Op = 0x0c1c
	T2Index      T2Op = 0x0c1d
	T2Roll       T2Op = 0x0c1e
	T2HFlex      T2Op = 0x0c22
	T2Flex       T2Op = 0x0c23
	T2HFlex1     T2Op = 0x0c24
	T2Flex1      T2Op = 0x0c25
)

var t2OpNames = map[T2Op]string{
	T2HStem:      "hstem",
	T2VStem:      "vstem",
	T2VMoveTo:    "vmoveto",
	T2RLineTo:    "rlineto",
	T2HLineTo:    "hlineto",
	T2VLineTo:    "vlineto",
	T2RRCurveTo:  "rrcurveto",
	T2CallSubr:   "callsubr",
	T2Return:     "return",
	T2EndChar:    "endchar",
	T2VSIndex:    "vsindex",
	T2Blend:      "blend",
	T2HStemHM:    "hstemhm",
	T2HintMask:   "hintmask",
	T2CntrMask:   "cntrmask",
	T2RMoveTo:    "rmoveto",
	T2HMoveTo:    "hmoveto",
	T2VStemHM:    "vstemhm",
	T2RCurveLine: "rcurveline",
	T2RLineCurve: "rlinecurve",
	T2VVCurveTo:  "vvcurveto",
	T2HHCurveTo:  "hhcurveto",
	T2CallGSubr:  "callgsubr",
	T2VHCurveTo:  "vhcurveto",
	T2HVCurveTo:  "hvcurveto",
	T2DotSection: "dotsection",
	T2And:        "and",
	T2Or:         "or",
	T2Not:        "not",
	T2Abs:        "abs",
	T2Add:        "add",
	T2Sub:        "sub",
	T2Div:        "div",
	T2Neg:        "neg",
	T2Eq:         "eq",
	T2Drop:       "drop",
	T2Put:        "put",
	T2Get:        "get",
	T2IfElse:     "ifelse",
	T2Random:     "random",
	T2Mul:        "mul",
	T2Sqrt:       "sqrt",
	T2Dup:        "dup",
	T2Exch:       "exch",
	T2Index:      "index",
	T2Roll:       "roll",
	T2HFlex:      "hflex",
	T2Flex:       "flex",
	T2HFlex1:     "hflex1",
	T2Flex1:      "flex1",
}

// subrBias returns the bias which is added to subroutine numbers.
func subrBias(nSubrs int) int {
	switch {
	case nSubrs < 1240:
		return 107
	case nSubrs < 33900:
		return 1131
	default:
		return 32768
	}
}

// applyArith executes one of the arithmetic and storage operators on the
// stack.  The boolean return value is false if op is not such an
// operator.
func applyArith(op T2Op, stack []float64, storage *[32]float64) ([]float64, bool, error) {
	switch op {
	case T2Abs, T2Neg, T2Not, T2Sqrt, T2Dup, T2Drop, T2Get, T2Index:
		if len(stack) < 1 {
			return nil, true, errStackUnderflow
		}
	case T2Add, T2Sub, T2Div, T2Mul, T2And, T2Or, T2Eq, T2Exch, T2Put, T2Roll:
		if len(stack) < 2 {
			return nil, true, errStackUnderflow
		}
	case T2IfElse:
		if len(stack) < 4 {
			return nil, true, errStackUnderflow
		}
	case T2Random:
		// no operands
	default:
		return stack, false, nil
	}

	k := len(stack) - 1
	switch op {
	case T2Abs:
		stack[k] = math.Abs(stack[k])
	case T2Neg:
		stack[k] = -stack[k]
	case T2Not:
		if stack[k] == 0 {
			stack[k] = 1
		} else {
			stack[k] = 0
		}
	case T2Sqrt:
		stack[k] = math.Sqrt(stack[k])
	case T2Dup:
		stack = append(stack, stack[k])
	case T2Drop:
		stack = stack[:k]
	case T2Get:
		m := int(stack[k])
		if float64(m) != stack[k] || m < 0 || m >= len(storage) {
			return nil, true, errInvalidStore
		}
		stack[k] = storage[m]
	case T2Index:
		idx := int(stack[k])
		if float64(idx) != stack[k] || k-idx-1 < 0 {
			return nil, true, errInvalidIndex
		}
		if idx < 0 {
			idx = 0
		}
		stack[k] = stack[k-idx-1]
	case T2Add:
		stack[k-1] += stack[k]
		stack = stack[:k]
	case T2Sub:
		stack[k-1] -= stack[k]
		stack = stack[:k]
	case T2Mul:
		stack[k-1] *= stack[k]
		stack = stack[:k]
	case T2Div:
		if stack[k] == 0 {
			return nil, true, errDivByZero
		}
		stack[k-1] /= stack[k]
		stack = stack[:k]
	case T2And:
		stack[k-1] = b2f(stack[k-1] != 0 && stack[k] != 0)
		stack = stack[:k]
	case T2Or:
		stack[k-1] = b2f(stack[k-1] != 0 || stack[k] != 0)
		stack = stack[:k]
	case T2Eq:
		stack[k-1] = b2f(stack[k-1] == stack[k])
		stack = stack[:k]
	case T2Exch:
		stack[k-1], stack[k] = stack[k], stack[k-1]
	case T2Put:
		m := int(stack[k])
		if float64(m) != stack[k] || m < 0 || m >= len(storage) {
			return nil, true, errInvalidStore
		}
		storage[m] = stack[k-1]
		stack = stack[:k-1]
	case T2Roll:
		n := int(stack[k-1])
		j := int(stack[k])
		stack = stack[:k-1]
		if n <= 0 || n > len(stack) {
			return nil, true, errInvalidRoll
		}
		roll(stack[len(stack)-n:], j)
	case T2IfElse:
		val := stack[k-3]
		if stack[k-1] > stack[k] {
			val = stack[k-2]
		}
		stack = append(stack[:k-3], val)
	case T2Random:
		stack = append(stack, 0.618) // a "random" number in (0, 1]
	}
	return stack, true, nil
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func roll(data []float64, j int) {
	n := len(data)

	j = j % n
	if j < 0 {
		j += n
	}

	tmp := make([]float64, j)
	copy(tmp, data[n-j:])
	copy(data[j:], data[:n-j])
	copy(data[:j], tmp)
}
