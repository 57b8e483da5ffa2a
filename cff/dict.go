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
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"seehuhn.de/go/varcff/internal/float"
)

// Operand is a DICT operand.  If Deltas is non-nil, the operand is
// blended: Val is the value for the default master and Deltas gives one
// coefficient for every region of the variation data in effect.
type Operand struct {
	Val    float64
	Deltas []float64
}

// IsBlend reports whether the operand varies between masters.
func (o Operand) IsBlend() bool {
	return o.Deltas != nil
}

func (o Operand) String() string {
	if o.Deltas == nil {
		return float.Format(o.Val, 6)
	}
	parts := make([]string, len(o.Deltas))
	for i, d := range o.Deltas {
		parts[i] = float.Format(d, 6)
	}
	return fmt.Sprintf("%s<%s>", float.Format(o.Val, 6), strings.Join(parts, ","))
}

// Dict is the in-memory form of a CFF DICT.
// String-valued entries hold the string ID as a number.
//
// The entries listed in DeltaArrays are stored in delta-encoded form in
// the binary DICT.  In a Dict, the Val fields of these entries hold
// absolute values, while the Deltas stay relative to the previous entry.
type Dict map[DictOp][]Operand

// Clone returns a deep copy of the dictionary.
func (d Dict) Clone() Dict {
	if d == nil {
		return nil
	}
	c := make(Dict, len(d))
	for k, v := range d {
		vv := make([]Operand, len(v))
		for i, o := range v {
			vv[i] = Operand{Val: o.Val, Deltas: slices.Clone(o.Deltas)}
		}
		c[k] = vv
	}
	return c
}

// Num returns the value of the first operand of op,
// or defVal if op is not present.
func (d Dict) Num(op DictOp, defVal float64) float64 {
	args := d[op]
	if len(args) == 0 {
		return defVal
	}
	return args[0].Val
}

// Nums returns the (default master) values of the operands of op.
func (d Dict) Nums(op DictOp) []float64 {
	args, ok := d[op]
	if !ok {
		return nil
	}
	res := make([]float64, len(args))
	for i, a := range args {
		res[i] = a.Val
	}
	return res
}

// SetNums sets op to the given unblended values.
func (d Dict) SetNums(op DictOp, vals ...float64) {
	args := make([]Operand, len(vals))
	for i, v := range vals {
		args[i] = Operand{Val: v}
	}
	d[op] = args
}

// filter removes all entries which are not listed in keep.
func (d Dict) filter(keep map[DictOp]bool) Dict {
	res := make(Dict, len(d))
	for op, args := range d {
		if keep[op] {
			res[op] = args
		} else {
			tracer().Debugf("dropping DICT entry %s", op)
		}
	}
	return res
}

func (d Dict) keys() []DictOp {
	keys := make([]DictOp, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	conv := func(op DictOp) int {
		switch op {
		case OpVsindex:
			return -3
		case OpROS:
			return -1
		case OpSyntheticBase:
			return -2
		}
		return int(op)
	}
	slices.SortFunc(keys, func(a, b DictOp) int {
		return conv(a) - conv(b)
	})
	return keys
}

// encode returns the binary form of the DICT.  Blended operands are
// only allowed in CFF2 DICTs.
func (d Dict) encode(cff2 bool) ([]byte, error) {
	res := &bytes.Buffer{}
	for _, op := range d.keys() {
		args := d[op]
		if DeltaArrays[op] {
			args = slices.Clone(args)
			for i := len(args) - 1; i > 0; i-- {
				args[i].Val -= args[i-1].Val
			}
		}
		for i := 0; i < len(args); {
			if !args[i].IsBlend() {
				encodeDictNumber(res, args[i].Val)
				i++
				continue
			}
			if !cff2 {
				return nil, invalidSince("blended operand in CFF DICT")
			}

			j := i
			k := len(args[i].Deltas)
			for j < len(args) && args[j].IsBlend() {
				if len(args[j].Deltas) != k {
					return nil, invalidSince("inconsistent number of blend deltas")
				}
				j++
			}
			for _, a := range args[i:j] {
				encodeDictNumber(res, a.Val)
			}
			for _, a := range args[i:j] {
				for _, delta := range a.Deltas {
					encodeDictNumber(res, delta)
				}
			}
			encodeDictNumber(res, float64(j-i))
			res.WriteByte(byte(OpBlend))
			i = j
		}
		if op > 255 {
			res.WriteByte(12)
		}
		res.WriteByte(byte(op))
	}
	return res.Bytes(), nil
}

func encodeDictNumber(res *bytes.Buffer, x float64) {
	if float.IsInt(x) {
		a := int32(x)
		switch {
		case a >= -107 && a <= 107:
			res.WriteByte(byte(a + 139))
		case a >= 108 && a <= 1131:
			// a = (b0–247)*256+b1+108
			a -= 108
			b1 := byte(a)
			a >>= 8
			b0 := byte(a + 247)
			res.Write([]byte{b0, b1})
		case a >= -1131 && a <= -108:
			// a = -(b0–251)*256-b1-108
			a = -108 - a
			b1 := byte(a)
			a >>= 8
			b0 := byte(a + 251)
			res.Write([]byte{b0, b1})
		case a >= -32768 && a <= 32767:
			a16 := uint16(a)
			res.Write([]byte{28, byte(a16 >> 8), byte(a16)})
		default:
			a32 := uint32(a)
			res.Write([]byte{29, byte(a32 >> 24), byte(a32 >> 16), byte(a32 >> 8), byte(a32)})
		}
		return
	}

	res.WriteByte(0x1e)
	s := strconv.FormatFloat(x, 'g', -1, 64) + "::"
	first := true
	var tmp byte
	for i := 0; i < len(s); i++ {
		var nibble byte
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			nibble = c - '0'
		case c == '.':
			nibble = 0x0a
		case c == 'e':
			switch s[i+1] {
			case '-':
				i++
				nibble = 0x0c
			case '+':
				i++
				nibble = 0x0b
			default:
				nibble = 0x0b
			}
		case c == '-':
			nibble = 0x0e
		case c == ':':
			nibble = 0x0f
		}
		if first {
			tmp = nibble << 4
		} else {
			res.WriteByte(tmp | nibble)
		}
		first = !first
	}
}

// decodeDict decodes a DICT.  For CFF2 DICTs, nRegions must give the
// number of regions of the given variation data, so that blend operators
// can be resolved.
func decodeDict(buf []byte, cff2 bool, nRegions func(vsindex int) (int, error)) (Dict, error) {
	res := Dict{}
	var stack []Operand
	vsindex := 0

	flush := func(op DictOp) {
		if DeltaArrays[op] {
			for i := 1; i < len(stack); i++ {
				stack[i].Val += stack[i-1].Val
			}
		}
		res[op] = stack
		stack = nil
	}

	for len(buf) > 0 {
		b0 := buf[0]
		switch {
		case b0 == 12:
			if len(buf) < 2 {
				return nil, errCorruptDict
			}
			flush(DictOp(b0)<<8 + DictOp(buf[1]))
			buf = buf[2:]
		case cff2 && DictOp(b0) == OpVsindex:
			if len(stack) != 1 {
				return nil, errCorruptDict
			}
			vsindex = int(stack[0].Val)
			flush(OpVsindex)
			buf = buf[1:]
		case cff2 && DictOp(b0) == OpBlend:
			if len(stack) < 1 || nRegions == nil {
				return nil, errCorruptDict
			}
			n := int(stack[len(stack)-1].Val)
			stack = stack[:len(stack)-1]
			k, err := nRegions(vsindex)
			if err != nil {
				return nil, err
			}
			total := n * (k + 1)
			if n < 1 || total > len(stack) {
				return nil, errCorruptDict
			}
			base := len(stack) - total
			blended := make([]Operand, n)
			for i := range blended {
				deltas := make([]float64, k)
				for j := range deltas {
					deltas[j] = stack[base+n+i*k+j].Val
				}
				blended[i] = Operand{Val: stack[base+i].Val, Deltas: deltas}
			}
			stack = append(stack[:base], blended...)
			buf = buf[1:]
		case b0 <= 21 || cff2 && b0 == 24:
			flush(DictOp(b0))
			buf = buf[1:]
		case b0 <= 27: // values 22–27, 31, and 255 are reserved
			return nil, errCorruptDict
		case b0 == 28:
			if len(buf) < 3 {
				return nil, errCorruptDict
			}
			x := int16(uint16(buf[1])<<8 + uint16(buf[2]))
			stack = append(stack, Operand{Val: float64(x)})
			buf = buf[3:]
		case b0 == 29:
			if len(buf) < 5 {
				return nil, errCorruptDict
			}
			x := int32(uint32(buf[1])<<24 + uint32(buf[2])<<16 + uint32(buf[3])<<8 + uint32(buf[4]))
			stack = append(stack, Operand{Val: float64(x)})
			buf = buf[5:]
		case b0 == 30:
			tmp, x, err := decodeFloat(buf[1:])
			if err != nil {
				return nil, err
			}
			stack = append(stack, Operand{Val: x})
			buf = tmp
		case b0 == 31: // values 22–27, 31, and 255 are reserved
			return nil, errCorruptDict
		case b0 <= 246:
			stack = append(stack, Operand{Val: float64(int32(b0) - 139)})
			buf = buf[1:]
		case b0 <= 250:
			if len(buf) < 2 {
				return nil, errCorruptDict
			}
			x := int32(b0)*256 + int32(buf[1]) + (108 - 247*256)
			stack = append(stack, Operand{Val: float64(x)})
			buf = buf[2:]
		case b0 <= 254:
			if len(buf) < 2 {
				return nil, errCorruptDict
			}
			x := -int32(b0)*256 - int32(buf[1]) - (108 - 251*256)
			stack = append(stack, Operand{Val: float64(x)})
			buf = buf[2:]
		default: // values 22–27, 31, and 255 are reserved
			return nil, errCorruptDict
		}
	}

	if len(stack) > 0 {
		return nil, errCorruptDict
	}

	return res, nil
}

// decodeFloat decodes a real number (without the leading 0x1e).
func decodeFloat(buf []byte) ([]byte, float64, error) {
	var s []byte

	first := true
	var next byte
	for {
		var nibble byte
		if first {
			if len(buf) == 0 {
				return nil, 0, errIncompleteFloat
			}
			next, buf = buf[0], buf[1:]
			nibble = next >> 4
			next = next & 15
			first = false
		} else {
			nibble = next
			first = true
		}

		switch nibble {
		case 0x0a:
			s = append(s, '.')
		case 0xb:
			s = append(s, 'e')
		case 0xc:
			s = append(s, 'e', '-')
		case 0xd: // reserved
			return nil, 0, errCorruptDict
		case 0xe:
			s = append(s, '-')
		case 0xf:
			x, err := strconv.ParseFloat(string(s), 64)
			if err != nil || math.IsInf(x, 0) {
				return nil, 0, errCorruptDict
			}
			return buf, x, nil
		default:
			s = append(s, '0'+nibble)
		}
	}
}

// DictOp is a CFF DICT operator.  Two-byte operators 12 x are
// represented as 0x0C00+x.
type DictOp uint16

func (d DictOp) String() string {
	if name, ok := dictOpNames[d]; ok {
		return name
	}
	if d < 256 {
		return fmt.Sprintf("%d", d)
	}
	return fmt.Sprintf("%d %d", d>>8, d&0xff)
}

const (
	// top DICT operators
	OpVersion            DictOp = 0x0000
	OpNotice             DictOp = 0x0001
	OpFullName           DictOp = 0x0002
	OpFamilyName         DictOp = 0x0003
	OpWeight             DictOp = 0x0004
	OpFontBBox           DictOp = 0x0005
	OpUniqueID           DictOp = 0x000D
	OpXUID               DictOp = 0x000E
	OpCharset            DictOp = 0x000F
	OpEncoding           DictOp = 0x0010
	OpCharStrings        DictOp = 0x0011
	OpPrivate            DictOp = 0x0012
	OpVarStore           DictOp = 0x0018
	OpCopyright          DictOp = 0x0C00
	OpIsFixedPitch       DictOp = 0x0C01
	OpItalicAngle        DictOp = 0x0C02
	OpUnderlinePosition  DictOp = 0x0C03
	OpUnderlineThickness DictOp = 0x0C04
	OpPaintType          DictOp = 0x0C05
	OpCharstringType     DictOp = 0x0C06
	OpFontMatrix         DictOp = 0x0C07
	OpStrokeWidth        DictOp = 0x0C08
	OpSyntheticBase      DictOp = 0x0C14
	OpPostScript         DictOp = 0x0C15
	OpBaseFontName       DictOp = 0x0C16
	OpBaseFontBlend      DictOp = 0x0C17
	OpROS                DictOp = 0x0C1E
	OpCIDFontVersion     DictOp = 0x0C1F
	OpCIDFontRevision    DictOp = 0x0C20
	OpCIDFontType        DictOp = 0x0C21
	OpCIDCount           DictOp = 0x0C22
	OpUIDBase            DictOp = 0x0C23
	OpFDArray            DictOp = 0x0C24
	OpFDSelect           DictOp = 0x0C25
	OpFontName           DictOp = 0x0C26

	// private DICT operators
	OpBlueValues        DictOp = 0x0006
	OpOtherBlues        DictOp = 0x0007
	OpFamilyBlues       DictOp = 0x0008
	OpFamilyOtherBlues  DictOp = 0x0009
	OpStdHW             DictOp = 0x000A
	OpStdVW             DictOp = 0x000B
	OpSubrs             DictOp = 0x0013 // Offset (self) to local subrs
	OpDefaultWidthX     DictOp = 0x0014
	OpNominalWidthX     DictOp = 0x0015
	OpVsindex           DictOp = 0x0016 // CFF2 only
	OpBlend             DictOp = 0x0017 // CFF2 only, never a DICT key
	OpBlueScale         DictOp = 0x0C09
	OpBlueShift         DictOp = 0x0C0A
	OpBlueFuzz          DictOp = 0x0C0B
	OpStemSnapH         DictOp = 0x0C0C
	OpStemSnapV         DictOp = 0x0C0D
	OpForceBold         DictOp = 0x0C0E
	OpLanguageGroup     DictOp = 0x0C11
	OpExpansionFactor   DictOp = 0x0C12
	OpInitialRandomSeed DictOp = 0x0C13
)

var dictOpNames = map[DictOp]string{
	OpVersion:            "Version",
	OpNotice:             "Notice",
	OpFullName:           "FullName",
	OpFamilyName:         "FamilyName",
	OpWeight:             "Weight",
	OpFontBBox:           "FontBBox",
	OpUniqueID:           "UniqueID",
	OpXUID:               "XUID",
	OpCharset:            "Charset",
	OpEncoding:           "Encoding",
	OpCharStrings:        "CharStrings",
	OpPrivate:            "Private",
	OpVarStore:           "VarStore",
	OpCopyright:          "Copyright",
	OpIsFixedPitch:       "IsFixedPitch",
	OpItalicAngle:        "ItalicAngle",
	OpUnderlinePosition:  "UnderlinePosition",
	OpUnderlineThickness: "UnderlineThickness",
	OpPaintType:          "PaintType",
	OpCharstringType:     "CharstringType",
	OpFontMatrix:         "FontMatrix",
	OpStrokeWidth:        "StrokeWidth",
	OpSyntheticBase:      "SyntheticBase",
	OpPostScript:         "PostScript",
	OpBaseFontName:       "BaseFontName",
	OpBaseFontBlend:      "BaseFontBlend",
	OpROS:                "ROS",
	OpCIDFontVersion:     "CIDFontVersion",
	OpCIDFontRevision:    "CIDFontRevision",
	OpCIDFontType:        "CIDFontType",
	OpCIDCount:           "CIDCount",
	OpUIDBase:            "UIDBase",
	OpFDArray:            "FDArray",
	OpFDSelect:           "FDSelect",
	OpFontName:           "FontName",

	OpBlueValues:        "BlueValues",
	OpOtherBlues:        "OtherBlues",
	OpFamilyBlues:       "FamilyBlues",
	OpFamilyOtherBlues:  "FamilyOtherBlues",
	OpStdHW:             "StdHW",
	OpStdVW:             "StdVW",
	OpSubrs:             "Subrs",
	OpDefaultWidthX:     "defaultWidthX",
	OpNominalWidthX:     "nominalWidthX",
	OpVsindex:           "vsindex",
	OpBlend:             "blend",
	OpBlueScale:         "BlueScale",
	OpBlueShift:         "BlueShift",
	OpBlueFuzz:          "BlueFuzz",
	OpStemSnapH:         "StemSnapH",
	OpStemSnapV:         "StemSnapV",
	OpForceBold:         "ForceBold",
	OpLanguageGroup:     "LanguageGroup",
	OpExpansionFactor:   "ExpansionFactor",
	OpInitialRandomSeed: "initialRandomSeed",
}

// Keys allowed in CFF2 DICTs.  Entries which refer to other structures
// (CharStrings, FDArray, FDSelect, VarStore, Private, Subrs) are
// represented by fields of Font and never appear as DICT keys.
var (
	cff2TopOps = map[DictOp]bool{
		OpFontMatrix: true,
	}
	cff2FontDictOps = map[DictOp]bool{}
	cff2PrivateOps  = map[DictOp]bool{
		OpBlueValues:       true,
		OpOtherBlues:       true,
		OpFamilyBlues:      true,
		OpFamilyOtherBlues: true,
		OpBlueScale:        true,
		OpBlueShift:        true,
		OpBlueFuzz:         true,
		OpStdHW:            true,
		OpStdVW:            true,
		OpStemSnapH:        true,
		OpStemSnapV:        true,
		OpLanguageGroup:    true,
		OpExpansionFactor:  true,
		OpVsindex:          true,
	}
)

// DeltaArrays lists the DICT entries which are stored as delta-encoded
// arrays.
var DeltaArrays = map[DictOp]bool{
	OpBlueValues:       true,
	OpOtherBlues:       true,
	OpFamilyBlues:      true,
	OpFamilyOtherBlues: true,
	OpStemSnapH:        true,
	OpStemSnapV:        true,
}

// FieldKind distinguishes scalar and vector valued DICT entries.
type FieldKind int

// These are the possible field kinds.
const (
	Scalar FieldKind = iota + 1
	Vector
)

func (k FieldKind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Vector:
		return "vector"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// BlendField is a private DICT entry which can vary between masters.
type BlendField struct {
	Op   DictOp
	Kind FieldKind
}

// BlendFields lists the private DICT entries which are blended when
// building a variable font, in the order they are processed.
var BlendFields = []BlendField{
	{OpBlueValues, Vector},
	{OpOtherBlues, Vector},
	{OpFamilyBlues, Vector},
	{OpFamilyOtherBlues, Vector},
	{OpBlueScale, Scalar},
	{OpBlueShift, Scalar},
	{OpBlueFuzz, Scalar},
	{OpStdHW, Scalar},
	{OpStdVW, Scalar},
	{OpStemSnapH, Vector},
	{OpStemSnapV, Vector},
}

var (
	errCorruptDict     = errors.New("cff: invalid DICT")
	errIncompleteFloat = errors.New("cff: incomplete float")
)
