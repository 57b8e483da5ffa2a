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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProgramRoundTrip(t *testing.T) {
	cases := []Program{
		{
			Num(0), Num(107), Num(-107), Num(108), Num(1131),
			Num(-108), Num(-1131), Num(1132), Num(-1132),
			Num(32767), Num(-32768), Num(1.5), Num(-0.25),
			{Op: T2Drop}, {Op: T2Drop}, {Op: T2Drop}, {Op: T2Drop},
			{Op: T2Drop}, {Op: T2Drop}, {Op: T2Drop}, {Op: T2Drop},
			{Op: T2Drop}, {Op: T2Drop}, {Op: T2Drop},
			Num(10), Num(20), {Op: T2RMoveTo},
			{Op: T2EndChar},
		},
		{
			Num(1), Num(2), Num(3), Num(4), {Op: T2HStemHM},
			Num(5), Num(6), {Op: T2HintMask, Mask: []byte{0xe0}},
			Num(10), Num(20), {Op: T2RMoveTo},
			Num(30), Num(40), Num(50), {Op: T2HLineTo},
			{Op: T2HintMask, Mask: []byte{0x40}},
			Num(1), Num(2), Num(3), Num(4), Num(5), Num(6), {Op: T2RRCurveTo},
			{Op: T2EndChar},
		},
	}

	for i, prog := range cases {
		dec := NewDecoder(false, nil)
		prog2, err := dec.Decode(prog.Encode(), nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(prog, prog2); diff != "" {
			t.Errorf("%d: round trip failed (-want +got):\n%s", i, diff)
		}
	}
}

func TestDecodeSubrs(t *testing.T) {
	subr := Program{Num(1), Num(2), {Op: T2HStem}, {Op: T2Return}}
	gsubr := Program{Num(10), Num(20), {Op: T2RMoveTo}, {Op: T2Return}}
	glyph := Program{
		Num(-107), {Op: T2CallSubr},
		Num(-107), {Op: T2CallGSubr},
		{Op: T2HintMask, Mask: []byte{0x80}},
		{Op: T2EndChar},
	}

	dec := NewDecoder(false, [][]byte{gsubr.Encode()})
	localOut := make([]Program, 1)
	got, err := dec.Decode(glyph.Encode(), [][]byte{subr.Encode()}, localOut)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(glyph, got); diff != "" {
		t.Errorf("glyph (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(subr, localOut[0]); diff != "" {
		t.Errorf("local subr (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(gsubr, dec.GlobalSubrs()[0]); diff != "" {
		t.Errorf("global subr (-want +got):\n%s", diff)
	}
}

func TestDecodeBlend(t *testing.T) {
	prog := Program{
		Num(1), {Op: T2VSIndex},
		Num(100), Num(5), Num(6), Num(7), Num(8), Num(9), Num(10), Num(2), {Op: T2Blend},
		{Op: T2RMoveTo},
	}
	dec := NewDecoder(true, nil)
	dec.NumRegions = func(vsindex int) (int, error) {
		if vsindex != 1 {
			t.Errorf("wrong vsindex %d", vsindex)
		}
		return 3, nil
	}
	_, err := dec.Decode(prog.Encode(), nil, nil)
	if err == nil {
		t.Error("stack underflow not detected")
	}

	prog = Program{
		Num(1), {Op: T2VSIndex},
		Num(100), Num(200), Num(5), Num(6), Num(7), Num(8), Num(9), Num(10), Num(2), {Op: T2Blend},
		{Op: T2RMoveTo},
	}
	got, err := dec.Decode(prog.Encode(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(prog, got); diff != "" {
		t.Errorf("round trip failed (-want +got):\n%s", diff)
	}
}

func TestSubrBias(t *testing.T) {
	cases := []struct {
		n, bias int
	}{
		{0, 107},
		{1239, 107},
		{1240, 1131},
		{33899, 1131},
		{33900, 32768},
	}
	for _, test := range cases {
		if got := subrBias(test.n); got != test.bias {
			t.Errorf("subrBias(%d) = %d, want %d", test.n, got, test.bias)
		}
	}
}

func FuzzProgram(f *testing.F) {
	f.Add([]byte{139, 139, 21, 14})
	f.Add(Program{
		Num(1), Num(2), Num(3), Num(4), {Op: T2HStemHM},
		{Op: T2HintMask, Mask: []byte{0xc0}},
		Num(1.5), Num(-2000), {Op: T2RMoveTo},
		Num(7), Num(3), {Op: T2Div}, {Op: T2HLineTo},
		{Op: T2EndChar},
	}.Encode())
	f.Fuzz(func(t *testing.T, in []byte) {
		prog, err := NewDecoder(false, nil).Decode(in, nil, nil)
		if err != nil {
			return
		}
		prog2, err := NewDecoder(false, nil).Decode(prog.Encode(), nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(prog, prog2); diff != "" {
			t.Errorf("round trip failed (-want +got):\n%s", diff)
		}
	})
}
