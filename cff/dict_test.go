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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var testDicts = []Dict{
	{},
	{
		OpFontMatrix: {{Val: 0.001}, {Val: 0}, {Val: 0}, {Val: 0.001}, {Val: 0}, {Val: 0}},
	},
	{
		OpBlueValues: {{Val: -22}, {Val: 0}, {Val: 500}, {Val: 520}},
		OpBlueScale:  {{Val: 0.039625}},
		OpStdHW:      {{Val: 107}},
		OpStdVW:      {{Val: -107}},
		OpStemSnapH:  {{Val: 108}, {Val: 1131}, {Val: -108}, {Val: -1131}},
		OpStemSnapV:  {{Val: 1132}, {Val: -1132}, {Val: 32767}, {Val: -32768}},
		OpUniqueID:   {{Val: 100000}, {Val: -100000}},
		OpFontBBox:   {{Val: 1e-5}, {Val: 1.5e21}, {Val: -2.25}, {Val: 0.5}},
	},
}

func TestDictRoundTrip(t *testing.T) {
	for i, d := range testDicts {
		buf, err := d.encode(false)
		if err != nil {
			t.Fatal(err)
		}
		d2, err := decodeDict(buf, false, nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(d, d2); diff != "" {
			t.Errorf("%d: round trip failed (-want +got):\n%s", i, diff)
		}
	}
}

func TestDictNumberRange(t *testing.T) {
	cases := []struct {
		x     float64
		first byte
	}{
		{math.MaxInt32, 29},
		{math.MinInt32, 29},
		{math.MaxInt32 + 1, 0x1e},
		{math.MinInt32 - 1, 0x1e},
		{-3e9, 0x1e},
		{1e10, 0x1e},
	}
	for _, test := range cases {
		d := Dict{OpUniqueID: {{Val: test.x}}}
		buf, err := d.encode(false)
		if err != nil {
			t.Fatal(err)
		}
		if buf[0] != test.first {
			t.Errorf("%g: encoded as %v", test.x, buf)
		}
		d2, err := decodeDict(buf, false, nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(d, d2); diff != "" {
			t.Errorf("%g: round trip failed (-want +got):\n%s", test.x, diff)
		}
	}
}

func TestDictBlendRoundTrip(t *testing.T) {
	d := Dict{
		OpVsindex: {{Val: 1}},
		OpBlueValues: {
			{Val: -10, Deltas: []float64{1, 2}},
			{Val: 0},
			{Val: 500, Deltas: []float64{3, 4}},
			{Val: 510, Deltas: []float64{3, 4}},
		},
		OpStdHW: {{Val: 50, Deltas: []float64{5, 6.5}}},
	}
	nRegions := func(vsindex int) (int, error) {
		if vsindex != 1 {
			t.Errorf("wrong vsindex %d", vsindex)
		}
		return 2, nil
	}

	_, err := d.encode(false)
	if err == nil {
		t.Error("blended operands accepted in CFF DICT")
	}

	buf, err := d.encode(true)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := decodeDict(buf, true, nRegions)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d, d2); diff != "" {
		t.Errorf("round trip failed (-want +got):\n%s", diff)
	}
}

func TestDecodeFloat(t *testing.T) {
	cases := []struct {
		in  []byte
		out float64
	}{
		{[]byte{0xe2, 0xa2, 0x5f}, -2.25},
		{[]byte{0x0a, 0x14, 0x05, 0x41, 0xc3, 0xff}, 0.140541e-3},
		{[]byte{0x1f}, 1},
		{[]byte{0x1b, 0x2f}, 1e2},
	}
	for _, test := range cases {
		buf, x, err := decodeFloat(test.in)
		if err != nil {
			t.Error(err)
			continue
		}
		if len(buf) != 0 {
			t.Error("not all input used")
		}
		if math.Abs(x-test.out) > 1e-12 {
			t.Errorf("wrong result: %g - %g = %g", x, test.out, x-test.out)
		}
	}
}

func TestDictKeyOrder(t *testing.T) {
	d := Dict{
		OpStdHW:         {{Val: 1}},
		OpROS:           {{Val: 391}, {Val: 392}, {Val: 0}},
		OpSyntheticBase: {{Val: 0}},
		OpVsindex:       {{Val: 0}},
		OpBlueValues:    {},
	}
	got := d.keys()
	want := []DictOp{OpVsindex, OpSyntheticBase, OpROS, OpBlueValues, OpStdHW}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong key order (-want +got):\n%s", diff)
	}
}

func FuzzDict(f *testing.F) {
	for _, d := range testDicts {
		buf, err := d.encode(false)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(buf)
	}
	f.Fuzz(func(t *testing.T, in []byte) {
		d1, err := decodeDict(in, false, nil)
		if err != nil {
			return
		}
		buf, err := d1.encode(false)
		if err != nil {
			t.Fatal(err)
		}
		d2, err := decodeDict(buf, false, nil)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(d1, d2); diff != "" {
			t.Errorf("round trip failed (-want +got):\n%s", diff)
		}
		buf2, err := d2.encode(false)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(buf, buf2) {
			t.Errorf("encoding not stable: % x != % x", buf, buf2)
		}
	})
}
