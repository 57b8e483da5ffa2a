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
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recorder is a PathSink which records all calls as strings.
type recorder []string

func (r *recorder) MoveTo(x, y float64) {
	*r = append(*r, fmt.Sprintf("M %g %g", x, y))
}

func (r *recorder) LineTo(x, y float64) {
	*r = append(*r, fmt.Sprintf("L %g %g", x, y))
}

func (r *recorder) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	*r = append(*r, fmt.Sprintf("C %g %g %g %g %g %g", x1, y1, x2, y2, x3, y3))
}

func (r *recorder) ClosePath() {
	*r = append(*r, "Z")
}

func TestDrawWidth(t *testing.T) {
	cases := []struct {
		prog Program
		want []string
	}{
		{ // rmoveto with width
			prog: Program{Num(500), Num(10), Num(20), {Op: T2RMoveTo},
				Num(30), Num(0), {Op: T2RLineTo}, {Op: T2EndChar}},
			want: []string{"M 10 20", "L 40 20", "Z"},
		},
		{ // rmoveto without width
			prog: Program{Num(10), Num(20), {Op: T2RMoveTo},
				Num(30), Num(0), {Op: T2RLineTo}, {Op: T2EndChar}},
			want: []string{"M 10 20", "L 40 20", "Z"},
		},
		{ // hmoveto with width
			prog: Program{Num(500), Num(10), {Op: T2HMoveTo},
				Num(30), {Op: T2VLineTo}, {Op: T2EndChar}},
			want: []string{"M 10 0", "L 10 30", "Z"},
		},
		{ // vmoveto without width
			prog: Program{Num(10), {Op: T2VMoveTo},
				Num(30), {Op: T2HLineTo}, {Op: T2EndChar}},
			want: []string{"M 0 10", "L 30 10", "Z"},
		},
		{ // hstem with width
			prog: Program{Num(500), Num(1), Num(2), {Op: T2HStem},
				Num(10), {Op: T2VMoveTo}, {Op: T2EndChar}},
			want: []string{"M 0 10", "Z"},
		},
		{ // hstem without width, vmoveto afterwards is not inspected
			prog: Program{Num(1), Num(2), {Op: T2HStem},
				Num(10), {Op: T2VMoveTo}, {Op: T2EndChar}},
			want: []string{"M 0 10", "Z"},
		},
		{ // endchar with width
			prog: Program{Num(500), {Op: T2EndChar}},
			want: nil,
		},
		{ // two sub-paths
			prog: Program{Num(10), Num(10), {Op: T2RMoveTo}, Num(10), {Op: T2HLineTo},
				Num(20), {Op: T2VMoveTo}, Num(-10), {Op: T2HLineTo}, {Op: T2EndChar}},
			want: []string{"M 10 10", "L 20 10", "Z", "M 20 30", "L 10 30", "Z"},
		},
	}

	for i, test := range cases {
		f := &Font{
			Major:       1,
			CharStrings: []Program{test.prog},
			Private:     &PrivateDict{Dict: Dict{}},
		}
		var got recorder
		err := f.DrawGlyph(0, &got)
		if err != nil {
			t.Errorf("%d: %v", i, err)
			continue
		}
		if diff := cmp.Diff(test.want, []string(got)); diff != "" {
			t.Errorf("%d: wrong outline (-want +got):\n%s", i, diff)
		}
	}
}

func TestDrawSubrs(t *testing.T) {
	f := &Font{
		Major: 1,
		CharStrings: []Program{
			{Num(100), Num(-107), {Op: T2CallSubr}, Num(-107), {Op: T2CallGSubr}},
		},
		GlobalSubrs: []Program{
			{Num(50), {Op: T2HLineTo}, {Op: T2EndChar}},
		},
		Private: &PrivateDict{
			Dict:  Dict{},
			Subrs: []Program{{Num(10), Num(20), {Op: T2RMoveTo}, {Op: T2Return}}},
		},
	}
	var got recorder
	err := f.DrawGlyph(0, &got)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"M 10 20", "L 60 20", "Z"}
	if diff := cmp.Diff(want, []string(got)); diff != "" {
		t.Errorf("wrong outline (-want +got):\n%s", diff)
	}
}

func TestDrawBlend(t *testing.T) {
	f := &Font{
		Major: 2,
		CharStrings: []Program{
			{Num(100), Num(50), Num(1), {Op: T2Blend}, Num(0), {Op: T2RMoveTo},
				Num(10), Num(-4), Num(1), {Op: T2Blend}, {Op: T2VLineTo}},
		},
		FDArray: []*FontDict{{Dict: Dict{}, Private: &PrivateDict{Dict: Dict{}}}},
		VarStore: &VarStore{
			Regions: []Region{{{Start: 0, Peak: 1, End: 1}}},
			Data:    []VarData{{RegionIndices: []int{0}}},
		},
	}

	cases := []struct {
		coords []float64
		want   []string
	}{
		{nil, []string{"M 100 0", "L 100 10", "Z"}},
		{[]float64{0}, []string{"M 100 0", "L 100 10", "Z"}},
		{[]float64{0.5}, []string{"M 125 0", "L 125 8", "Z"}},
		{[]float64{1}, []string{"M 150 0", "L 150 6", "Z"}},
		{[]float64{-1}, []string{"M 100 0", "L 100 10", "Z"}},
	}
	for _, test := range cases {
		var got recorder
		var err error
		if test.coords == nil {
			err = f.DrawGlyph(0, &got)
		} else {
			err = f.DrawGlyphAt(0, test.coords, &got)
		}
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(test.want, []string(got)); diff != "" {
			t.Errorf("%v: wrong outline (-want +got):\n%s", test.coords, diff)
		}
	}
}

func TestDrawSeac(t *testing.T) {
	f := &Font{
		Major:       1,
		CharStrings: []Program{{Num(0), Num(100), Num(65), Num(66), {Op: T2EndChar}}},
	}
	var got recorder
	err := f.DrawGlyph(0, &got)
	var e *NotSupportedError
	if !errors.As(err, &e) {
		t.Errorf("expected NotSupportedError, got %v", err)
	}
}
