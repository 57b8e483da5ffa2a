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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"seehuhn.de/go/varcff/cff"
	"seehuhn.de/go/varcff/internal/testmasters"
	"seehuhn.de/go/varcff/varmodel"
)

func twoMasterModel(t *testing.T) *varmodel.Model {
	t.Helper()
	model, err := varmodel.New([]varmodel.Location{{}, {testmasters.Wght: 1}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return model
}

func TestBlendDict(t *testing.T) {
	model := twoMasterModel(t)

	regular := cff.Dict{
		cff.OpBlueValues: {{Val: -15}, {Val: 0}, {Val: 480}, {Val: 495}},
		cff.OpOtherBlues: {{Val: -250}, {Val: -240}},
		cff.OpBlueScale:  {{Val: 0.04}},
		cff.OpStdVW:      {{Val: 80}},
		cff.OpStemSnapV:  {{Val: 80}, {Val: 90}},
	}
	bold := cff.Dict{
		cff.OpBlueValues: {{Val: -15}, {Val: 0}, {Val: 480}, {Val: 495}},
		cff.OpOtherBlues: {{Val: -260}, {Val: -250}},
		cff.OpBlueScale:  {{Val: 0.05}},
		cff.OpStdVW:      {{Val: 80}},
		cff.OpStemSnapV:  {{Val: 160}, {Val: 180}},
	}

	dst := regular.Clone()
	warnings, err := blendDict(dst, []cff.Dict{regular, bold}, []int{0, 1}, model, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	want := cff.Dict{
		// identical in both masters
		cff.OpBlueValues: {{Val: -15}, {Val: 0}, {Val: 480}, {Val: 495}},
		// the second entry only moves with the first one
		cff.OpOtherBlues: {
			{Val: -250, Deltas: []float64{-10}},
			{Val: -240, Deltas: []float64{0}},
		},
		cff.OpBlueScale: {{Val: 0.04, Deltas: []float64{0.01}}},
		cff.OpStdVW:     {{Val: 80}},
		cff.OpStemSnapV: {
			{Val: 80, Deltas: []float64{80}},
			{Val: 90, Deltas: []float64{10}},
		},
	}
	if diff := cmp.Diff(want, dst, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("wrong blended DICT (-want +got):\n%s", diff)
	}
}

func TestBlendDictLength(t *testing.T) {
	model := twoMasterModel(t)
	regular := cff.Dict{cff.OpStemSnapH: {{Val: 50}, {Val: 60}}}
	bold := cff.Dict{cff.OpStemSnapH: {{Val: 70}}}

	_, err := blendDict(regular.Clone(), []cff.Dict{regular, bold}, []int{0, 1}, model, 3)
	var lenErr *DictLengthError
	if !errors.As(err, &lenErr) {
		t.Fatalf("expected DictLengthError, got %v", err)
	}
	want := &DictLengthError{FD: 3, Field: cff.OpStemSnapH, Lengths: []int{2, 1}}
	if diff := cmp.Diff(want, lenErr); diff != "" {
		t.Errorf("wrong error (-want +got):\n%s", diff)
	}
}

func TestMissingBlendField(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "varcff")
	defer teardown()

	square := testmasters.Polygon(0, 0, 10, 0, 10, 10)
	regular := testmasters.MakeFont([]testmasters.Glyph{{Name: "a", Draw: square}},
		cff.Dict{
			cff.OpStdHW: {{Val: 40}},
			cff.OpStdVW: {{Val: 80}},
		})
	bold := testmasters.MakeFont([]testmasters.Glyph{{Name: "a", Draw: square}},
		cff.Dict{
			cff.OpStdHW: {{Val: 60}},
		})

	res, err := Merge([]*cff.Font{regular, bold}, twoMasterModel(t), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := []error{&MissingBlendFieldError{FD: 0, Master: 1, Field: cff.OpStdVW}}
	if diff := cmp.Diff(want, res.Warnings); diff != "" {
		t.Errorf("wrong warnings (-want +got):\n%s", diff)
	}
	got := res.Font.FDArray[0].Private.Dict
	wantDict := cff.Dict{cff.OpStdHW: {{Val: 40, Deltas: []float64{20}}}}
	if diff := cmp.Diff(wantDict, got); diff != "" {
		t.Errorf("wrong private DICT (-want +got):\n%s", diff)
	}
}

func TestUnresolvedFD(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "varcff")
	defer teardown()

	square := testmasters.Polygon(0, 0, 10, 0, 10, 10)
	wide := testmasters.Polygon(0, 0, 20, 0, 20, 10)
	regular := testmasters.MakeCIDFont([]testmasters.Glyph{
		{Name: "a", Draw: square},
		{Name: "b", Draw: square},
	}, []int{0, 1}, []cff.Dict{
		{cff.OpStdHW: {{Val: 40}}},
		{cff.OpStdHW: {{Val: 45}}},
	})
	// glyph "b" is missing, so nothing corresponds to FD 1
	bold := testmasters.MakeCIDFont([]testmasters.Glyph{
		{Name: "a", Draw: wide},
	}, []int{0}, []cff.Dict{
		{cff.OpStdHW: {{Val: 60}}},
	})

	res, err := Merge([]*cff.Font{regular, bold}, twoMasterModel(t), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := []error{&UnresolvedFDError{FD: 1, Master: 1}}
	if diff := cmp.Diff(want, res.Warnings); diff != "" {
		t.Errorf("wrong warnings (-want +got):\n%s", diff)
	}

	fd0 := res.Font.FDArray[0].Private.Dict
	if diff := cmp.Diff(cff.Dict{cff.OpStdHW: {{Val: 40, Deltas: []float64{20}}}}, fd0); diff != "" {
		t.Errorf("FD 0: wrong private DICT (-want +got):\n%s", diff)
	}
	// FD 1 falls back to its own values and does not vary
	fd1 := res.Font.FDArray[1].Private.Dict
	if diff := cmp.Diff(cff.Dict{cff.OpStdHW: {{Val: 45}}}, fd1); diff != "" {
		t.Errorf("FD 1: wrong private DICT (-want +got):\n%s", diff)
	}
}
