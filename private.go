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
	"fmt"

	"seehuhn.de/go/varcff/cff"
	"seehuhn.de/go/varcff/varmodel"
)

// blendPrivates blends the hinting parameters of all masters into the
// private DICTs of the variable font.  The masters used for a private
// DICT are the masters of the variation data record selected by the
// vsindex entry of the DICT.
func blendPrivates(acc *accumulator, varFont *cff.Font, masters []*cff.Font, fdMap FDMap) (*accumulator, []error, error) {
	var warnings []error
	seen := make(map[*cff.PrivateDict]bool)
	for fdIdx, fd := range varFont.FDArray {
		priv := fd.Private
		if priv == nil || seen[priv] {
			continue
		}
		seen[priv] = true

		vsindex := int(priv.Dict.Num(cff.OpVsindex, 0))
		if vsindex < 0 || vsindex >= len(acc.records) {
			return nil, nil, fmt.Errorf("varcff: FD %d: invalid vsindex %d", fdIdx, vsindex)
		}
		rec := acc.records[vsindex]

		orig := priv.Dict.Clone()
		dicts := []cff.Dict{orig}
		used := []int{0}
		last := orig
		for i := 1; i < len(masters); i++ {
			if !rec.present[i] {
				continue
			}
			d := regionPrivate(masters[i], fdMap, fdIdx, i)
			if d == nil {
				w := &UnresolvedFDError{FD: fdIdx, Master: i}
				tracer().Errorf("%v", w)
				warnings = append(warnings, w)
				d = last
			} else {
				last = d
			}
			dicts = append(dicts, d)
			used = append(used, i)
		}

		ww, err := blendDict(priv.Dict, dicts, used, rec.model, fdIdx)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, ww...)
	}
	return acc, warnings, nil
}

// regionPrivate returns the private DICT of master i which corresponds
// to font DICT fd of the default master, or nil if there is none.
func regionPrivate(f *cff.Font, fdMap FDMap, fd, i int) cff.Dict {
	regionFD, ok := fdMap[fd][i]
	if !ok {
		return nil
	}
	privs := f.Privates()
	if regionFD < 0 || regionFD >= len(privs) || privs[regionFD] == nil {
		return nil
	}
	return privs[regionFD].Dict
}

// blendDict stores blended values for all blendable entries in dst.
// dicts[k] is the private DICT of master used[k], and sub is the
// variation model for these masters.
func blendDict(dst cff.Dict, dicts []cff.Dict, used []int, sub *varmodel.Model, fd int) ([]error, error) {
	var warnings []error

fields:
	for _, field := range cff.BlendFields {
		has := func(d cff.Dict) bool {
			v, ok := d[field.Op]
			return ok && (field.Kind == cff.Vector || len(v) > 0)
		}
		if !has(dicts[0]) {
			continue
		}
		defVals := dicts[0][field.Op]
		for k, d := range dicts[1:] {
			if !has(d) {
				w := &MissingBlendFieldError{FD: fd, Master: used[k+1], Field: field.Op}
				tracer().Errorf("%v", w)
				warnings = append(warnings, w)
				delete(dst, field.Op)
				continue fields
			}
		}

		switch field.Kind {
		case cff.Scalar:
			vals := make([]float64, len(dicts))
			for k, d := range dicts {
				vals[k] = d[field.Op][0].Val
			}
			if allEqual(vals) {
				continue
			}
			deltas := sub.Deltas(vals)
			dst[field.Op] = []cff.Operand{{Val: deltas[0], Deltas: deltas[1:]}}

		case cff.Vector:
			lengths := make([]int, len(dicts))
			for k, d := range dicts {
				lengths[k] = len(d[field.Op])
			}
			if !allEqualInt(lengths) {
				return nil, &DictLengthError{FD: fd, Field: field.Op, Lengths: lengths}
			}

			res := make([]cff.Operand, len(defVals))
			prev := make([]float64, len(dicts))
			varies := false
			for j := range res {
				rel := make([]float64, len(dicts))
				for k, d := range dicts {
					v := d[field.Op][j].Val
					rel[k] = v - prev[k]
					prev[k] = v
				}
				if !allEqual(rel) {
					varies = true
				}
				deltas := sub.Deltas(rel)
				res[j] = cff.Operand{Val: defVals[j].Val, Deltas: deltas[1:]}
			}
			if varies {
				dst[field.Op] = res
			}
		}
	}
	return warnings, nil
}

func allEqual(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

func allEqualInt(vals []int) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}
