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
	"fmt"

	"github.com/go-text/typesetting/font/opentype/tables"

	"seehuhn.de/go/varcff/cff"
	"seehuhn.de/go/varcff/varmodel"
)

// Result is the outcome of a successful merge.
type Result struct {
	// Font is the variable font.
	Font *cff.Font

	// FDMap describes how the font DICTs of the region masters were
	// matched to the font DICTs of the default master.
	FDMap FDMap

	// Warnings lists problems which did not prevent the merge.
	// The entries have type *MissingBlendFieldError or
	// *UnresolvedFDError.
	Warnings []error
}

// Merge builds a CFF2 variable font from the given masters.
//
// The model must have one location for every master, in the same order,
// and the first location must be the default location.  The axes give
// the axis order of the variation store; if axes is nil, the axes used
// by the model are listed in alphabetical order.
//
// The masters are not modified.  The variable font is built from a copy
// of masters[0].
func Merge(masters []*cff.Font, model *varmodel.Model, axes []tables.Tag, opt *Options) (*Result, error) {
	opt, round, err := opt.setup()
	if err != nil {
		return nil, err
	}
	err = checkMasters(masters, model)
	if err != nil {
		return nil, err
	}

	varFont := masters[0].Clone()
	err = varFont.UpgradeToCFF2()
	if err != nil {
		return nil, err
	}
	return mergeRegionFonts(varFont, masters, model, axes, opt, round)
}

// MergeRegionFonts merges the region masters masters[1:] into varFont.
// The font varFont must be a CFF2 font obtained from the default
// master masters[0], for example using [cff.Font.UpgradeToCFF2].
// The charstrings, private DICTs and variation store of varFont are
// replaced.
func MergeRegionFonts(varFont *cff.Font, masters []*cff.Font, model *varmodel.Model, axes []tables.Tag, opt *Options) (*Result, error) {
	opt, round, err := opt.setup()
	if err != nil {
		return nil, err
	}
	err = checkMasters(masters, model)
	if err != nil {
		return nil, err
	}
	if !varFont.IsCFF2() {
		return nil, &ConfigError{Err: errors.New("variable font must use the CFF2 layout")}
	}
	return mergeRegionFonts(varFont, masters, model, axes, opt, round)
}

func checkMasters(masters []*cff.Font, model *varmodel.Model) error {
	if len(masters) == 0 {
		return &ConfigError{Err: errors.New("no masters")}
	}
	if model == nil || model.NumMasters() != len(masters) {
		n := 0
		if model != nil {
			n = model.NumMasters()
		}
		return &ConfigError{
			Err: fmt.Errorf("%d masters but %d model locations", len(masters), n),
		}
	}
	if !model.Locations()[0].Equal(varmodel.Location{}) {
		return &ConfigError{Err: errors.New("first master is not at the default location")}
	}
	return nil
}

func mergeRegionFonts(varFont *cff.Font, masters []*cff.Font, model *varmodel.Model, axes []tables.Tag, opt *Options, round func(float64) float64) (*Result, error) {
	tracer().Infof("merging %d masters, %d glyphs (%s)",
		len(masters), len(varFont.CharStrings), opt)

	// The variable font takes the place of the default master.
	all := make([]*cff.Font, len(masters))
	copy(all, masters)
	all[0] = varFont

	fdMap, err := BuildFDMap(all, opt.StrictFDMap)
	if err != nil {
		return nil, err
	}

	acc := newAccumulator()
	gm := newGlyphMerger(varFont, all, model, round)
	acc, err = mergeCharStrings(acc, gm, opt.Workers)
	if err != nil {
		return nil, err
	}
	if len(acc.records) == 0 {
		present := make([]bool, len(masters))
		for i := range present {
			present[i] = true
		}
		acc.register(present, model)
	}

	acc, warnings, err := blendPrivates(acc, varFont, all, fdMap)
	if err != nil {
		return nil, err
	}

	varFont.VarStore = buildVarStore(acc, axes)
	tracer().Infof("variation store: %d regions, %d records, %d warnings",
		len(varFont.VarStore.Regions), len(varFont.VarStore.Data), len(warnings))

	return &Result{
		Font:     varFont,
		FDMap:    fdMap,
		Warnings: warnings,
	}, nil
}
