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

	"seehuhn.de/go/varcff/internal/float"
)

// Options control the merge.  A nil *Options is equivalent to
// the default options.
type Options struct {
	// RoundTolerance controls the rounding of coordinates and deltas
	// in the merged charstrings.  Values within RoundTolerance of an
	// integer are rounded to this integer.  The default value 0.5 rounds
	// all values; zero disables rounding.
	RoundTolerance float64

	// Workers is the number of goroutines used to merge glyph outlines.
	// Values smaller than two merge all glyphs sequentially.
	Workers int

	// StrictFDMap makes the merge fail if two glyphs of a region master
	// disagree on the font DICT which corresponds to a font DICT of the
	// default master.
	StrictFDMap bool
}

var defaultOptions = &Options{
	RoundTolerance: 0.5,
	Workers:        1,
}

// setup checks the options and returns the rounding function.
func (opt *Options) setup() (*Options, func(float64) float64, error) {
	if opt == nil {
		opt = defaultOptions
	}
	round, err := float.RoundFunc(opt.RoundTolerance)
	if err != nil {
		return nil, nil, &ConfigError{Err: err}
	}
	return opt, round, nil
}

func (opt *Options) String() string {
	if opt == nil {
		opt = defaultOptions
	}
	return fmt.Sprintf("tolerance=%g workers=%d strict=%t",
		opt.RoundTolerance, opt.Workers, opt.StrictFDMap)
}
