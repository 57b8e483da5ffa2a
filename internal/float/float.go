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

// Package float contains helpers for rounding and printing the
// numbers which appear in font programs.
package float

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Format formats x with at most the given number of digits after the
// decimal point.  Trailing zeros are removed.
func Format(x float64, precision int) string {
	out := strconv.FormatFloat(x, 'f', precision, 64)
	if m := tailRegexp.FindStringSubmatchIndex(out); m != nil {
		if m[2] > 0 {
			out = out[:m[2]]
		} else if m[4] > 0 {
			out = out[:m[4]]
		}
	}
	if strings.HasPrefix(out, "0.") {
		out = out[1:]
	} else if strings.HasPrefix(out, "-0.") {
		out = "-" + out[2:]
	}
	return out
}

// OTRound rounds x to the nearest integer, with halves rounded towards
// positive infinity.  This is the rounding used throughout OpenType.
func OTRound(x float64) float64 {
	return math.Floor(x + 0.5)
}

// RoundFunc returns a function which rounds numbers to integers whenever
// this changes the value by at most tol.
//
// If tol is 0, the returned function leaves all numbers unchanged.
// If tol is 0.5 or larger, all numbers are rounded.
func RoundFunc(tol float64) (func(float64) float64, error) {
	if tol < 0 || math.IsNaN(tol) {
		return nil, ErrNegativeTolerance
	}
	if tol == 0 {
		return noRound, nil
	}
	return func(x float64) float64 {
		r := OTRound(x)
		if tol >= 0.5 || math.Abs(r-x) <= tol {
			return r
		}
		return x
	}, nil
}

func noRound(x float64) float64 {
	return x
}

// IsInt reports whether x is an integer which can be represented
// as an int32.
func IsInt(x float64) bool {
	return x == math.Trunc(x) && x >= math.MinInt32 && x <= math.MaxInt32
}

// ErrNegativeTolerance is returned by RoundFunc for negative tolerances.
var ErrNegativeTolerance = errors.New("rounding tolerance must not be negative")

var (
	tailRegexp = regexp.MustCompile(`(?:\..*[1-9](0+)|(\.0+))$`)
)
