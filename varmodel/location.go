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

package varmodel

import (
	"slices"
	"strconv"
	"strings"

	"github.com/go-text/typesetting/font/opentype/tables"
)

// Location is a point in the normalized design space.
// Axes which are not listed are at their default position 0.
type Location map[tables.Tag]float64

// Axes returns the axes of the location with a non-zero coordinate,
// sorted by tag.
func (loc Location) Axes() []tables.Tag {
	axes := make([]tables.Tag, 0, len(loc))
	for tag, v := range loc {
		if v != 0 {
			axes = append(axes, tag)
		}
	}
	slices.Sort(axes)
	return axes
}

// Equal reports whether two locations describe the same point.
func (loc Location) Equal(other Location) bool {
	for tag, v := range loc {
		if other[tag] != v {
			return false
		}
	}
	for tag, v := range other {
		if loc[tag] != v {
			return false
		}
	}
	return true
}

func (loc Location) String() string {
	b := &strings.Builder{}
	b.WriteByte('{')
	for i, tag := range loc.Axes() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tag.String())
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(loc[tag], 'g', -1, 64))
	}
	b.WriteByte('}')
	return b.String()
}

// Triple gives the lower bound, the peak and the upper bound of a
// support region along one axis.
type Triple struct {
	Lower, Peak, Upper float64
}

// Support describes the region of design space where a master
// contributes.  Axes which are not listed do not restrict the region.
type Support map[tables.Tag]Triple

// Key returns a canonical string representation of the support.
// Two supports have the same key if and only if they are equal.
func (s Support) Key() string {
	axes := make([]tables.Tag, 0, len(s))
	for tag := range s {
		axes = append(axes, tag)
	}
	slices.Sort(axes)

	b := &strings.Builder{}
	for i, tag := range axes {
		if i > 0 {
			b.WriteByte(',')
		}
		t := s[tag]
		b.WriteString(tag.String())
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(t.Lower, 'g', -1, 64))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(t.Peak, 'g', -1, 64))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(t.Upper, 'g', -1, 64))
	}
	return b.String()
}

// SupportScalar returns the influence of a support region at the given
// location.  The result is in the range [0, 1].
//
// Axes where the peak is 0, where the triple is not ordered, or where the
// region crosses the origin are ignored, as required by OpenType.
func SupportScalar(loc Location, s Support) float64 {
	scalar := 1.0
	for tag, t := range s {
		lower, peak, upper := t.Lower, t.Peak, t.Upper
		if peak == 0 {
			continue
		}
		if lower > peak || peak > upper {
			continue
		}
		if lower < 0 && upper > 0 {
			continue
		}
		v := loc[tag]
		if v == peak {
			continue
		}
		if v <= lower || upper <= v {
			return 0
		}
		if v < peak {
			scalar *= (v - lower) / (peak - lower)
		} else {
			scalar *= (v - upper) / (peak - upper)
		}
	}
	return scalar
}
