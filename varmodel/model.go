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

// Package varmodel implements the OpenType variation model.
//
// A Model is constructed from the design space locations of a set of
// masters.  It assigns a support region to every master and converts
// per-master values into deltas, such that adding the deltas weighted
// by the support scalars of a location reproduces the master values at
// the master locations and interpolates in between.
package varmodel

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/go-text/typesetting/font/opentype/tables"
)

// Model is a variation model for a fixed set of master locations.
// The methods of Model are safe for concurrent use.
type Model struct {
	origLocations []Location
	axisOrder     []tables.Tag

	locations      []Location // sorted
	mapping        []int      // user order -> sorted order
	reverseMapping []int      // sorted order -> user order
	supports       []Support
	deltaWeights   []map[int]float64

	mu        sync.Mutex
	subModels map[string]*Model
}

// New constructs a variation model for masters at the given locations.
//
// One of the locations must be the default location (all coordinates
// zero), and all locations must be distinct.  The axisOrder is used to
// break ties when ordering the masters; it may be nil.
func New(locations []Location, axisOrder []tables.Tag) (*Model, error) {
	clean := make([]Location, len(locations))
	hasBase := false
	for i, loc := range locations {
		c := Location{}
		for tag, v := range loc {
			if v != 0 {
				c[tag] = v
			}
		}
		if len(c) == 0 {
			hasBase = true
		}
		for j := range i {
			if clean[j].Equal(c) {
				return nil, fmt.Errorf("varmodel: duplicate master location %s", c)
			}
		}
		clean[i] = c
	}
	if !hasBase {
		return nil, errNoBase
	}

	axisPoints := make(map[tables.Tag]map[float64]bool)
	for _, loc := range clean {
		if len(loc) != 1 {
			continue
		}
		for tag, v := range loc {
			if axisPoints[tag] == nil {
				axisPoints[tag] = map[float64]bool{0: true}
			}
			axisPoints[tag][v] = true
		}
	}

	keys := make([]sortKey, len(clean))
	for i, loc := range clean {
		keys[i] = makeSortKey(loc, axisPoints, axisOrder)
	}
	perm := make([]int, len(clean))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		return keys[a].compare(keys[b])
	})

	m := &Model{
		origLocations:  slices.Clone(locations),
		axisOrder:      slices.Clone(axisOrder),
		locations:      make([]Location, len(clean)),
		mapping:        make([]int, len(clean)),
		reverseMapping: perm,
	}
	for sortedIdx, userIdx := range perm {
		m.locations[sortedIdx] = clean[userIdx]
		m.mapping[userIdx] = sortedIdx
	}
	m.computeSupports()
	m.computeDeltaWeights()
	return m, nil
}

// NumMasters returns the number of masters in the model.
func (m *Model) NumMasters() int {
	return len(m.locations)
}

// Locations returns the master locations, in the order given to New.
func (m *Model) Locations() []Location {
	return m.origLocations
}

// Supports returns the support regions of the masters, in model order.
// The first support belongs to the default master and is empty.
// Deltas returned by Deltas are aligned with this slice.
func (m *Model) Supports() []Support {
	return m.supports
}

// SubModel returns the model restricted to the masters for which present
// is true.  The default master must be present.  Sub-models are cached,
// so repeated calls with the same pattern return the same *Model.
func (m *Model) SubModel(present []bool) (*Model, error) {
	if len(present) != len(m.origLocations) {
		return nil, fmt.Errorf("varmodel: %d presence flags for %d masters",
			len(present), len(m.origLocations))
	}
	if !slices.Contains(present, false) {
		return m, nil
	}

	key := make([]byte, len(present))
	for i, p := range present {
		if p {
			key[i] = '1'
		} else {
			key[i] = '0'
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.subModels[string(key)]; ok {
		return sub, nil
	}

	var locs []Location
	for i, p := range present {
		if p {
			locs = append(locs, m.origLocations[i])
		}
	}
	sub, err := New(locs, m.axisOrder)
	if err != nil {
		return nil, err
	}
	if m.subModels == nil {
		m.subModels = make(map[string]*Model)
	}
	m.subModels[string(key)] = sub
	return sub, nil
}

// Deltas converts per-master values, given in the order the locations
// were passed to New, into deltas aligned with Supports.
// The first delta is the value of the default master.
//
// Deltas panics if len(masterValues) differs from NumMasters.
func (m *Model) Deltas(masterValues []float64) []float64 {
	if len(masterValues) != len(m.deltaWeights) {
		panic(fmt.Sprintf("varmodel: got %d values for %d masters",
			len(masterValues), len(m.deltaWeights)))
	}
	out := make([]float64, len(m.deltaWeights))
	for i, weights := range m.deltaWeights {
		delta := masterValues[m.reverseMapping[i]]
		for _, j := range sortedKeys(weights) {
			w := weights[j]
			if w == 1 {
				delta -= out[j]
			} else {
				delta -= out[j] * w
			}
		}
		out[i] = delta
	}
	return out
}

// Scalars returns the support scalars of all masters at loc, aligned
// with Supports.
func (m *Model) Scalars(loc Location) []float64 {
	res := make([]float64, len(m.supports))
	for i, s := range m.supports {
		res[i] = SupportScalar(loc, s)
	}
	return res
}

// Interpolate computes the value at loc, given the per-master values in
// the order the locations were passed to New.
func (m *Model) Interpolate(loc Location, masterValues []float64) float64 {
	return InterpolateDeltas(m.Deltas(masterValues), m.Scalars(loc))
}

// InterpolateDeltas computes the weighted sum of deltas and scalars.
func InterpolateDeltas(deltas, scalars []float64) float64 {
	var v float64
	for i, d := range deltas {
		s := scalars[i]
		if s == 0 {
			continue
		}
		v += d * s
	}
	return v
}

func (m *Model) computeSupports() {
	minV := map[tables.Tag]float64{}
	maxV := map[tables.Tag]float64{}
	for _, loc := range m.locations {
		for tag, v := range loc {
			if cur, ok := minV[tag]; !ok || v < cur {
				minV[tag] = v
			}
			if cur, ok := maxV[tag]; !ok || v > cur {
				maxV[tag] = v
			}
		}
	}

	regions := make([]Support, len(m.locations))
	for i, loc := range m.locations {
		region := Support{}
		for tag, v := range loc {
			if v > 0 {
				region[tag] = Triple{0, v, maxV[tag]}
			} else {
				region[tag] = Triple{minV[tag], v, 0}
			}
		}
		regions[i] = region
	}

	for i, region := range regions {
	prevLoop:
		for _, prev := range regions[:i] {
			for tag := range prev {
				if _, ok := region[tag]; !ok {
					continue prevLoop
				}
			}
			for tag, t := range region {
				p, ok := prev[tag]
				if !ok || !(p.Peak == t.Peak || t.Lower < p.Peak && p.Peak < t.Upper) {
					continue prevLoop
				}
			}

			// Split the box in the direction with the largest range ratio.
			bestAxes := map[tables.Tag]Triple{}
			bestRatio := -1.0
			for _, tag := range sortedTags(prev) {
				val := prev[tag].Peak
				t := region[tag]
				newLower, newUpper := t.Lower, t.Upper
				var ratio float64
				switch {
				case val < t.Peak:
					newLower = val
					ratio = (val - t.Peak) / (t.Lower - t.Peak)
				case t.Peak < val:
					newUpper = val
					ratio = (val - t.Peak) / (t.Upper - t.Peak)
				default:
					continue
				}
				if ratio > bestRatio {
					bestAxes = map[tables.Tag]Triple{}
					bestRatio = ratio
				}
				if ratio == bestRatio {
					bestAxes[tag] = Triple{newLower, t.Peak, newUpper}
				}
			}
			for tag, t := range bestAxes {
				region[tag] = t
			}
		}
	}
	m.supports = regions
}

func (m *Model) computeDeltaWeights() {
	m.deltaWeights = make([]map[int]float64, len(m.locations))
	for i, loc := range m.locations {
		w := map[int]float64{}
		for j := range i {
			if s := SupportScalar(loc, m.supports[j]); s != 0 {
				w[j] = s
			}
		}
		m.deltaWeights[i] = w
	}
}

// sortKey orders master locations: by increasing number of axes, then
// by decreasing number of axes where the location is also an on-axis
// master point, then by axis order, sign and magnitude.
type sortKey struct {
	rank       int
	onPoint    int
	axisIdx    []int
	axes       []tables.Tag
	signs      []int
	magnitudes []float64
}

func makeSortKey(loc Location, axisPoints map[tables.Tag]map[float64]bool, axisOrder []tables.Tag) sortKey {
	k := sortKey{rank: len(loc)}
	for tag, v := range loc {
		if axisPoints[tag][v] {
			k.onPoint--
		}
	}
	for _, tag := range axisOrder {
		if _, ok := loc[tag]; ok {
			k.axes = append(k.axes, tag)
		}
	}
	for _, tag := range sortedTags(loc) {
		if !slices.Contains(axisOrder, tag) {
			k.axes = append(k.axes, tag)
		}
	}
	for _, tag := range k.axes {
		idx := slices.Index(axisOrder, tag)
		if idx < 0 {
			idx = 0x10000
		}
		k.axisIdx = append(k.axisIdx, idx)
		v := loc[tag]
		switch {
		case v < 0:
			k.signs = append(k.signs, -1)
			k.magnitudes = append(k.magnitudes, -v)
		default:
			k.signs = append(k.signs, 1)
			k.magnitudes = append(k.magnitudes, v)
		}
	}
	return k
}

func (k sortKey) compare(o sortKey) int {
	if c := compareInt(k.rank, o.rank); c != 0 {
		return c
	}
	if c := compareInt(k.onPoint, o.onPoint); c != 0 {
		return c
	}
	if c := slices.Compare(k.axisIdx, o.axisIdx); c != 0 {
		return c
	}
	if c := slices.Compare(k.axes, o.axes); c != 0 {
		return c
	}
	if c := slices.Compare(k.signs, o.signs); c != 0 {
		return c
	}
	return slices.Compare(k.magnitudes, o.magnitudes)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func sortedTags[V any](m map[tables.Tag]V) []tables.Tag {
	tags := make([]tables.Tag, 0, len(m))
	for tag := range m {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

var errNoBase = errors.New("varmodel: no master at the default location")
