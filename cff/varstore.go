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
	"fmt"
	"slices"

	"github.com/go-text/typesetting/font/opentype/tables"
)

// VarStore is the variation store of a CFF2 font.
type VarStore struct {
	// AxisTags lists the variation axes, in 'fvar' order.
	AxisTags []tables.Tag

	Regions []Region
	Data    []VarData
}

// Region is a variation region.  It has one entry per axis,
// in the order given by VarStore.AxisTags.
type Region []RegionAxis

// RegionAxis describes the extent of a region along one axis,
// in normalized coordinates.
type RegionAxis struct {
	Start, Peak, End float64
}

// VarData selects the regions used by one value of vsindex.
type VarData struct {
	RegionIndices []int
}

// Clone returns a deep copy of the variation store.
func (vs *VarStore) Clone() *VarStore {
	if vs == nil {
		return nil
	}
	c := &VarStore{
		AxisTags: slices.Clone(vs.AxisTags),
		Regions:  make([]Region, len(vs.Regions)),
		Data:     make([]VarData, len(vs.Data)),
	}
	for i, r := range vs.Regions {
		c.Regions[i] = slices.Clone(r)
	}
	for i, d := range vs.Data {
		c.Data[i] = VarData{RegionIndices: slices.Clone(d.RegionIndices)}
	}
	return c
}

// NumRegions returns the number of regions used by the given
// variation data.
func (vs *VarStore) NumRegions(vsindex int) (int, error) {
	if vs == nil {
		return 0, invalidSince("blend without variation store")
	}
	if vsindex < 0 || vsindex >= len(vs.Data) {
		return 0, invalidSince(fmt.Sprintf("invalid vsindex %d", vsindex))
	}
	return len(vs.Data[vsindex].RegionIndices), nil
}

// Scalars returns the scalar of every region of the given variation
// data, at the given normalized coordinates.
func (vs *VarStore) Scalars(vsindex int, coords []float64) ([]float64, error) {
	if _, err := vs.NumRegions(vsindex); err != nil {
		return nil, err
	}
	idx := vs.Data[vsindex].RegionIndices
	res := make([]float64, len(idx))
	for i, r := range idx {
		if r < 0 || r >= len(vs.Regions) {
			return nil, invalidSince("region index out of range")
		}
		res[i] = vs.Regions[r].Scalar(coords)
	}
	return res, nil
}

// Scalar returns the influence of the region at the given normalized
// coordinates.
func (r Region) Scalar(coords []float64) float64 {
	scalar := 1.0
	for i, a := range r {
		var v float64
		if i < len(coords) {
			v = coords[i]
		}
		start, peak, end := a.Start, a.Peak, a.End
		if peak == 0 || v == peak {
			continue
		}
		if start > peak || peak > end || start < 0 && end > 0 {
			continue
		}
		if v <= start || end <= v {
			return 0
		}
		if v < peak {
			scalar *= (v - start) / (peak - start)
		} else {
			scalar *= (end - v) / (end - peak)
		}
	}
	return scalar
}

// ItemVarStore converts the variation store into the representation
// used by the go-text OpenType tables.  CFF2 fonts store no delta
// sets in the variation store, so the DeltaSets fields are empty.
func (vs *VarStore) ItemVarStore() tables.ItemVarStore {
	var res tables.ItemVarStore
	for _, r := range vs.Regions {
		axes := make([]tables.RegionAxisCoordinates, len(r))
		for i, a := range r {
			axes[i] = tables.RegionAxisCoordinates{
				StartCoord: tables.NewCoord(a.Start),
				PeakCoord:  tables.NewCoord(a.Peak),
				EndCoord:   tables.NewCoord(a.End),
			}
		}
		res.VariationRegionList.VariationRegions = append(
			res.VariationRegionList.VariationRegions,
			tables.VariationRegion{RegionAxes: axes})
	}
	for _, d := range vs.Data {
		idx := make([]uint16, len(d.RegionIndices))
		for i, r := range d.RegionIndices {
			idx[i] = uint16(r)
		}
		res.ItemVariationDatas = append(res.ItemVariationDatas,
			tables.ItemVariationData{RegionIndexes: idx})
	}
	return res
}
