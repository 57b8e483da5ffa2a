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
	"strings"
	"sync"

	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/varcff/cff"
	"seehuhn.de/go/varcff/varmodel"
)

// accumulator collects the support regions and the variation data
// records while the glyphs of the font are merged.
type accumulator struct {
	supports     []varmodel.Support
	supportIndex map[string]int

	records     []*varRecord
	recordIndex map[string]int
}

// varRecord is one variation data record.  All glyphs which occur in the
// same set of masters share a record.
type varRecord struct {
	present []bool // one entry per master
	model   *varmodel.Model
	regions []int // indices into accumulator.supports
}

func newAccumulator() *accumulator {
	return &accumulator{
		supportIndex: make(map[string]int),
		recordIndex:  make(map[string]int),
	}
}

// register returns the vsindex of the record for the given set of
// masters.  A new record is created, and its support regions are added
// to the list of regions, if the set has not been seen before.
func (acc *accumulator) register(present []bool, sub *varmodel.Model) int {
	key := presenceKey(present)
	if idx, ok := acc.recordIndex[key]; ok {
		return idx
	}

	supports := sub.Supports()
	rec := &varRecord{
		present: present,
		model:   sub,
		regions: make([]int, 0, len(supports)-1),
	}
	for _, s := range supports[1:] {
		sKey := s.Key()
		r, ok := acc.supportIndex[sKey]
		if !ok {
			r = len(acc.supports)
			acc.supports = append(acc.supports, s)
			acc.supportIndex[sKey] = r
		}
		rec.regions = append(rec.regions, r)
	}

	idx := len(acc.records)
	acc.records = append(acc.records, rec)
	acc.recordIndex[key] = idx
	tracer().Debugf("vsindex %d: masters %s, regions %v", idx, key, rec.regions)
	return idx
}

func presenceKey(present []bool) string {
	b := &strings.Builder{}
	for _, p := range present {
		if p {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// glyphMerger merges the outlines of individual glyphs.
type glyphMerger struct {
	varFont *cff.Font
	masters []*cff.Font
	index   []map[string]glyph.ID // glyph index of each region master
	model   *varmodel.Model
	round   func(float64) float64
}

func newGlyphMerger(varFont *cff.Font, masters []*cff.Font, model *varmodel.Model, round func(float64) float64) *glyphMerger {
	gm := &glyphMerger{
		varFont: varFont,
		masters: masters,
		index:   make([]map[string]glyph.ID, len(masters)),
		model:   model,
		round:   round,
	}
	for i := 1; i < len(masters); i++ {
		gm.index[i] = masters[i].GlyphIndex()
	}
	return gm
}

// glyphResult is the outcome of merging one glyph.
type glyphResult struct {
	prog    cff.Program
	present []bool
	sub     *varmodel.Model

	// merged is false for glyphs which only occur in the default master.
	// These glyphs keep their existing charstring.
	merged bool

	// hasMove is true if the outline starts with a move command.
	hasMove bool

	err error
}

func (gm *glyphMerger) mergeGlyph(gid glyph.ID) *glyphResult {
	name := gm.varFont.GlyphOrder[gid]

	present := make([]bool, len(gm.masters))
	present[0] = true
	count := 1
	for i := 1; i < len(gm.masters); i++ {
		if _, ok := gm.index[i][name]; ok {
			present[i] = true
			count++
		}
	}
	if count == 1 {
		return &glyphResult{}
	}

	sub, err := gm.model.SubModel(present)
	if err != nil {
		return &glyphResult{err: err}
	}

	pen := &mergePen{glyph: name, round: gm.round}
	pen.restart(0, 0)
	err = gm.varFont.DrawGlyph(gid, pen)
	if err == nil {
		err = pen.done()
	}
	if err != nil {
		return &glyphResult{err: err}
	}
	k := 0
	for i := 1; i < len(gm.masters); i++ {
		if !present[i] {
			continue
		}
		k++
		pen.restart(k, i)
		err = gm.masters[i].DrawGlyph(gm.index[i][name], pen)
		if err == nil {
			err = pen.done()
		}
		if err != nil {
			return &glyphResult{err: err}
		}
	}

	prog, err := pen.finalize(sub, gm.round)
	if err != nil {
		return &glyphResult{err: err}
	}
	return &glyphResult{
		prog:    prog,
		present: present,
		sub:     sub,
		merged:  true,
		hasMove: pen.startsWithMove(),
	}
}

// mergeCharStrings replaces every charstring of the variable font by the
// merged charstring of the corresponding glyph.  Variation data records
// are assigned in glyph order, independent of the number of workers.
func mergeCharStrings(acc *accumulator, gm *glyphMerger, workers int) (*accumulator, error) {
	numGlyphs := len(gm.varFont.CharStrings)

	if workers < 2 {
		for gid := range numGlyphs {
			err := acc.store(gm.varFont, glyph.ID(gid), gm.mergeGlyph(glyph.ID(gid)))
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	}

	results := make([]*glyphResult, numGlyphs)
	jobs := make(chan glyph.ID)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for gid := range jobs {
				results[gid] = gm.mergeGlyph(gid)
			}
		}()
	}
	for gid := range numGlyphs {
		jobs <- glyph.ID(gid)
	}
	close(jobs)
	wg.Wait()

	for gid, r := range results {
		err := acc.store(gm.varFont, glyph.ID(gid), r)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// store installs the merged charstring of a glyph in the variable font.
func (acc *accumulator) store(varFont *cff.Font, gid glyph.ID, r *glyphResult) error {
	if r.err != nil {
		return r.err
	}
	if !r.merged {
		return nil
	}

	prog := r.prog
	if prog == nil {
		prog = cff.Program{}
	}
	if r.hasMove && prog.HasBlend() {
		idx := acc.register(r.present, r.sub)
		if idx != 0 {
			prefix := cff.Program{cff.Num(float64(idx)), {Op: cff.T2VSIndex}}
			prog = append(prefix, prog...)
		}
	}
	varFont.CharStrings[gid] = prog
	tracer().Debugf("glyph %d %q: %d tokens", gid, varFont.GlyphOrder[gid], len(prog))
	return nil
}
