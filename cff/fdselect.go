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
	"sort"

	"seehuhn.de/go/sfnt/glyph"
)

// FDSelectFn maps glyph IDs to font DICTs in Font.FDArray.
type FDSelectFn func(glyph.ID) int

// FDSelectFromSlice returns an FDSelectFn which looks up glyphs in fds.
func FDSelectFromSlice(fds []int) FDSelectFn {
	return func(gid glyph.ID) int {
		return fds[gid]
	}
}

func decodeFDSelect(buf []byte, nGlyphs, nFDs int) (FDSelectFn, error) {
	if len(buf) < 1 {
		return nil, invalidSince("FDSelect too short")
	}
	format := buf[0]
	buf = buf[1:]

	switch format {
	case 0:
		if len(buf) < nGlyphs {
			return nil, invalidSince("FDSelect too short")
		}
		fds := make([]uint8, nGlyphs)
		copy(fds, buf)
		for i := range nGlyphs {
			if int(fds[i]) >= nFDs {
				return nil, invalidSince("FDSelect out of range")
			}
		}
		return func(gid glyph.ID) int {
			return int(fds[gid])
		}, nil
	case 3:
		if len(buf) < 2 {
			return nil, invalidSince("FDSelect too short")
		}
		nRanges := int(buf[0])<<8 | int(buf[1])
		buf = buf[2:]
		if nGlyphs > 0 && nRanges == 0 {
			return nil, invalidSince("no FDSelect data found")
		}
		if len(buf) < 3*nRanges+2 {
			return nil, invalidSince("FDSelect too short")
		}

		var end []glyph.ID
		var fdIdx []uint8

		prev := 0
		for i := range nRanges {
			first := int(buf[0])<<8 | int(buf[1])
			fd := buf[2]
			buf = buf[3:]
			if i > 0 && first <= prev || i == 0 && first != 0 {
				return nil, invalidSince("FDSelect is invalid")
			} else if int(fd) >= nFDs {
				return nil, invalidSince("FDSelect out of range")
			}
			if i > 0 {
				end = append(end, glyph.ID(first))
			}
			fdIdx = append(fdIdx, fd)
			prev = first
		}
		sentinel := int(buf[0])<<8 | int(buf[1])
		if sentinel != nGlyphs {
			return nil, invalidSince("wrong FDSelect sentinel")
		}
		end = append(end, glyph.ID(nGlyphs))

		return func(gid glyph.ID) int {
			idx := sort.Search(nRanges,
				func(i int) bool { return gid < end[i] })
			return int(fdIdx[idx])
		}, nil
	default:
		return nil, notSupported(fmt.Sprintf("FDSelect format %d", format))
	}
}

func (fdSelect FDSelectFn) encode(nGlyphs int) []byte {
	format0Length := nGlyphs + 1

	buf := []byte{3, 0, 0}
	var currentFD int
	nSeg := 0
	for i := range nGlyphs {
		fd := fdSelect(glyph.ID(i))
		if i > 0 && fd == currentFD {
			continue
		}
		// new segment
		if len(buf)+3+2 >= format0Length {
			goto useFormat0
		}
		buf = append(buf, byte(i>>8), byte(i), byte(fd))
		nSeg++
		currentFD = fd
	}
	buf = append(buf, byte(nGlyphs>>8), byte(nGlyphs))
	buf[1], buf[2] = byte(nSeg>>8), byte(nSeg)
	return buf

useFormat0:
	buf = make([]byte, nGlyphs+1)
	for i := range nGlyphs {
		buf[i+1] = byte(fdSelect(glyph.ID(i)))
	}
	return buf
}
