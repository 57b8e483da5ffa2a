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
	"testing"

	"seehuhn.de/go/sfnt/glyph"
)

func FuzzFDSelect(f *testing.F) {
	const nGlyphs = 100
	fds := []FDSelectFn{
		func(gid glyph.ID) int { return 0 },
		func(gid glyph.ID) int { return int(gid) / 60 },
		func(gid glyph.ID) int { return int(gid) / 4 },
		func(gid glyph.ID) int { return int(gid) / 10 },
		func(gid glyph.ID) int { return int(gid/5) % 5 },
	}
	for _, fd := range fds {
		f.Add(fd.encode(nGlyphs))
	}
	f.Fuzz(func(t *testing.T, in []byte) {
		fdSelect, err := decodeFDSelect(in, nGlyphs, 10)
		if err != nil {
			return
		}

		in2 := fdSelect.encode(nGlyphs)
		if len(in2) > len(in) {
			t.Error("inefficient encoding")
		}

		fdSelect2, err := decodeFDSelect(in2, nGlyphs, 25)
		if err != nil {
			t.Fatal(err)
		}

		for i := glyph.ID(0); i < nGlyphs; i++ {
			if fdSelect(i) != fdSelect2(i) {
				t.Errorf("%d: %d != %d", i, fdSelect(i), fdSelect2(i))
			}
		}
	})
}

func TestFDSelectFormats(t *testing.T) {
	const nGlyphs = 1000
	fds := make([]int, nGlyphs)
	for i := range fds {
		fds[i] = i / 300
	}
	buf := FDSelectFromSlice(fds).encode(nGlyphs)
	if buf[0] != 3 {
		t.Errorf("expected format 3, got %d", buf[0])
	}
	if len(buf) != 3+4*3+2 {
		t.Errorf("wrong length %d", len(buf))
	}

	for i := range fds {
		fds[i] = i % 3
	}
	buf = FDSelectFromSlice(fds).encode(nGlyphs)
	if buf[0] != 0 || len(buf) != nGlyphs+1 {
		t.Errorf("expected format 0, got %d (%d bytes)", buf[0], len(buf))
	}
	sel, err := decodeFDSelect(buf, nGlyphs, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range fds {
		if got := sel(glyph.ID(i)); got != fds[i] {
			t.Errorf("%d: got %d, want %d", i, got, fds[i])
		}
	}
}
