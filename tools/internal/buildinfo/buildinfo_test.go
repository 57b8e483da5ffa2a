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

package buildinfo

import "testing"

func TestInfoString(t *testing.T) {
	cases := []struct {
		info Info
		want string
	}{
		{Info{Path: "seehuhn.de/go/varcff", Version: "v0.1.0", Revision: "0123abcd"}, "seehuhn.de/go/varcff v0.1.0"},
		{Info{Path: "seehuhn.de/go/varcff", Revision: "0123abcd"}, "seehuhn.de/go/varcff 0123abcd"},
		{Info{Path: "seehuhn.de/go/varcff", Revision: "0123abcd", Dirty: true}, "seehuhn.de/go/varcff 0123abcd+dirty"},
		{Info{Path: "seehuhn.de/go/varcff", Dirty: true}, "seehuhn.de/go/varcff"},
	}
	for _, test := range cases {
		if got := test.info.String(); got != test.want {
			t.Errorf("got %q, want %q", got, test.want)
		}
	}
}
