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

// Package buildinfo describes the build of the command line tools.
package buildinfo

import (
	"runtime/debug"
)

// Info identifies the module version a tool was built from.
type Info struct {
	Path     string
	Version  string // empty for development builds
	Revision string // abbreviated VCS revision, if known
	Dirty    bool
}

// Read returns the build information of the running binary.
// The boolean result is false if no information is available.
func Read() (Info, bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Info{}, false
	}
	info := Info{Path: bi.Main.Path}
	if v := bi.Main.Version; v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
			if len(info.Revision) > 8 {
				info.Revision = info.Revision[:8]
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info, true
}

// String formats the version, for example "seehuhn.de/go/varcff v0.1.0".
// The VCS revision is used for development builds.
func (info Info) String() string {
	v := info.Version
	if v == "" {
		v = info.Revision
		if v != "" && info.Dirty {
			v += "+dirty"
		}
	}
	if v == "" {
		return info.Path
	}
	return info.Path + " " + v
}

// Short returns a one-line version string for a tool, for example
// "varcff-inspect (seehuhn.de/go/varcff v0.1.0)".
func Short(toolName string) string {
	info, ok := Read()
	if !ok || info.Path == "" {
		return toolName
	}
	return toolName + " (" + info.String() + ")"
}
