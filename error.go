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

	"seehuhn.de/go/varcff/cff"
)

// StructuralMismatchError indicates that a region master draws a glyph
// using a different sequence of commands than the default master.
type StructuralMismatchError struct {
	Glyph  string
	Index  int // position in the command list of the default master
	Master int // index of the region master
	Want   string
	Got    string
}

func (err *StructuralMismatchError) Error() string {
	return fmt.Sprintf("varcff: glyph %q: master %d has %s at command %d, expected %s",
		err.Glyph, err.Master, err.Got, err.Index, err.Want)
}

// ConfigError indicates invalid merge options.
type ConfigError struct {
	Err error
}

func (err *ConfigError) Error() string {
	return "varcff: invalid configuration: " + err.Err.Error()
}

func (err *ConfigError) Unwrap() error {
	return err.Err
}

// MissingBlendFieldError is reported as a warning if a blendable
// private DICT entry is present in the default master but missing in
// a region master.  The entry is removed from the merged private DICT.
type MissingBlendFieldError struct {
	FD     int
	Master int
	Field  cff.DictOp
}

func (err *MissingBlendFieldError) Error() string {
	return fmt.Sprintf("varcff: FD %d: master %d has no %s entry, entry dropped",
		err.FD, err.Master, err.Field)
}

// UnresolvedFDError is reported as a warning if no font DICT of a
// region master corresponds to a font DICT of the default master.
// The previously used private DICT is used in its place.
type UnresolvedFDError struct {
	FD     int
	Master int
}

func (err *UnresolvedFDError) Error() string {
	return fmt.Sprintf("varcff: FD %d has no counterpart in master %d",
		err.FD, err.Master)
}

// FDConflictError indicates that two glyphs of a region master map the
// same font DICT of the default master to different font DICTs.
// This is only checked if Options.StrictFDMap is set.
type FDConflictError struct {
	Glyph     string
	Master    int
	DefaultFD int
	Want, Got int
}

func (err *FDConflictError) Error() string {
	return fmt.Sprintf("varcff: glyph %q: FD %d maps to FD %d in master %d, previously FD %d",
		err.Glyph, err.DefaultFD, err.Got, err.Master, err.Want)
}

// DictLengthError indicates that a vector valued private DICT entry has
// different lengths in different masters.
type DictLengthError struct {
	FD      int
	Field   cff.DictOp
	Lengths []int // one entry per participating master
}

func (err *DictLengthError) Error() string {
	return fmt.Sprintf("varcff: FD %d: %s has different lengths %v",
		err.FD, err.Field, err.Lengths)
}
