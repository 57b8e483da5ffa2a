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

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/font/opentype/tables"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"golang.org/x/term"

	"seehuhn.de/go/varcff"
	"seehuhn.de/go/varcff/cff"
	"seehuhn.de/go/varcff/sfntmaster"
	"seehuhn.de/go/varcff/tools/internal/buildinfo"
	"seehuhn.de/go/varcff/tools/internal/profile"
	"seehuhn.de/go/varcff/varmodel"
)

var (
	tolerance  = flag.Float64("tol", 0.5, "rounding tolerance for coordinates")
	workers    = flag.Int("workers", 1, "number of goroutines used for merging glyphs")
	strict     = flag.Bool("strict", false, "fail if the font DICTs of the masters cannot be matched consistently")
	glyphs     = flag.String("glyph", "", "comma-separated list of glyphs to print")
	traceLevel = flag.String("trace", "", "trace `level` (Error, Info or Debug)")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile = flag.String("memprofile", "", "write memory profile to `file`")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "varcff-inspect: merge master fonts into a CFF2 variable font\n")
		fmt.Fprintf(os.Stderr, "%s\n\n", buildinfo.Short("varcff-inspect"))
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  varcff-inspect [options] <default.ttf> <master.ttf@axis=value,...>...\n\n")
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  default.ttf   the default master\n")
		fmt.Fprintf(os.Stderr, "  master.ttf    a region master, followed by its normalized location\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  varcff-inspect Regular.otf Bold.otf@wght=1\n")
		fmt.Fprintf(os.Stderr, "  varcff-inspect -glyph A,B Regular.otf Bold.otf@wght=1 Wide.otf@wdth=1\n")
	}
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	stop, err := profile.Start(*cpuprofile, *memprofile)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, stop())
	}()

	if *traceLevel != "" {
		setupTracing(*traceLevel)
	}

	var masters []*cff.Font
	var locations []varmodel.Location
	var axes []tables.Tag
	for i, arg := range flag.Args() {
		fname, loc, err := parseMaster(arg)
		if err != nil {
			return err
		}
		if i == 0 && len(loc) > 0 {
			return fmt.Errorf("%s: the default master must be at the default location", fname)
		}
		for _, tag := range loc.Axes() {
			if !slices.Contains(axes, tag) {
				axes = append(axes, tag)
			}
		}

		data, err := os.ReadFile(fname)
		if err != nil {
			return err
		}
		f, err := sfntmaster.Load(data)
		if err != nil {
			return fmt.Errorf("%s: %w", fname, err)
		}
		masters = append(masters, f)
		locations = append(locations, loc)
	}

	model, err := varmodel.New(locations, axes)
	if err != nil {
		return err
	}
	opt := &varcff.Options{
		RoundTolerance: *tolerance,
		Workers:        *workers,
		StrictFDMap:    *strict,
	}
	res, err := varcff.Merge(masters, model, axes, opt)
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	err = printSummary(os.Stdout, res)
	if err != nil {
		return err
	}

	if *glyphs != "" {
		width := 0
		fd := int(os.Stdout.Fd())
		if term.IsTerminal(fd) {
			width, _, _ = term.GetSize(fd)
		}
		idx := res.Font.GlyphIndex()
		for _, name := range strings.Split(*glyphs, ",") {
			gid, ok := idx[name]
			if !ok {
				return fmt.Errorf("glyph %q not found", name)
			}
			fmt.Println()
			fmt.Printf("%s (glyph %d):\n", name, gid)
			printWrapped(os.Stdout, res.Font.CharStrings[gid].String(), width)
		}
	}
	return nil
}

// parseMaster splits an argument of the form "file@axis=value,...".
func parseMaster(arg string) (string, varmodel.Location, error) {
	fname, locStr, found := strings.Cut(arg, "@")
	loc := varmodel.Location{}
	if !found {
		return fname, loc, nil
	}
	for _, part := range strings.Split(locStr, ",") {
		tagStr, valStr, ok := strings.Cut(part, "=")
		if !ok || len(tagStr) != 4 {
			return "", nil, fmt.Errorf("%s: invalid location %q", fname, part)
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil || val < -1 || val > 1 {
			return "", nil, fmt.Errorf("%s: invalid coordinate %q", fname, valStr)
		}
		if val != 0 {
			loc[opentype.MustNewTag(tagStr)] = val
		}
	}
	return fname, loc, nil
}

// traceKeys lists the trace selectors of the library packages.
var traceKeys = []string{"varcff", "varcff.cff"}

func setupTracing(level string) {
	tracing.SetTraceSelector(tracing.SelectorForAdapter(gologadapter.GetAdapter()))
	l := tracing.TraceLevelFromString(level)
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(l)
	}
}

func printSummary(w io.Writer, res *varcff.Result) error {
	f := res.Font

	blended := 0
	for _, prog := range f.CharStrings {
		if prog.HasBlend() {
			blended++
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "glyphs:\t%d\n", len(f.CharStrings))
	fmt.Fprintf(tw, "glyphs with variations:\t%d\n", blended)
	fmt.Fprintf(tw, "font DICTs:\t%d\n", len(f.FDArray))
	fmt.Fprintf(tw, "regions:\t%d\n", len(f.VarStore.Regions))
	fmt.Fprintf(tw, "variation data:\t%d\n", len(f.VarStore.Data))
	fmt.Fprintf(tw, "warnings:\t%d\n", len(res.Warnings))
	err := tw.Flush()
	if err != nil {
		return err
	}

	if len(f.VarStore.Regions) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprint(tw, "region")
		for _, tag := range f.VarStore.AxisTags {
			fmt.Fprintf(tw, "\t%s", tag)
		}
		fmt.Fprintln(tw)
		for i, r := range f.VarStore.Regions {
			fmt.Fprintf(tw, "%d", i)
			for _, a := range r {
				fmt.Fprintf(tw, "\t%g:%g:%g", a.Start, a.Peak, a.End)
			}
			fmt.Fprintln(tw)
		}
		err = tw.Flush()
		if err != nil {
			return err
		}
	}

	for i, d := range f.VarStore.Data {
		fmt.Fprintf(w, "vsindex %d: regions %v\n", i, d.RegionIndices)
	}
	for i, fd := range f.FDArray {
		fmt.Fprintf(w, "FD %d private: %v\n", i, fd.Private.Dict)
	}
	return nil
}

// printWrapped prints the words of s, starting a new line before the
// given width is exceeded.  A width of zero disables wrapping.
func printWrapped(w io.Writer, s string, width int) {
	col := 0
	for _, word := range strings.Fields(s) {
		if col > 0 && width > 0 && col+1+len(word) > width {
			fmt.Fprintln(w)
			col = 0
		}
		if col > 0 {
			fmt.Fprint(w, " ")
			col++
		}
		fmt.Fprint(w, word)
		col += len(word)
	}
	fmt.Fprintln(w)
}
