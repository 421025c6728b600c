/*
 * Copyright (c) 2021 Gilles Chehade <gilles@poolp.org>
 *
 * Permission to use, copy, modify, and distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"

	_ "github.com/sderose/powerwalk/classifier/backend/file"
	_ "github.com/sderose/powerwalk/classifier/backend/mime"
	"github.com/sderose/powerwalk/logging"
	_ "github.com/sderose/powerwalk/retrieval/ftp"
	_ "github.com/sderose/powerwalk/retrieval/http"
	"github.com/sderose/powerwalk/walker"
)

type repeatableFlag []string

func (r *repeatableFlag) String() string {
	return strings.Join(*r, ",")
}

func (r *repeatableFlag) Set(value string) error {
	*r = append(*r, value)
	return nil
}

func parseDisposition(value string) (walker.LinkDisposition, error) {
	switch value {
	case "ignore":
		return walker.LinkIgnore, nil
	case "return":
		return walker.LinkReturn, nil
	case "follow":
		return walker.LinkFollow, nil
	}
	return 0, fmt.Errorf("unknown link disposition %q", value)
}

func parseGrouping(value string) (walker.DirGrouping, error) {
	switch value {
	case "mixed":
		return walker.GroupMixed, nil
	case "dirs-first":
		return walker.GroupDirsFirst, nil
	case "files-first":
		return walker.GroupFilesFirst, nil
	}
	return 0, fmt.Errorf("unknown grouping %q", value)
}

func main() {
	var opt_exclude repeatableFlag

	opt_recursive := flag.Bool("recursive", false, "descend into subdirectories")
	opt_hidden := flag.Bool("hidden", false, "include dot files and dot directories")
	opt_backups := flag.Bool("backups", false, "include backup and editor droppings")
	opt_containers := flag.Bool("containers", false, "report directory open and close events")
	opt_ignorables := flag.Bool("ignorables", false, "report skipped items with their reason")
	opt_errors := flag.Bool("errors", false, "report unreadable and missing items")
	opt_symlinks := flag.String("symlinks", "ignore", "symbolic links: ignore, return or follow")
	opt_weblinks := flag.String("weblinks", "ignore", "weblink pointer files: ignore, return or follow")
	opt_opentar := flag.Bool("open-tar", false, "expand tar and tgz archives into their members")
	opt_opengzip := flag.Bool("open-gzip", false, "expand gzip files into their content")
	opt_openlz4 := flag.Bool("open-lz4", false, "expand lz4 files into their content")
	opt_sort := flag.String("sort", "", "sort children: name, iname, atime, mtime, ctime, size, extension")
	opt_reverse := flag.Bool("reverse", false, "reverse the sort order")
	opt_grouping := flag.String("grouping", "mixed", "group children: mixed, dirs-first, files-first")
	opt_sample := flag.Float64("sample", 100, "percentage of eligible files to keep")
	opt_maxfiles := flag.Uint64("max-files", 0, "stop after this many files (0 for no limit)")
	opt_mindepth := flag.Int("min-depth", 0, "only return files at least this deep")
	opt_maxdepth := flag.Int("max-depth", 0, "do not descend below this depth (0 for no limit)")
	opt_minsize := flag.Int64("min-size", 0, "only return files at least this large")
	opt_maxsize := flag.Int64("max-size", 0, "only return files at most this large (0 for no limit)")
	opt_includeext := flag.String("include-ext", "", "only return files whose extension matches this regex")
	opt_excludeext := flag.String("exclude-ext", "", "skip files whose extension matches this regex")
	opt_includename := flag.String("include-name", "", "only return files whose name matches this regex")
	opt_excludename := flag.String("exclude-name", "", "skip files whose name matches this regex")
	opt_includepath := flag.String("include-path", "", "only return files whose path matches this regex")
	opt_excludepath := flag.String("exclude-path", "", "skip files whose path matches this regex")
	opt_includekind := flag.String("include-kind", "", "only return files whose detected kind matches this regex")
	opt_excludekind := flag.String("exclude-kind", "", "skip files whose detected kind matches this regex")
	opt_includedir := flag.String("include-dir", "", "only descend into directories whose name matches this regex")
	opt_excludedir := flag.String("exclude-dir", "", "do not descend into directories whose name matches this regex")
	opt_types := flag.String("type", "", "only return items of these type letters (bcdflpsDPw)")
	opt_perm := flag.String("perm", "", "only return items matching this permission expression")
	opt_xattr := flag.String("xattr", "", "only return items carrying this extended attribute")
	opt_classifier := flag.String("classifier", "mime", "kind detection backend: mime or file")
	opt_absolute := flag.Bool("absolute", false, "report absolute paths")
	opt_stats := flag.Bool("stats", false, "print traversal statistics when done")
	opt_quiet := flag.Bool("quiet", false, "suppress per-item output")
	opt_verbose := flag.Bool("verbose", false, "enable engine tracing")
	flag.Var(&opt_exclude, "exclude", "skip items matching this glob (may be repeated)")
	flag.Parse()

	if *opt_verbose {
		logging.Default().EnableTrace("walker")
	}

	globs := make([]glob.Glob, 0, len(opt_exclude))
	for _, pattern := range opt_exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: bad glob %q: %s\n", flag.CommandLine.Name(), pattern, err)
			os.Exit(1)
		}
		globs = append(globs, g)
	}

	cfg := walker.NewConfig()
	cfg.Recursive = *opt_recursive
	cfg.Hidden = *opt_hidden
	cfg.Backups = *opt_backups
	cfg.Containers = *opt_containers
	cfg.Ignorables = *opt_ignorables
	cfg.Errors = *opt_errors
	cfg.OpenTar = *opt_opentar
	cfg.OpenGzip = *opt_opengzip
	cfg.OpenLz4 = *opt_openlz4
	cfg.Sort = *opt_sort
	cfg.Reverse = *opt_reverse
	cfg.SamplePercentage = *opt_sample
	cfg.MaxLeaves = *opt_maxfiles
	cfg.MinDepth = *opt_mindepth
	cfg.MaxDepth = *opt_maxdepth
	cfg.MinSize = *opt_minsize
	cfg.MaxSize = *opt_maxsize
	cfg.IncludeExtensions = *opt_includeext
	cfg.ExcludeExtensions = *opt_excludeext
	cfg.IncludeNames = *opt_includename
	cfg.ExcludeNames = *opt_excludename
	cfg.IncludePaths = *opt_includepath
	cfg.ExcludePaths = *opt_excludepath
	cfg.IncludeKinds = *opt_includekind
	cfg.ExcludeKinds = *opt_excludekind
	cfg.IncludeDirs = *opt_includedir
	cfg.ExcludeDirs = *opt_excludedir
	cfg.Types = *opt_types
	cfg.Permissions = *opt_perm
	cfg.RequireXattr = *opt_xattr
	cfg.Classifier = *opt_classifier
	cfg.AbsolutePaths = *opt_absolute

	var err error
	if cfg.OnSymlink, err = parseDisposition(*opt_symlinks); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", flag.CommandLine.Name(), err)
		os.Exit(1)
	}
	if cfg.OnWeblink, err = parseDisposition(*opt_weblinks); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", flag.CommandLine.Name(), err)
		os.Exit(1)
	}
	if cfg.DirGrouping, err = parseGrouping(*opt_grouping); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", flag.CommandLine.Name(), err)
		os.Exit(1)
	}

	w, err := walker.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", flag.CommandLine.Name(), err)
		os.Exit(1)
	}
	defer w.Close()

	tr, err := w.Walk(flag.Args()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", flag.CommandLine.Name(), err)
		os.Exit(1)
	}

	exitcode := 0
	depth := 0
	excluded := uint64(0)
	for {
		ev, err := tr.Next()
		if err != nil {
			if errors.Is(err, walker.ErrDone) {
				break
			}
			fmt.Fprintf(os.Stderr, "%s: %s\n", flag.CommandLine.Name(), err)
			exitcode = 1
			continue
		}

		skip := false
		for _, g := range globs {
			if g.Match(ev.Pathname) || g.Match(filepath.Base(ev.Pathname)) {
				skip = true
				break
			}
		}
		if skip {
			excluded++
			if ev.Kind == walker.OPEN {
				depth++
			} else if ev.Kind == walker.CLOSE {
				depth--
			}
			continue
		}

		switch ev.Kind {
		case walker.OPEN:
			if !*opt_quiet {
				fmt.Fprintf(os.Stdout, "%s%s/\n", strings.Repeat("  ", depth), ev.Pathname)
			}
			depth++
		case walker.CLOSE:
			depth--
		case walker.LEAF:
			if !*opt_quiet {
				fmt.Fprintf(os.Stdout, "%s%s\n", strings.Repeat("  ", depth), ev.Pathname)
			}
		case walker.IGNORE:
			if !*opt_quiet {
				fmt.Fprintf(os.Stdout, "%s%s (ignored: %s)\n", strings.Repeat("  ", depth), ev.Pathname, ev.Reason)
			}
		case walker.ERROR, walker.MISSING:
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", flag.CommandLine.Name(), ev.Pathname, ev.Message)
			exitcode = 1
		}
	}

	if *opt_stats {
		stats := tr.Statistics()
		fmt.Fprintf(os.Stderr, "nodes examined: %d\n", stats.NodesExamined)
		fmt.Fprintf(os.Stderr, "directories: %d\n", stats.Directories)
		fmt.Fprintf(os.Stderr, "containers opened: %d\n", stats.ContainersOpened)
		fmt.Fprintf(os.Stderr, "leaves returned: %d (%s)\n", stats.LeavesReturned, humanize.Bytes(stats.LeafBytes))
		fmt.Fprintf(os.Stderr, "errors: %d\n", stats.Errors)
		fmt.Fprintf(os.Stderr, "max depth: %d\n", stats.MaxDepthSeen)
		fmt.Fprintf(os.Stderr, "elapsed: %s\n", stats.Duration)
		if excluded > 0 {
			fmt.Fprintf(os.Stderr, "excluded by glob: %d\n", excluded)
		}

		reasons := make([]string, 0, len(stats.IgnoredByReason))
		for reason := range stats.IgnoredByReason {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(os.Stderr, "ignored (%s): %d\n", reason, stats.IgnoredByReason[reason])
		}
	}

	os.Exit(exitcode)
}
