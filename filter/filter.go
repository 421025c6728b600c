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

package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sderose/powerwalk/objects"
	"github.com/sderose/powerwalk/permission"
)

// Rejection reasons; these double as statistics counter names.
const (
	ReasonRegular              = "regular"
	ReasonType                 = "type"
	ReasonPermission           = "permission"
	ReasonMinDepth             = "minDepth"
	ReasonHidden               = "hidden"
	ReasonSize                 = "size"
	ReasonExcludedExtension    = "excludedExtension"
	ReasonNonIncludedExtension = "nonIncludedExtension"
	ReasonExcludedKind         = "excludedKind"
	ReasonNonIncludedKind      = "nonIncludedKind"
	ReasonBackup               = "backup"
	ReasonExcludedName         = "excludedName"
	ReasonNonIncludedName      = "nonIncludedName"
	ReasonExcludedPath         = "excludedPath"
	ReasonNonIncludedPath      = "nonIncludedPath"
	ReasonExcludedDirectory    = "excludedDirectory"
	ReasonNonIncludedDirectory = "nonIncludedDirectory"
	ReasonXattr                = "xattr"
	ReasonSample               = "sample"
	ReasonDirectory            = "directory"
	ReasonLink                 = "link"
	ReasonWeblink              = "weblink"
)

// Options carries the raw matching controls; Compile turns them into a
// Filter, failing on any malformed regex or permission expression.
type Options struct {
	Types       string
	Permissions string
	MinDepth    int
	Hidden      bool
	Backups     bool
	MinSize     int64
	MaxSize     int64

	ExcludeExtensions string
	IncludeExtensions string
	ExcludeKinds      string
	IncludeKinds      string
	ExcludeNames      string
	IncludeNames      string
	ExcludePaths      string
	IncludePaths      string
	ExcludeDirs       string
	IncludeDirs       string

	RequireXattr string

	// Describe resolves a path to a free-text kind description; only
	// consulted when a kind pattern is set, so cheap syntactic tests
	// always run before shelling out to a classifier.
	Describe func(pathname string) string
}

type Filter struct {
	opts        Options
	permActions []permission.Action

	excludeExtensions *regexp.Regexp
	includeExtensions *regexp.Regexp
	excludeKinds      *regexp.Regexp
	includeKinds      *regexp.Regexp
	excludeNames      *regexp.Regexp
	includeNames      *regexp.Regexp
	excludePaths      *regexp.Regexp
	includePaths      *regexp.Regexp
	excludeDirs       *regexp.Regexp
	includeDirs       *regexp.Regexp
}

func compilePattern(name string, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return re, nil
}

func Compile(opts Options) (*Filter, error) {
	f := &Filter{opts: opts}

	if !objects.ValidTypeLetters(opts.Types) {
		return nil, fmt.Errorf("invalid type letters %q", opts.Types)
	}

	if opts.Permissions != "" {
		actions, err := permission.Compile(opts.Permissions)
		if err != nil {
			return nil, err
		}
		f.permActions = actions
	}

	var err error
	if f.excludeExtensions, err = compilePattern("excludeExtensions", opts.ExcludeExtensions); err != nil {
		return nil, err
	}
	if f.includeExtensions, err = compilePattern("includeExtensions", opts.IncludeExtensions); err != nil {
		return nil, err
	}
	if f.excludeKinds, err = compilePattern("excludeKinds", opts.ExcludeKinds); err != nil {
		return nil, err
	}
	if f.includeKinds, err = compilePattern("includeKinds", opts.IncludeKinds); err != nil {
		return nil, err
	}
	if f.excludeNames, err = compilePattern("excludeNames", opts.ExcludeNames); err != nil {
		return nil, err
	}
	if f.includeNames, err = compilePattern("includeNames", opts.IncludeNames); err != nil {
		return nil, err
	}
	if f.excludePaths, err = compilePattern("excludePaths", opts.ExcludePaths); err != nil {
		return nil, err
	}
	if f.includePaths, err = compilePattern("includePaths", opts.IncludePaths); err != nil {
		return nil, err
	}
	if f.excludeDirs, err = compilePattern("excludeDirs", opts.ExcludeDirs); err != nil {
		return nil, err
	}
	if f.includeDirs, err = compilePattern("includeDirs", opts.IncludeDirs); err != nil {
		return nil, err
	}

	return f, nil
}

// File decides whether a non-directory path is eligible. Tests run in a
// fixed order so exactly one reason is attributed to a rejection: exclude
// always vetoes include for the same facet, and syntactic tests run
// before the classifier is consulted.
func (f *Filter) File(pathname string, info objects.FileInfo, depth int) (bool, string) {
	base := filepath.Base(pathname)
	ext := strings.TrimPrefix(filepath.Ext(base), ".")

	if !objects.MatchType(f.opts.Types, info.Mode()) {
		return false, ReasonType
	}
	if f.permActions != nil && !permission.Check(f.permActions, info.Mode()) {
		return false, ReasonPermission
	}
	if depth < f.opts.MinDepth {
		return false, ReasonMinDepth
	}
	if !f.opts.Hidden && strings.HasPrefix(base, ".") {
		return false, ReasonHidden
	}
	if f.opts.MinSize > 0 && info.Size() < f.opts.MinSize {
		return false, ReasonSize
	}
	if f.opts.MaxSize > 0 && info.Size() > f.opts.MaxSize {
		return false, ReasonSize
	}
	if f.excludeExtensions != nil && f.excludeExtensions.MatchString(ext) {
		return false, ReasonExcludedExtension
	}
	if f.includeExtensions != nil && !f.includeExtensions.MatchString(ext) {
		return false, ReasonNonIncludedExtension
	}
	if f.excludeKinds != nil || f.includeKinds != nil {
		description := ""
		if f.opts.Describe != nil {
			description = f.opts.Describe(pathname)
		}
		if f.excludeKinds != nil && f.excludeKinds.MatchString(description) {
			return false, ReasonExcludedKind
		}
		if f.includeKinds != nil && !f.includeKinds.MatchString(description) {
			return false, ReasonNonIncludedKind
		}
	}
	if !f.opts.Backups && IsBackup(base) {
		return false, ReasonBackup
	}
	if f.excludeNames != nil && f.excludeNames.MatchString(base) {
		return false, ReasonExcludedName
	}
	if f.includeNames != nil && !f.includeNames.MatchString(base) {
		return false, ReasonNonIncludedName
	}
	if f.excludePaths != nil && f.excludePaths.MatchString(pathname) {
		return false, ReasonExcludedPath
	}
	if f.includePaths != nil && !f.includePaths.MatchString(pathname) {
		return false, ReasonNonIncludedPath
	}
	if f.opts.RequireXattr != "" && !objects.HasExtendedAttribute(pathname, f.opts.RequireXattr) {
		return false, ReasonXattr
	}
	return true, ReasonRegular
}

// Directory applies only the type-letter, hidden-name and directory
// path tests.
func (f *Filter) Directory(pathname string, info objects.FileInfo) (bool, string) {
	base := filepath.Base(pathname)

	if !objects.MatchType(f.opts.Types, info.Mode()) {
		return false, ReasonType
	}
	if !f.opts.Hidden && strings.HasPrefix(base, ".") && base != "." && base != ".." {
		return false, ReasonHidden
	}
	if f.excludeDirs != nil && f.excludeDirs.MatchString(pathname) {
		return false, ReasonExcludedDirectory
	}
	if f.includeDirs != nil && !f.includeDirs.MatchString(pathname) {
		return false, ReasonNonIncludedDirectory
	}
	return true, ReasonRegular
}
