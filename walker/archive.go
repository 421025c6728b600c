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

package walker

import (
	"archive/tar"
	"io"
	"os"
	"strings"

	"github.com/sderose/powerwalk/compression"
)

func archiveMethod(pathname string) string {
	lower := strings.ToLower(pathname)
	switch {
	case strings.HasSuffix(lower, ".tar"):
		return "tar"
	case strings.HasSuffix(lower, ".tgz") || strings.HasSuffix(lower, ".tar.gz"):
		return "tgz"
	case strings.HasSuffix(lower, ".gz"):
		return "gzip"
	case strings.HasSuffix(lower, ".lz4"):
		return "lz4"
	}
	return ""
}

func (c *Config) archiveEnabled(method string) bool {
	switch method {
	case "tar", "tgz":
		return c.OpenTar
	case "gzip":
		return c.OpenGzip
	case "lz4":
		return c.OpenLz4
	}
	return false
}

// expandArchive opens the archive as a container frame. Tar members are
// pulled lazily one per engine step; single-member formats carry one
// pending leaf with the original's synthetic path convention.
func (t *Traversal) expandArchive(pathname string, dev uint64, ino uint64, method string) (*Event, error) {
	fp, err := os.Open(pathname)
	if err != nil {
		return t.state.failure(pathname, err.Error(), false)
	}

	f := &frame{Frame: Frame{Pathname: pathname, Dev: dev, Ino: ino}}
	f.closers = append(f.closers, fp)

	switch method {
	case "tar":
		f.tarReader = tar.NewReader(fp)
	case "tgz":
		gz, err := compression.NewInflateReader("gzip", fp)
		if err != nil {
			fp.Close()
			return t.state.failure(pathname, err.Error(), false)
		}
		f.closers = append(f.closers, gz)
		f.tarReader = tar.NewReader(gz)
	case "gzip":
		gz, err := compression.NewInflateReader("gzip", fp)
		if err != nil {
			fp.Close()
			return t.state.failure(pathname, err.Error(), false)
		}
		f.closers = append(f.closers, gz)
		f.single = &pendingLeaf{pathname: pathname + "[ungzipped]", handle: gz}
	case "lz4":
		rc, err := compression.NewInflateReader("lz4", fp)
		if err != nil {
			fp.Close()
			return t.state.failure(pathname, err.Error(), false)
		}
		f.closers = append(f.closers, rc)
		f.single = &pendingLeaf{pathname: pathname + "[unlz4]", handle: rc}
	}

	return t.state.openContainer(f)
}

// nextArchiveEntry advances an archive frame by one step: the next tar
// member, the single decompressed leaf, or the closing of the frame.
func (t *Traversal) nextArchiveEntry(f *frame) (*Event, error) {
	if f.single != nil {
		leaf := f.single
		f.single = nil
		return t.state.leaf(&Event{
			Pathname: leaf.pathname,
			Handle:   leaf.handle,
			Kind:     LEAF,
		})
	}

	if f.tarReader == nil {
		return t.state.closeContainer()
	}

	header, err := f.tarReader.Next()
	if err == io.EOF {
		return t.state.closeContainer()
	}
	if err != nil {
		// malformed member; the rest of the archive is unreadable
		f.tarReader = nil
		return t.state.failure(f.Pathname, err.Error(), false)
	}

	switch header.Typeflag {
	case tar.TypeDir:
		t.state.stats.Directories++
		return nil, nil
	case tar.TypeReg:
		return t.state.leaf(&Event{
			Pathname: f.Pathname + "[untarred]",
			Handle:   io.NopCloser(f.tarReader),
			Kind:     LEAF,
		})
	default:
		return t.state.ignorable(f.Pathname, "tarMember")
	}
}
