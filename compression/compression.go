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

package compression

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

func Methods() []string {
	return []string{"gzip", "lz4"}
}

// NewInflateReader wraps r with a streaming decompressor for the named
// method. The caller owns closing the returned reader; closing it does
// not close r.
func NewInflateReader(method string, r io.Reader) (io.ReadCloser, error) {
	if method == "gzip" {
		return NewGzipInflateReader(r)
	}
	if method == "lz4" {
		return NewLZ4InflateReader(r)
	}
	return nil, fmt.Errorf("unsupported compression method %q", method)
}

func NewGzipInflateReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func NewLZ4InflateReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}
