/*
 * Copyright (c) 2023 Gilles Chehade <gilles@poolp.org>
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

package objects

import (
	"os"

	"github.com/pkg/xattr"
)

func ExtendedAttributes(pathname string) (map[string][]byte, error) {
	attrs := make(map[string][]byte)

	attributes, err := xattr.LList(pathname)
	if err != nil {
		return nil, err
	}

	for _, attr := range attributes {
		value, err := xattr.LGet(pathname, attr)
		if err != nil {
			if os.IsPermission(err) {
				continue
			}
			return nil, err
		}
		attrs[attr] = value
	}

	return attrs, nil
}

// HasExtendedAttribute reports whether the named attribute is present on
// the path; lookup failures count as absence.
func HasExtendedAttribute(pathname string, name string) bool {
	attrs, err := ExtendedAttributes(pathname)
	if err != nil {
		return false
	}
	_, ok := attrs[name]
	return ok
}
