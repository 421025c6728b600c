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

package retrieval

import (
	"fmt"
	"io"
	"log"
	"net/url"
	"sort"
	"sync"
)

// A Fetcher resolves a weblink target to its bytes.
type Fetcher interface {
	Fetch(location *url.URL) (io.ReadCloser, error)
}

var muFetchers sync.Mutex
var fetchers map[string]func() Fetcher = make(map[string]func() Fetcher)

func Register(scheme string, fetcher func() Fetcher) {
	muFetchers.Lock()
	defer muFetchers.Unlock()

	if _, ok := fetchers[scheme]; ok {
		log.Fatalf("fetcher '%s' registered twice", scheme)
	}
	fetchers[scheme] = fetcher
}

func Schemes() []string {
	muFetchers.Lock()
	defer muFetchers.Unlock()

	ret := make([]string, 0)
	for scheme := range fetchers {
		ret = append(ret, scheme)
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i] < ret[j]
	})
	return ret
}

func Fetch(location string) (io.ReadCloser, error) {
	parsed, err := url.Parse(location)
	if err != nil {
		return nil, err
	}

	muFetchers.Lock()
	fetcher, exists := fetchers[parsed.Scheme]
	muFetchers.Unlock()

	if !exists {
		return nil, fmt.Errorf("unsupported retrieval scheme %q", parsed.Scheme)
	}
	return fetcher().Fetch(parsed)
}
