package http

import (
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"time"

	"github.com/sderose/powerwalk/retrieval"
)

type Fetcher struct {
	client *nethttp.Client
}

func init() {
	retrieval.Register("http", NewFetcher)
	retrieval.Register("https", NewFetcher)
}

func NewFetcher() retrieval.Fetcher {
	return &Fetcher{
		client: &nethttp.Client{Timeout: 30 * time.Second},
	}
}

func (f *Fetcher) Fetch(location *url.URL) (io.ReadCloser, error) {
	resp, err := f.client.Get(location.String())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != nethttp.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %s", location, resp.Status)
	}
	return resp.Body, nil
}
