package ftp

import (
	"bytes"
	"io"
	"net/url"
	"time"

	"github.com/secsy/goftp"

	"github.com/sderose/powerwalk/retrieval"
)

type Fetcher struct {
}

func init() {
	retrieval.Register("ftp", NewFetcher)
}

func NewFetcher() retrieval.Fetcher {
	return &Fetcher{}
}

func connectToFTP(location *url.URL) (*goftp.Client, error) {
	config := goftp.Config{
		Timeout: 10 * time.Second,
	}
	if location.User != nil {
		config.User = location.User.Username()
		if password, exists := location.User.Password(); exists {
			config.Password = password
		}
	}
	return goftp.DialConfig(config, location.Host)
}

func (f *Fetcher) Fetch(location *url.URL) (io.ReadCloser, error) {
	client, err := connectToFTP(location)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	buf := bytes.NewBuffer(nil)
	if err := client.Retrieve(location.Path, buf); err != nil {
		return nil, err
	}
	return io.NopCloser(buf), nil
}
