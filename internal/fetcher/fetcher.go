// Package fetcher downloads fixture files over HTTP.
package fetcher

import (
	"context"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/nigerian-states/internal/fixture"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// maxFixtureBytes caps a downloaded fixture. The embedded one is ~80KB.
const maxFixtureBytes = 16 << 20

// IsURL reports whether s names an http or https resource.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fixture downloads and parses a fixture file.
func Fixture(ctx context.Context, f Fetcher, url string) (*fixture.Dataset, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(body, maxFixtureBytes+1))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read %s", url)
	}
	if len(data) > maxFixtureBytes {
		return nil, eris.Errorf("fetcher: %s exceeds %d bytes", url, maxFixtureBytes)
	}
	ds, err := fixture.Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse %s", url)
	}
	return ds, nil
}
