// Package export writes the reference dataset to disk in several formats.
package export

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/nigerian-states/internal/fixture"
)

// Format is an output format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// AllFormats lists every format in output order.
func AllFormats() []Format {
	return []Format{FormatCSV, FormatXLSX, FormatYAML, FormatJSON}
}

// ParseFormats parses a comma-separated list such as "csv,xlsx". Duplicates
// are dropped; an empty list means every format.
func ParseFormats(s string) ([]Format, error) {
	if strings.TrimSpace(s) == "" {
		return AllFormats(), nil
	}
	var out []Format
	for _, part := range strings.Split(s, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(part)))
		if !slices.Contains(AllFormats(), f) {
			return nil, eris.Errorf("export: unknown format %q", part)
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

type writerFunc func(ds *fixture.Dataset, dir string) ([]string, error)

var writers = map[Format]writerFunc{
	FormatCSV:  writeCSV,
	FormatXLSX: writeXLSX,
	FormatYAML: writeYAML,
	FormatJSON: writeJSON,
}

// Write renders ds into dir once per format, concurrently. It returns the
// written file paths grouped in format order.
func Write(ctx context.Context, ds *fixture.Dataset, dir string, formats []Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "export: create %s", dir)
	}

	for _, f := range formats {
		if _, ok := writers[f]; !ok {
			return nil, eris.Errorf("export: unknown format %q", f)
		}
	}

	results := make([][]string, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(AllFormats()))

	for i, f := range formats {
		write := writers[f]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "export: context cancelled")
			}
			paths, err := write(ds, dir)
			if err != nil {
				return eris.Wrapf(err, "export: %s", f)
			}
			results[i] = paths
			zap.L().Info("exported dataset", zap.String("format", string(f)), zap.Strings("files", paths))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(results...), nil
}

// fileName joins dir and a base name.
func fileName(dir, base string) string { return filepath.Join(dir, base) }
