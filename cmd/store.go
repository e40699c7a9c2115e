package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/nigerian-states/internal/choices"
	"github.com/sells-group/nigerian-states/internal/fetcher"
	"github.com/sells-group/nigerian-states/internal/fixture"
	"github.com/sells-group/nigerian-states/internal/geo"
	"github.com/sells-group/nigerian-states/internal/resilience"
	"github.com/sells-group/nigerian-states/internal/store"
)

// initStore opens the configured store and pings it, retrying transient
// connection failures.
func initStore(ctx context.Context) (store.Store, error) {
	retry := resilience.FromAttempts(cfg.Retry.MaxAttempts)
	retry.OnRetry = resilience.RetryLogger("store", "connect")

	return resilience.DoVal(ctx, retry, func(ctx context.Context) (store.Store, error) {
		st, err := openStore(ctx)
		if err != nil {
			return nil, err
		}
		if err := st.Ping(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "ping store")
		}
		return st, nil
	})
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{MaxConns: cfg.Store.MaxConns})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initDirectory indexes the embedded fixture.
func initDirectory() (*geo.Directory, error) {
	dir, err := geo.Default()
	if err != nil {
		return nil, eris.Wrap(err, "load embedded fixture")
	}
	return dir, nil
}

// loadDataset returns the fixture at path (a file or http(s) URL), or the
// embedded one when path is empty, along with the source label recorded for
// the load.
func loadDataset(ctx context.Context, path string) (*fixture.Dataset, string, error) {
	switch {
	case path == "":
		ds, err := fixture.Default()
		return ds, fixture.EmbeddedSource, err
	case fetcher.IsURL(path):
		ds, err := fetcher.Fixture(ctx, fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			MaxRetries: cfg.Retry.MaxAttempts,
		}), path)
		if err != nil {
			return nil, "", err
		}
		return ds, path, nil
	}
	ds, err := fixture.LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	return ds, path, nil
}

func choiceSettings() choices.Settings {
	return choices.Settings{DefaultZones: cfg.Geo.DefaultZones}
}
