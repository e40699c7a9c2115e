package main

import (
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/nigerian-states/internal/config"
	"github.com/sells-group/nigerian-states/internal/model"
)

var (
	loadFixturePath string
	statusLimit     int
)

var storeAnnotations = map[string]string{modeAnnotation: config.ModeStore}

var migrateCmd = &cobra.Command{
	Use:         "migrate",
	Short:       "Create or upgrade the reference tables",
	Annotations: storeAnnotations,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate")
		}
		zap.L().Info("migrations applied", zap.String("driver", cfg.Store.Driver))
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:         "load",
	Short:       "Load the zone, state and LGA fixture into the store",
	Long:        "Migrates the store, then upserts every zone, state and LGA by ID. Loading twice leaves the same rows.",
	Annotations: storeAnnotations,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ds, source, err := loadDataset(ctx, loadFixturePath)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate")
		}
		load, err := st.LoadFixture(ctx, ds, source)
		if err != nil {
			return eris.Wrap(err, "load fixture")
		}

		zap.L().Info("Completed loading data into DB",
			zap.String("load_id", load.ID),
			zap.String("source", load.Source),
			zap.Int("zones", load.Zones),
			zap.Int("states", load.States),
			zap.Int("lgas", load.LGAs),
		)
		w := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(w, load)
		}
		heading(w, "Completed loading data into DB")
		renderTable(w, []string{"Zones", "States", "LGAs", "Source"}, [][]string{{
			strconv.Itoa(load.Zones), strconv.Itoa(load.States), strconv.Itoa(load.LGAs), load.Source,
		}})
		return nil
	},
}

type statusReport struct {
	Driver string              `json:"driver"`
	Ready  bool                `json:"ready"`
	Counts model.Counts        `json:"counts"`
	Loads  []model.FixtureLoad `json:"loads"`
}

var statusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Show row counts and fixture load history",
	Annotations: storeAnnotations,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		report := statusReport{Driver: cfg.Store.Driver, Loads: []model.FixtureLoad{}}
		if report.Ready, err = st.Ready(ctx); err != nil {
			return eris.Wrap(err, "check store")
		}
		if report.Ready {
			if report.Counts, err = st.Counts(ctx); err != nil {
				return eris.Wrap(err, "count rows")
			}
			if report.Loads, err = st.ListFixtureLoads(ctx, statusLimit); err != nil {
				return eris.Wrap(err, "list fixture loads")
			}
		}

		w := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(w, report)
		}
		if !report.Ready {
			heading(w, "Store has no reference tables; run `ngstates migrate` or `ngstates load`")
			return nil
		}
		heading(w, "Reference tables ("+report.Driver+")")
		renderTable(w, []string{"Zones", "States", "LGAs"}, [][]string{{
			strconv.Itoa(report.Counts.Zones), strconv.Itoa(report.Counts.States), strconv.Itoa(report.Counts.LGAs),
		}})
		heading(w, "Fixture loads")
		rows := make([][]string, len(report.Loads))
		for i, l := range report.Loads {
			rows[i] = []string{l.LoadedAt.Format(time.RFC3339), l.Source, strconv.Itoa(l.LGAs), l.ID}
		}
		renderTable(w, []string{"Loaded At", "Source", "LGAs", "ID"}, rows)
		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadFixturePath, "fixture", "", "fixture file or http(s) URL to load (default: embedded fixture)")
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "number of fixture loads to show")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print JSON instead of tables")

	rootCmd.AddCommand(migrateCmd, loadCmd, statusCmd)
}
