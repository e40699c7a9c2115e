package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/nigerian-states/internal/export"
)

var (
	exportDir     string
	exportFormats string
	exportFixture string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the dataset as CSV, XLSX, YAML and fixture JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		formats, err := export.ParseFormats(exportFormats)
		if err != nil {
			return err
		}
		ds, _, err := loadDataset(cmd.Context(), exportFixture)
		if err != nil {
			return err
		}
		paths, err := export.Write(cmd.Context(), ds, exportDir, formats)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(w, paths)
		}
		rows := make([][]string, len(paths))
		for i, p := range paths {
			rows[i] = []string{p}
		}
		heading(w, "Exported files")
		renderTable(w, []string{"Path"}, rows)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "export", "output directory")
	exportCmd.Flags().StringVar(&exportFormats, "formats", "csv,xlsx,yaml,json", "comma-separated output formats")
	exportCmd.Flags().StringVar(&exportFixture, "fixture", "", "fixture file to export (default: embedded fixture)")
	rootCmd.AddCommand(exportCmd)
}
