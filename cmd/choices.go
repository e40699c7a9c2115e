package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/nigerian-states/internal/choices"
	"github.com/sells-group/nigerian-states/internal/config"
)

var (
	choicesZones      []string
	choicesEmptyLabel string
	choicesSource     string
	choicesRender     string
	choicesLabel      string
	choicesHelpText   string
)

var choicesCmd = &cobra.Command{
	Use:   "choices <zones|states|lgas>",
	Short: "Print the select-field choices for zones, states or LGAs",
	Long: "Builds the form field choices the same way the library does: the field's --zone values, " +
		"else geo.default_zones from config, else all six zones. --source store reads the database " +
		"and yields only the blank choice until the fixture is loaded.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		kind, err := choices.ParseKind(args[0])
		if err != nil {
			return err
		}
		if err := validateZones(choicesZones); err != nil {
			return err
		}

		var src choices.Source
		switch choicesSource {
		case "memory":
			dir, err := initDirectory()
			if err != nil {
				return err
			}
			src = dir
		case "store":
			if err := cfg.Validate(config.ModeStore); err != nil {
				return eris.Wrap(err, "invalid config")
			}
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			src = st
		default:
			return eris.Errorf("unknown --source %q (want memory or store)", choicesSource)
		}

		field, err := choices.New(ctx, kind, src, choiceSettings(), choices.Options{
			Label:      choicesLabel,
			HelpText:   choicesHelpText,
			Zones:      choicesZones,
			EmptyLabel: choicesEmptyLabel,
		})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if choicesRender != "" {
			html, err := field.Render(choicesRender, "")
			if err != nil {
				return err
			}
			fmt.Fprintln(w, html)
			return nil
		}
		if outputJSON {
			return printJSON(w, field.Choices())
		}
		rows := make([][]string, 0, len(field.Choices()))
		for _, c := range field.Choices() {
			rows = append(rows, []string{c.Value, c.Label})
		}
		heading(w, fmt.Sprintf("%s choices (%d)", kind, len(rows)))
		renderTable(w, []string{"Value", "Label"}, rows)
		return nil
	},
}

func init() {
	choicesCmd.Flags().StringSliceVar(&choicesZones, "zone", nil, "limit to zones (repeatable)")
	choicesCmd.Flags().StringVar(&choicesEmptyLabel, "empty-label", "", "label of the blank choice")
	choicesCmd.Flags().StringVar(&choicesSource, "source", "memory", "where to read choices: memory or store")
	choicesCmd.Flags().StringVar(&choicesRender, "html", "", "render a <select> with this field name instead of a table")
	choicesCmd.Flags().StringVar(&choicesLabel, "label", "", "<label> text drawn before the --html select")
	choicesCmd.Flags().StringVar(&choicesHelpText, "help-text", "", "help text drawn after the --html select")
	rootCmd.AddCommand(choicesCmd)
}
