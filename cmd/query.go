package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/nigerian-states/internal/geo"
	"github.com/sells-group/nigerian-states/internal/model"
)

var (
	queryZones []string
	queryState string
)

func stateRows(states []model.State) [][]string {
	rows := make([][]string, len(states))
	for i, s := range states {
		rows[i] = []string{strconv.Itoa(s.ID), s.Name, s.Capital, s.Zone}
	}
	return rows
}

func lgaRows(lgas []model.LocalGovernment) [][]string {
	rows := make([][]string, len(lgas))
	for i, l := range lgas {
		rows[i] = []string{strconv.Itoa(l.ID), l.Name, l.State}
	}
	return rows
}

func printStates(w io.Writer, title string, states []model.State) error {
	if outputJSON {
		return printJSON(w, states)
	}
	heading(w, fmt.Sprintf("%s (%d)", title, len(states)))
	renderTable(w, []string{"ID", "State", "Capital", "Zone"}, stateRows(states))
	return nil
}

func printLGAs(w io.Writer, title string, lgas []model.LocalGovernment) error {
	if outputJSON {
		return printJSON(w, lgas)
	}
	heading(w, fmt.Sprintf("%s (%d)", title, len(lgas)))
	renderTable(w, []string{"ID", "LGA", "State"}, lgaRows(lgas))
	return nil
}

func validateZones(zones []string) error {
	for _, z := range zones {
		if _, err := model.ParseZone(z); err != nil {
			return err
		}
	}
	return nil
}

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List the geopolitical zones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := initDirectory()
		if err != nil {
			return err
		}
		zones := dir.Zones()
		w := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(w, zones)
		}
		rows := make([][]string, len(zones))
		for i, z := range zones {
			rows[i] = []string{
				strconv.Itoa(z.ID), z.Name,
				strconv.Itoa(dir.TotalStates(z.Name)), strconv.Itoa(dir.TotalLGAs(z.Name)),
			}
		}
		heading(w, "Geopolitical zones")
		renderTable(w, []string{"ID", "Zone", "States", "LGAs"}, rows)
		return nil
	},
}

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "List states, optionally limited to zones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateZones(queryZones); err != nil {
			return err
		}
		dir, err := initDirectory()
		if err != nil {
			return err
		}
		states, err := dir.ListStates(cmd.Context(), model.Filter{Zones: queryZones})
		if err != nil {
			return err
		}
		return printStates(cmd.OutOrStdout(), "States", states)
	},
}

var lgasCmd = &cobra.Command{
	Use:   "lgas",
	Short: "List local government areas, optionally limited to a state or zones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateZones(queryZones); err != nil {
			return err
		}
		dir, err := initDirectory()
		if err != nil {
			return err
		}
		if queryState != "" {
			if _, ok := dir.State(queryState); !ok {
				return eris.Errorf("unknown state %q", queryState)
			}
		}
		lgas, err := dir.ListLGAs(cmd.Context(), model.Filter{Zones: queryZones, State: queryState})
		if err != nil {
			return err
		}
		return printLGAs(cmd.OutOrStdout(), "Local government areas", lgas)
	},
}

// lookupState finds a state by exact name, suggesting a fuzzy match on miss.
func lookupState(dir *geo.Directory, name string) (model.State, error) {
	if s, ok := dir.State(name); ok {
		return s, nil
	}
	if s, err := dir.ResolveState(name); err == nil {
		return model.State{}, eris.Errorf("unknown state %q (did you mean %q?)", name, s.Name)
	}
	return model.State{}, eris.Errorf("unknown state %q", name)
}

var capitalCmd = &cobra.Command{
	Use:   "capital <state>",
	Short: "Print the capital of a state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := initDirectory()
		if err != nil {
			return err
		}
		s, err := lookupState(dir, args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(w, map[string]string{"state": s.Name, "capital": s.Capital})
		}
		fmt.Fprintln(w, s.Capital)
		return nil
	},
}

var zoneCmd = &cobra.Command{
	Use:   "zone <state>",
	Short: "Print the geopolitical zone of a state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := initDirectory()
		if err != nil {
			return err
		}
		s, err := lookupState(dir, args[0])
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(w, map[string]string{"state": s.Name, "zone": s.Zone})
		}
		fmt.Fprintln(w, s.Zone)
		return nil
	},
}

var zoneInfoCmd = &cobra.Command{
	Use:   "zone-info <zone>",
	Short: "Summarise a zone's states and LGAs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := initDirectory()
		if err != nil {
			return err
		}
		info, ok := dir.ZoneInfo(args[0])
		if !ok {
			return eris.Errorf("unknown zone %q (want one of %s)", args[0], strings.Join(model.ZoneNames(), ", "))
		}
		w := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(w, info)
		}
		heading(w, info.Zone)
		renderTable(w, []string{"States", "LGAs"}, [][]string{{
			strconv.Itoa(info.NoOfStates), strconv.Itoa(info.NoOfLGAs),
		}})
		return printStates(w, "States", dir.StatesInZone(info.Zone))
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Answer membership questions",
}

type membership struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
	Member bool   `json:"member"`
}

func printMembership(w io.Writer, m membership) error {
	if outputJSON {
		return printJSON(w, m)
	}
	fmt.Fprintf(w, "%s in %s: %s\n", m.Child, m.Parent, yesNo(m.Member))
	return nil
}

var checkStateInZoneCmd = &cobra.Command{
	Use:   "state-in-zone <zone> <state>",
	Short: "Report whether a state belongs to a zone",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := initDirectory()
		if err != nil {
			return err
		}
		return printMembership(cmd.OutOrStdout(), membership{
			Parent: args[0], Child: args[1], Member: dir.IsStateInZone(args[0], args[1]),
		})
	},
}

var checkLGAInStateCmd = &cobra.Command{
	Use:   "lga-in-state <state> <lga>",
	Short: "Report whether an LGA belongs to a state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := initDirectory()
		if err != nil {
			return err
		}
		return printMembership(cmd.OutOrStdout(), membership{
			Parent: args[0], Child: args[1], Member: dir.IsLGAInState(args[0], args[1]),
		})
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <text>",
	Short: "Match free-form text such as \"akwa-ibom state\" to a state",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := initDirectory()
		if err != nil {
			return err
		}
		input := strings.Join(args, " ")
		s, err := dir.ResolveState(input)
		if errors.Is(err, geo.ErrNotFound) {
			return eris.Errorf("no state matches %q", input)
		}
		if err != nil {
			return err
		}
		return printStates(cmd.OutOrStdout(), "Resolved", []model.State{s})
	},
}

func init() {
	statesCmd.Flags().StringSliceVar(&queryZones, "zone", nil, "limit to zones (repeatable)")
	lgasCmd.Flags().StringSliceVar(&queryZones, "zone", nil, "limit to zones (repeatable)")
	lgasCmd.Flags().StringVar(&queryState, "state", "", "limit to one state")

	checkCmd.AddCommand(checkStateInZoneCmd, checkLGAInStateCmd)
	rootCmd.AddCommand(zonesCmd, statesCmd, lgasCmd, capitalCmd, zoneCmd, zoneInfoCmd, checkCmd, resolveCmd)
}
