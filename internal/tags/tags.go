// Package tags exposes the geo directory to text/template and html/template.
package tags

import (
	"slices"

	"github.com/sells-group/nigerian-states/internal/geo"
	"github.com/sells-group/nigerian-states/internal/model"
)

// Helpers binds the template functions to a directory and the configured
// default zones. Unknown names yield empty results, never errors.
type Helpers struct {
	Dir          *geo.Directory
	DefaultZones []string
}

// FuncMap returns the helpers keyed by template name. The map is accepted by
// both text/template and html/template Funcs.
func (h Helpers) FuncMap() map[string]any {
	return map[string]any{
		"statesInZone":  h.StatesInZone,
		"capital":       h.Capital,
		"lgasInState":   h.LGAsInState,
		"isStateInZone": h.IsStateInZone,
		"isLGAInState":  h.IsLGAInState,
		"defaultZones":  h.DefaultZonesList,
		"zoneOf":        h.ZoneOf,
		"zoneInfo":      h.ZoneInfo,
	}
}

// StatesInZone lists the state names of zone in ID order.
func (h Helpers) StatesInZone(zone string) []string {
	return model.Pluck(h.Dir.StatesInZone(zone), func(s model.State) string { return s.Name })
}

// Capital returns the capital of state, or "".
func (h Helpers) Capital(state string) string {
	return h.Dir.Capital(state)
}

// LGAsInState lists the bare LGA names of state in ID order.
func (h Helpers) LGAsInState(state string) []string {
	return model.Pluck(h.Dir.LGAsInState(state), func(l model.LocalGovernment) string { return l.Name })
}

// IsStateInZone is a filter: {{ if isStateInZone "South West" "Lagos" }}.
func (h Helpers) IsStateInZone(zone, state string) bool {
	return h.Dir.IsStateInZone(zone, state)
}

// IsLGAInState is a filter: {{ if isLGAInState "Lagos" "Ikeja" }}.
func (h Helpers) IsLGAInState(state, lga string) bool {
	return h.Dir.IsLGAInState(state, lga)
}

// DefaultZonesList returns the configured default zones.
func (h Helpers) DefaultZonesList() []string {
	if h.DefaultZones == nil {
		return []string{}
	}
	return slices.Clone(h.DefaultZones)
}

// ZoneOf returns the zone name of state, or "".
func (h Helpers) ZoneOf(state string) string {
	return h.Dir.ZoneOf(state)
}

// ZoneInfo returns the zone summary, or nil for an unknown zone so that
// templates can guard with {{ with zoneInfo .Zone }}.
func (h Helpers) ZoneInfo(zone string) *model.ZoneInfo {
	info, ok := h.Dir.ZoneInfo(zone)
	if !ok {
		return nil
	}
	return &info
}
