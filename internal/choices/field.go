// Package choices builds select-field choices for zones, states and LGAs,
// validates submitted values against them and renders the <select> widget.
package choices

import (
	"context"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/nigerian-states/internal/model"
)

// Source supplies the rows behind the choices. geo.Directory and every
// store.Store satisfy it.
type Source interface {
	Ready(ctx context.Context) (bool, error)
	ListZones(ctx context.Context, f model.Filter) ([]model.GeoPoliticalZone, error)
	ListStates(ctx context.Context, f model.Filter) ([]model.State, error)
	ListLGAs(ctx context.Context, f model.Filter) ([]model.LocalGovernment, error)
}

// Kind selects which entity a field offers.
type Kind string

// Field kinds. Base offers only the blank choice.
const (
	KindBase  Kind = "base"
	KindZone  Kind = "zones"
	KindState Kind = "states"
	KindLGA   Kind = "lgas"
)

// ParseKind validates a kind name taken from user input.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindZone, KindState, KindLGA:
		return k, nil
	}
	return "", eris.Errorf("choices: unknown field kind %q (want zones, states or lgas)", s)
}

// Default blank-choice labels per kind.
const (
	DefaultZoneEmptyLabel  = "Select a Geo-Political Zone"
	DefaultStateEmptyLabel = "Select a State from the dropdown"
	DefaultLGAEmptyLabel   = "Select a LG"
)

// Choice is one <option>: the submitted value and the text shown.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Settings are project-wide field defaults.
type Settings struct {
	// DefaultZones limits every field that names no zones of its own.
	DefaultZones []string
}

// Options configure a single field.
type Options struct {
	Label      string
	HelpText   string
	EmptyLabel string
	// Zones limits the choices to these zones, overriding Settings.DefaultZones.
	Zones    []string
	Required bool
	// Attrs are extra <select> attributes such as class.
	Attrs map[string]string
}

// Field is a choice field whose options are fixed when it is built.
type Field struct {
	kind     Kind
	opts     Options
	settings Settings
	choices  []Choice
}

// NewBase returns a field offering only the ("", "") choice.
func NewBase(settings Settings, opts Options) *Field {
	return &Field{
		kind:     KindBase,
		opts:     opts,
		settings: settings,
		choices:  []Choice{{Value: "", Label: ""}},
	}
}

// NewZoneField builds a geopolitical zone field.
func NewZoneField(ctx context.Context, src Source, settings Settings, opts Options) (*Field, error) {
	return New(ctx, KindZone, src, settings, opts)
}

// NewStateField builds a state field.
func NewStateField(ctx context.Context, src Source, settings Settings, opts Options) (*Field, error) {
	return New(ctx, KindState, src, settings, opts)
}

// NewLocalGovernmentField builds an LGA field. Labels read "State: LGA".
func NewLocalGovernmentField(ctx context.Context, src Source, settings Settings, opts Options) (*Field, error) {
	return New(ctx, KindLGA, src, settings, opts)
}

// New builds a field of the given kind, reading its choices from src. When
// src has no reference tables yet, the field offers only the blank choice.
func New(ctx context.Context, kind Kind, src Source, settings Settings, opts Options) (*Field, error) {
	if kind == KindBase {
		return NewBase(settings, opts), nil
	}

	f := &Field{kind: kind, opts: opts, settings: settings}
	f.choices = []Choice{{Value: "", Label: f.EmptyLabel()}}

	ready, err := src.Ready(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "choices: %s: check source", kind)
	}
	if !ready {
		return f, nil
	}

	filter := model.Filter{Zones: f.Zones()}
	var rest []Choice
	switch kind {
	case KindZone:
		zones, err := src.ListZones(ctx, filter)
		if err != nil {
			return nil, eris.Wrap(err, "choices: list zones")
		}
		rest = model.Pluck(zones, func(z model.GeoPoliticalZone) Choice {
			return Choice{Value: z.Name, Label: z.Name}
		})
	case KindState:
		states, err := src.ListStates(ctx, filter)
		if err != nil {
			return nil, eris.Wrap(err, "choices: list states")
		}
		rest = model.Pluck(states, func(s model.State) Choice {
			return Choice{Value: s.Name, Label: s.Name}
		})
	case KindLGA:
		lgas, err := src.ListLGAs(ctx, filter)
		if err != nil {
			return nil, eris.Wrap(err, "choices: list lgas")
		}
		rest = model.Pluck(lgas, func(l model.LocalGovernment) Choice {
			return Choice{Value: l.Name, Label: l.String()}
		})
	default:
		return nil, eris.Errorf("choices: unknown field kind %q", kind)
	}
	f.choices = append(f.choices, rest...)
	return f, nil
}

// Kind returns the field kind.
func (f *Field) Kind() Kind { return f.kind }

// Zones resolves which zones the field covers: the field's own zones, else
// the settings' default zones, else all six.
func (f *Field) Zones() []string {
	switch {
	case len(f.opts.Zones) > 0:
		return slices.Clone(f.opts.Zones)
	case len(f.settings.DefaultZones) > 0:
		return slices.Clone(f.settings.DefaultZones)
	default:
		return model.ZoneNames()
	}
}

// EmptyLabel is the label of the leading blank choice.
func (f *Field) EmptyLabel() string {
	if f.opts.EmptyLabel != "" {
		return f.opts.EmptyLabel
	}
	switch f.kind {
	case KindZone:
		return DefaultZoneEmptyLabel
	case KindState:
		return DefaultStateEmptyLabel
	case KindLGA:
		return DefaultLGAEmptyLabel
	default:
		return ""
	}
}

// Choices returns a copy of the field's choices, blank choice first.
func (f *Field) Choices() []Choice { return slices.Clone(f.choices) }

// Valid reports whether value is one of the non-blank choice values.
func (f *Field) Valid(value string) bool {
	if value == "" {
		return false
	}
	return slices.ContainsFunc(f.choices, func(c Choice) bool { return c.Value == value })
}
