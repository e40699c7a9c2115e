package geo

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/nigerian-states/internal/model"
)

// maxResolveDistance bounds the edit distance accepted for a fuzzy state
// match. Shorter inputs get a tighter bound: one edit per four runes.
const maxResolveDistance = 2

var stateAliases = map[string]string{
	"fct":                             "Federal Capital Territory",
	"abuja":                           "Federal Capital Territory",
	"abuja fct":                       "Federal Capital Territory",
	"fct abuja":                       "Federal Capital Territory",
	"nassarawa":                       "Nasarawa",
	"akwa-ibom":                       "Akwa Ibom",
	"cross-river":                     "Cross River",
	"federal capital territory abuja": "Federal Capital Territory",
}

type resolver struct {
	byKey map[string]model.State
	keys  []string
}

func newResolver(states []model.State) *resolver {
	r := &resolver{byKey: make(map[string]model.State, len(states))}
	byName := make(map[string]model.State, len(states))
	for _, s := range states {
		key := normalizeName(s.Name)
		r.byKey[key] = s
		r.keys = append(r.keys, key)
		byName[s.Name] = s
	}
	for alias, name := range stateAliases {
		if s, ok := byName[name]; ok {
			r.byKey[alias] = s
		}
	}
	return r
}

// ResolveState maps free-form user input onto a state. Matching ignores case,
// diacritics, repeated whitespace and a trailing "State" suffix, and accepts a
// small edit distance when no exact normalized match exists.
func (d *Directory) ResolveState(input string) (model.State, error) {
	key := normalizeName(input)
	if key == "" {
		return model.State{}, eris.Wrap(ErrNotFound, "geo: resolve state: empty input")
	}
	if s, ok := d.resolver.byKey[key]; ok {
		return s, nil
	}

	limit := min(maxResolveDistance, len([]rune(key))/4)
	best, bestDist := "", limit+1
	for _, k := range d.resolver.keys {
		dist := levenshtein.Distance(key, k, nil)
		if dist < bestDist {
			best, bestDist = k, dist
		}
	}
	if best == "" {
		return model.State{}, eris.Wrapf(ErrNotFound, "geo: resolve state %q", input)
	}
	return d.resolver.byKey[best], nil
}

func normalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	folded := cases.Fold().String(stripped)
	key := strings.Join(strings.Fields(folded), " ")
	key = strings.TrimSuffix(key, " state")
	return key
}
