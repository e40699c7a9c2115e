package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/nigerian-states/internal/choices"
	"github.com/sells-group/nigerian-states/internal/geo"
	"github.com/sells-group/nigerian-states/internal/model"
)

// StateDetail is a state with its LGA total.
type StateDetail struct {
	model.State
	TotalLGAs int `json:"total_lgas"`
}

// ListResponse wraps a list with its length.
type ListResponse[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

// MembershipResponse answers a membership question.
type MembershipResponse struct {
	Member bool `json:"member"`
}

// ChoicesResponse is a rendered choice list.
type ChoicesResponse struct {
	Kind    choices.Kind     `json:"kind"`
	Zones   []string         `json:"zones"`
	Choices []choices.Choice `json:"choices"`
}

func list[T any](items []T) ListResponse[T] {
	return ListResponse[T]{Count: len(items), Items: items}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok", "counts": s.dir.Counts()}
	if rc, ok := s.cache.(*RedisCache); ok {
		resp["cache"] = rc.Breaker().State().String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, list(s.dir.Zones()))
}

// zoneParam resolves the {zone} path parameter, writing 404 when unknown.
func (s *Server) zoneParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	zone := chi.URLParam(r, "zone")
	if _, ok := s.dir.Zone(zone); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("zone %q not found", zone))
		return "", false
	}
	return zone, true
}

func (s *Server) stateParam(w http.ResponseWriter, r *http.Request) (model.State, bool) {
	name := chi.URLParam(r, "state")
	st, ok := s.dir.State(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("state %q not found", name))
		return model.State{}, false
	}
	return st, true
}

func (s *Server) handleZoneInfo(w http.ResponseWriter, r *http.Request) {
	zone, ok := s.zoneParam(w, r)
	if !ok {
		return
	}
	info, _ := s.dir.ZoneInfo(zone)
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleZoneStates(w http.ResponseWriter, r *http.Request) {
	zone, ok := s.zoneParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, list(s.dir.StatesInZone(zone)))
}

func (s *Server) handleZoneLGAs(w http.ResponseWriter, r *http.Request) {
	zone, ok := s.zoneParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, list(s.dir.LGAsInZone(zone)))
}

// filterFromQuery reads zone (repeatable), state, limit and offset.
func filterFromQuery(r *http.Request) (model.Filter, error) {
	q := r.URL.Query()
	f := model.Filter{Zones: q["zone"], State: q.Get("state")}
	for _, z := range f.Zones {
		if _, err := model.ParseZone(z); err != nil {
			return f, eris.Errorf("unknown zone %q", z)
		}
	}
	var err error
	if v := q.Get("limit"); v != "" {
		if f.Limit, err = strconv.Atoi(v); err != nil || f.Limit < 0 {
			return f, eris.New("limit must be a non-negative integer")
		}
	}
	if v := q.Get("offset"); v != "" {
		if f.Offset, err = strconv.Atoi(v); err != nil || f.Offset < 0 {
			return f, eris.New("offset must be a non-negative integer")
		}
	}
	return f, nil
}

func (s *Server) handleListStates(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	states, _ := s.dir.ListStates(r.Context(), f)
	writeJSON(w, http.StatusOK, list(states))
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	st, ok := s.stateParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, StateDetail{State: st, TotalLGAs: s.dir.StateTotalLGAs(st.Name)})
}

func (s *Server) handleStateLGAs(w http.ResponseWriter, r *http.Request) {
	st, ok := s.stateParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, list(s.dir.LGAsInState(st.Name)))
}

func (s *Server) handleListLGAs(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.State != "" {
		if _, ok := s.dir.State(f.State); !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("state %q not found", f.State))
			return
		}
	}
	lgas, _ := s.dir.ListLGAs(r.Context(), f)
	writeJSON(w, http.StatusOK, list(lgas))
}

// requireParams returns the named query values, writing 400 if any is blank.
func requireParams(w http.ResponseWriter, r *http.Request, names ...string) ([]string, bool) {
	q := r.URL.Query()
	vals := make([]string, len(names))
	for i, n := range names {
		vals[i] = q.Get(n)
		if vals[i] == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("query parameter %q is required", n))
			return nil, false
		}
	}
	return vals, true
}

func (s *Server) handleStateInZone(w http.ResponseWriter, r *http.Request) {
	v, ok := requireParams(w, r, "zone", "state")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, MembershipResponse{Member: s.dir.IsStateInZone(v[0], v[1])})
}

func (s *Server) handleLGAInState(w http.ResponseWriter, r *http.Request) {
	v, ok := requireParams(w, r, "state", "lga")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, MembershipResponse{Member: s.dir.IsLGAInState(v[0], v[1])})
}

func (s *Server) handleChoices(w http.ResponseWriter, r *http.Request) {
	kind, err := choices.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	field, err := choices.New(r.Context(), kind, s.source, s.settings, choices.Options{
		Zones:      f.Zones,
		EmptyLabel: r.URL.Query().Get("empty_label"),
	})
	if err != nil {
		zap.L().Error("build choices failed", zap.String("kind", string(kind)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load choices")
		return
	}
	writeJSON(w, http.StatusOK, ChoicesResponse{Kind: field.Kind(), Zones: field.Zones(), Choices: field.Choices()})
}

func (s *Server) handleResolveState(w http.ResponseWriter, r *http.Request) {
	v, ok := requireParams(w, r, "q")
	if !ok {
		return
	}
	st, err := s.dir.ResolveState(v[0])
	if errors.Is(err, geo.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no state matches %q", v[0]))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}
