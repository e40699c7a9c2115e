package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nigerian-states/internal/choices"
	"github.com/sells-group/nigerian-states/internal/geo"
	"github.com/sells-group/nigerian-states/internal/model"
)

func newTestServer(t *testing.T, cfg Config, opts ...Option) http.Handler {
	t.Helper()
	dir, err := geo.Default()
	require.NoError(t, err)
	return NewServer(dir, cfg, opts...).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, Config{})
	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string       `json:"status"`
		Counts model.Counts `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, model.Counts{Zones: 6, States: 37, LGAs: 774}, body.Counts)
}

func TestZones(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := get(t, h, "/zones")
	require.Equal(t, http.StatusOK, rec.Code)
	zones := decode[ListResponse[model.GeoPoliticalZone]](t, rec)
	assert.Equal(t, 6, zones.Count)
	assert.Equal(t, model.GeoPoliticalZone{ID: 4, Name: "South East"}, zones.Items[3])

	rec = get(t, h, "/zones/North%20Central")
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[model.ZoneInfo](t, rec)
	assert.Equal(t, 7, info.NoOfStates)
	assert.Equal(t, 121, info.NoOfLGAs)

	rec = get(t, h, "/zones/North%20West/states")
	require.Equal(t, http.StatusOK, rec.Code)
	states := decode[ListResponse[model.State]](t, rec)
	assert.Equal(t, 7, states.Count)

	rec = get(t, h, "/zones/South%20West/lgas")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 137, decode[ListResponse[model.LocalGovernment]](t, rec).Count)
}

func TestZones_Unknown(t *testing.T) {
	h := newTestServer(t, Config{})
	for _, path := range []string{"/zones/Mars", "/zones/Mars/states", "/zones/north%20west/lgas"} {
		rec := get(t, h, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, decode[errorResponse](t, rec).Error, "not found")
	}
}

func TestStates(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := get(t, h, "/states")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 37, decode[ListResponse[model.State]](t, rec).Count)

	rec = get(t, h, "/states?zone=North+Central&zone=North+West")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 14, decode[ListResponse[model.State]](t, rec).Count)

	rec = get(t, h, "/states?limit=3&offset=1")
	require.Equal(t, http.StatusOK, rec.Code)
	names := model.Pluck(decode[ListResponse[model.State]](t, rec).Items, model.State.String)
	assert.Equal(t, []string{"Adamawa", "Akwa Ibom", "Anambra"}, names)

	rec = get(t, h, "/states/Kano")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[StateDetail](t, rec)
	assert.Equal(t, "Kano", detail.Capital)
	assert.Equal(t, "North West", detail.Zone)
	assert.Equal(t, 44, detail.TotalLGAs)

	rec = get(t, h, "/states/Oyo/lgas")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 33, decode[ListResponse[model.LocalGovernment]](t, rec).Count)
}

func TestStates_BadRequests(t *testing.T) {
	h := newTestServer(t, Config{})
	tests := []struct {
		path string
		code int
	}{
		{"/states?zone=Mars", http.StatusBadRequest},
		{"/states?limit=x", http.StatusBadRequest},
		{"/states?offset=-1", http.StatusBadRequest},
		{"/states/Togo", http.StatusNotFound},
		{"/states/lagos/lgas", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, h, tt.path)
			assert.Equal(t, tt.code, rec.Code)
			assert.NotEmpty(t, decode[errorResponse](t, rec).Error)
		})
	}
}

func TestLGAs(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := get(t, h, "/lgas")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 774, decode[ListResponse[model.LocalGovernment]](t, rec).Count)

	rec = get(t, h, "/lgas?state=Lagos")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, decode[ListResponse[model.LocalGovernment]](t, rec).Count)

	rec = get(t, h, "/lgas?state=Lagos&zone=North+West")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[ListResponse[model.LocalGovernment]](t, rec).Count)

	rec = get(t, h, "/lgas?state=Togo")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMembership(t *testing.T) {
	h := newTestServer(t, Config{})
	tests := []struct {
		path string
		want bool
	}{
		{"/membership/state-in-zone?zone=South+West&state=Lagos", true},
		{"/membership/state-in-zone?zone=North+West&state=Lagos", false},
		{"/membership/lga-in-state?state=Oyo&lga=Surulere", true},
		{"/membership/lga-in-state?state=Lagos&lga=Surulere", true},
		{"/membership/lga-in-state?state=Kano&lga=Surulere", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, h, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, decode[MembershipResponse](t, rec).Member)
		})
	}

	rec := get(t, h, "/membership/state-in-zone?zone=South+West")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, `"state"`)
}

func TestChoices(t *testing.T) {
	h := newTestServer(t, Config{}, WithSettings(choices.Settings{DefaultZones: []string{"South East"}}))

	rec := get(t, h, "/choices/states")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ChoicesResponse](t, rec)
	assert.Equal(t, choices.KindState, resp.Kind)
	assert.Equal(t, []string{"South East"}, resp.Zones)
	require.Len(t, resp.Choices, 6)
	assert.Equal(t, choices.Choice{Value: "", Label: choices.DefaultStateEmptyLabel}, resp.Choices[0])

	rec = get(t, h, "/choices/zones?zone=North+East&empty_label=Choose")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[ChoicesResponse](t, rec)
	assert.Equal(t, []choices.Choice{
		{Value: "", Label: "Choose"},
		{Value: "North East", Label: "North East"},
	}, resp.Choices)

	rec = get(t, h, "/choices/lgas?zone=South+West")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[ChoicesResponse](t, rec)
	assert.Len(t, resp.Choices, 138)
	assert.Contains(t, resp.Choices, choices.Choice{Value: "Ikeja", Label: "Lagos: Ikeja"})

	assert.Equal(t, http.StatusNotFound, get(t, h, "/choices/wards").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/choices/states?zone=Mars").Code)
}

func TestResolveState(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := get(t, h, "/resolve/state?q=akwa-ibom")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Akwa Ibom", decode[model.State](t, rec).Name)

	rec = get(t, h, "/resolve/state?q=Abuja")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Federal Capital Territory", decode[model.State](t, rec).Name)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/resolve/state?q=California").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/resolve/state").Code)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := get(t, h, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", decode[errorResponse](t, rec).Error)

	req := httptest.NewRequest(http.MethodPost, "/zones", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, Config{RateLimitRPS: 0.001, RateLimitBurst: 2})

	assert.Equal(t, http.StatusOK, get(t, h, "/zones").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/zones").Code)
	rec := get(t, h, "/zones")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Health and metrics sit outside the limiter.
	assert.Equal(t, http.StatusOK, get(t, h, "/health").Code)
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, Config{CORSOrigins: []string{"https://example.ng"}})

	req := httptest.NewRequest(http.MethodGet, "/zones", nil)
	req.Header.Set("Origin", "https://example.ng")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://example.ng", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/zones", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	h := newTestServer(t, Config{})
	get(t, h, "/states/Lagos")

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ngstates_http_requests_total{method="GET",route="/states/{state}",status="200"}`)
	assert.Contains(t, rec.Body.String(), "ngstates_http_request_duration_ms")
}
