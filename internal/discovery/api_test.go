package discovery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salvo-backend/internal/api/respond"
	"salvo-backend/internal/catalog"
	"salvo-backend/internal/matcher"
	"salvo-backend/internal/model"
)

type staticSource struct{ snap *catalog.Snapshot }

func (s staticSource) Snapshot(context.Context) (*catalog.Snapshot, error) { return s.snap, nil }

const originLat, originLng = -23.5505, -46.6333

func at(km float64) *float64 {
	v := originLat + km/(matcher.EarthRadiusKm*3.141592653589793/180)
	return &v
}

func newRouter(t *testing.T) *mux.Router {
	t.Helper()
	lng := originLng
	snap, err := catalog.FromRecords(
		model.BusinessRecord{ID: "A", Name: "Drogaria Vida", Category: "Farmácia", Status: model.StatusActive, Latitude: at(1.0), Longitude: &lng},
		model.BusinessRecord{ID: "B", Name: "Cantina", Category: "Restaurante", Status: model.StatusActive, Latitude: at(0.5), Longitude: &lng},
	)
	require.NoError(t, err)
	m, err := matcher.New(staticSource{snap}, matcher.DefaultConfig())
	require.NoError(t, err)

	r := mux.NewRouter()
	NewService(m, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func post(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeResults(t *testing.T, rr *httptest.ResponseRecorder) SearchResponse {
	t.Helper()
	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestNearby(t *testing.T) {
	r := newRouter(t)

	rr := post(t, r, "/api/search/nearby", `{"lat": -23.5505, "lng": -46.6333}`)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResults(t, rr)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "B", resp.Results[0].ID)
	assert.Equal(t, 500, resp.Results[0].DistanceMeters)
	assert.Nil(t, resp.Results[0].RelevanceScore)

	rr = post(t, r, "/api/search/nearby", `{"lat": -23.5505, "lng": -46.6333, "radius_km": 0.7}`)
	assert.Equal(t, 1, decodeResults(t, rr).Count)

	rr = post(t, r, "/api/search/nearby", `{"lat": -23.5505, "lng": -46.6333, "category": "farmacia"}`)
	resp = decodeResults(t, rr)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "A", resp.Results[0].ID)
}

func TestNearby_Rejects(t *testing.T) {
	r := newRouter(t)

	rr := post(t, r, "/api/search/nearby", `{"lat": 95, "lng": 0}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var e respond.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	assert.Equal(t, "lat", e.Field)

	rr = post(t, r, "/api/search/nearby", `{"lat": 0, "lng": 0, "radius_km": -2}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = post(t, r, "/api/search/nearby", `{`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	for _, body := range []string{`{}`, `{"lat": -23.5505}`, `{"lng": -46.6333, "radius_km": 2}`} {
		rr = post(t, r, "/api/search/nearby", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	rr = post(t, r, "/api/search/nearby", `{"lat": -23.5505}`)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	assert.Equal(t, "lng", e.Field)

	rr = post(t, r, "/api/search/text", `{"text": "pizza"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	assert.Equal(t, "lat", e.Field)

	req := httptest.NewRequest(http.MethodGet, "/api/search/nearby", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestText(t *testing.T) {
	r := newRouter(t)

	rr := post(t, r, "/api/search/text", `{"lat": -23.5505, "lng": -46.6333, "text": "procuro remedio"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResults(t, rr)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "A", resp.Results[0].ID)
	require.NotNil(t, resp.Results[0].RelevanceScore)
	assert.Equal(t, 2.0, *resp.Results[0].RelevanceScore)

	rr = post(t, r, "/api/search/text", `{"lat": -23.5505, "lng": -46.6333, "keywords": ["restaurante"]}`)
	resp = decodeResults(t, rr)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "B", resp.Results[0].ID)

	rr = post(t, r, "/api/search/text", `{"lat": -23.5505, "lng": -46.6333, "text": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestIntent(t *testing.T) {
	r := newRouter(t)

	rr := post(t, r, "/api/intent", `{"text": "procuro uma farmácia"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var in model.Intent
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &in))
	assert.Equal(t, model.IntentSearch, in.Kind)
	assert.Contains(t, in.Keywords, "farmacia")

	rr = post(t, r, "/api/intent", `{"text": "bom dia"}`)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &in))
	assert.Equal(t, model.IntentGreeting, in.Kind)
}
