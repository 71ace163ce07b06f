// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/basketopt/basket"
	"github.com/jcodagnone/basketopt/region"
	"github.com/jcodagnone/basketopt/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationBody struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

// setupServerTest returns a router over the region fixture with a seeded
// random source.
func setupServerTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	regions, err := region.Load("../region/testdata/regions.geojson")
	require.NoError(t, err)

	server := NewServer(region.NewStaticProvider(regions), Options{
		Rand: func() *rand.Rand { return rand.New(rand.NewSource(1)) },
	})

	return server.Router()
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestHealth(t *testing.T) {
	router := setupServerTest(t)

	w := doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}

func TestCreateBasketsSingleOrder(t *testing.T) {
	router := setupServerTest(t)

	w := doRequest(router, http.MethodPost, "/api/baskets/batch",
		`{"orders": [{"latitude": 40.7128, "longitude": -74.0060}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.JSONEq(t, `[{
		"latitude": 40.7128,
		"longitude": -74.0060,
		"radius": 0.5,
		"orders": [{"latitude": 40.7128, "longitude": -74.0060}]
	}]`, w.Body.String())
	assert.Equal(t, string(basket.MethodExact), w.Header().Get(solverHeader))
}

func TestCreateBasketsEmpty(t *testing.T) {
	router := setupServerTest(t)

	w := doRequest(router, http.MethodPost, "/api/baskets/batch", `{"orders": []}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateBasketsStrategies(t *testing.T) {
	router := setupServerTest(t)

	origin := spatial.Point{Lat: 41.0, Lng: 29.0}
	near := spatial.Destination(origin, 90, 0.3)
	far := spatial.Destination(origin, 0, 4)

	orders := []map[string]float64{
		{"latitude": origin.Lat, "longitude": origin.Lng},
		{"latitude": near.Lat, "longitude": near.Lng},
		{"latitude": far.Lat, "longitude": far.Lng},
	}

	for _, strategy := range basket.Strategies {
		t.Run(string(strategy), func(t *testing.T) {
			body, err := json.Marshal(map[string]any{
				"orders":   orders,
				"strategy": strategy,
				"index":    "rtree",
			})
			require.NoError(t, err)

			w := doRequest(router, http.MethodPost, "/api/baskets/batch", string(body))
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

			var baskets []basket.Basket
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &baskets))
			assert.Len(t, baskets, 2)

			if strategy == basket.StrategyOptimalCover {
				assert.NotEmpty(t, w.Header().Get(solverHeader))
			} else {
				assert.Empty(t, w.Header().Get(solverHeader))
			}
		})
	}
}

func TestCreateBasketsValidation(t *testing.T) {
	router := setupServerTest(t)

	tests := []struct {
		name      string
		body      string
		wantField string
		wantType  string
	}{
		{"missing orders", `{}`, "orders", "missing"},
		{"missing longitude", `{"orders": [{"latitude": 1}]}`, "longitude", "missing"},
		{"latitude out of range", `{"orders": [{"latitude": 95, "longitude": 0}]}`, "latitude", "less_than_equal"},
		{"longitude out of range", `{"orders": [{"latitude": 0, "longitude": -181}]}`, "longitude", "greater_than_equal"},
		{"zero radius", `{"orders": [], "radius": 0}`, "radius", "greater_than"},
		{"unknown strategy", `{"orders": [], "strategy": "kmeans"}`, "strategy", "enum"},
		{"unknown index", `{"orders": [], "index": "quadtree"}`, "index", "enum"},
		{"wrong type", `{"orders": [{"latitude": "north", "longitude": 0}]}`, "latitude", "type_error"},
		{"malformed", `{"orders": [`, "body", "json_invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/api/baskets/batch", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

			var body validationBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

			assert.Equal(t, "error", body.Status)
			assert.Equal(t, "Validation error", body.Message)
			require.NotEmpty(t, body.Errors)
			assert.Equal(t, tt.wantField, body.Errors[0].Field)
			assert.Equal(t, tt.wantType, body.Errors[0].Type)
			assert.NotEmpty(t, body.Errors[0].Message)
		})
	}
}

func TestCreateOrders(t *testing.T) {
	router := setupServerTest(t)

	w := doRequest(router, http.MethodPost, "/api/orders/batch", `{"regions": ["besiktas", "nowhere"], "count": 50}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var points []spatial.Point
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	require.Len(t, points, 50)

	for _, p := range points {
		assert.True(t, p.Lat >= 41.0 && p.Lat <= 41.02, "%s", p)
		assert.True(t, p.Lng >= 29.0 && p.Lng <= 29.02, "%s", p)
	}
}

func TestCreateOrdersDefaultCount(t *testing.T) {
	router := setupServerTest(t)

	w := doRequest(router, http.MethodPost, "/api/orders/batch", `{"regions": ["Üsküdar"]}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var points []spatial.Point
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	assert.Len(t, points, region.DefaultSampleCount)
}

func TestCreateOrdersErrors(t *testing.T) {
	router := setupServerTest(t)

	w := doRequest(router, http.MethodPost, "/api/orders/batch", `{"regions": ["nowhere"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "No valid regions selected"}`, w.Body.String())

	w = doRequest(router, http.MethodPost, "/api/orders/batch", `{"regions": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/api/orders/batch", `{"regions": ["besiktas"], "count": 0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doRequest(router, http.MethodPost, "/api/orders/batch", `{"regions": ["besiktas"], "count": 10001}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doRequest(router, http.MethodPost, "/api/orders/batch", `{"count": 5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListRegions(t *testing.T) {
	router := setupServerTest(t)

	w := doRequest(router, http.MethodGet, "/api/regions", "")
	require.Equal(t, http.StatusOK, w.Code)

	var regions []struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		Coordinates any    `json:"coordinates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &regions))
	require.Len(t, regions, 2)
	assert.Equal(t, "Beşiktaş", regions[0].Name)
	assert.Equal(t, region.TypeMultiPolygon, regions[1].Type)
	assert.NotNil(t, regions[0].Coordinates)
}

func TestListRegionsLoadError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewServer(region.NewProvider("missing.geojson"), Options{}).Router()

	w := doRequest(router, http.MethodGet, "/api/regions", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORS(t *testing.T) {
	router := setupServerTest(t)

	t.Run("preflight", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodOptions, "/api/baskets/batch", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), http.CanonicalHeaderKey("X-API-Key"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Empty(t, w.Body.String())
	})

	t.Run("simple request", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/baskets/batch", strings.NewReader(`{"orders": []}`))
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "http://example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), solverHeader)
	})

	t.Run("no origin", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/health", "")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
