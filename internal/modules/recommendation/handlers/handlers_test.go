package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/pricing/internal/modules/optimization"
	"github.com/aristath/pricing/internal/modules/recommendation"
	testingpkg "github.com/aristath/pricing/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(defaults Defaults) (chi.Router, *Handler) {
	handler := NewHandler(recommendation.NewService(zerolog.Nop()), defaults, zerolog.Nop())
	handler.now = func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) }

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	return router, handler
}

func post(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestHandleRecommendations(t *testing.T) {
	router, _ := newTestRouter(Defaults{ForecastDays: 5})

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		validate       func(*testing.T, map[string]interface{})
	}{
		{
			name: "defaults today and horizon",
			body: map[string]interface{}{
				"history":               testingpkg.NewHistoryRows(testingpkg.HistoryOptions{Days: 90}),
				"current_average_price": 110,
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				recs := data["recommendations"].([]interface{})
				require.Len(t, recs, 5)
				first := recs[0].(map[string]interface{})
				assert.Contains(t, first["date"], "2025-06-11")
				assert.Equal(t, "balanced", first["strategy"])

				metadata := response["metadata"].(map[string]interface{})
				_, err := uuid.Parse(metadata["run_id"].(string))
				assert.NoError(t, err)
			},
		},
		{
			name: "explicit today, horizon, weather and holidays",
			body: map[string]interface{}{
				"history":               testingpkg.NewHistoryRows(testingpkg.HistoryOptions{Days: 90}),
				"today":                 "2025-07-01",
				"forecast_days":         3,
				"current_average_price": 110,
				"constraints":           map[string]interface{}{"strategy": "aggressive"},
				"weather": map[string]interface{}{
					"2025-07-02": map[string]interface{}{"temperature": 28, "condition": "Sunny", "precipitation": 0},
				},
				"holidays": map[string]interface{}{"2025-07-03": "Regatta"},
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				recs := data["recommendations"].([]interface{})
				require.Len(t, recs, 3)
				assert.Equal(t, "very_high", recs[0].(map[string]interface{})["confidence"])
				holiday := recs[1].(map[string]interface{})
				assert.Equal(t, true, holiday["is_holiday"])
				assert.Equal(t, "Regatta", holiday["holiday_name"])
				assert.Equal(t, "aggressive", holiday["strategy"])

				summary := data["summary"].(map[string]interface{})
				assert.Equal(t, float64(1), summary["holiday_days"])
			},
		},
		{
			name:           "zero forecast days",
			body:           map[string]interface{}{"forecast_days": 0, "current_average_price": 110},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing average price",
			body:           map[string]interface{}{"history": testingpkg.NewHistoryRows(testingpkg.HistoryOptions{Days: 5})},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad history date",
			body: map[string]interface{}{
				"history":               []map[string]interface{}{{"date": "10/06/2025", "price": 100}},
				"current_average_price": 110,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "horizon above cap",
			body:           map[string]interface{}{"forecast_days": 100000000, "current_average_price": 110},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown strategy",
			body: map[string]interface{}{
				"current_average_price": 110,
				"constraints":           map[string]interface{}{"strategy": "reckless"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "inverted bounds",
			body: map[string]interface{}{
				"current_average_price": 110,
				"constraints":           map[string]interface{}{"min_price": 200, "max_price": 100},
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, router, "/api/pricing/recommendations", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			response := decode(t, w)
			if tt.expectedStatus != http.StatusOK {
				assert.NotEmpty(t, response["error"])
				return
			}
			if tt.validate != nil {
				tt.validate(t, response)
			}
		})
	}
}

func TestHandleRecommendations_InvalidJSON(t *testing.T) {
	router, _ := newTestRouter(Defaults{})

	req := httptest.NewRequest(http.MethodPost, "/api/pricing/recommendations", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decode(t, w)["error"])
}

func TestHandleAnalysis(t *testing.T) {
	router, _ := newTestRouter(Defaults{})

	w := post(t, router, "/api/pricing/analysis", map[string]interface{}{"history": testingpkg.NewHistoryRows(testingpkg.HistoryOptions{Days: 60})})
	require.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	data := response["data"].(map[string]interface{})
	assert.Contains(t, data, "elasticity")
	assert.Contains(t, data, "competitor")
	assert.Contains(t, data, "factors")
	assert.Equal(t, float64(60), response["metadata"].(map[string]interface{})["sample_size"])

	competitor := data["competitor"].(map[string]interface{})
	assert.Equal(t, float64(60), competitor["sample_size"])
}

func TestHandleOptimize(t *testing.T) {
	router, _ := newTestRouter(Defaults{})

	w := post(t, router, "/api/pricing/optimize", map[string]interface{}{
		"elasticity":          -1.2,
		"predicted_occupancy": 75,
		"base_price":          100,
	})
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(80), data["optimal_price"])
	assert.Equal(t, true, data["feasible"])
	assert.Equal(t, "balanced", data["strategy"])

	w = post(t, router, "/api/pricing/optimize", map[string]interface{}{"elasticity": -1.2, "predicted_occupancy": 75})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleStrategies(t *testing.T) {
	router, _ := newTestRouter(Defaults{Strategy: optimization.StrategyConservative})

	req := httptest.NewRequest(http.MethodGet, "/api/pricing/strategies", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "conservative", data["default"])
	strategies := data["strategies"].([]interface{})
	require.Len(t, strategies, 3)
	for i, name := range []string{"conservative", "balanced", "aggressive"} {
		assert.Equal(t, name, strategies[i].(map[string]interface{})["name"], fmt.Sprintf("strategy %d", i))
	}
}

func TestNewHandler_FillsDefaults(t *testing.T) {
	handler := NewHandler(recommendation.NewService(zerolog.Nop()), Defaults{}, zerolog.Nop())
	assert.Equal(t, recommendation.DefaultForecastDays, handler.defaults.ForecastDays)
	assert.Equal(t, optimization.StrategyBalanced, handler.defaults.Strategy)
	assert.Equal(t, optimization.DefaultTargetOccupancy, handler.defaults.TargetOccupancy)
}

func TestRegisterRoutes(t *testing.T) {
	_, handler := newTestRouter(Defaults{})
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	patterns := []string{}
	for _, route := range router.Routes() {
		patterns = append(patterns, route.Pattern)
	}
	assert.Contains(t, patterns, "/pricing/*")
}

type recordingObserver struct {
	strategies []optimization.Strategy
	days       []int
}

func (o *recordingObserver) ObserveBatch(strategy optimization.Strategy, days int, _ time.Duration) {
	o.strategies = append(o.strategies, strategy)
	o.days = append(o.days, days)
}

func TestHandleRecommendations_NotifiesObserver(t *testing.T) {
	router, handler := newTestRouter(Defaults{ForecastDays: 4})
	observer := &recordingObserver{}
	handler.SetObserver(observer)

	w := post(t, router, "/api/pricing/recommendations", map[string]interface{}{
		"current_average_price": 95,
		"constraints":           map[string]interface{}{"strategy": "conservative"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = post(t, router, "/api/pricing/recommendations", map[string]interface{}{"forecast_days": -1, "current_average_price": 95})
	require.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, []optimization.Strategy{optimization.StrategyConservative}, observer.strategies)
	assert.Equal(t, []int{4}, observer.days)
}
