package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/etfadvisor/internal/events"
	"github.com/aristath/etfadvisor/internal/modules/advisor"
	"github.com/aristath/etfadvisor/internal/modules/baskets"
	"github.com/aristath/etfadvisor/internal/modules/catalog"
	"github.com/aristath/etfadvisor/internal/modules/display"
	"github.com/aristath/etfadvisor/internal/modules/sessions"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func setupRouter(t *testing.T) (chi.Router, *sessions.Service) {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	cat, err := catalog.Default()
	require.NoError(t, err)
	adv := advisor.NewService(cat, display.NewModeManager(display.LevelMedium, logger), baskets.PolicyUnfiltered, nil, nil, logger)
	bus := events.NewBus(logger)
	service := sessions.NewService(sessions.NewStore(), adv, bus, nil, time.Hour, logger)

	router := chi.NewRouter()
	router.Route("/api", NewHandler(service, bus, nil, logger).RegisterRoutes)
	return router, service
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func createSession(t *testing.T, router http.Handler) string {
	t.Helper()
	w, response := do(t, router, "POST", "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	data := response["data"].(map[string]interface{})
	return data["id"].(string)
}

func TestRegisterRoutes(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	handler := NewHandler(nil, events.NewBus(logger), nil, logger)

	router := chi.NewRouter()
	assert.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")
}

func TestHandleCreate(t *testing.T) {
	router, _ := setupRouter(t)

	w, response := do(t, router, "POST", "/api/sessions", `{"knowledge_level":"high"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "high", data["knowledge_level"])
	assert.NotEmpty(t, data["id"])
	assert.NotNil(t, response["metadata"])

	advice := data["advice"].(map[string]interface{})
	assert.Len(t, advice["etfs"], 10)

	w, _ = do(t, router, "POST", "/api/sessions", `{"knowledge_level":"expert"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, "POST", "/api/sessions", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetAndDelete(t *testing.T) {
	router, _ := setupRouter(t)
	id := createSession(t, router)

	w, response := do(t, router, "GET", "/api/sessions/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, response["data"].(map[string]interface{})["id"])

	w, _ = do(t, router, "DELETE", "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, response = do(t, router, "GET", "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, response["error"], "session not found")
}

func TestHandleMutations(t *testing.T) {
	router, _ := setupRouter(t)
	id := createSession(t, router)
	base := "/api/sessions/" + id

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{"preferences", "PUT", base + "/preferences", `{"selected_stages":["mining"],"ev_preference":false,"china_comfort":"prefer_low","risk_tolerance":"low"}`, http.StatusOK},
		{"preferences unknown stage", "PUT", base + "/preferences", `{"selected_stages":["orbit"],"china_comfort":"neutral","risk_tolerance":"low"}`, http.StatusBadRequest},
		{"preferences bad json", "PUT", base + "/preferences", `[`, http.StatusBadRequest},
		{"weights", "PUT", base + "/weights", `{"upstream":10,"midstream":0,"downstream":0,"ev_battery":0,"china_exposure":0,"risk_tolerance":0}`, http.StatusOK},
		{"weights out of range", "PUT", base + "/weights", `{"upstream":11}`, http.StatusBadRequest},
		{"knowledge", "PUT", base + "/knowledge", `{"level":"low"}`, http.StatusOK},
		{"knowledge unknown", "PUT", base + "/knowledge", `{"level":"guru"}`, http.StatusBadRequest},
		{"portfolio value", "PUT", base + "/portfolio-value", `{"value":25000}`, http.StatusOK},
		{"portfolio value negative", "PUT", base + "/portfolio-value", `{"value":-1}`, http.StatusBadRequest},
		{"allocation", "PUT", base + "/allocations/LIT", `{"pct":30}`, http.StatusOK},
		{"allocation missing pct", "PUT", base + "/allocations/LIT", `{}`, http.StatusBadRequest},
		{"allocation unknown ticker", "PUT", base + "/allocations/NOPE", `{"pct":30}`, http.StatusNotFound},
		{"scenario", "POST", base + "/scenario/battery-metals", "", http.StatusOK},
		{"scenario unknown", "POST", base + "/scenario/moonshot", "", http.StatusNotFound},
		{"unknown session", "PUT", "/api/sessions/nope/knowledge", `{"level":"low"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}

func TestHandleGetAdvice(t *testing.T) {
	router, _ := setupRouter(t)
	id := createSession(t, router)

	w, response := do(t, router, "GET", "/api/sessions/"+id+"/advice", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Len(t, data["etfs"], 5)
	assert.True(t, strings.HasPrefix(data["recommendation_summary"].(string), "Your personalized ETF recommendations"))
}

func TestHandleStream(t *testing.T) {
	router, service := setupRouter(t)
	server := httptest.NewServer(router)
	defer server.Close()

	session, err := service.Create(sessions.CreateOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/sessions/" + session.ID + "/stream"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var msg map[string]interface{}
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, SnapshotMessage, msg["type"])

	_, err = service.SetAllocation(session.ID, "LIT", 20)
	require.NoError(t, err)

	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, string(events.AllocationChanged), msg["type"])
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, string(events.AdviceUpdated), msg["type"])
	assert.Equal(t, "sessions", msg["module"])

	require.NoError(t, service.Delete(session.ID))
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, string(events.SessionDeleted), msg["type"])

	err = wsjson.Read(ctx, conn, &msg)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestHandleStream_UnknownSession(t *testing.T) {
	router, _ := setupRouter(t)

	w, _ := do(t, router, "GET", "/api/sessions/missing/stream", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
