package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skihud/internal/api/handlers"
	"skihud/internal/config"
	"skihud/internal/repository/memory"
	"skihud/internal/services"
)

func setupTestServer(mutate func(*config.Config)) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := config.NewDefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}

	riderRepo := memory.NewRiderRepository()

	registrarService := services.NewRegistrarService(riderRepo)
	telemetryService := services.NewTelemetryService(riderRepo)
	presenceService := services.NewPresenceService(riderRepo, cfg.Presence.Window, cfg.Presence.LeaderboardLimit)
	adminService := services.NewAdminService(riderRepo)

	riderHandler := handlers.NewRiderHandler(registrarService, telemetryService)
	presenceHandler := handlers.NewPresenceHandler(presenceService)
	adminHandler := handlers.NewAdminHandler(adminService, cfg.Admin.EnableReset)

	router := NewRouter(riderHandler, presenceHandler, adminHandler)
	engine := gin.New()
	router.Setup(engine)

	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBufferString("")
	} else {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var decoded map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func registerRider(t *testing.T, engine *gin.Engine, name string) string {
	t.Helper()
	w, resp := doJSON(t, engine, "POST", "/register", fmt.Sprintf(`{"name":%q}`, name))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id, _ := resp["user_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHealthAndIndex(t *testing.T) {
	engine := setupTestServer(nil)

	w, _ := doJSON(t, engine, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := doJSON(t, engine, "GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, resp["routes"])
}

func TestRegisterEndpoint(t *testing.T) {
	engine := setupTestServer(nil)

	w, resp := doJSON(t, engine, "POST", "/register", `{"name":"Ada"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Ada", resp["name"])
	assert.Equal(t, true, resp["active"])
	assert.NotEmpty(t, resp["user_id"])

	// No body at all still registers, as anon.
	w, resp = doJSON(t, engine, "POST", "/register", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "anon", resp["name"])
}

func TestRegisterTwiceGivesDistinctIDs(t *testing.T) {
	engine := setupTestServer(nil)

	first := registerRider(t, engine, "one")
	second := registerRider(t, engine, "two")
	assert.NotEqual(t, first, second)
}

func TestUpdateMergeScenario(t *testing.T) {
	engine := setupTestServer(nil)
	id := registerRider(t, engine, "Ada")

	w, resp := doJSON(t, engine, "POST", "/update",
		fmt.Sprintf(`{"user_id":%q,"lat":10.0,"speed":5.0}`, id))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 5.0, resp["speed"])
	assert.Equal(t, 5.0, resp["max_speed"])

	w, resp = doJSON(t, engine, "POST", "/update",
		fmt.Sprintf(`{"user_id":%q,"speed":3.0}`, id))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 3.0, resp["speed"])
	assert.Equal(t, 5.0, resp["max_speed"])
	assert.Equal(t, 10.0, resp["lat"])
}

func TestUpdateGAlias(t *testing.T) {
	engine := setupTestServer(nil)
	id := registerRider(t, engine, "Ada")

	w, resp := doJSON(t, engine, "POST", "/update",
		fmt.Sprintf(`{"user_id":%q,"g":1.5}`, id))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1.5, resp["g_force"])
	assert.Equal(t, 1.5, resp["max_g_force"])

	w, resp = doJSON(t, engine, "POST", "/update",
		fmt.Sprintf(`{"user_id":%q,"g_force":1.2}`, id))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1.2, resp["g_force"])
	assert.Equal(t, 1.5, resp["max_g_force"])
}

func TestUpdateTrailTruncated(t *testing.T) {
	engine := setupTestServer(nil)
	id := registerRider(t, engine, "Ada")

	long := "abcdefghijklmnopqrstuvwxyz1234"
	w, resp := doJSON(t, engine, "POST", "/update",
		fmt.Sprintf(`{"user_id":%q,"trail":%q}`, id, long))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, long[:16], resp["trail"])
}

func TestUpdateNumericStringCoercion(t *testing.T) {
	engine := setupTestServer(nil)
	id := registerRider(t, engine, "Ada")

	w, resp := doJSON(t, engine, "POST", "/update",
		fmt.Sprintf(`{"user_id":%q,"speed":"33.5"}`, id))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 33.5, resp["speed"])
}

func TestUpdateBadNumberRejectedWithoutMutation(t *testing.T) {
	engine := setupTestServer(nil)
	id := registerRider(t, engine, "Ada")

	w, _ := doJSON(t, engine, "POST", "/update",
		fmt.Sprintf(`{"user_id":%q,"speed":"fast","lat":10.0}`, id))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// The lat from the rejected update must not have been applied.
	w, all := doJSONArray(t, engine, "/all")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, all, 1)
	_, hasLat := all[0]["lat"]
	assert.False(t, hasLat)
}

func TestUpdateMissingUserID(t *testing.T) {
	engine := setupTestServer(nil)
	registerRider(t, engine, "Ada")

	w, resp := doJSON(t, engine, "POST", "/update", `{"speed":5.0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user_id required", resp["error"])
}

func TestUpdateUnknownUserID(t *testing.T) {
	engine := setupTestServer(nil)

	w, resp := doJSON(t, engine, "POST", "/update", `{"user_id":"ghost","speed":5.0}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user_id not found", resp["error"])
	assert.Equal(t, "ghost", resp["user_id"])
}

func TestUpdateUnknownFieldsIgnored(t *testing.T) {
	engine := setupTestServer(nil)
	id := registerRider(t, engine, "Ada")

	w, _ := doJSON(t, engine, "POST", "/update",
		fmt.Sprintf(`{"user_id":%q,"speed":5.0,"flavor":"vanilla"}`, id))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func doJSONArray(t *testing.T, engine *gin.Engine, path string) (*httptest.ResponseRecorder, []map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	return w, decoded
}

func TestActiveEndpoint(t *testing.T) {
	engine := setupTestServer(nil)

	w, active := doJSONArray(t, engine, "/active")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, active)

	id := registerRider(t, engine, "Ada")
	inactiveID := registerRider(t, engine, "Bob")
	doJSON(t, engine, "POST", "/update", fmt.Sprintf(`{"user_id":%q,"active":false}`, inactiveID))

	w, active = doJSONArray(t, engine, "/active")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, active, 1)
	assert.Equal(t, id, active[0]["user_id"])
}

func TestActiveWindowExpiry(t *testing.T) {
	engine := setupTestServer(func(cfg *config.Config) {
		cfg.Presence.Window = 50 * time.Millisecond
	})
	registerRider(t, engine, "Ada")

	w, active := doJSONArray(t, engine, "/active")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, active, 1)

	time.Sleep(80 * time.Millisecond)

	w, active = doJSONArray(t, engine, "/active")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, active)
}

func TestAllEndpointIncludesInactive(t *testing.T) {
	engine := setupTestServer(nil)

	id := registerRider(t, engine, "Ada")
	doJSON(t, engine, "POST", "/update", fmt.Sprintf(`{"user_id":%q,"active":false}`, id))

	w, all := doJSONArray(t, engine, "/all")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, all, 1)
	assert.Equal(t, false, all[0]["active"])
}

func TestRecordsEndpoint(t *testing.T) {
	engine := setupTestServer(nil)

	for i, speed := range []float64{30, 80, 50, 20, 60, 40} {
		id := registerRider(t, engine, fmt.Sprintf("rider-%d", i))
		doJSON(t, engine, "POST", "/update", fmt.Sprintf(`{"user_id":%q,"speed":%f}`, id, speed))
	}

	w, entries := doJSONArray(t, engine, "/records")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, entries, 5) // default limit

	assert.Equal(t, 80.0, entries[0]["max_speed"])
	prev := entries[0]["max_speed"].(float64)
	for _, e := range entries[1:] {
		cur := e["max_speed"].(float64)
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}

	w, entries = doJSONArray(t, engine, "/records?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, entries, 2)
}

func TestResetGatedByCapabilityFlag(t *testing.T) {
	engine := setupTestServer(nil) // reset off by default
	registerRider(t, engine, "Ada")

	w, _ := doJSON(t, engine, "GET", "/reset", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, all := doJSONArray(t, engine, "/all")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, all, 1)
}

func TestResetClearsStoreWhenEnabled(t *testing.T) {
	engine := setupTestServer(func(cfg *config.Config) {
		cfg.Admin.EnableReset = true
	})
	registerRider(t, engine, "Ada")

	w, resp := doJSON(t, engine, "GET", "/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "database cleared", resp["status"])

	w, all := doJSONArray(t, engine, "/all")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, all)
}
