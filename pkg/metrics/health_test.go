package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetHealth() {
	healthChecker = newHealthChecker()
}

func TestUpdateComponent(t *testing.T) {
	resetHealth()

	UpdateComponent(BackendComponent("megaraid"), true, "opened")

	require.Len(t, healthChecker.components, 1)
	comp := healthChecker.components["backend/megaraid"]
	assert.True(t, comp.Healthy)
	assert.Equal(t, "opened", comp.Message)

	UpdateComponent(BackendComponent("megaraid"), false, "closed")
	assert.False(t, healthChecker.components["backend/megaraid"].Healthy)
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]bool
		want       string
	}{
		{name: "nothing registered", components: map[string]bool{}, want: StatusHealthy},
		{name: "all healthy", components: map[string]bool{ComponentRouter: true, "backend/nfs": true}, want: StatusHealthy},
		{name: "backend failed", components: map[string]bool{ComponentRouter: true, "backend/hpsa": false}, want: StatusDegraded},
		{name: "router failed", components: map[string]bool{ComponentRouter: false, "backend/hpsa": false}, want: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetHealth()
			SetVersion("1.0.0")
			for name, healthy := range tt.components {
				UpdateComponent(name, healthy, "msg")
			}

			health := GetHealth()
			assert.Equal(t, tt.want, health.Status)
			assert.Len(t, health.Components, len(tt.components))
			assert.Equal(t, "1.0.0", health.Version)
		})
	}
}

func TestRemoveBackendComponents(t *testing.T) {
	resetHealth()
	UpdateComponent(ComponentRouter, true, "")
	UpdateComponent(BackendComponent("megaraid"), true, "")
	UpdateComponent(BackendComponent("nfs"), false, "nfsd missing")

	RemoveBackendComponents()

	assert.Len(t, healthChecker.components, 1)
	assert.Contains(t, healthChecker.components, ComponentRouter)

	RemoveComponent(ComponentRouter)
	assert.Empty(t, healthChecker.components)
}

func TestGetReadiness(t *testing.T) {
	resetHealth()
	assert.Equal(t, StatusNotReady, GetReadiness().Status)

	UpdateComponent(ComponentRouter, false, "register failed")
	readiness := GetReadiness()
	assert.Equal(t, StatusNotReady, readiness.Status)
	assert.Equal(t, "not ready: register failed", readiness.Components[ComponentRouter])

	UpdateComponent(ComponentRouter, true, "")
	assert.Equal(t, StatusReady, GetReadiness().Status)
}

func TestHealthHandler(t *testing.T) {
	resetHealth()
	UpdateComponent(ComponentRouter, true, "")
	UpdateComponent(BackendComponent("arcconf"), false, "arcconf tool not found")

	rec := httptest.NewRecorder()
	HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusDegraded, body.Status)

	UpdateComponent(ComponentRouter, false, "unregistered")
	rec = httptest.NewRecorder()
	HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadyHandler(t *testing.T) {
	resetHealth()

	rec := httptest.NewRecorder()
	ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	UpdateComponent(ComponentRouter, true, "")
	rec = httptest.NewRecorder()
	ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
