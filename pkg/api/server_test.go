package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInventory struct {
	lastKey   string
	lastValue string
	err       error
}

func (f *fakeInventory) Info() (string, string) { return "Local Pseudo Plugin", "1.0.0" }

func (f *fakeInventory) Systems(context.Context, backend.Flags) ([]*types.System, error) {
	return []*types.System{{ID: "SV0001", Name: "controller"}}, f.err
}

func (f *fakeInventory) Capabilities(_ context.Context, system *types.System, _ backend.Flags) (*types.Capabilities, error) {
	if system.ID != "SV0001" {
		return nil, errdefs.New(errdefs.NotFoundSystem, "System not found")
	}
	return types.NewCapabilities(types.CapVolumeDelete, types.CapVolumes), nil
}

func (f *fakeInventory) Disks(_ context.Context, key, value string, _ backend.Flags) ([]*types.Disk, error) {
	f.lastKey, f.lastValue = key, value
	if f.err != nil {
		return nil, f.err
	}
	return []*types.Disk{{ID: "d0", SystemID: "SV0001"}}, nil
}

func (f *fakeInventory) Pools(context.Context, string, string, backend.Flags) ([]*types.Pool, error) {
	return []*types.Pool{}, nil
}

func (f *fakeInventory) Volumes(context.Context, string, string, backend.Flags) ([]*types.Volume, error) {
	return nil, errdefs.New(errdefs.InvalidArgument, `unsupported search key "fs_id"`)
}

func (f *fakeInventory) Batteries(context.Context, string, string, backend.Flags) ([]*types.Battery, error) {
	return []*types.Battery{}, nil
}

func (f *fakeInventory) FileSystems(context.Context, string, string, backend.Flags) ([]*types.FileSystem, error) {
	return []*types.FileSystem{}, nil
}

func (f *fakeInventory) Exports(context.Context, string, string, backend.Flags) ([]*types.NfsExport, error) {
	return nil, errdefs.New(errdefs.NoSupport, "NFS plugin is not loaded")
}

func (f *fakeInventory) ExportAuth(context.Context, backend.Flags) ([]string, error) {
	return nil, errdefs.New(errdefs.NoSupport, "NFS plugin is not loaded")
}

func get(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestInfo(t *testing.T) {
	h := NewServer(&fakeInventory{}).Handler()

	w := get(t, h, http.MethodGet, "/v1/info")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp InfoResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Local Pseudo Plugin", resp.Name)
	assert.Equal(t, "1.0.0", resp.Version)
}

func TestListPassesSearchThrough(t *testing.T) {
	inv := &fakeInventory{}
	h := NewServer(inv).Handler()

	w := get(t, h, http.MethodGet, "/v1/disks?search_key=system_id&search_value=SV0001")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "system_id", inv.lastKey)
	assert.Equal(t, "SV0001", inv.lastValue)

	var disks []*types.Disk
	require.NoError(t, json.NewDecoder(w.Body).Decode(&disks))
	require.Len(t, disks, 1)
	assert.Equal(t, "d0", disks[0].ID)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		path string
		want int
		code string
	}{
		{path: "/v1/volumes?search_key=fs_id", want: http.StatusBadRequest, code: "INVALID_ARGUMENT"},
		{path: "/v1/exports", want: http.StatusNotImplemented, code: "NO_SUPPORT"},
		{path: "/v1/exports/auth", want: http.StatusNotImplemented, code: "NO_SUPPORT"},
		{path: "/v1/systems/NOPE/capabilities", want: http.StatusNotFound, code: "NOT_FOUND_SYSTEM"},
	}

	h := NewServer(&fakeInventory{}).Handler()
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(t, h, http.MethodGet, tt.path)
			assert.Equal(t, tt.want, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestUnexpectedErrorIsInternal(t *testing.T) {
	h := NewServer(&fakeInventory{err: assert.AnError}).Handler()

	w := get(t, h, http.MethodGet, "/v1/disks")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "PLUGIN_BUG", resp.Code)
	assert.Equal(t, 2, resp.Number)
}

func TestCapabilities(t *testing.T) {
	h := NewServer(&fakeInventory{}).Handler()

	w := get(t, h, http.MethodGet, "/v1/systems/SV0001/capabilities")
	require.Equal(t, http.StatusOK, w.Code)

	var caps []types.Capability
	require.NoError(t, json.NewDecoder(w.Body).Decode(&caps))
	assert.Equal(t, []types.Capability{types.CapVolumes, types.CapVolumeDelete}, caps)
}

func TestReadOnly(t *testing.T) {
	h := NewServer(&fakeInventory{}).Handler()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := get(t, h, method, "/v1/disks")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	h := NewServer(&fakeInventory{}).Handler()

	for _, path := range []string{"/health", "/metrics"} {
		w := get(t, h, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	w := get(t, h, http.MethodGet, "/ready")
	assert.Contains(t, []int{http.StatusOK, http.StatusServiceUnavailable}, w.Code)
}

func TestStopWithoutStart(t *testing.T) {
	s := NewServer(&fakeInventory{})
	assert.NoError(t, s.Stop(context.Background()))
}

func TestStartAfterStop(t *testing.T) {
	s := NewServer(&fakeInventory{})
	require.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, s.Start("127.0.0.1:0"))
}
