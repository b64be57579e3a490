package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/go-chi/chi/v5"
)

// Query parameters of the list endpoints
const (
	ParamSearchKey   = "search_key"
	ParamSearchValue = "search_value"
)

// InfoResponse is returned by /v1/info
type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ErrorResponse carries a storage error to the client
type ErrorResponse struct {
	Code    string `json:"code"`
	Number  int    `json:"number"`
	Message string `json:"message"`
}

// statusFor maps a storage error code to an HTTP status
func statusFor(code errdefs.Code) int {
	switch code {
	case errdefs.InvalidArgument:
		return http.StatusBadRequest
	case errdefs.NoSupport:
		return http.StatusNotImplemented
	case errdefs.NotFoundSystem, errdefs.NotFoundPool, errdefs.NotFoundVolume,
		errdefs.NotFoundDisk, errdefs.NotFoundFS, errdefs.NotFoundNFSExport:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, ok := errdefs.CodeOf(err)
	if !ok {
		code = errdefs.PluginBug
	}
	resp := ErrorResponse{Code: code.String(), Number: int(code), Message: err.Error()}

	s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, statusFor(code), resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// listHandler serves a collection query, passing search_key and
// search_value through to the router
func listHandler[T any](s *Server, list func(context.Context, string, string, backend.Flags) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		items, err := list(r.Context(), q.Get(ParamSearchKey), q.Get(ParamSearchValue), backend.FlagReserved)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	name, version := s.inventory.Info()
	writeJSON(w, http.StatusOK, InfoResponse{Name: name, Version: version})
}

func (s *Server) handleSystems(w http.ResponseWriter, r *http.Request) {
	systems, err := s.inventory.Systems(r.Context(), backend.FlagReserved)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, systems)
}

// handleCapabilities returns the supported capability numbers of a system
func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	system := &types.System{ID: chi.URLParam(r, "id")}
	caps, err := s.inventory.Capabilities(r.Context(), system, backend.FlagReserved)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, caps.List())
}

func (s *Server) handleExportAuth(w http.ResponseWriter, r *http.Request) {
	auth, err := s.inventory.ExportAuth(r.Context(), backend.FlagReserved)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auth)
}
