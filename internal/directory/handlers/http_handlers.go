package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gartstein/bawsala/internal/directory/auth"
	"github.com/gartstein/bawsala/internal/directory/controller"
	"github.com/gartstein/bawsala/internal/directory/models"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

// DirectoryController defines the business logic interface
// that the gRPC/HTTP handlers will invoke.
type DirectoryController interface {
	View(ctx context.Context, state controller.ViewState) controller.View
	Search(ctx context.Context, query string) (models.SearchResultSet, error)
	Get(id string) (models.Company, error)
	Download() (string, []byte, error)
	Status() controller.Status
	Reload(ctx context.Context) error
}

// HTTPHandler serves the JSON API.
type HTTPHandler struct {
	service DirectoryController
	logger  *zap.Logger
}

func NewHTTPHandler(service DirectoryController, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		logger:  logger.Named("http_handler"),
	}
}

// Register binds every route on mux.
func (h *HTTPHandler) Register(mux *runtime.ServeMux) error {
	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/v1/directory", h.directory},
		{http.MethodGet, "/v1/search", h.search},
		{http.MethodGet, "/v1/companies.json", h.download},
		{http.MethodGet, "/v1/companies/{id}", h.company},
		{http.MethodGet, "/v1/status", h.status},
		{http.MethodPost, auth.ReloadPath, h.reload},
	}
	for _, r := range routes {
		if err := mux.HandlePath(r.method, r.pattern, r.handler); err != nil {
			return fmt.Errorf("failed to register %s %s: %w", r.method, r.pattern, err)
		}
	}
	return nil
}

func (h *HTTPHandler) directory(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	state, err := viewRequestFromQuery(r.URL.Query()).toState()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.View(r.Context(), state))
}

func (h *HTTPHandler) search(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	res, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSearchResponse(res))
}

func (h *HTTPHandler) company(w http.ResponseWriter, _ *http.Request, pathParams map[string]string) {
	company, err := h.service.Get(pathParams["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, company)
}

func (h *HTTPHandler) download(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	filename, data, err := h.service.Download()
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("Failed to write download", zap.Error(err))
	}
}

func (h *HTTPHandler) status(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	h.writeJSON(w, http.StatusOK, h.service.Status())
}

func (h *HTTPHandler) reload(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	h.logger.Info("Catalog reload requested", zap.String("subject", auth.Subject(r.Context())))
	if err := h.service.Reload(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.Status())
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	code := httpStatus(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("Internal server error", zap.Error(err))
	}
	h.writeJSON(w, code, errorResponse{Error: err.Error()})
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to encode response", zap.Error(err))
	}
}
