package ops

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/instamunch/instamunch-api/internal/authz"
	"github.com/instamunch/instamunch-api/internal/platform/httpx"
)

const maxInputBytes = 1 << 20

// HTTPHandler exposes the registry over HTTP.
type HTTPHandler struct {
	registry      *Registry
	logger        *slog.Logger
	exposeDetails bool
}

// NewHandler constructs the transport. When exposeDetails is false, denial
// responses omit the caller's role and granted permissions.
func NewHandler(registry *Registry, logger *slog.Logger, exposeDetails bool) *HTTPHandler {
	return &HTTPHandler{registry: registry, logger: logger, exposeDetails: exposeDetails}
}

// MountRoutes registers operation routes.
func (h *HTTPHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.catalog)
	r.Post("/{operation}", h.invoke)
}

type catalogEntry struct {
	Name        string             `json:"name"`
	Kind        Kind               `json:"kind"`
	Description string             `json:"description,omitempty"`
	Requirement *authz.Requirement `json:"requirement"`
}

func (h *HTTPHandler) catalog(w http.ResponseWriter, r *http.Request) {
	defs := h.registry.Definitions()
	entries := make([]catalogEntry, 0, len(defs))
	for _, def := range defs {
		entries = append(entries, catalogEntry{
			Name:        def.Name,
			Kind:        def.Kind,
			Description: def.Description,
			Requirement: def.Requirement,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"operations": entries})
}

func (h *HTTPHandler) invoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "operation")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInputBytes))
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("read operation input", slog.String("operation", name), slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusRequestEntityTooLarge, "Invalid Input", "request body too large")
		return
	}
	result, err := h.registry.Invoke(r.Context(), name, body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": result})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	var unauthenticated *authz.AuthenticationRequiredError
	var denied *authz.PermissionDeniedError
	switch {
	case errors.As(err, &unauthenticated):
		httpx.ProblemWith(w, httpx.ProblemDetail{
			Title:  "Unauthenticated",
			Status: unauthenticated.Status(),
			Detail: err.Error(),
			Extensions: map[string]any{
				"code":                unauthenticated.Code(),
				"requiredPermissions": unauthenticated.Required,
				"combinator":          unauthenticated.Combinator,
			},
		})
	case errors.As(err, &denied):
		ext := map[string]any{
			"code":                denied.Code(),
			"requiredPermissions": denied.Required,
			"combinator":          denied.Combinator,
		}
		if h.exposeDetails {
			ext["role"] = denied.Role
			ext["grantedPermissions"] = denied.Granted
		}
		httpx.ProblemWith(w, httpx.ProblemDetail{
			Title:      "Forbidden",
			Status:     denied.Status(),
			Detail:     "insufficient permissions",
			Extensions: ext,
		})
	case errors.Is(err, ErrUnknownOperation):
		httpx.Problem(w, http.StatusNotFound, "Unknown Operation", err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
