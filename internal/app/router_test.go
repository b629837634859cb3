package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/instamunch/instamunch-api/internal/auth"
	"github.com/instamunch/instamunch-api/internal/authz"
	"github.com/instamunch/instamunch-api/internal/observability"
	"github.com/instamunch/instamunch-api/internal/ops"
	"github.com/instamunch/instamunch-api/internal/shared"
	"github.com/instamunch/instamunch-api/jobs"
	_ "github.com/instamunch/instamunch-api/testing"
)

type stubSource map[string]authz.Role

func (s stubSource) Identity(_ context.Context, userID string) (authz.Identity, error) {
	role, ok := s[userID]
	if !ok {
		return authz.Identity{}, fmt.Errorf("user %s %w", userID, shared.ErrNotFound)
	}
	return authz.Identity{UserID: userID, Role: role}, nil
}

func newTestRouter(t *testing.T, cfg *Config) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	reg := ops.NewRegistry(ops.RequirePermissions(authz.DefaultMatrix()))
	reg.MustRegister(
		ops.Definition{Name: "whoami", Handler: ops.NoInput(func(ctx context.Context) (string, error) {
			if id := authz.IdentityFromContext(ctx); id != nil {
				return string(id.Role), nil
			}
			return "anonymous", nil
		})},
		ops.Definition{Name: "deleteMachine", Kind: ops.Mutation, Requirement: authz.All(authz.DeleteMachines), Handler: ops.NoInput(func(context.Context) (string, error) {
			return "deleted", nil
		})},
	)
	source := stubSource{"u-admin": authz.Administrator, "u-tech": authz.Technician}
	return NewRouter(RouterParams{
		Logger:     logger,
		Config:     cfg,
		Verifier:   auth.NewVerifier(testSecret),
		Resolver:   auth.NewResolver(source, nil, logger),
		Operations: ops.NewHandler(reg, logger, false),
		JobHandler: jobs.NewHandler(nil, logger),
		Metrics:    observability.NewMetrics(),
	})
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + raw
}

func invoke(t *testing.T, h http.Handler, op, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ops/"+op, strings.NewReader(`{}`))
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthz(t *testing.T) {
	h := newTestRouter(t, &Config{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRouterResolvesBearerIdentity(t *testing.T) {
	h := newTestRouter(t, &Config{})

	rr := invoke(t, h, "whoami", bearer(t, "u-tech"))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"data":"TECHNICIAN"}`, rr.Body.String())
	require.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))

	rr = invoke(t, h, "whoami", bearer(t, "u-gone"))
	require.JSONEq(t, `{"data":"anonymous"}`, rr.Body.String())
}

func TestRouterEnforcesRequirements(t *testing.T) {
	h := newTestRouter(t, &Config{})

	require.Equal(t, http.StatusUnauthorized, invoke(t, h, "deleteMachine", "").Code)
	require.Equal(t, http.StatusForbidden, invoke(t, h, "deleteMachine", bearer(t, "u-tech")).Code)
	require.Equal(t, http.StatusOK, invoke(t, h, "deleteMachine", bearer(t, "u-admin")).Code)
}

func TestRouterRateLimit(t *testing.T) {
	h := newTestRouter(t, &Config{RateLimitPerMinute: 2})

	require.Equal(t, http.StatusOK, invoke(t, h, "whoami", "").Code)
	require.Equal(t, http.StatusOK, invoke(t, h, "whoami", "").Code)
	rr := invoke(t, h, "whoami", "")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestRouterJobsHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t, &Config{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &health))
	require.Equal(t, jobs.QueueDefault, health["queue"])

	invoke(t, h, "whoami", "")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "instamunch_http_requests_total")
}
