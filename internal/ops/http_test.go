package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/instamunch/instamunch-api/internal/authz"
	_ "github.com/instamunch/instamunch-api/testing"
)

func newTestServer(t *testing.T, role authz.Role, expose bool) *chi.Mux {
	t.Helper()
	calls := 0
	reg := newGuardedRegistry(t, &calls)
	h := NewHandler(reg, nil, expose)

	r := chi.NewRouter()
	if role != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := authz.ContextWithIdentity(req.Context(), &authz.Identity{UserID: "u1", Role: role})
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}
	r.Route("/ops", h.MountRoutes)
	return r
}

func post(t *testing.T, h http.Handler, op, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ops/"+op, strings.NewReader(body)).WithContext(context.Background())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestHTTPInvokeSuccess(t *testing.T) {
	rr := post(t, newTestServer(t, authz.Administrator, false), "deleteMachine", `{"id":"m1"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"data":"deleted m1"}`, rr.Body.String())
}

func TestHTTPInvokeUnauthenticated(t *testing.T) {
	rr := post(t, newTestServer(t, "", false), "deleteMachine", `{"id":"m1"}`)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	body := decode(t, rr)
	require.Equal(t, authz.CodeUnauthenticated, body["code"])
	require.Equal(t, []any{"DELETE_MACHINES"}, body["requiredPermissions"])
	require.Equal(t, "AND", body["combinator"])
}

func TestHTTPInvokeForbiddenRedactsDetails(t *testing.T) {
	rr := post(t, newTestServer(t, authz.Technician, false), "deleteMachine", `{"id":"m1"}`)
	require.Equal(t, http.StatusForbidden, rr.Code)

	body := decode(t, rr)
	require.Equal(t, authz.CodeForbidden, body["code"])
	require.Equal(t, []any{"DELETE_MACHINES"}, body["requiredPermissions"])
	require.NotContains(t, body, "role")
	require.NotContains(t, body, "grantedPermissions")
}

func TestHTTPInvokeForbiddenExposesDetails(t *testing.T) {
	rr := post(t, newTestServer(t, authz.Technician, true), "deleteMachine", `{"id":"m1"}`)
	require.Equal(t, http.StatusForbidden, rr.Code)

	body := decode(t, rr)
	require.Equal(t, "TECHNICIAN", body["role"])
	granted, ok := body["grantedPermissions"].([]any)
	require.True(t, ok)
	require.Len(t, granted, len(authz.DefaultMatrix().Granted(authz.Technician)))
}

func TestHTTPUnknownOperationAndBadInput(t *testing.T) {
	srv := newTestServer(t, authz.Administrator, false)

	rr := post(t, srv, "launchRocket", `{}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = post(t, srv, "deleteMachine", `not json`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHTTPCatalog(t *testing.T) {
	srv := newTestServer(t, "", false)
	req := httptest.NewRequest(http.MethodGet, "/ops/", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		Operations []struct {
			Name        string             `json:"name"`
			Requirement *authz.Requirement `json:"requirement"`
		} `json:"operations"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Operations, 3)
	require.Equal(t, "deleteMachine", out.Operations[0].Name)
	require.Equal(t, authz.And, out.Operations[0].Requirement.Combinator)
	require.Equal(t, "ping", out.Operations[1].Name)
	require.Nil(t, out.Operations[1].Requirement)
	require.Equal(t, authz.Or, out.Operations[2].Requirement.Combinator)
}
