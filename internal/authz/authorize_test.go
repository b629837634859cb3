package authz

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorizeCombinators(t *testing.T) {
	m := DefaultMatrix()

	cases := []struct {
		name  string
		role  Role
		perms []Permission
		comb  Combinator
		want  bool
	}{
		{"and all granted", Operator, []Permission{ReadMachines, UpdateMachines}, And, true},
		{"and one missing", Technician, []Permission{ReadMachines, DeleteMachines}, And, false},
		{"or one granted", Technician, []Permission{DeleteMachines, ReadMachines}, Or, true},
		{"or none granted", Technician, []Permission{DeleteMachines, CreateUsers}, Or, false},
		{"empty and", Technician, nil, And, true},
		{"empty or", Technician, nil, Or, true},
		{"unset combinator means and", Technician, []Permission{ReadMachines, DeleteMachines}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, m.Authorize(tc.role, tc.perms, tc.comb))
		})
	}
}

func TestAuthorizeMatchesHasPermission(t *testing.T) {
	m := DefaultMatrix()
	perms := []Permission{ReadItems, CreateItems, DeleteItems, UpdateMachinePrices}
	for _, role := range m.Roles() {
		all, anyOf := true, false
		for _, p := range perms {
			has := m.HasPermission(role, p)
			all = all && has
			anyOf = anyOf || has
		}
		require.Equal(t, all, m.Authorize(role, perms, And), role)
		require.Equal(t, anyOf, m.Authorize(role, perms, Or), role)
	}
}

func TestEnforceWithoutIdentity(t *testing.T) {
	err := DefaultMatrix().Enforce(context.Background(), *All(DeleteMachines))

	var authErr *AuthenticationRequiredError
	require.True(t, errors.As(err, &authErr))
	require.ErrorIs(t, err, ErrAuthenticationRequired)
	require.Equal(t, CodeUnauthenticated, authErr.Code())
	require.Equal(t, http.StatusUnauthorized, authErr.Status())
	require.Equal(t, []Permission{DeleteMachines}, authErr.Required)
	require.Equal(t, And, authErr.Combinator)
}

func TestEnforceDenied(t *testing.T) {
	ctx := ContextWithIdentity(context.Background(), &Identity{UserID: "u1", Role: Technician})
	err := DefaultMatrix().Enforce(ctx, *All(DeleteMachines))

	var denied *PermissionDeniedError
	require.True(t, errors.As(err, &denied))
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.Equal(t, CodeForbidden, denied.Code())
	require.Equal(t, http.StatusForbidden, denied.Status())
	require.Equal(t, Technician, denied.Role)
	require.Equal(t, []Permission{DeleteMachines}, denied.Required)
	require.Equal(t, DefaultMatrix().Granted(Technician), denied.Granted)
	require.Contains(t, err.Error(), "DELETE_MACHINES")
}

func TestEnforceGranted(t *testing.T) {
	ctx := ContextWithIdentity(context.Background(), &Identity{UserID: "u1", Role: Operator})
	require.NoError(t, DefaultMatrix().Enforce(ctx, *Any(UpdateItems, UpdateMachinePrices)))
	require.NoError(t, DefaultMatrix().Enforce(ctx, Requirement{}))
}

func TestEnforceUnknownRoleDenied(t *testing.T) {
	ctx := ContextWithIdentity(context.Background(), &Identity{UserID: "u1", Role: Role("GUEST")})
	err := DefaultMatrix().Enforce(ctx, *All(ReadItems))
	require.ErrorIs(t, err, ErrPermissionDenied)
}
