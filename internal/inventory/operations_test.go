package inventory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/instamunch/instamunch-api/internal/authz"
	"github.com/instamunch/instamunch-api/internal/mutation"
	"github.com/instamunch/instamunch-api/internal/ops"
)

func newTestRegistry(t *testing.T, repo *memoryRepo) *ops.Registry {
	t.Helper()
	reg := ops.NewRegistry(ops.RequirePermissions(authz.DefaultMatrix()))
	require.NoError(t, Register(reg, newTestService(repo, nil)))
	return reg
}

func as(role authz.Role) context.Context {
	return authz.ContextWithIdentity(context.Background(), &authz.Identity{UserID: "u1", Role: role})
}

func TestTechnicianCannotDeleteMachine(t *testing.T) {
	repo := seededRepo()
	reg := newTestRegistry(t, repo)

	_, err := reg.Invoke(as(authz.Technician), "deleteMachine", json.RawMessage(`{"id":"m1"}`))
	var denied *authz.PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, []authz.Permission{authz.DeleteMachines}, denied.Required)
	require.Equal(t, 0, repo.txCount)
	require.Len(t, repo.machines, 1)
}

func TestMissingRoleRequiresAuthentication(t *testing.T) {
	repo := seededRepo()
	reg := newTestRegistry(t, repo)

	_, err := reg.Invoke(as(""), "getMachines", nil)
	require.ErrorIs(t, err, authz.ErrAuthenticationRequired)

	_, err = reg.Invoke(context.Background(), "updateMachineItems", json.RawMessage(`{"machineId":"m1","itemIds":["i1"]}`))
	require.ErrorIs(t, err, authz.ErrAuthenticationRequired)
	require.Equal(t, 0, repo.txCount)
}

func TestAdministratorReplacesMachineItems(t *testing.T) {
	repo := seededRepo()
	reg := newTestRegistry(t, repo)

	out, err := reg.Invoke(as(authz.Administrator), "updateMachineItems", json.RawMessage(`{"machineId":"m1","itemIds":["i1","i2"]}`))
	require.NoError(t, err)
	resp, ok := out.(mutation.Response)
	require.True(t, ok)
	require.True(t, resp.Success)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	var decoded struct {
		Code         string            `json:"code"`
		Success      bool              `json:"success"`
		MachineItems []json.RawMessage `json:"machineItems"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Equal(t, "200", decoded.Code)
	require.Len(t, decoded.MachineItems, 2)
}

func TestOperatorUpdatesPriceThroughAlternativePermission(t *testing.T) {
	reg := newTestRegistry(t, seededRepo())

	_, err := reg.Invoke(as(authz.Technician), "updateItemPrice", json.RawMessage(`{"id":"i1","basePrice":1.75}`))
	require.ErrorIs(t, err, authz.ErrPermissionDenied)

	out, err := reg.Invoke(as(authz.Operator), "updateItemPrice", json.RawMessage(`{"id":"i1","basePrice":1.75}`))
	require.NoError(t, err)
	require.True(t, out.(mutation.Response).Success)
}

func TestTechnicianReadsItemsByMachine(t *testing.T) {
	reg := newTestRegistry(t, seededRepo())

	out, err := reg.Invoke(as(authz.Technician), "getItemsByMachine", json.RawMessage(`{"machineId":"m1"}`))
	require.NoError(t, err)
	require.NotNil(t, out)
}

func TestEveryOperationDeclaresRequirement(t *testing.T) {
	reg := newTestRegistry(t, seededRepo())

	defs := reg.Definitions()
	require.NotEmpty(t, defs)
	for _, def := range defs {
		require.NotNil(t, def.Requirement, def.Name)
		require.NotEmpty(t, def.Requirement.Permissions, def.Name)
	}
}
