package users

import (
	"github.com/instamunch/instamunch-api/internal/authz"
	"github.com/instamunch/instamunch-api/internal/ops"
)

// Register declares the user operations.
func Register(reg *ops.Registry, svc *Service) error {
	return reg.Register(
		ops.Definition{Name: "me", Description: "The calling user, null when anonymous", Handler: ops.NoInput(svc.Me)},
		ops.Definition{Name: "getUsers", Description: "List users", Requirement: authz.All(authz.ReadUsers), Handler: ops.NoInput(svc.Users)},
		ops.Definition{Name: "getUser", Description: "Get a user", Requirement: authz.All(authz.ReadUsers), Handler: ops.Typed(svc.User)},
		ops.Definition{Name: "createUser", Kind: ops.Mutation, Requirement: authz.All(authz.CreateUsers), Handler: ops.Typed(svc.CreateUser)},
		ops.Definition{Name: "updateUser", Kind: ops.Mutation, Requirement: authz.All(authz.UpdateUsers), Handler: ops.Typed(svc.UpdateUser)},
		ops.Definition{Name: "updateUserRole", Kind: ops.Mutation, Description: "Reassign a user's role", Requirement: authz.All(authz.UpdateUsers, authz.CreateUsers), Handler: ops.Typed(svc.UpdateUserRole)},
		ops.Definition{Name: "deleteUser", Kind: ops.Mutation, Requirement: authz.All(authz.DeleteUsers), Handler: ops.Typed(svc.DeleteUser)},
	)
}
