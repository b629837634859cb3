package authz

import "context"

// Combinator selects how a list of required permissions is evaluated.
type Combinator string

const (
	// And requires every listed permission. It is the default.
	And Combinator = "AND"
	// Or requires at least one listed permission.
	Or Combinator = "OR"
)

// Requirement is the authorization metadata attached to an operation.
type Requirement struct {
	Permissions []Permission `json:"permissions"`
	Combinator  Combinator   `json:"combinator"`
}

// All builds a Requirement satisfied only when every permission is granted.
func All(perms ...Permission) *Requirement {
	return &Requirement{Permissions: perms, Combinator: And}
}

// Any builds a Requirement satisfied when at least one permission is granted.
func Any(perms ...Permission) *Requirement {
	return &Requirement{Permissions: perms, Combinator: Or}
}

func (r Requirement) combinator() Combinator {
	if r.Combinator == Or {
		return Or
	}
	return And
}

// Authorize evaluates perms against role using c. An empty list authorizes.
func (m *Matrix) Authorize(role Role, perms []Permission, c Combinator) bool {
	if len(perms) == 0 {
		return true
	}
	if c == Or {
		for _, p := range perms {
			if m.HasPermission(role, p) {
				return true
			}
		}
		return false
	}
	for _, p := range perms {
		if !m.HasPermission(role, p) {
			return false
		}
	}
	return true
}

// Enforce gates an operation on the identity carried by ctx. It returns
// *AuthenticationRequiredError when no identity is present and
// *PermissionDeniedError when the identity's role does not satisfy req.
func (m *Matrix) Enforce(ctx context.Context, req Requirement) error {
	comb := req.combinator()
	required := append([]Permission(nil), req.Permissions...)

	id := IdentityFromContext(ctx)
	if id == nil || id.Role == "" {
		return &AuthenticationRequiredError{Required: required, Combinator: comb}
	}
	if !m.Knows(id.Role) {
		return &PermissionDeniedError{Role: id.Role, Required: required, Combinator: comb}
	}
	if m.Authorize(id.Role, required, comb) {
		return nil
	}
	return &PermissionDeniedError{
		Role:       id.Role,
		Granted:    m.Granted(id.Role),
		Required:   required,
		Combinator: comb,
	}
}
