package users

// IDInput addresses a single user.
type IDInput struct {
	ID string `json:"id" validate:"required"`
}

// CreateUserInput registers an account. Role is parsed case-insensitively.
type CreateUserInput struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     *string `json:"name"`
	Role     string  `json:"role" validate:"required"`
	Password string  `json:"password" validate:"required,min=8"`
}

// UpdateUserInput changes the provided fields only. Roles change through
// UpdateUserRoleInput.
type UpdateUserInput struct {
	ID       string  `json:"id" validate:"required"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Name     *string `json:"name"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

// UpdateUserRoleInput reassigns a user's role.
type UpdateUserRoleInput struct {
	ID   string `json:"id" validate:"required"`
	Role string `json:"role" validate:"required"`
}

// NewUser is a validated account ready for insertion.
type NewUser struct {
	ID           string
	Email        string
	Name         *string
	Role         string
	PasswordHash string
}

// UserChanges is a validated partial update. Nil fields are left unchanged.
type UserChanges struct {
	ID           string
	Email        *string
	Name         *string
	Role         *string
	PasswordHash *string
}
