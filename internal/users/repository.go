package users

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/instamunch/instamunch-api/internal/platform/db"
	"github.com/instamunch/instamunch-api/internal/record"
)

// Repository abstracts user persistence.
type Repository interface {
	ListUsers(ctx context.Context) ([]record.User, error)
	GetUser(ctx context.Context, id string) (record.User, error)
	InsertUser(ctx context.Context, u NewUser) (record.User, error)
	UpdateUser(ctx context.Context, c UserChanges) (record.User, error)
	DeleteUser(ctx context.Context, id string) (record.User, error)
}

const userColumns = "id, email, name, role, password_hash, created_at, updated_at"

func scanUser(row pgx.Row) (record.User, error) {
	var u record.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListUsers returns all users ordered by creation.
func (r *PGRepository) ListUsers(ctx context.Context) ([]record.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, db.MapError(err, "users")
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (record.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, db.MapError(err, "users")
	}
	if out == nil {
		out = []record.User{}
	}
	return out, nil
}

func (r *PGRepository) GetUser(ctx context.Context, id string) (record.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, db.MapError(err, "user "+id)
}

func (r *PGRepository) InsertUser(ctx context.Context, in NewUser) (record.User, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO users (id, email, name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5) RETURNING `+userColumns, in.ID, in.Email, in.Name, in.Role, in.PasswordHash)
	u, err := scanUser(row)
	return u, db.MapError(err, "user "+in.Email)
}

func (r *PGRepository) UpdateUser(ctx context.Context, c UserChanges) (record.User, error) {
	row := r.pool.QueryRow(ctx, `UPDATE users SET
			email = COALESCE($2, email),
			name = COALESCE($3, name),
			role = COALESCE($4, role),
			password_hash = COALESCE($5, password_hash),
			updated_at = NOW()
		WHERE id = $1 RETURNING `+userColumns, c.ID, c.Email, c.Name, c.Role, c.PasswordHash)
	u, err := scanUser(row)
	return u, db.MapError(err, "user "+c.ID)
}

func (r *PGRepository) DeleteUser(ctx context.Context, id string) (record.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id))
	return u, db.MapError(err, "user "+id)
}
