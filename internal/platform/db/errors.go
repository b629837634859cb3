package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/instamunch/instamunch-api/internal/shared"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// MapError translates driver errors into shared sentinels. subject names the
// record involved, e.g. "machine m1".
func MapError(err error, subject string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %w", subject, shared.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s %w: %s already exists", subject, shared.ErrConflict, constraintSubject(pgErr))
		case codeForeignKeyViolation:
			if strings.HasPrefix(pgErr.Message, "update or delete") {
				return fmt.Errorf("%s %w: still referenced by %s", subject, shared.ErrConflict, pgErr.TableName)
			}
			return fmt.Errorf("%s %w: referenced record does not exist (%s)", subject, shared.ErrValidation, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", subject, err)
}

func constraintSubject(pgErr *pgconn.PgError) string {
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return pgErr.TableName
}
