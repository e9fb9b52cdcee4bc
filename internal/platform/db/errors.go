package db

import (
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store error taxonomy. Repositories translate driver failures into these
// sentinels and services wrap them with context; callers branch with
// errors.Is and decide whether to reject, report a conflict, or retry.
var (
	// ErrInvalid marks malformed or out-of-range input rejected before any
	// write is attempted.
	ErrInvalid = errors.New("invalid input")

	// ErrConflict marks a write that would violate a uniqueness constraint.
	ErrConflict = errors.New("conflict with existing record")

	// ErrNotFound marks an operation that targets a row that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrReferential marks a child row that names a parent which does not exist.
	ErrReferential = errors.New("referenced record does not exist")

	// ErrUnavailable marks a transient connectivity failure. Safe to retry.
	ErrUnavailable = errors.New("database unavailable")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// TranslateError maps a pgx/pgconn failure onto the store taxonomy. Errors
// that fit no category pass through unchanged. Constraint enforcement lives
// in the database, so this translation is where concurrent-writer races
// surface as ErrConflict or ErrReferential rather than raw driver errors.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrReferential, pgErr.ConstraintName)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return err
}
