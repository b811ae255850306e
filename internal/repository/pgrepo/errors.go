package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dinebook/dinebook/internal/domain"
)

const (
	uniqueViolationCode = "23505"
	checkViolationCode  = "23514"
)

// convertErr funnels driver errors into the domain taxonomy:
//   - pgx.ErrNoRows -> domain.ErrRecordNotFound
//   - unique constraint violations -> domain.ErrDuplicateKey
//   - check constraint violations (non-negative balance) -> domain.ErrNotEnoughBalance
//   - everything else -> domain.ErrUnknown with the original message
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	// Errors already in the domain taxonomy pass through untouched.
	if errors.Is(err, domain.ErrRecordNotFound) || errors.Is(err, domain.ErrNotEnoughBalance) {
		return fmt.Errorf("[repository/%s] %w", msg, err)
	}

	var pgErr *pgconn.PgError
	errType := domain.ErrUnknown

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case checkViolationCode:
			errType = domain.ErrNotEnoughBalance
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}
