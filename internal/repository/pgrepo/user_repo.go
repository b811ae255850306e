package pgrepo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/repository/repoargs"
	"github.com/dinebook/dinebook/pkg/uow"
)

const userColumns = `id, created_at, updated_at, username, encrypted_password, role, loyalty_points, total_spent`

type UserRepository struct {
	conn uow.DBTX
}

func NewUserRepository(conn uow.DBTX) *UserRepository {
	return &UserRepository{conn: conn}
}

// CreateUser inserts a user. Returns domain.ErrDuplicateKey on a username
// conflict.
func (u *UserRepository) CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error) {
	row := u.conn.QueryRow(ctx,
		`INSERT INTO users (username, encrypted_password, role)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		args.Username, args.Password, args.Role,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user %s", args.Username)
	}
	return user, nil
}

func (u *UserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := u.conn.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by username %s", username)
	}
	return user, nil
}

func (u *UserRepository) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.conn.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return user, nil
}

// LockUser reads a user row under FOR UPDATE, serializing concurrent
// ledger-affecting operations on the same user within a transaction.
func (u *UserRepository) LockUser(ctx context.Context, id int64) (*domain.User, error) {
	row := u.conn.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "locking user %d", id)
	}
	return user, nil
}

// AdjustPoints moves the cached point balance by delta. The guard keeps
// the balance from ever going below zero: when it would, no row matches
// and domain.ErrNotEnoughBalance is returned.
func (u *UserRepository) AdjustPoints(ctx context.Context, id int64, delta int64) (*domain.User, error) {
	row := u.conn.QueryRow(ctx,
		`UPDATE users
		 SET loyalty_points = loyalty_points + $2, updated_at = now()
		 WHERE id = $1 AND loyalty_points + $2 >= 0
		 RETURNING `+userColumns,
		id, delta,
	)
	user, err := scanUser(row)
	if err == nil {
		return user, nil
	}

	// No matching row: distinguish a missing user from a guard rejection.
	if _, findErr := u.FindUserByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, convertErr(domain.ErrNotEnoughBalance, "adjusting points for user %d by %d", id, delta)
}

func (u *UserRepository) IncrementTotalSpent(ctx context.Context, id int64, amount decimal.Decimal) error {
	tag, err := u.conn.Exec(ctx,
		`UPDATE users SET total_spent = total_spent + $2, updated_at = now() WHERE id = $1`,
		id, amount,
	)
	if err != nil {
		return convertErr(err, "incrementing total spent for user %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(domain.ErrRecordNotFound, "incrementing total spent for user %d", id)
	}
	return nil
}

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
		&user.Username, &user.EncryptedPassword, &user.Role,
		&user.LoyaltyPoints, &user.TotalSpent,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &user, nil
}
