package testutils

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/repository/repoargs"
)

type MemoryUserRepository struct {
	store *Store
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, args repoargs.CreateUser) (*domain.User, error) {
	for _, existing := range r.store.Users {
		if existing.Username == args.Username {
			return nil, fmt.Errorf("creating user %s: %w", args.Username, domain.ErrDuplicateKey)
		}
	}

	now := r.store.Now()
	user := domain.User{
		ID:                r.store.NextID(),
		CreatedAt:         now,
		UpdatedAt:         now,
		Username:          args.Username,
		EncryptedPassword: args.Password,
		Role:              args.Role,
		TotalSpent:        decimal.Zero,
	}
	r.store.Users[user.ID] = user
	return &user, nil
}

func (r *MemoryUserRepository) FindUserByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.store.Users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("finding user %s: %w", username, domain.ErrRecordNotFound)
}

func (r *MemoryUserRepository) FindUserByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.store.Users[id]
	if !ok {
		return nil, fmt.Errorf("finding user %d: %w", id, domain.ErrRecordNotFound)
	}
	return &user, nil
}

func (r *MemoryUserRepository) LockUser(ctx context.Context, id int64) (*domain.User, error) {
	return r.FindUserByID(ctx, id)
}

func (r *MemoryUserRepository) AdjustPoints(_ context.Context, id int64, delta int64) (*domain.User, error) {
	user, ok := r.store.Users[id]
	if !ok {
		return nil, fmt.Errorf("adjusting points for user %d: %w", id, domain.ErrRecordNotFound)
	}
	if user.LoyaltyPoints+delta < 0 {
		return nil, fmt.Errorf("adjusting points for user %d by %d: %w", id, delta, domain.ErrNotEnoughBalance)
	}
	user.LoyaltyPoints += delta
	user.UpdatedAt = r.store.Now()
	r.store.Users[id] = user
	return &user, nil
}

func (r *MemoryUserRepository) IncrementTotalSpent(_ context.Context, id int64, amount decimal.Decimal) error {
	user, ok := r.store.Users[id]
	if !ok {
		return fmt.Errorf("incrementing total spent for user %d: %w", id, domain.ErrRecordNotFound)
	}
	user.TotalSpent = user.TotalSpent.Add(amount)
	user.UpdatedAt = r.store.Now()
	r.store.Users[id] = user
	return nil
}
