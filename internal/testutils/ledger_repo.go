package testutils

import (
	"context"
	"sort"
	"time"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/repository/repoargs"
)

type MemoryLedgerRepository struct {
	store *Store
}

func (r *MemoryLedgerRepository) Append(
	_ context.Context,
	args repoargs.AppendTransaction,
) (*domain.LoyaltyTransaction, error) {
	transaction := domain.LoyaltyTransaction{
		ID:          r.store.NextID(),
		CreatedAt:   r.store.Now(),
		UserID:      args.UserID,
		BookingID:   args.BookingID,
		Type:        args.Type,
		Points:      args.Points,
		Description: args.Description,
		ExpiresAt:   args.ExpiresAt,
		ReversesID:  args.ReversesID,
	}
	r.store.Transactions[transaction.ID] = transaction
	return &transaction, nil
}

func (r *MemoryLedgerRepository) SumByUserID(_ context.Context, userID int64) (int64, error) {
	var sum int64
	for _, transaction := range r.store.Transactions {
		if transaction.UserID == userID {
			sum += transaction.Points
		}
	}
	return sum, nil
}

func (r *MemoryLedgerRepository) GetByUserID(_ context.Context, userID int64) ([]domain.LoyaltyTransaction, error) {
	var transactions []domain.LoyaltyTransaction
	for _, transaction := range r.store.Transactions {
		if transaction.UserID == userID {
			transactions = append(transactions, transaction)
		}
	}
	sort.Slice(transactions, func(i, j int) bool {
		if transactions[i].CreatedAt.Equal(transactions[j].CreatedAt) {
			return transactions[i].ID > transactions[j].ID
		}
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	return transactions, nil
}

func (r *MemoryLedgerRepository) CountRedemptionsSince(
	_ context.Context,
	userID int64,
	since time.Time,
) (int64, error) {
	var count int64
	for _, transaction := range r.store.Transactions {
		if transaction.UserID == userID &&
			transaction.Type == domain.TransactionRedeemed &&
			!transaction.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryLedgerRepository) ListExpiring(
	_ context.Context,
	now time.Time,
	limit int,
) ([]domain.LoyaltyTransaction, error) {
	reversed := make(map[int64]bool)
	for _, transaction := range r.store.Transactions {
		if transaction.ReversesID != nil {
			reversed[*transaction.ReversesID] = true
		}
	}

	var due []domain.LoyaltyTransaction
	for _, transaction := range r.store.Transactions {
		if transaction.ExpiresAt == nil || transaction.ExpiresAt.After(now) {
			continue
		}
		if transaction.Points <= 0 || reversed[transaction.ID] {
			continue
		}
		due = append(due, transaction)
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].ExpiresAt.Before(*due[j].ExpiresAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}
