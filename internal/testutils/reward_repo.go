package testutils

import (
	"context"
	"fmt"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/repository/repoargs"
)

type MemoryRewardRepository struct {
	store *Store
}

func (r *MemoryRewardRepository) CreateGiftCard(
	_ context.Context,
	args repoargs.CreateGiftCard,
) (*domain.GiftCard, error) {
	card := domain.GiftCard{
		ID:          r.store.NextID(),
		CreatedAt:   r.store.Now(),
		UserID:      args.UserID,
		Code:        args.Code,
		FaceValue:   args.FaceValue,
		PointsSpent: args.PointsSpent,
	}
	r.store.GiftCards[card.ID] = card
	return &card, nil
}

func (r *MemoryRewardRepository) FindPartnerByID(_ context.Context, id int64) (*domain.Partner, error) {
	partner, ok := r.store.Partners[id]
	if !ok {
		return nil, fmt.Errorf("finding partner %d: %w", id, domain.ErrRecordNotFound)
	}
	return &partner, nil
}

func (r *MemoryRewardRepository) CreatePartnerTransaction(
	_ context.Context,
	args repoargs.CreatePartnerTransaction,
) (*domain.PartnerTransaction, error) {
	if args.ExternalID != nil {
		for _, existing := range r.store.PartnerTransactions {
			if existing.PartnerID == args.PartnerID &&
				existing.UserID == args.UserID &&
				existing.ExternalID != nil && *existing.ExternalID == *args.ExternalID {
				return nil, fmt.Errorf(
					"creating partner transaction for partner %d: %w", args.PartnerID, domain.ErrDuplicateKey)
			}
		}
	}

	transaction := domain.PartnerTransaction{
		ID:         r.store.NextID(),
		CreatedAt:  r.store.Now(),
		UserID:     args.UserID,
		PartnerID:  args.PartnerID,
		Amount:     args.Amount,
		Points:     args.Points,
		ExternalID: args.ExternalID,
	}
	r.store.PartnerTransactions[transaction.ID] = transaction
	return &transaction, nil
}
