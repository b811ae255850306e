package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/repository/repoargs"
	"github.com/dinebook/dinebook/pkg/uow"
)

// LedgerService owns the append-only loyalty point log and the cached
// balance projection. Every append moves the projection by the same delta
// in the same transaction, so the two can only diverge by an operator
// mistake — which Reconcile exists to surface.
type LedgerService struct {
	uow        uow.UOW
	ledgerRepo LedgerRepository
	userRepo   UserRepository
	tiers      []domain.LoyaltyTier
	now        func() time.Time
}

type LedgerOption func(*LedgerService)

func WithTiers(tiers []domain.LoyaltyTier) LedgerOption {
	return func(s *LedgerService) { s.tiers = tiers }
}

func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(s *LedgerService) { s.now = now }
}

func NewLedgerService(u uow.UOW, opts ...LedgerOption) (*LedgerService, error) {
	ledgerRepo, err := uow.GetRepositoryAs[LedgerRepository](u, uow.RepositoryName(repoargs.LedgerRepoName))
	if err != nil {
		return nil, err
	}
	userRepo, err := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if err != nil {
		return nil, err
	}
	s := &LedgerService{
		uow:        u,
		ledgerRepo: ledgerRepo,
		userRepo:   userRepo,
		tiers:      domain.DefaultTiers(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Append records a ledger entry and moves the cached balance by the same
// delta as one atomic unit. An entry that would drive the balance below
// zero is rejected with InsufficientPointsError before anything is
// written.
func (s *LedgerService) Append(
	ctx context.Context,
	args repoargs.AppendTransaction,
) (*domain.LoyaltyTransaction, error) {
	var transaction *domain.LoyaltyTransaction

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		ledgerRepo, repoErr := uow.GetAs[LedgerRepository](tx, uow.RepositoryName(repoargs.LedgerRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		if _, adjErr := userRepo.AdjustPoints(c, args.UserID, args.Points); adjErr != nil {
			if errors.Is(adjErr, domain.ErrNotEnoughBalance) {
				user, findErr := userRepo.FindUserByID(c, args.UserID)
				if findErr != nil {
					return findErr //nolint:wrapcheck
				}
				return &domain.InsufficientPointsError{Requested: -args.Points, Available: user.LoyaltyPoints}
			}
			return adjErr //nolint:wrapcheck
		}

		var appendErr error
		transaction, appendErr = ledgerRepo.Append(c, args)
		return appendErr //nolint:wrapcheck
	})

	if txErr != nil {
		return nil, txErr //nolint:wrapcheck
	}
	return transaction, nil
}

type BalanceSummary struct {
	Points     int64
	TotalSpent decimal.Decimal
	Tier       domain.TierStatus
}

// Balance returns the cached projection plus the derived tier. The tier is
// computed on read, never stored.
func (s *LedgerService) Balance(ctx context.Context, userID int64) (*BalanceSummary, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &BalanceSummary{
		Points:     user.LoyaltyPoints,
		TotalSpent: user.TotalSpent,
		Tier:       domain.EvaluateTier(user.LoyaltyPoints, user.TotalSpent, s.tiers),
	}, nil
}

// History returns the user's ledger entries, newest first.
func (s *LedgerService) History(ctx context.Context, userID int64) ([]domain.LoyaltyTransaction, error) {
	transactions, err := s.ledgerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transactions, nil
}

type ReconcileResult struct {
	UserID        int64
	CachedBalance int64
	LedgerSum     int64
	Consistent    bool
}

// Reconcile replays the ledger and compares it against the cached
// projection. The ledger is authoritative on dispute.
func (s *LedgerService) Reconcile(ctx context.Context, userID int64) (*ReconcileResult, error) {
	user, userErr := s.userRepo.FindUserByID(ctx, userID)
	if userErr != nil {
		return nil, userErr //nolint:wrapcheck
	}
	sum, sumErr := s.ledgerRepo.SumByUserID(ctx, userID)
	if sumErr != nil {
		return nil, sumErr //nolint:wrapcheck
	}
	return &ReconcileResult{
		UserID:        userID,
		CachedBalance: user.LoyaltyPoints,
		LedgerSum:     sum,
		Consistent:    user.LoyaltyPoints == sum,
	}, nil
}

// ExpireDue offsets lapsed positive entries with EXPIRED counter-entries.
// The whole batch is one transaction. A user who already spent the points
// cannot be driven negative: the offset is capped at the current balance,
// and the counter-entry still marks the original as handled via
// ReversesID.
func (s *LedgerService) ExpireDue(ctx context.Context, limit int) (int, error) {
	var expired int

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		ledgerRepo, repoErr := uow.GetAs[LedgerRepository](tx, uow.RepositoryName(repoargs.LedgerRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		entries, listErr := ledgerRepo.ListExpiring(c, s.now(), limit)
		if listErr != nil {
			return listErr //nolint:wrapcheck
		}

		for i := range entries {
			entry := entries[i]
			user, lockErr := userRepo.LockUser(c, entry.UserID)
			if lockErr != nil {
				return lockErr //nolint:wrapcheck
			}

			offset := entry.Points
			if offset > user.LoyaltyPoints {
				offset = user.LoyaltyPoints
			}
			if offset > 0 {
				if _, adjErr := userRepo.AdjustPoints(c, entry.UserID, -offset); adjErr != nil {
					return adjErr //nolint:wrapcheck
				}
			}

			if _, appendErr := ledgerRepo.Append(c, repoargs.AppendTransaction{
				UserID:      entry.UserID,
				BookingID:   entry.BookingID,
				Type:        domain.TransactionExpired,
				Points:      -offset,
				Description: fmt.Sprintf("Points expired (entry %d)", entry.ID),
				ReversesID:  &entry.ID,
			}); appendErr != nil {
				return appendErr //nolint:wrapcheck
			}
			expired++
		}
		return nil
	})

	if txErr != nil {
		return 0, txErr //nolint:wrapcheck
	}
	return expired, nil
}
