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

// GiftCardTier maps a point threshold onto a fixed face value.
type GiftCardTier struct {
	Points    int64
	FaceValue decimal.Decimal
}

// RedemptionConfig is reference data, not logic: point requirements per
// redemption type and the gift-card value table live here so operations
// can retune them without a code change.
type RedemptionConfig struct {
	// MinimumBalance is the floor a redemption may not cross; the balance
	// after a redemption must stay at or above it.
	MinimumBalance int64
	// DailyLimit caps REDEEMED entries per user since local midnight.
	DailyLimit int64
	// TypeMinimums holds fixed point requirements per redemption type.
	// Types absent from the map have no minimum beyond MinimumBalance.
	TypeMinimums map[domain.RedemptionType]int64
	// GiftCardTiers, ordered descending by Points, determine the face
	// value of a minted card. Below the lowest threshold no card is
	// minted and the redemption is a plain points debit.
	GiftCardTiers []GiftCardTier
	// Location anchors "today" for the daily limit.
	Location *time.Location
}

func DefaultRedemptionConfig() RedemptionConfig {
	return RedemptionConfig{
		MinimumBalance: 100,
		DailyLimit:     5,
		TypeMinimums: map[domain.RedemptionType]int64{
			domain.RedemptionFreeDelivery: 500,
			domain.RedemptionBirthdayCake: 1500,
			domain.RedemptionVIPUpgrade:   5000,
		},
		GiftCardTiers: []GiftCardTier{
			{Points: 10000, FaceValue: decimal.NewFromInt(10000)},
			{Points: 5000, FaceValue: decimal.NewFromInt(4500)},
		},
		Location: time.Local,
	}
}

type RedemptionService struct {
	uow uow.UOW
	cfg RedemptionConfig
	now func() time.Time
}

func NewRedemptionService(u uow.UOW, cfg RedemptionConfig) (*RedemptionService, error) {
	// Validate the reward repo is wired; the service itself only needs it
	// transactionally.
	if _, err := uow.GetRepositoryAs[RewardRepository](u, uow.RepositoryName(repoargs.RewardRepoName)); err != nil {
		return nil, err
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &RedemptionService{
		uow: u,
		cfg: cfg,
		now: time.Now,
	}, nil
}

// SetClock overrides the service clock; intended for tests.
func (s *RedemptionService) SetClock(now func() time.Time) { s.now = now }

type RedeemResult struct {
	Balance     int64
	Transaction *domain.LoyaltyTransaction
	GiftCard    *domain.GiftCard
}

// Redeem spends points against the policy: balance check, minimum-balance
// floor, daily limit and per-type minimum are all evaluated inside the
// same transaction that appends the ledger entry, so concurrent
// redemptions cannot slip past any of the checks together.
func (s *RedemptionService) Redeem(
	ctx context.Context,
	userID int64,
	points int64,
	redemptionType domain.RedemptionType,
	description string,
) (*RedeemResult, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive", domain.ErrValidation)
	}

	var result RedeemResult

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		ledgerRepo, repoErr := uow.GetAs[LedgerRepository](tx, uow.RepositoryName(repoargs.LedgerRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		user, lockErr := userRepo.LockUser(c, userID)
		if lockErr != nil {
			return lockErr //nolint:wrapcheck
		}

		if points > user.LoyaltyPoints {
			return &domain.InsufficientPointsError{Requested: points, Available: user.LoyaltyPoints}
		}
		if user.LoyaltyPoints-points < s.cfg.MinimumBalance {
			return &domain.MinimumBalanceError{
				Balance:   user.LoyaltyPoints,
				Requested: points,
				Floor:     s.cfg.MinimumBalance,
			}
		}

		redemptions, countErr := ledgerRepo.CountRedemptionsSince(c, userID, s.localMidnight())
		if countErr != nil {
			return countErr //nolint:wrapcheck
		}
		if redemptions >= s.cfg.DailyLimit {
			return fmt.Errorf("user %d: %w", userID, domain.ErrDailyLimitExceeded)
		}

		if required, ok := s.cfg.TypeMinimums[redemptionType]; ok && points < required {
			return &domain.InvalidRedemptionError{Type: redemptionType, Required: required, Requested: points}
		}

		adjusted, adjErr := userRepo.AdjustPoints(c, userID, -points)
		if adjErr != nil {
			return adjErr //nolint:wrapcheck
		}
		result.Balance = adjusted.LoyaltyPoints

		if description == "" {
			description = fmt.Sprintf("Redemption: %s", redemptionType)
		}
		transaction, appendErr := ledgerRepo.Append(c, repoargs.AppendTransaction{
			UserID:      userID,
			Type:        domain.TransactionRedeemed,
			Points:      -points,
			Description: description,
		})
		if appendErr != nil {
			return appendErr //nolint:wrapcheck
		}
		result.Transaction = transaction

		if redemptionType == domain.RedemptionGiftCard {
			return s.mintGiftCard(c, tx, userID, points, &result)
		}
		return nil
	})

	if txErr != nil {
		return nil, txErr //nolint:wrapcheck
	}
	return &result, nil
}

// mintGiftCard creates a card for the highest satisfied tier. Below the
// lowest threshold the redemption still succeeds, just without a card.
func (s *RedemptionService) mintGiftCard(
	ctx context.Context,
	tx uow.TX,
	userID int64,
	points int64,
	result *RedeemResult,
) error {
	var tier *GiftCardTier
	for i := range s.cfg.GiftCardTiers {
		if points >= s.cfg.GiftCardTiers[i].Points {
			tier = &s.cfg.GiftCardTiers[i]
			break
		}
	}
	if tier == nil {
		return nil
	}

	rewardRepo, repoErr := uow.GetAs[RewardRepository](tx, uow.RepositoryName(repoargs.RewardRepoName))
	if repoErr != nil {
		return repoErr //nolint:wrapcheck
	}

	code, codeErr := newGiftCardCode()
	if codeErr != nil {
		return codeErr
	}
	card, cardErr := rewardRepo.CreateGiftCard(ctx, repoargs.CreateGiftCard{
		UserID:      userID,
		Code:        code,
		FaceValue:   tier.FaceValue,
		PointsSpent: points,
	})
	if cardErr != nil {
		return cardErr //nolint:wrapcheck
	}
	result.GiftCard = card
	return nil
}

type PartnerTransactionArgs struct {
	UserID     int64
	PartnerID  int64
	Amount     decimal.Decimal
	ExternalID *string
}

type PartnerTransactionResult struct {
	Points      int64
	Balance     int64
	Transaction *domain.PartnerTransaction
}

// PartnerTransaction awards bonus points for a purchase at a partner.
// The external transaction id is the caller's idempotency key: replays
// fail with DuplicateTransactionError and leave no second ledger entry.
func (s *RedemptionService) PartnerTransaction(
	ctx context.Context,
	args PartnerTransactionArgs,
) (*PartnerTransactionResult, error) {
	if !args.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	var result PartnerTransactionResult

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		ledgerRepo, repoErr := uow.GetAs[LedgerRepository](tx, uow.RepositoryName(repoargs.LedgerRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		rewardRepo, repoErr := uow.GetAs[RewardRepository](tx, uow.RepositoryName(repoargs.RewardRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		partner, partnerErr := rewardRepo.FindPartnerByID(c, args.PartnerID)
		if partnerErr != nil {
			return partnerErr //nolint:wrapcheck
		}
		if !partner.Active {
			return fmt.Errorf("partner %d is not active: %w", partner.ID, domain.ErrRecordNotFound)
		}

		points := args.Amount.Mul(partner.PointsPerUnit).IntPart()
		result.Points = points

		transaction, createErr := rewardRepo.CreatePartnerTransaction(c, repoargs.CreatePartnerTransaction{
			UserID:     args.UserID,
			PartnerID:  args.PartnerID,
			Amount:     args.Amount,
			Points:     points,
			ExternalID: args.ExternalID,
		})
		if createErr != nil {
			if errors.Is(createErr, domain.ErrDuplicateKey) && args.ExternalID != nil {
				return &domain.DuplicateTransactionError{PartnerID: args.PartnerID, ExternalID: *args.ExternalID}
			}
			return createErr //nolint:wrapcheck
		}
		result.Transaction = transaction

		adjusted, adjErr := userRepo.AdjustPoints(c, args.UserID, points)
		if adjErr != nil {
			return adjErr //nolint:wrapcheck
		}
		result.Balance = adjusted.LoyaltyPoints

		if _, appendErr := ledgerRepo.Append(c, repoargs.AppendTransaction{
			UserID:      args.UserID,
			Type:        domain.TransactionBonus,
			Points:      points,
			Description: "Partner purchase at " + partner.Name,
		}); appendErr != nil {
			return appendErr //nolint:wrapcheck
		}

		return userRepo.IncrementTotalSpent(c, args.UserID, args.Amount) //nolint:wrapcheck
	})

	if txErr != nil {
		return nil, txErr //nolint:wrapcheck
	}
	return &result, nil
}

func (s *RedemptionService) localMidnight() time.Time {
	now := s.now().In(s.cfg.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.cfg.Location)
}
