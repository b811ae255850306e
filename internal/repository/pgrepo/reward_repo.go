package pgrepo

import (
	"context"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/repository/repoargs"
	"github.com/dinebook/dinebook/pkg/uow"
)

// RewardRepository covers gift cards and partner bonus transactions.
type RewardRepository struct {
	conn uow.DBTX
}

func NewRewardRepository(conn uow.DBTX) *RewardRepository {
	return &RewardRepository{conn: conn}
}

func (r *RewardRepository) CreateGiftCard(
	ctx context.Context,
	args repoargs.CreateGiftCard,
) (*domain.GiftCard, error) {
	var card domain.GiftCard
	err := r.conn.QueryRow(ctx,
		`INSERT INTO gift_cards (user_id, code, face_value, points_spent)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, user_id, code, face_value, points_spent`,
		args.UserID, args.Code, args.FaceValue, args.PointsSpent,
	).Scan(&card.ID, &card.CreatedAt, &card.UserID, &card.Code, &card.FaceValue, &card.PointsSpent)
	if err != nil {
		return nil, convertErr(err, "creating gift card for user %d", args.UserID)
	}
	return &card, nil
}

func (r *RewardRepository) FindPartnerByID(ctx context.Context, id int64) (*domain.Partner, error) {
	var partner domain.Partner
	err := r.conn.QueryRow(ctx,
		`SELECT id, name, active, points_per_unit FROM partners WHERE id = $1`, id,
	).Scan(&partner.ID, &partner.Name, &partner.Active, &partner.PointsPerUnit)
	if err != nil {
		return nil, convertErr(err, "finding partner %d", id)
	}
	return &partner, nil
}

// CreatePartnerTransaction inserts a partner transaction. The unique index
// on (partner_id, user_id, external_id) makes resubmission of the same
// external transaction fail with domain.ErrDuplicateKey.
func (r *RewardRepository) CreatePartnerTransaction(
	ctx context.Context,
	args repoargs.CreatePartnerTransaction,
) (*domain.PartnerTransaction, error) {
	var transaction domain.PartnerTransaction
	err := r.conn.QueryRow(ctx,
		`INSERT INTO partner_transactions (user_id, partner_id, amount, points, external_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, user_id, partner_id, amount, points, external_id`,
		args.UserID, args.PartnerID, args.Amount, args.Points, args.ExternalID,
	).Scan(
		&transaction.ID, &transaction.CreatedAt, &transaction.UserID,
		&transaction.PartnerID, &transaction.Amount, &transaction.Points, &transaction.ExternalID,
	)
	if err != nil {
		return nil, convertErr(err, "creating partner transaction for partner %d", args.PartnerID)
	}
	return &transaction, nil
}
