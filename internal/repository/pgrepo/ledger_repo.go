package pgrepo

import (
	"context"
	"time"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/repository/repoargs"
	"github.com/dinebook/dinebook/pkg/uow"
)

const transactionColumns = `id, created_at, user_id, booking_id, type, points, description, expires_at, reverses_id`

// LedgerRepository persists the append-only loyalty transaction log.
// There is deliberately no update or delete here.
type LedgerRepository struct {
	conn uow.DBTX
}

func NewLedgerRepository(conn uow.DBTX) *LedgerRepository {
	return &LedgerRepository{conn: conn}
}

func (l *LedgerRepository) Append(
	ctx context.Context,
	args repoargs.AppendTransaction,
) (*domain.LoyaltyTransaction, error) {
	row := l.conn.QueryRow(ctx,
		`INSERT INTO loyalty_transactions (user_id, booking_id, type, points, description, expires_at, reverses_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+transactionColumns,
		args.UserID, args.BookingID, args.Type, args.Points,
		args.Description, args.ExpiresAt, args.ReversesID,
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "appending %s transaction for user %d", args.Type, args.UserID)
	}
	return transaction, nil
}

// SumByUserID replays the ledger for a user. The result must equal the
// cached users.loyalty_points projection; used on reconciliation.
func (l *LedgerRepository) SumByUserID(ctx context.Context, userID int64) (int64, error) {
	var sum int64
	err := l.conn.QueryRow(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM loyalty_transactions WHERE user_id = $1`,
		userID,
	).Scan(&sum)
	if err != nil {
		return 0, convertErr(err, "summing ledger for user %d", userID)
	}
	return sum, nil
}

func (l *LedgerRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.LoyaltyTransaction, error) {
	rows, err := l.conn.Query(ctx,
		`SELECT `+transactionColumns+` FROM loyalty_transactions
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting ledger for user %d", userID)
	}
	defer rows.Close()

	var transactions []domain.LoyaltyTransaction
	for rows.Next() {
		transaction, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning ledger for user %d", userID)
		}
		transactions = append(transactions, *transaction)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting ledger for user %d", userID)
	}
	return transactions, nil
}

// CountRedemptionsSince counts REDEEMED entries created at or after the
// given instant. Read inside the redemption transaction so two concurrent
// redemptions cannot both pass the daily limit.
func (l *LedgerRepository) CountRedemptionsSince(ctx context.Context, userID int64, since time.Time) (int64, error) {
	var count int64
	err := l.conn.QueryRow(ctx,
		`SELECT count(*) FROM loyalty_transactions
		 WHERE user_id = $1 AND type = $2 AND created_at >= $3`,
		userID, domain.TransactionRedeemed, since,
	).Scan(&count)
	if err != nil {
		return 0, convertErr(err, "counting redemptions for user %d", userID)
	}
	return count, nil
}

// ListExpiring returns positive entries whose expires_at has passed and
// which no later entry reverses yet.
func (l *LedgerRepository) ListExpiring(ctx context.Context, now time.Time, limit int) ([]domain.LoyaltyTransaction, error) {
	rows, err := l.conn.Query(ctx,
		`SELECT `+transactionColumns+` FROM loyalty_transactions t
		 WHERE t.expires_at IS NOT NULL
		   AND t.expires_at <= $1
		   AND t.points > 0
		   AND NOT EXISTS (
			SELECT 1 FROM loyalty_transactions r WHERE r.reverses_id = t.id
		   )
		 ORDER BY t.expires_at
		 LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, convertErr(err, "listing expiring transactions")
	}
	defer rows.Close()

	var transactions []domain.LoyaltyTransaction
	for rows.Next() {
		transaction, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning expiring transactions")
		}
		transactions = append(transactions, *transaction)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing expiring transactions")
	}
	return transactions, nil
}

func scanTransaction(row interface{ Scan(...any) error }) (*domain.LoyaltyTransaction, error) {
	var transaction domain.LoyaltyTransaction
	err := row.Scan(
		&transaction.ID, &transaction.CreatedAt, &transaction.UserID, &transaction.BookingID,
		&transaction.Type, &transaction.Points, &transaction.Description,
		&transaction.ExpiresAt, &transaction.ReversesID,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &transaction, nil
}
