package pgrepo

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/repository/repoargs"
	"github.com/dinebook/dinebook/pkg/uow"
)

const bookingColumns = `id, created_at, updated_at, user_id, restaurant_id, table_id,
	booking_time, party_size, actual_party_size, status,
	loyalty_points_used, loyalty_points_earned, estimated_minutes,
	confirmation_code, special_requests, dietary_restrictions, no_show_reason,
	recurring_pattern, parent_booking_id`

type BookingRepository struct {
	conn uow.DBTX
}

func NewBookingRepository(conn uow.DBTX) *BookingRepository {
	return &BookingRepository{conn: conn}
}

// AcquireTableWindow takes a transaction-scoped advisory lock on a
// (table, time bucket) pair. All creation requests touching the same slot
// serialize on this lock before the availability check, so the
// check-then-insert race cannot happen. The lock releases on commit or
// rollback.
func (b *BookingRepository) AcquireTableWindow(ctx context.Context, tableID int64, bucket int64) error {
	_, err := b.conn.Exec(ctx,
		`SELECT pg_advisory_xact_lock($1::int4, $2::int4)`,
		int32(tableID%math.MaxInt32), int32(bucket%math.MaxInt32), //nolint:gosec
	)
	return convertErr(err, "acquiring table window lock (table %d, bucket %d)", tableID, bucket)
}

// CountActiveInWindow answers the availability question: how many
// PENDING/CONFIRMED bookings exist for the table with booking_time inside
// [from, to] inclusive.
func (b *BookingRepository) CountActiveInWindow(
	ctx context.Context,
	tableID int64,
	from, to time.Time,
) (int64, error) {
	var count int64
	err := b.conn.QueryRow(ctx,
		`SELECT count(*) FROM bookings
		 WHERE table_id = $1
		   AND status IN ($2, $3)
		   AND booking_time BETWEEN $4 AND $5`,
		tableID, domain.BookingStatusPending, domain.BookingStatusConfirmed, from, to,
	).Scan(&count)
	if err != nil {
		return 0, convertErr(err, "counting active bookings for table %d", tableID)
	}
	return count, nil
}

// CreateBooking inserts a booking. Returns domain.ErrDuplicateKey when the
// confirmation code collides; the caller retries with a new code.
func (b *BookingRepository) CreateBooking(
	ctx context.Context,
	args repoargs.CreateBooking,
) (*domain.Booking, error) {
	pattern, patternErr := marshalPattern(args.RecurringPattern)
	if patternErr != nil {
		return nil, convertErr(patternErr, "encoding recurring pattern")
	}

	row := b.conn.QueryRow(ctx,
		`INSERT INTO bookings (
			user_id, restaurant_id, table_id, booking_time, party_size, status,
			loyalty_points_used, loyalty_points_earned, estimated_minutes,
			confirmation_code, special_requests, dietary_restrictions,
			recurring_pattern, parent_booking_id
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+bookingColumns,
		args.UserID, args.RestaurantID, args.TableID, args.BookingTime,
		args.PartySize, args.Status,
		args.LoyaltyPointsUsed, args.LoyaltyPointsEarned, args.EstimatedMinutes,
		args.ConfirmationCode, args.SpecialRequests, args.DietaryRestrictions,
		pattern, args.ParentBookingID,
	)
	booking, err := scanBooking(row)
	if err != nil {
		return nil, convertErr(err, "creating booking for table %d", args.TableID)
	}
	return booking, nil
}

func (b *BookingRepository) FindBookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := b.conn.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	booking, err := scanBooking(row)
	if err != nil {
		return nil, convertErr(err, "finding booking %d", id)
	}
	return booking, nil
}

func (b *BookingRepository) FindByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	row := b.conn.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE confirmation_code = $1`, code)
	booking, err := scanBooking(row)
	if err != nil {
		return nil, convertErr(err, "finding booking by confirmation code %s", code)
	}
	return booking, nil
}

// LockBooking reads a booking under FOR UPDATE so concurrent status
// transitions on the same booking serialize.
func (b *BookingRepository) LockBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	row := b.conn.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	booking, err := scanBooking(row)
	if err != nil {
		return nil, convertErr(err, "locking booking %d", id)
	}
	return booking, nil
}

// GetByUserID returns a user's bookings, newest booking time first.
func (b *BookingRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := b.conn.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY booking_time DESC`,
		userID,
	)
	if err != nil {
		return nil, convertErr(err, "getting bookings for user %d", userID)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		booking, scanErr := scanBooking(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning bookings for user %d", userID)
		}
		bookings = append(bookings, *booking)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting bookings for user %d", userID)
	}
	return bookings, nil
}

// UpdateBookingStatus applies the guarded transition from
// repoargs.UpdateBookingStatus. When the stored status no longer matches
// FromStatus no row is updated and domain.ErrRecordNotFound is returned.
func (b *BookingRepository) UpdateBookingStatus(
	ctx context.Context,
	args repoargs.UpdateBookingStatus,
) (*domain.Booking, error) {
	row := b.conn.QueryRow(ctx,
		`UPDATE bookings
		 SET status = $3,
		     loyalty_points_used = $4,
		     actual_party_size = COALESCE($5, actual_party_size),
		     no_show_reason = CASE WHEN $6 <> '' THEN $6 ELSE no_show_reason END,
		     updated_at = now()
		 WHERE id = $1 AND status = $2
		 RETURNING `+bookingColumns,
		args.ID, args.FromStatus, args.ToStatus,
		args.LoyaltyPointsUsed, args.ActualPartySize, args.NoShowReason,
	)
	booking, err := scanBooking(row)
	if err != nil {
		return nil, convertErr(err, "updating booking %d to %s", args.ID, args.ToStatus)
	}
	return booking, nil
}

func marshalPattern(p *domain.RecurringPattern) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p) //nolint:wrapcheck
}

func scanBooking(row interface{ Scan(...any) error }) (*domain.Booking, error) {
	var booking domain.Booking
	var pattern []byte

	err := row.Scan(
		&booking.ID, &booking.CreatedAt, &booking.UpdatedAt,
		&booking.UserID, &booking.RestaurantID, &booking.TableID,
		&booking.BookingTime, &booking.PartySize, &booking.ActualPartySize, &booking.Status,
		&booking.LoyaltyPointsUsed, &booking.LoyaltyPointsEarned, &booking.EstimatedMinutes,
		&booking.ConfirmationCode, &booking.SpecialRequests, &booking.DietaryRestrictions,
		&booking.NoShowReason, &pattern, &booking.ParentBookingID,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if len(pattern) > 0 {
		booking.RecurringPattern = new(domain.RecurringPattern)
		if unmarshalErr := json.Unmarshal(pattern, booking.RecurringPattern); unmarshalErr != nil {
			return nil, unmarshalErr //nolint:wrapcheck
		}
	}
	return &booking, nil
}
