package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/repository/repoargs"
)

type UserRepository interface {
	CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
	FindUserByID(ctx context.Context, id int64) (*domain.User, error)
	LockUser(ctx context.Context, id int64) (*domain.User, error)
	AdjustPoints(ctx context.Context, id int64, delta int64) (*domain.User, error)
	IncrementTotalSpent(ctx context.Context, id int64, amount decimal.Decimal) error
}

type RestaurantRepository interface {
	FindRestaurantByID(ctx context.Context, id int64) (*domain.Restaurant, error)
	FindTableByID(ctx context.Context, id int64) (*domain.Table, error)
}

type BookingRepository interface {
	AcquireTableWindow(ctx context.Context, tableID int64, bucket int64) error
	CountActiveInWindow(ctx context.Context, tableID int64, from, to time.Time) (int64, error)
	CreateBooking(ctx context.Context, args repoargs.CreateBooking) (*domain.Booking, error)
	FindBookingByID(ctx context.Context, id int64) (*domain.Booking, error)
	FindByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error)
	LockBooking(ctx context.Context, id int64) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, args repoargs.UpdateBookingStatus) (*domain.Booking, error)
}

type LedgerRepository interface {
	Append(ctx context.Context, args repoargs.AppendTransaction) (*domain.LoyaltyTransaction, error)
	SumByUserID(ctx context.Context, userID int64) (int64, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.LoyaltyTransaction, error)
	CountRedemptionsSince(ctx context.Context, userID int64, since time.Time) (int64, error)
	ListExpiring(ctx context.Context, now time.Time, limit int) ([]domain.LoyaltyTransaction, error)
}

type RewardRepository interface {
	CreateGiftCard(ctx context.Context, args repoargs.CreateGiftCard) (*domain.GiftCard, error)
	FindPartnerByID(ctx context.Context, id int64) (*domain.Partner, error)
	CreatePartnerTransaction(
		ctx context.Context,
		args repoargs.CreatePartnerTransaction,
	) (*domain.PartnerTransaction, error)
}

// Notifier delivers booking lifecycle events to external channels
// (email/SMS dispatch, restaurant dashboards). Failures are logged, never
// propagated: notification is best-effort and must not roll back a
// committed booking.
type Notifier interface {
	BookingCreated(ctx context.Context, booking *domain.Booking) error
	BookingStatusChanged(ctx context.Context, booking *domain.Booking) error
}

// CacheInvalidator drops cached read models after a mutation commits.
type CacheInvalidator interface {
	InvalidatePattern(ctx context.Context, pattern string) error
}
