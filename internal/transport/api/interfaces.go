package api

import (
	"context"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/service"
)

// Servicer interfaces exist so handler tests can substitute stubs.

type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
}

type BookingServicer interface {
	Create(ctx context.Context, args service.CreateBookingArgs) (*service.CreateBookingResult, error)
	UpdateStatus(ctx context.Context, args service.UpdateStatusArgs) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Booking, error)
	GetByConfirmationCode(ctx context.Context, userID int64, code string) (*domain.Booking, error)
}

type LedgerServicer interface {
	Balance(ctx context.Context, userID int64) (*service.BalanceSummary, error)
	History(ctx context.Context, userID int64) ([]domain.LoyaltyTransaction, error)
}

type RedemptionServicer interface {
	Redeem(
		ctx context.Context,
		userID int64,
		points int64,
		redemptionType domain.RedemptionType,
		description string,
	) (*service.RedeemResult, error)
	PartnerTransaction(
		ctx context.Context,
		args service.PartnerTransactionArgs,
	) (*service.PartnerTransactionResult, error)
}
