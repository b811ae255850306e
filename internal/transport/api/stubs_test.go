package api

import (
	"context"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/service"
)

// Hand-written stubs for the servicer interfaces. Each call delegates to
// a function field, so a test installs exactly the behavior it needs.

type stubUserService struct {
	registerFn func(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	loginFn    func(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
}

func (s *stubUserService) Register(
	ctx context.Context,
	args service.RegisterUserArgs,
) (*domain.User, string, error) {
	return s.registerFn(ctx, args)
}

func (s *stubUserService) Login(
	ctx context.Context,
	args service.LoginUserArgs,
) (*domain.User, string, error) {
	return s.loginFn(ctx, args)
}

type stubBookingService struct {
	createFn       func(ctx context.Context, args service.CreateBookingArgs) (*service.CreateBookingResult, error)
	updateStatusFn func(ctx context.Context, args service.UpdateStatusArgs) (*domain.Booking, error)
	getByUserIDFn  func(ctx context.Context, userID int64) ([]domain.Booking, error)
	getByCodeFn    func(ctx context.Context, userID int64, code string) (*domain.Booking, error)
}

func (s *stubBookingService) Create(
	ctx context.Context,
	args service.CreateBookingArgs,
) (*service.CreateBookingResult, error) {
	return s.createFn(ctx, args)
}

func (s *stubBookingService) UpdateStatus(
	ctx context.Context,
	args service.UpdateStatusArgs,
) (*domain.Booking, error) {
	return s.updateStatusFn(ctx, args)
}

func (s *stubBookingService) GetByUserID(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.getByUserIDFn(ctx, userID)
}

func (s *stubBookingService) GetByConfirmationCode(
	ctx context.Context,
	userID int64,
	code string,
) (*domain.Booking, error) {
	return s.getByCodeFn(ctx, userID, code)
}

type stubLedgerService struct {
	balanceFn func(ctx context.Context, userID int64) (*service.BalanceSummary, error)
	historyFn func(ctx context.Context, userID int64) ([]domain.LoyaltyTransaction, error)
}

func (s *stubLedgerService) Balance(ctx context.Context, userID int64) (*service.BalanceSummary, error) {
	return s.balanceFn(ctx, userID)
}

func (s *stubLedgerService) History(ctx context.Context, userID int64) ([]domain.LoyaltyTransaction, error) {
	return s.historyFn(ctx, userID)
}

type stubRedemptionService struct {
	redeemFn func(
		ctx context.Context,
		userID int64,
		points int64,
		redemptionType domain.RedemptionType,
		description string,
	) (*service.RedeemResult, error)
	partnerFn func(
		ctx context.Context,
		args service.PartnerTransactionArgs,
	) (*service.PartnerTransactionResult, error)
}

func (s *stubRedemptionService) Redeem(
	ctx context.Context,
	userID int64,
	points int64,
	redemptionType domain.RedemptionType,
	description string,
) (*service.RedeemResult, error) {
	return s.redeemFn(ctx, userID, points, redemptionType, description)
}

func (s *stubRedemptionService) PartnerTransaction(
	ctx context.Context,
	args service.PartnerTransactionArgs,
) (*service.PartnerTransactionResult, error) {
	return s.partnerFn(ctx, args)
}
