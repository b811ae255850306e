package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dinebook/dinebook/pkg/uow"
)

type AppServices struct {
	UserService       *UserService
	BookingService    *BookingService
	LedgerService     *LedgerService
	RedemptionService *RedemptionService
}

type FactoryArgs struct {
	JWTSecret  []byte
	Redemption RedemptionConfig
	Notifier   Notifier
	Cache      CacheInvalidator
	Logger     *logrus.Logger
	Location   *time.Location
}

func Factory(unitOfWork uow.UOW, args FactoryArgs) (*AppServices, error) {
	if args.Notifier == nil {
		args.Notifier = NoopNotifier{}
	}
	if args.Cache == nil {
		args.Cache = NoopInvalidator{}
	}
	if args.Logger == nil {
		args.Logger = logrus.New()
	}
	if args.Redemption.DailyLimit == 0 {
		args.Redemption = DefaultRedemptionConfig()
	}
	if args.Location != nil {
		args.Redemption.Location = args.Location
	}

	userService, userServiceErr := NewUserService(unitOfWork, args.JWTSecret)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	bookingService, bookingServiceErr := NewBookingService(
		unitOfWork,
		WithNotifier(args.Notifier),
		WithCacheInvalidator(args.Cache),
		WithBookingLogger(args.Logger),
	)
	if bookingServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", bookingServiceErr.Error())
	}

	ledgerService, ledgerServiceErr := NewLedgerService(unitOfWork)
	if ledgerServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", ledgerServiceErr.Error())
	}

	redemptionService, redemptionServiceErr := NewRedemptionService(unitOfWork, args.Redemption)
	if redemptionServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", redemptionServiceErr.Error())
	}

	return &AppServices{
		UserService:       userService,
		BookingService:    bookingService,
		LedgerService:     ledgerService,
		RedemptionService: redemptionService,
	}, nil
}
