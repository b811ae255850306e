package api

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dinebook/dinebook/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup        = "/api"
	RegisterRoute     = "/user/register"
	LoginRoute        = "/user/login"
	BookingsRoute     = "/bookings"
	BookingRoute      = "/bookings/:id"
	BookingCodeRoute  = "/bookings/code/:code"
	BalanceRoute      = "/loyalty/balance"
	TransactionsRoute = "/loyalty/transactions"
	RedeemRoute       = "/loyalty/points/redeem"
	PartnersRoute     = "/loyalty/partners"
)

type RouterArgs struct {
	Logger            *logrus.Logger
	UserService       UserServicer
	BookingService    BookingServicer
	LedgerService     LedgerServicer
	RedemptionService RedemptionServicer
	JWTSecretKey      []byte
}

var validatorsOnce sync.Once

func New(args RouterArgs) *gin.Engine {
	validatorsOnce.Do(func() {
		if err := registerValidators(); err != nil {
			panic(err)
		}
	})

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	bookingsHandler := NewBookingsHandler(args.BookingService)
	loyaltyHandler := NewLoyaltyHandler(args.LedgerService, args.RedemptionService)

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// every route below requires an authorized user.
	api.POST(BookingsRoute, bookingsHandler.Create)
	api.GET(BookingsRoute, bookingsHandler.Index)
	api.GET(BookingCodeRoute, bookingsHandler.ShowByCode)
	api.PUT(BookingRoute, bookingsHandler.UpdateStatus)

	api.GET(BalanceRoute, loyaltyHandler.Balance)
	api.GET(TransactionsRoute, loyaltyHandler.Transactions)
	api.POST(RedeemRoute, loyaltyHandler.Redeem)
	api.POST(PartnersRoute, loyaltyHandler.Partner)
	return r
}
