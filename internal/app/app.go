package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive

	"github.com/dinebook/dinebook/internal/config"
	"github.com/dinebook/dinebook/internal/repository/pgrepo"
	"github.com/dinebook/dinebook/internal/repository/repoargs"
	"github.com/dinebook/dinebook/internal/service"
	"github.com/dinebook/dinebook/internal/transport/api"
	"github.com/dinebook/dinebook/internal/transport/events"
	"github.com/dinebook/dinebook/internal/worker"
	"github.com/dinebook/dinebook/pkg/uow"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app with config: %+v", a.Config)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	location, locErr := a.location()
	if locErr != nil {
		return fmt.Errorf("app run: %s", locErr.Error())
	}

	services, sErr := service.Factory(unitOfWork, service.FactoryArgs{
		JWTSecret: []byte(a.Config.JWTUserSecret),
		Notifier:  a.notifier(),
		Cache:     a.cacheInvalidator(),
		Logger:    a.Logger,
		Location:  location,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:            a.Logger,
		UserService:       services.UserService,
		BookingService:    services.BookingService,
		LedgerService:     services.LedgerService,
		RedemptionService: services.RedemptionService,
		JWTSecretKey:      []byte(a.Config.JWTUserSecret),
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	expiry := worker.New(services.LedgerService, a.Logger)
	go expiry.Run(notifyCtx)

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

// notifier returns the AMQP publisher when a broker URL is configured,
// otherwise events stay local.
func (a *App) notifier() service.Notifier {
	if a.Config.AMQPURL == "" {
		return nil
	}
	return events.NewAMQPNotifier(a.Config.AMQPURL, a.Logger)
}

func (a *App) cacheInvalidator() service.CacheInvalidator {
	if a.Config.RedisAddr == "" {
		return nil
	}
	client := events.NewRedisClient(a.Config.RedisAddr, a.Config.RedisPassword, a.Config.RedisDB, a.Logger)
	if client == nil {
		return nil
	}
	return events.NewRedisInvalidator(client)
}

func (a *App) location() (*time.Location, error) {
	if a.Config.Timezone == "" {
		return time.Local, nil
	}
	location, err := time.LoadLocation(a.Config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %s", a.Config.Timezone, err.Error())
	}
	return location, nil
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewUserRepository(dbtx)
		},
		repoargs.RestaurantRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewRestaurantRepository(dbtx)
		},
		repoargs.BookingRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewBookingRepository(dbtx)
		},
		repoargs.LedgerRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewLedgerRepository(dbtx)
		},
		repoargs.RewardRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewRewardRepository(dbtx)
		},
	}

	for name, factoryFn := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factoryFn); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
