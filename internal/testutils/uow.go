package testutils

import (
	"context"

	"github.com/dinebook/dinebook/internal/repository/repoargs"
	"github.com/dinebook/dinebook/pkg/uow"
)

// MemoryUOW is a uow.UOW over a Store. Do serializes units of work on
// the store mutex and restores a snapshot when fn fails, so a failed
// unit leaves no partial state, same as a rolled back transaction.
// The standard repositories come pre-registered.
type MemoryUOW struct {
	store        *Store
	repositories map[uow.RepositoryName]uow.RepositoryFactory
}

func NewMemoryUOW(store *Store) *MemoryUOW {
	m := &MemoryUOW{
		store:        store,
		repositories: make(map[uow.RepositoryName]uow.RepositoryFactory),
	}

	m.repositories[uow.RepositoryName(repoargs.UserRepoName)] = func(uow.DBTX) uow.Repository {
		return &MemoryUserRepository{store: store}
	}
	m.repositories[uow.RepositoryName(repoargs.RestaurantRepoName)] = func(uow.DBTX) uow.Repository {
		return &MemoryRestaurantRepository{store: store}
	}
	m.repositories[uow.RepositoryName(repoargs.BookingRepoName)] = func(uow.DBTX) uow.Repository {
		return &MemoryBookingRepository{store: store}
	}
	m.repositories[uow.RepositoryName(repoargs.LedgerRepoName)] = func(uow.DBTX) uow.Repository {
		return &MemoryLedgerRepository{store: store}
	}
	m.repositories[uow.RepositoryName(repoargs.RewardRepoName)] = func(uow.DBTX) uow.Repository {
		return &MemoryRewardRepository{store: store}
	}

	return m
}

func (m *MemoryUOW) Register(name uow.RepositoryName, factory uow.RepositoryFactory) error {
	if _, ok := m.repositories[name]; ok {
		return uow.ErrRepositoryAlreadyRegistered
	}
	m.repositories[name] = factory
	return nil
}

func (m *MemoryUOW) Do(ctx context.Context, fn func(context.Context, uow.TX) error) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snap := m.store.snapshot()
	if err := fn(ctx, &memoryTX{repositories: m.repositories}); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

func (m *MemoryUOW) GetRepository(name uow.RepositoryName) (uow.Repository, error) {
	if factory, ok := m.repositories[name]; ok {
		return factory(nil), nil
	}
	return nil, uow.ErrRepositoryNotRegistered
}

type memoryTX struct {
	repositories map[uow.RepositoryName]uow.RepositoryFactory
}

func (t *memoryTX) Get(name uow.RepositoryName) (uow.Repository, error) {
	if factory, ok := t.repositories[name]; ok {
		return factory(nil), nil
	}
	return nil, uow.ErrRepositoryNotRegistered
}
