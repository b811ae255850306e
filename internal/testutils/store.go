// Package testutils provides an in-memory backing store with
// transactional rollback semantics for service and handler tests.
package testutils

import (
	"sync"
	"time"

	"github.com/dinebook/dinebook/internal/domain"
)

// Store keeps every entity in plain maps keyed by id. All mutation goes
// through MemoryUOW.Do which serializes units of work on mu and rolls
// back to a snapshot on error, mirroring the commit/rollback behavior of
// the real database.
type Store struct {
	mu     sync.Mutex
	nextID int64

	Users               map[int64]domain.User
	Restaurants         map[int64]domain.Restaurant
	Tables              map[int64]domain.Table
	Bookings            map[int64]domain.Booking
	Transactions        map[int64]domain.LoyaltyTransaction
	GiftCards           map[int64]domain.GiftCard
	Partners            map[int64]domain.Partner
	PartnerTransactions map[int64]domain.PartnerTransaction

	Now func() time.Time
}

func NewStore() *Store {
	return &Store{
		Users:               make(map[int64]domain.User),
		Restaurants:         make(map[int64]domain.Restaurant),
		Tables:              make(map[int64]domain.Table),
		Bookings:            make(map[int64]domain.Booking),
		Transactions:        make(map[int64]domain.LoyaltyTransaction),
		GiftCards:           make(map[int64]domain.GiftCard),
		Partners:            make(map[int64]domain.Partner),
		PartnerTransactions: make(map[int64]domain.PartnerTransaction),
		Now:                 time.Now,
	}
}

func (s *Store) NextID() int64 {
	s.nextID++
	return s.nextID
}

type snapshot struct {
	nextID              int64
	users               map[int64]domain.User
	restaurants         map[int64]domain.Restaurant
	tables              map[int64]domain.Table
	bookings            map[int64]domain.Booking
	transactions        map[int64]domain.LoyaltyTransaction
	giftCards           map[int64]domain.GiftCard
	partners            map[int64]domain.Partner
	partnerTransactions map[int64]domain.PartnerTransaction
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		nextID:              s.nextID,
		users:               cloneMap(s.Users),
		restaurants:         cloneMap(s.Restaurants),
		tables:              cloneMap(s.Tables),
		bookings:            cloneMap(s.Bookings),
		transactions:        cloneMap(s.Transactions),
		giftCards:           cloneMap(s.GiftCards),
		partners:            cloneMap(s.Partners),
		partnerTransactions: cloneMap(s.PartnerTransactions),
	}
}

func (s *Store) restore(snap snapshot) {
	s.nextID = snap.nextID
	s.Users = snap.users
	s.Restaurants = snap.restaurants
	s.Tables = snap.tables
	s.Bookings = snap.bookings
	s.Transactions = snap.transactions
	s.GiftCards = snap.giftCards
	s.Partners = snap.partners
	s.PartnerTransactions = snap.partnerTransactions
}
