package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/dinebook/dinebook/internal/domain"
)

// Fixture helpers seed the store directly, bypassing the repositories.

func SeedUser(s *Store, points int64) domain.User {
	now := s.Now()
	user := domain.User{
		ID:                s.NextID(),
		CreatedAt:         now,
		UpdatedAt:         now,
		Username:          gofakeit.Username(),
		EncryptedPassword: gofakeit.Password(true, true, true, false, false, 12),
		Role:              domain.RoleCustomer,
		LoyaltyPoints:     points,
		TotalSpent:        decimal.Zero,
	}
	s.Users[user.ID] = user
	return user
}

func SeedOwner(s *Store) domain.User {
	user := SeedUser(s, 0)
	user.Role = domain.RoleOwner
	s.Users[user.ID] = user
	return user
}

func SeedRestaurant(s *Store, ownerID int64, requiresDeposit bool) domain.Restaurant {
	now := s.Now()
	restaurant := domain.Restaurant{
		ID:              s.NextID(),
		CreatedAt:       now,
		UpdatedAt:       now,
		OwnerID:         ownerID,
		Name:            gofakeit.Company(),
		Active:          true,
		RequiresDeposit: requiresDeposit,
	}
	s.Restaurants[restaurant.ID] = restaurant
	return restaurant
}

func SeedTable(s *Store, restaurantID int64, capacity int) domain.Table {
	table := domain.Table{
		ID:           s.NextID(),
		RestaurantID: restaurantID,
		Capacity:     capacity,
	}
	s.Tables[table.ID] = table
	return table
}

func SeedPartner(s *Store, pointsPerUnit decimal.Decimal) domain.Partner {
	partner := domain.Partner{
		ID:            s.NextID(),
		Name:          gofakeit.Company(),
		Active:        true,
		PointsPerUnit: pointsPerUnit,
	}
	s.Partners[partner.ID] = partner
	return partner
}

// SeedTransaction writes a ledger entry without touching the cached user
// balance; tests that need both adjust the user explicitly.
func SeedTransaction(
	s *Store,
	userID int64,
	transactionType domain.TransactionType,
	points int64,
	expiresAt *time.Time,
) domain.LoyaltyTransaction {
	transaction := domain.LoyaltyTransaction{
		ID:        s.NextID(),
		CreatedAt: s.Now(),
		UserID:    userID,
		Type:      transactionType,
		Points:    points,
		ExpiresAt: expiresAt,
	}
	s.Transactions[transaction.ID] = transaction
	return transaction
}
