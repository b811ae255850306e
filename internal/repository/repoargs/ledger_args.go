package repoargs

import (
	"time"

	"github.com/dinebook/dinebook/internal/domain"
)

type AppendTransaction struct {
	UserID      int64
	BookingID   *int64
	Type        domain.TransactionType
	Points      int64 // signed
	Description string
	ExpiresAt   *time.Time
	ReversesID  *int64
}
