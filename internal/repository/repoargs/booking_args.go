package repoargs

import (
	"time"

	"github.com/dinebook/dinebook/internal/domain"
)

type CreateBooking struct {
	UserID              int64
	RestaurantID        int64
	TableID             int64
	BookingTime         time.Time
	PartySize           int
	Status              domain.BookingStatusType
	LoyaltyPointsUsed   int64
	LoyaltyPointsEarned int64
	EstimatedMinutes    int
	ConfirmationCode    string
	SpecialRequests     string
	DietaryRestrictions string
	RecurringPattern    *domain.RecurringPattern
	ParentBookingID     *int64
}

// UpdateBookingStatus applies a guarded status change: the update only
// matches when the stored status still equals FromStatus, so two
// concurrent transitions cannot both succeed.
type UpdateBookingStatus struct {
	ID                int64
	FromStatus        domain.BookingStatusType
	ToStatus          domain.BookingStatusType
	LoyaltyPointsUsed int64
	ActualPartySize   *int
	NoShowReason      string
}
