package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID                int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Username          string
	EncryptedPassword string
	Role              RoleType
	// LoyaltyPoints is a denormalized running balance. The ledger
	// (loyalty_transactions) stays authoritative on reconciliation.
	LoyaltyPoints int64
	TotalSpent    decimal.Decimal
}

type Restaurant struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	OwnerID   int64
	Name      string
	Active    bool
	// RequiresDeposit forces new bookings to start PENDING until an
	// external payment capture confirms them.
	RequiresDeposit bool
}

type Table struct {
	ID           int64
	RestaurantID int64
	Capacity     int
}

type Booking struct {
	ID                  int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
	UserID              int64
	RestaurantID        int64
	TableID             int64
	BookingTime         time.Time
	PartySize           int
	ActualPartySize     *int
	Status              BookingStatusType
	LoyaltyPointsUsed   int64
	LoyaltyPointsEarned int64
	EstimatedMinutes    int
	ConfirmationCode    string
	SpecialRequests     string
	DietaryRestrictions string
	NoShowReason        string
	RecurringPattern    *RecurringPattern
	ParentBookingID     *int64
}

// RecurringPattern describes how child occurrences derive from a parent
// booking. Days is optional and only meaningful for weekly patterns.
type RecurringPattern struct {
	Frequency FrequencyType  `json:"frequency"`
	Days      []time.Weekday `json:"days,omitempty"`
	EndDate   time.Time      `json:"endDate"`
}

// LoyaltyTransaction is an immutable ledger entry. Corrections and expiry
// are represented by later offsetting entries (ReversesID points at the
// entry being offset), never by mutating a past row.
type LoyaltyTransaction struct {
	ID          int64
	CreatedAt   time.Time
	UserID      int64
	BookingID   *int64
	Type        TransactionType
	Points      int64 // signed; negative for REDEEMED/EXPIRED
	Description string
	ExpiresAt   *time.Time
	ReversesID  *int64
}

// LoyaltyTier is static reference data, ordered descending by MinPoints.
type LoyaltyTier struct {
	Name      string
	MinPoints int64
	MinSpend  decimal.Decimal
}

// TierStatus is the result of evaluating a user against the tier table.
type TierStatus struct {
	Tier LoyaltyTier
	Next *LoyaltyTier
	// Progress is the point progress towards Next in [0,1]; 1 when there
	// is no higher tier left.
	Progress float64
}

type GiftCard struct {
	ID          int64
	CreatedAt   time.Time
	UserID      int64
	Code        string
	FaceValue   decimal.Decimal
	PointsSpent int64
}

type Partner struct {
	ID     int64
	Name   string
	Active bool
	// PointsPerUnit converts a partner purchase amount into points:
	// points = floor(amount * PointsPerUnit).
	PointsPerUnit decimal.Decimal
}

type PartnerTransaction struct {
	ID         int64
	CreatedAt  time.Time
	UserID     int64
	PartnerID  int64
	Amount     decimal.Decimal
	Points     int64
	ExternalID *string
}
