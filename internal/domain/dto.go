package domain

type BookingStatusType string

const (
	BookingStatusPending   BookingStatusType = "PENDING"
	BookingStatusConfirmed BookingStatusType = "CONFIRMED"
	BookingStatusCompleted BookingStatusType = "COMPLETED"
	BookingStatusCancelled BookingStatusType = "CANCELLED"
	BookingStatusNoShow    BookingStatusType = "NO_SHOW"
)

// BookingStatuses lists every valid booking status.
var BookingStatuses = []BookingStatusType{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCompleted,
	BookingStatusCancelled,
	BookingStatusNoShow,
}

// Active reports whether a booking in this status still occupies its
// table slot for conflict detection.
func (s BookingStatusType) Active() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

func (s BookingStatusType) Valid() bool {
	for _, known := range BookingStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type TransactionType string

const (
	TransactionEarned      TransactionType = "EARNED"
	TransactionRedeemed    TransactionType = "REDEEMED"
	TransactionExpired     TransactionType = "EXPIRED"
	TransactionBonus       TransactionType = "BONUS"
	TransactionAdjusted    TransactionType = "ADJUSTED"
	TransactionTransferred TransactionType = "TRANSFERRED"
)

type RedemptionType string

const (
	RedemptionFreeDelivery RedemptionType = "FREE_DELIVERY"
	RedemptionVIPUpgrade   RedemptionType = "VIP_UPGRADE"
	RedemptionBirthdayCake RedemptionType = "BIRTHDAY_CAKE"
	RedemptionGiftCard     RedemptionType = "GIFT_CARD"
)

type FrequencyType string

const (
	FrequencyWeekly  FrequencyType = "WEEKLY"
	FrequencyMonthly FrequencyType = "MONTHLY"
)

type RoleType string

const (
	RoleCustomer RoleType = "customer"
	RoleOwner    RoleType = "owner"
	RoleAdmin    RoleType = "admin"
)
