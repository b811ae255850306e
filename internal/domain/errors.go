package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknown           = errors.New("unknown error")

	ErrValidation         = errors.New("validation error")
	ErrForbidden          = errors.New("forbidden")
	ErrNotEnoughBalance   = errors.New("not enough balance")
	ErrTableUnavailable   = errors.New("table unavailable in requested window")
	ErrDailyLimitExceeded = errors.New("daily redemption limit exceeded")
)

// InsufficientPointsError carries the numeric shortfall so transports can
// return it in a machine-readable payload.
type InsufficientPointsError struct {
	Requested int64
	Available int64
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientPointsError) Unwrap() error { return ErrNotEnoughBalance }

type MinimumBalanceError struct {
	Balance   int64
	Requested int64
	Floor     int64
}

func (e *MinimumBalanceError) Error() string {
	return fmt.Sprintf(
		"redeeming %d points would leave balance %d below the %d minimum",
		e.Requested, e.Balance-e.Requested, e.Floor,
	)
}

type InvalidRedemptionError struct {
	Type      RedemptionType
	Required  int64
	Requested int64
}

func (e *InvalidRedemptionError) Error() string {
	return fmt.Sprintf("%s requires at least %d points, got %d", e.Type, e.Required, e.Requested)
}

type CapacityExceededError struct {
	PartySize int
	Capacity  int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("party of %d exceeds table capacity %d", e.PartySize, e.Capacity)
}

type InvalidTransitionError struct {
	From BookingStatusType
	To   BookingStatusType
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking transition %s -> %s", e.From, e.To)
}

type DuplicateTransactionError struct {
	PartnerID  int64
	ExternalID string
}

func (e *DuplicateTransactionError) Error() string {
	return fmt.Sprintf(
		"partner transaction %q for partner %d already processed",
		e.ExternalID, e.PartnerID,
	)
}

func (e *DuplicateTransactionError) Unwrap() error { return ErrDuplicateKey }
