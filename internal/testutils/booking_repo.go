package testutils

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/repository/repoargs"
)

type MemoryRestaurantRepository struct {
	store *Store
}

func (r *MemoryRestaurantRepository) FindRestaurantByID(_ context.Context, id int64) (*domain.Restaurant, error) {
	restaurant, ok := r.store.Restaurants[id]
	if !ok {
		return nil, fmt.Errorf("finding restaurant %d: %w", id, domain.ErrRecordNotFound)
	}
	return &restaurant, nil
}

func (r *MemoryRestaurantRepository) FindTableByID(_ context.Context, id int64) (*domain.Table, error) {
	table, ok := r.store.Tables[id]
	if !ok {
		return nil, fmt.Errorf("finding table %d: %w", id, domain.ErrRecordNotFound)
	}
	return &table, nil
}

type MemoryBookingRepository struct {
	store *Store
}

// AcquireTableWindow is a no-op: MemoryUOW.Do already serializes whole
// units of work, which is strictly coarser than the advisory lock.
func (r *MemoryBookingRepository) AcquireTableWindow(_ context.Context, _ int64, _ int64) error {
	return nil
}

func (r *MemoryBookingRepository) CountActiveInWindow(
	_ context.Context,
	tableID int64,
	from, to time.Time,
) (int64, error) {
	var count int64
	for _, booking := range r.store.Bookings {
		if booking.TableID != tableID || !booking.Status.Active() {
			continue
		}
		if !booking.BookingTime.Before(from) && !booking.BookingTime.After(to) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryBookingRepository) CreateBooking(
	_ context.Context,
	args repoargs.CreateBooking,
) (*domain.Booking, error) {
	for _, existing := range r.store.Bookings {
		if existing.ConfirmationCode == args.ConfirmationCode {
			return nil, fmt.Errorf("creating booking for table %d: %w", args.TableID, domain.ErrDuplicateKey)
		}
	}

	now := r.store.Now()
	booking := domain.Booking{
		ID:                  r.store.NextID(),
		CreatedAt:           now,
		UpdatedAt:           now,
		UserID:              args.UserID,
		RestaurantID:        args.RestaurantID,
		TableID:             args.TableID,
		BookingTime:         args.BookingTime,
		PartySize:           args.PartySize,
		Status:              args.Status,
		LoyaltyPointsUsed:   args.LoyaltyPointsUsed,
		LoyaltyPointsEarned: args.LoyaltyPointsEarned,
		EstimatedMinutes:    args.EstimatedMinutes,
		ConfirmationCode:    args.ConfirmationCode,
		SpecialRequests:     args.SpecialRequests,
		DietaryRestrictions: args.DietaryRestrictions,
		RecurringPattern:    args.RecurringPattern,
		ParentBookingID:     args.ParentBookingID,
	}
	r.store.Bookings[booking.ID] = booking
	return &booking, nil
}

func (r *MemoryBookingRepository) FindBookingByID(_ context.Context, id int64) (*domain.Booking, error) {
	booking, ok := r.store.Bookings[id]
	if !ok {
		return nil, fmt.Errorf("finding booking %d: %w", id, domain.ErrRecordNotFound)
	}
	return &booking, nil
}

func (r *MemoryBookingRepository) FindByConfirmationCode(_ context.Context, code string) (*domain.Booking, error) {
	for _, booking := range r.store.Bookings {
		if booking.ConfirmationCode == code {
			b := booking
			return &b, nil
		}
	}
	return nil, fmt.Errorf("finding booking by code %s: %w", code, domain.ErrRecordNotFound)
}

func (r *MemoryBookingRepository) LockBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.FindBookingByID(ctx, id)
}

func (r *MemoryBookingRepository) GetByUserID(_ context.Context, userID int64) ([]domain.Booking, error) {
	var bookings []domain.Booking
	for _, booking := range r.store.Bookings {
		if booking.UserID == userID {
			bookings = append(bookings, booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].BookingTime.After(bookings[j].BookingTime)
	})
	return bookings, nil
}

func (r *MemoryBookingRepository) UpdateBookingStatus(
	_ context.Context,
	args repoargs.UpdateBookingStatus,
) (*domain.Booking, error) {
	booking, ok := r.store.Bookings[args.ID]
	if !ok || booking.Status != args.FromStatus {
		return nil, fmt.Errorf("updating booking %d to %s: %w", args.ID, args.ToStatus, domain.ErrRecordNotFound)
	}

	booking.Status = args.ToStatus
	booking.LoyaltyPointsUsed = args.LoyaltyPointsUsed
	if args.ActualPartySize != nil {
		booking.ActualPartySize = args.ActualPartySize
	}
	if args.NoShowReason != "" {
		booking.NoShowReason = args.NoShowReason
	}
	booking.UpdatedAt = r.store.Now()
	r.store.Bookings[args.ID] = booking
	return &booking, nil
}
