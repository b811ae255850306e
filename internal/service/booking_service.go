package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/recurrence"
	"github.com/dinebook/dinebook/internal/repository/repoargs"
	"github.com/dinebook/dinebook/pkg/uow"
)

const (
	// conflictWindow is the symmetric proximity window: two bookings on the
	// same table conflict when their booking times are within this distance
	// of each other. A point-proximity heuristic, not true interval overlap
	// on estimated duration.
	conflictWindow = 2 * time.Hour

	maxPartySize       = 20
	minDurationMinutes = 60
	minutesPerGuest    = 30
	pointsPerGuest     = 10
	spendPerGuest      = 50

	// earnedPointsTTL is how long completion-awarded points live before the
	// expiry sweep offsets them.
	earnedPointsTTL = 365 * 24 * time.Hour

	codeAttempts = 5
)

type BookingService struct {
	uow         uow.UOW
	bookingRepo BookingRepository
	notifier    Notifier
	cache       CacheInvalidator
	l           *logrus.Entry
	now         func() time.Time
}

type BookingOption func(*BookingService)

func WithNotifier(n Notifier) BookingOption {
	return func(s *BookingService) { s.notifier = n }
}

func WithCacheInvalidator(c CacheInvalidator) BookingOption {
	return func(s *BookingService) { s.cache = c }
}

func WithBookingLogger(l *logrus.Logger) BookingOption {
	return func(s *BookingService) { s.l = l.WithField("component", "booking_service") }
}

func WithBookingClock(now func() time.Time) BookingOption {
	return func(s *BookingService) { s.now = now }
}

func NewBookingService(u uow.UOW, opts ...BookingOption) (*BookingService, error) {
	bookingRepo, err := uow.GetRepositoryAs[BookingRepository](u, uow.RepositoryName(repoargs.BookingRepoName))
	if err != nil {
		return nil, err
	}
	s := &BookingService{
		uow:         u,
		bookingRepo: bookingRepo,
		notifier:    NoopNotifier{},
		cache:       NoopInvalidator{},
		l:           logrus.New().WithField("component", "booking_service"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type CreateBookingArgs struct {
	UserID              int64
	RestaurantID        int64
	TableID             int64
	BookingTime         time.Time
	PartySize           int
	SpecialRequests     string
	DietaryRestrictions string
	LoyaltyPointsToUse  int64
	RecurringPattern    *domain.RecurringPattern
}

// OccurrenceResult reports the outcome of one recurring occurrence.
// A skipped occurrence never aborts the rest of the series.
type OccurrenceResult struct {
	Time    time.Time
	Booking *domain.Booking
	Skipped bool
	Reason  string
}

type CreateBookingResult struct {
	Booking     *domain.Booking
	Occurrences []OccurrenceResult
}

// Create validates and persists a booking as a single atomic unit:
// advisory lock on the (table, time bucket) scope, availability check,
// booking insert, optional points redemption with balance decrement.
// Recurring occurrences are expanded best-effort after the parent commits.
func (s *BookingService) Create(ctx context.Context, args CreateBookingArgs) (*CreateBookingResult, error) {
	if args.PartySize < 1 || args.PartySize > maxPartySize {
		return nil, fmt.Errorf("%w: party size must be between 1 and %d", domain.ErrValidation, maxPartySize)
	}
	if args.LoyaltyPointsToUse < 0 {
		return nil, fmt.Errorf("%w: loyalty points to use must not be negative", domain.ErrValidation)
	}
	if args.BookingTime.IsZero() {
		return nil, fmt.Errorf("%w: booking time is required", domain.ErrValidation)
	}

	booking, createErr := s.createOne(ctx, args, nil)
	if createErr != nil {
		return nil, createErr
	}

	s.afterCommit(ctx, booking, "booking created")

	result := &CreateBookingResult{Booking: booking}
	if args.RecurringPattern != nil {
		result.Occurrences = s.expandRecurring(ctx, booking, args)
	}
	return result, nil
}

// createOne runs the atomic creation unit for a single booking, parent or
// recurring child.
func (s *BookingService) createOne(
	ctx context.Context,
	args CreateBookingArgs,
	parentID *int64,
) (*domain.Booking, error) {
	var booking *domain.Booking

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		restaurantRepo, repoErr := uow.GetAs[RestaurantRepository](tx, uow.RepositoryName(repoargs.RestaurantRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		bookingRepo, repoErr := uow.GetAs[BookingRepository](tx, uow.RepositoryName(repoargs.BookingRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		restaurant, restErr := restaurantRepo.FindRestaurantByID(c, args.RestaurantID)
		if restErr != nil {
			return restErr //nolint:wrapcheck
		}
		if !restaurant.Active {
			return fmt.Errorf("restaurant %d is not active: %w", restaurant.ID, domain.ErrRecordNotFound)
		}

		table, tableErr := restaurantRepo.FindTableByID(c, args.TableID)
		if tableErr != nil {
			return tableErr //nolint:wrapcheck
		}
		if table.RestaurantID != restaurant.ID {
			return fmt.Errorf("table %d does not belong to restaurant %d: %w",
				table.ID, restaurant.ID, domain.ErrRecordNotFound)
		}

		if args.PartySize > table.Capacity {
			return &domain.CapacityExceededError{PartySize: args.PartySize, Capacity: table.Capacity}
		}

		if availErr := s.checkAvailability(c, bookingRepo, args.TableID, args.BookingTime); availErr != nil {
			return availErr
		}

		status := domain.BookingStatusConfirmed
		if restaurant.RequiresDeposit {
			status = domain.BookingStatusPending
		}

		var insertErr error
		booking, insertErr = s.insertWithCodeRetry(c, bookingRepo, repoargs.CreateBooking{
			UserID:              args.UserID,
			RestaurantID:        args.RestaurantID,
			TableID:             args.TableID,
			BookingTime:         args.BookingTime,
			PartySize:           args.PartySize,
			Status:              status,
			LoyaltyPointsUsed:   args.LoyaltyPointsToUse,
			LoyaltyPointsEarned: int64(args.PartySize) * pointsPerGuest,
			EstimatedMinutes:    estimatedMinutes(args.PartySize),
			SpecialRequests:     args.SpecialRequests,
			DietaryRestrictions: args.DietaryRestrictions,
			RecurringPattern:    args.RecurringPattern,
			ParentBookingID:     parentID,
		})
		if insertErr != nil {
			return insertErr
		}

		if args.LoyaltyPointsToUse > 0 {
			if redeemErr := s.redeemForBooking(c, tx, booking, args.LoyaltyPointsToUse); redeemErr != nil {
				return redeemErr
			}
		}
		return nil
	})

	if txErr != nil {
		return nil, txErr //nolint:wrapcheck
	}
	return booking, nil
}

// checkAvailability serializes on the advisory locks covering the ±2h
// window, then counts active bookings. A ±2h window spans up to three
// 2h buckets; locks are taken in ascending order to stay deadlock-free.
func (s *BookingService) checkAvailability(
	ctx context.Context,
	bookingRepo BookingRepository,
	tableID int64,
	bookingTime time.Time,
) error {
	bucket := bookingTime.Unix() / int64(conflictWindow/time.Second)
	for _, b := range []int64{bucket - 1, bucket, bucket + 1} {
		if lockErr := bookingRepo.AcquireTableWindow(ctx, tableID, b); lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
	}

	count, countErr := bookingRepo.CountActiveInWindow(
		ctx, tableID,
		bookingTime.Add(-conflictWindow), bookingTime.Add(conflictWindow),
	)
	if countErr != nil {
		return countErr //nolint:wrapcheck
	}
	if count > 0 {
		return fmt.Errorf("table %d at %s: %w", tableID, bookingTime.Format(time.RFC3339), domain.ErrTableUnavailable)
	}
	return nil
}

func (s *BookingService) insertWithCodeRetry(
	ctx context.Context,
	bookingRepo BookingRepository,
	args repoargs.CreateBooking,
) (*domain.Booking, error) {
	var lastErr error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, codeErr := newConfirmationCode()
		if codeErr != nil {
			return nil, codeErr
		}
		args.ConfirmationCode = code

		booking, insertErr := bookingRepo.CreateBooking(ctx, args)
		if insertErr == nil {
			return booking, nil
		}
		if !errors.Is(insertErr, domain.ErrDuplicateKey) {
			return nil, insertErr //nolint:wrapcheck
		}
		lastErr = insertErr
	}
	return nil, fmt.Errorf("confirmation code collisions exhausted %d attempts: %w", codeAttempts, lastErr)
}

// redeemForBooking decrements the balance and appends the REDEEMED ledger
// entry inside the booking transaction, so the booking insert and the
// points spend commit or roll back together.
func (s *BookingService) redeemForBooking(
	ctx context.Context,
	tx uow.TX,
	booking *domain.Booking,
	points int64,
) error {
	userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if repoErr != nil {
		return repoErr //nolint:wrapcheck
	}
	ledgerRepo, repoErr := uow.GetAs[LedgerRepository](tx, uow.RepositoryName(repoargs.LedgerRepoName))
	if repoErr != nil {
		return repoErr //nolint:wrapcheck
	}

	if _, adjErr := userRepo.AdjustPoints(ctx, booking.UserID, -points); adjErr != nil {
		if errors.Is(adjErr, domain.ErrNotEnoughBalance) {
			user, findErr := userRepo.FindUserByID(ctx, booking.UserID)
			if findErr != nil {
				return findErr //nolint:wrapcheck
			}
			return &domain.InsufficientPointsError{Requested: points, Available: user.LoyaltyPoints}
		}
		return adjErr //nolint:wrapcheck
	}

	_, appendErr := ledgerRepo.Append(ctx, repoargs.AppendTransaction{
		UserID:      booking.UserID,
		BookingID:   &booking.ID,
		Type:        domain.TransactionRedeemed,
		Points:      -points,
		Description: "Points redeemed for booking " + booking.ConfirmationCode,
	})
	return appendErr //nolint:wrapcheck
}

// expandRecurring derives child occurrences from the committed parent.
// Each occurrence passes through the full creation unit independently;
// loyalty points apply only to the parent.
func (s *BookingService) expandRecurring(
	ctx context.Context,
	parent *domain.Booking,
	args CreateBookingArgs,
) []OccurrenceResult {
	pattern, patternErr := toRecurrencePattern(args.RecurringPattern)
	if patternErr != nil {
		return []OccurrenceResult{{Time: parent.BookingTime, Skipped: true, Reason: patternErr.Error()}}
	}

	candidates, expandErr := recurrence.Expand(parent.BookingTime, pattern, 0)
	if expandErr != nil {
		return []OccurrenceResult{{Time: parent.BookingTime, Skipped: true, Reason: expandErr.Error()}}
	}

	childArgs := args
	childArgs.LoyaltyPointsToUse = 0
	childArgs.RecurringPattern = nil

	results := make([]OccurrenceResult, 0, len(candidates))
	for _, candidate := range candidates {
		childArgs.BookingTime = candidate

		child, childErr := s.createOne(ctx, childArgs, &parent.ID)
		if childErr != nil {
			s.l.WithError(childErr).
				WithField("parentBookingID", parent.ID).
				WithField("occurrence", candidate.Format(time.RFC3339)).
				Info("recurring occurrence skipped")
			results = append(results, OccurrenceResult{Time: candidate, Skipped: true, Reason: childErr.Error()})
			continue
		}
		results = append(results, OccurrenceResult{Time: candidate, Booking: child})
	}
	return results
}

func toRecurrencePattern(p *domain.RecurringPattern) (recurrence.Pattern, error) {
	pattern := recurrence.Pattern{Weekdays: p.Days, End: p.EndDate}
	switch p.Frequency {
	case domain.FrequencyWeekly:
		pattern.Frequency = recurrence.FrequencyWeekly
	case domain.FrequencyMonthly:
		pattern.Frequency = recurrence.FrequencyMonthly
	default:
		return pattern, fmt.Errorf("%w: unsupported frequency %q", domain.ErrValidation, p.Frequency)
	}
	return pattern, nil
}

type UpdateStatusArgs struct {
	BookingID       int64
	ActorID         int64
	ActorRole       domain.RoleType
	NewStatus       domain.BookingStatusType
	ActualPartySize *int
	NoShowReason    string
}

const defaultNoShowReason = "customer did not arrive"

// UpdateStatus re-validates the current state against the transition table
// and applies ledger side effects in the same transaction, guarded by a
// row lock on the booking so two concurrent transitions cannot both
// succeed.
func (s *BookingService) UpdateStatus(ctx context.Context, args UpdateStatusArgs) (*domain.Booking, error) {
	if !args.NewStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, args.NewStatus)
	}

	var updated *domain.Booking

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		bookingRepo, repoErr := uow.GetAs[BookingRepository](tx, uow.RepositoryName(repoargs.BookingRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		booking, lockErr := bookingRepo.LockBooking(c, args.BookingID)
		if lockErr != nil {
			return lockErr //nolint:wrapcheck
		}

		if authErr := s.authorizeActor(c, tx, booking, args); authErr != nil {
			return authErr
		}

		if !domain.CanTransition(booking.Status, args.NewStatus) {
			return &domain.InvalidTransitionError{From: booking.Status, To: args.NewStatus}
		}

		update := repoargs.UpdateBookingStatus{
			ID:                booking.ID,
			FromStatus:        booking.Status,
			ToStatus:          args.NewStatus,
			LoyaltyPointsUsed: booking.LoyaltyPointsUsed,
			ActualPartySize:   args.ActualPartySize,
		}

		switch args.NewStatus {
		case domain.BookingStatusCancelled:
			if sideErr := s.refundOnCancel(c, tx, booking); sideErr != nil {
				return sideErr
			}
			update.LoyaltyPointsUsed = 0
		case domain.BookingStatusCompleted:
			if sideErr := s.awardOnComplete(c, tx, booking, args.ActualPartySize); sideErr != nil {
				return sideErr
			}
		case domain.BookingStatusNoShow:
			update.NoShowReason = args.NoShowReason
			if update.NoShowReason == "" {
				update.NoShowReason = defaultNoShowReason
			}
		case domain.BookingStatusPending, domain.BookingStatusConfirmed:
			// No ledger side effect.
		}

		var updateErr error
		updated, updateErr = bookingRepo.UpdateBookingStatus(c, update)
		return updateErr //nolint:wrapcheck
	})

	if txErr != nil {
		return nil, txErr //nolint:wrapcheck
	}

	s.afterCommit(ctx, updated, "booking status changed")
	return updated, nil
}

// authorizeActor admits the booking's customer, the restaurant's owner,
// and admins.
func (s *BookingService) authorizeActor(
	ctx context.Context,
	tx uow.TX,
	booking *domain.Booking,
	args UpdateStatusArgs,
) error {
	if args.ActorID == booking.UserID || args.ActorRole == domain.RoleAdmin {
		return nil
	}

	restaurantRepo, repoErr := uow.GetAs[RestaurantRepository](tx, uow.RepositoryName(repoargs.RestaurantRepoName))
	if repoErr != nil {
		return repoErr //nolint:wrapcheck
	}
	restaurant, restErr := restaurantRepo.FindRestaurantByID(ctx, booking.RestaurantID)
	if restErr != nil {
		return restErr //nolint:wrapcheck
	}
	if restaurant.OwnerID == args.ActorID {
		return nil
	}
	return fmt.Errorf("actor %d may not modify booking %d: %w", args.ActorID, booking.ID, domain.ErrForbidden)
}

// refundOnCancel returns spent points exactly once: the update that zeroes
// loyalty_points_used commits atomically with the refund entry.
func (s *BookingService) refundOnCancel(ctx context.Context, tx uow.TX, booking *domain.Booking) error {
	if booking.LoyaltyPointsUsed == 0 {
		return nil
	}

	userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if repoErr != nil {
		return repoErr //nolint:wrapcheck
	}
	ledgerRepo, repoErr := uow.GetAs[LedgerRepository](tx, uow.RepositoryName(repoargs.LedgerRepoName))
	if repoErr != nil {
		return repoErr //nolint:wrapcheck
	}

	if _, adjErr := userRepo.AdjustPoints(ctx, booking.UserID, booking.LoyaltyPointsUsed); adjErr != nil {
		return adjErr //nolint:wrapcheck
	}
	_, appendErr := ledgerRepo.Append(ctx, repoargs.AppendTransaction{
		UserID:      booking.UserID,
		BookingID:   &booking.ID,
		Type:        domain.TransactionAdjusted,
		Points:      booking.LoyaltyPointsUsed,
		Description: "Refund for cancelled booking " + booking.ConfirmationCode,
	})
	return appendErr //nolint:wrapcheck
}

func (s *BookingService) awardOnComplete(
	ctx context.Context,
	tx uow.TX,
	booking *domain.Booking,
	actualPartySize *int,
) error {
	userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
	if repoErr != nil {
		return repoErr //nolint:wrapcheck
	}
	ledgerRepo, repoErr := uow.GetAs[LedgerRepository](tx, uow.RepositoryName(repoargs.LedgerRepoName))
	if repoErr != nil {
		return repoErr //nolint:wrapcheck
	}

	if booking.LoyaltyPointsEarned > 0 {
		if _, adjErr := userRepo.AdjustPoints(ctx, booking.UserID, booking.LoyaltyPointsEarned); adjErr != nil {
			return adjErr //nolint:wrapcheck
		}
		expiresAt := s.now().Add(earnedPointsTTL)
		if _, appendErr := ledgerRepo.Append(ctx, repoargs.AppendTransaction{
			UserID:      booking.UserID,
			BookingID:   &booking.ID,
			Type:        domain.TransactionEarned,
			Points:      booking.LoyaltyPointsEarned,
			Description: "Points earned for booking " + booking.ConfirmationCode,
			ExpiresAt:   &expiresAt,
		}); appendErr != nil {
			return appendErr //nolint:wrapcheck
		}
	}

	guests := booking.PartySize
	if actualPartySize != nil {
		guests = *actualPartySize
	}
	spend := decimal.NewFromInt(int64(guests) * spendPerGuest)
	return userRepo.IncrementTotalSpent(ctx, booking.UserID, spend) //nolint:wrapcheck
}

func (s *BookingService) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.FindBookingByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return booking, nil
}

// GetByUserID returns the user's bookings, newest booking time first.
func (s *BookingService) GetByUserID(ctx context.Context, userID int64) ([]domain.Booking, error) {
	bookings, err := s.bookingRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return bookings, nil
}

// GetByConfirmationCode resolves a code handed to the customer. Only the
// booking owner sees the result; anyone else gets not-found, so codes
// cannot be probed.
func (s *BookingService) GetByConfirmationCode(ctx context.Context, userID int64, code string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.FindByConfirmationCode(ctx, code)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if booking.UserID != userID {
		return nil, fmt.Errorf("booking with code %q: %w", code, domain.ErrRecordNotFound)
	}
	return booking, nil
}

// afterCommit fires best-effort collaborators. The mutation is already
// durable at this point; failures are logged and swallowed.
func (s *BookingService) afterCommit(ctx context.Context, booking *domain.Booking, event string) {
	if booking == nil {
		return
	}
	if notifyErr := s.notifyFor(ctx, booking, event); notifyErr != nil {
		s.l.WithError(notifyErr).WithField("bookingID", booking.ID).Warn("notification dispatch failed")
	}
	if cacheErr := s.cache.InvalidatePattern(ctx, fmt.Sprintf("bookings:user:%d:*", booking.UserID)); cacheErr != nil {
		s.l.WithError(cacheErr).WithField("bookingID", booking.ID).Warn("cache invalidation failed")
	}
}

func (s *BookingService) notifyFor(ctx context.Context, booking *domain.Booking, event string) error {
	if event == "booking created" {
		return s.notifier.BookingCreated(ctx, booking) //nolint:wrapcheck
	}
	return s.notifier.BookingStatusChanged(ctx, booking) //nolint:wrapcheck
}

func estimatedMinutes(partySize int) int {
	minutes := partySize * minutesPerGuest
	if minutes < minDurationMinutes {
		return minDurationMinutes
	}
	return minutes
}
