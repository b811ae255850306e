package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/service"
)

type BookingsHandler struct {
	bookingSvs BookingServicer
}

func NewBookingsHandler(bookingSvs BookingServicer) *BookingsHandler {
	return &BookingsHandler{
		bookingSvs: bookingSvs,
	}
}

type RecurringPatternParams struct {
	Frequency string    `binding:"required,oneof=WEEKLY MONTHLY"   json:"frequency"`
	Days      []int     `binding:"omitempty,dive,min=0,max=6"      json:"days"`
	EndDate   time.Time `binding:"required"                        json:"endDate"`
}

type BookingCreateParams struct {
	RestaurantID        int64                   `binding:"required"                  json:"restaurantId"`
	TableID             int64                   `binding:"required"                  json:"tableId"`
	BookingTime         time.Time               `binding:"required"                  json:"bookingTime"`
	PartySize           int                     `binding:"required,min=1,max=20"     json:"partySize"`
	SpecialRequests     string                  `binding:"omitempty,max_bytes=1000"  json:"specialRequests"`
	DietaryRestrictions string                  `binding:"omitempty,max_bytes=1000"  json:"dietaryRestrictions"`
	LoyaltyPointsToUse  int64                   `binding:"omitempty,min=0"           json:"loyaltyPointsToUse"`
	RecurringPattern    *RecurringPatternParams `binding:"omitempty"                 json:"recurringPattern"`
}

type BookingResponse struct {
	ID                  int64                    `json:"id"`
	RestaurantID        int64                    `json:"restaurantId"`
	TableID             int64                    `json:"tableId"`
	BookingTime         time.Time                `json:"bookingTime"`
	PartySize           int                      `json:"partySize"`
	Status              domain.BookingStatusType `json:"status"`
	ConfirmationCode    string                   `json:"confirmationCode"`
	EstimatedMinutes    int                      `json:"estimatedDurationMinutes"`
	LoyaltyPointsUsed   int64                    `json:"loyaltyPointsUsed"`
	LoyaltyPointsEarned int64                    `json:"loyaltyPointsEarned"`
	SpecialRequests     string                   `json:"specialRequests,omitempty"`
	DietaryRestrictions string                   `json:"dietaryRestrictions,omitempty"`
	NoShowReason        string                   `json:"noShowReason,omitempty"`
	ParentBookingID     *int64                   `json:"parentBookingId,omitempty"`
	CreatedAt           time.Time                `json:"createdAt"`
}

type OccurrenceResponse struct {
	BookingTime time.Time        `json:"bookingTime"`
	Booking     *BookingResponse `json:"booking,omitempty"`
	Skipped     bool             `json:"skipped"`
	Reason      string           `json:"reason,omitempty"`
}

type BookingCreateResponse struct {
	Booking     BookingResponse      `json:"booking"`
	Occurrences []OccurrenceResponse `json:"occurrences,omitempty"`
}

func bookingResponseFrom(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:                  b.ID,
		RestaurantID:        b.RestaurantID,
		TableID:             b.TableID,
		BookingTime:         b.BookingTime,
		PartySize:           b.PartySize,
		Status:              b.Status,
		ConfirmationCode:    b.ConfirmationCode,
		EstimatedMinutes:    b.EstimatedMinutes,
		LoyaltyPointsUsed:   b.LoyaltyPointsUsed,
		LoyaltyPointsEarned: b.LoyaltyPointsEarned,
		SpecialRequests:     b.SpecialRequests,
		DietaryRestrictions: b.DietaryRestrictions,
		NoShowReason:        b.NoShowReason,
		ParentBookingID:     b.ParentBookingID,
		CreatedAt:           b.CreatedAt,
	}
}

// Create POST RouteGroup + BookingsRoute.
func (h *BookingsHandler) Create(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params BookingCreateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	args := service.CreateBookingArgs{
		UserID:              currentUserID,
		RestaurantID:        params.RestaurantID,
		TableID:             params.TableID,
		BookingTime:         params.BookingTime,
		PartySize:           params.PartySize,
		SpecialRequests:     params.SpecialRequests,
		DietaryRestrictions: params.DietaryRestrictions,
		LoyaltyPointsToUse:  params.LoyaltyPointsToUse,
	}
	if p := params.RecurringPattern; p != nil {
		days := make([]time.Weekday, len(p.Days))
		for i, d := range p.Days {
			days[i] = time.Weekday(d)
		}
		args.RecurringPattern = &domain.RecurringPattern{
			Frequency: domain.FrequencyType(p.Frequency),
			Days:      days,
			EndDate:   p.EndDate,
		}
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	result, createErr := h.bookingSvs.Create(reqCtx, args)
	if createErr != nil {
		abortWithDomainError(c, createErr)
		return
	}

	response := BookingCreateResponse{Booking: bookingResponseFrom(result.Booking)}
	for _, occ := range result.Occurrences {
		item := OccurrenceResponse{
			BookingTime: occ.Time,
			Skipped:     occ.Skipped,
			Reason:      occ.Reason,
		}
		if occ.Booking != nil {
			b := bookingResponseFrom(occ.Booking)
			item.Booking = &b
		}
		response.Occurrences = append(response.Occurrences, item)
	}

	c.JSON(http.StatusCreated, response)
}

// Index GET RouteGroup + BookingsRoute.
func (h *BookingsHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	bookings, err := h.bookingSvs.GetByUserID(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if len(bookings) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]BookingResponse, len(bookings))
	for i := range bookings {
		response[i] = bookingResponseFrom(&bookings[i])
	}

	c.JSON(http.StatusOK, response)
}

// ShowByCode GET RouteGroup + BookingCodeRoute.
func (h *BookingsHandler) ShowByCode(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	booking, err := h.bookingSvs.GetByConfirmationCode(reqCtx, currentUserID, c.Param("code"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookingResponseFrom(booking))
}

type BookingUpdateParams struct {
	Status          string `binding:"required,oneof=PENDING CONFIRMED COMPLETED CANCELLED NO_SHOW" json:"status"`
	ActualPartySize *int   `binding:"omitempty,min=1"                                              json:"actualPartySize"`
	NoShowReason    string `binding:"omitempty,max_bytes=500"                                      json:"noShowReason"`
}

// UpdateStatus PUT RouteGroup + BookingsRoute + /:id.
func (h *BookingsHandler) UpdateStatus(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)
	currentRole := getUserRoleFromContext(c)

	bookingID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var params BookingUpdateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	booking, err := h.bookingSvs.UpdateStatus(reqCtx, service.UpdateStatusArgs{
		BookingID:       bookingID,
		ActorID:         currentUserID,
		ActorRole:       currentRole,
		NewStatus:       domain.BookingStatusType(params.Status),
		ActualPartySize: params.ActualPartySize,
		NoShowReason:    params.NoShowReason,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookingResponseFrom(booking))
}
