package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/logger"
	"github.com/dinebook/dinebook/internal/service"
	"github.com/dinebook/dinebook/internal/tokens"
	"github.com/dinebook/dinebook/internal/transport/api/testutils"
)

type BookingsHandlerTestSuite struct {
	suite.Suite
	router         *gin.Engine
	bookingService *stubBookingService
	jwtSecret      []byte
	userToken      string
	userID         int64
}

func TestBookingsHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingsHandlerTestSuite))
}

func (s *BookingsHandlerTestSuite) SetupTest() {
	s.bookingService = &stubBookingService{}
	s.jwtSecret = []byte("super secret key")
	s.userID = 1

	s.router = New(RouterArgs{
		Logger:         logger.New(os.Stdout),
		BookingService: s.bookingService,
		JWTSecretKey:   s.jwtSecret,
	})

	var err error
	s.userToken, err = tokens.GenerateUserJWT(s.userID, domain.RoleCustomer, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
}

func (s *BookingsHandlerTestSuite) sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:               42,
		CreatedAt:        time.Now(),
		UserID:           s.userID,
		RestaurantID:     1,
		TableID:          2,
		BookingTime:      time.Date(2025, time.July, 1, 19, 0, 0, 0, time.UTC),
		PartySize:        4,
		Status:           domain.BookingStatusConfirmed,
		ConfirmationCode: "A1B2C3",
		EstimatedMinutes: 120,
	}
}

func (s *BookingsHandlerTestSuite) TestCreate() {
	validPayload := `{"restaurantId": 1, "tableId": 2, "bookingTime": "2025-07-01T19:00:00Z", "partySize": 4}`

	cases := []struct {
		name       string
		payload    string
		jwtToken   string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "all ok",
			payload:    validPayload,
			jwtToken:   s.userToken,
			wantStatus: http.StatusCreated,
		}, {
			name:       "not authorized",
			payload:    validPayload,
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "party size over limit",
			payload:    `{"restaurantId": 1, "tableId": 2, "bookingTime": "2025-07-01T19:00:00Z", "partySize": 21}`,
			jwtToken:   s.userToken,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name: "special requests over byte limit",
			payload: fmt.Sprintf(
				`{"restaurantId": 1, "tableId": 2, "bookingTime": "2025-07-01T19:00:00Z", "partySize": 4, "specialRequests": %q}`,
				testutils.GenerateOverBytesUnderRunes(1000),
			),
			jwtToken:   s.userToken,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "table taken",
			payload:    validPayload,
			jwtToken:   s.userToken,
			serviceErr: domain.ErrTableUnavailable,
			wantStatus: http.StatusConflict,
			wantCode:   "table_unavailable",
		}, {
			name:       "party over capacity",
			payload:    validPayload,
			jwtToken:   s.userToken,
			serviceErr: &domain.CapacityExceededError{PartySize: 8, Capacity: 4},
			wantStatus: http.StatusBadRequest,
			wantCode:   "capacity_exceeded",
		}, {
			name:       "not enough points",
			payload:    validPayload,
			jwtToken:   s.userToken,
			serviceErr: &domain.InsufficientPointsError{Requested: 100, Available: 20},
			wantStatus: http.StatusBadRequest,
			wantCode:   "insufficient_points",
		}, {
			name:       "unknown restaurant",
			payload:    validPayload,
			jwtToken:   s.userToken,
			serviceErr: domain.ErrRecordNotFound,
			wantStatus: http.StatusNotFound,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			serviceErr := t.serviceErr
			s.bookingService.createFn = func(_ context.Context, args service.CreateBookingArgs) (*service.CreateBookingResult, error) {
				s.Equal(s.userID, args.UserID)
				if serviceErr != nil {
					return nil, fmt.Errorf("creating booking: %w", serviceErr)
				}
				return &service.CreateBookingResult{Booking: s.sampleBooking()}, nil
			}

			res, err := s.makeJSONRequest(http.MethodPost, RouteGroup+BookingsRoute, t.payload, t.jwtToken)
			s.Require().NoError(err)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)

			switch {
			case t.wantStatus == http.StatusCreated:
				var body BookingCreateResponse
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.EqualValues(42, body.Booking.ID)
				s.Equal("A1B2C3", body.Booking.ConfirmationCode)
				s.Equal(120, body.Booking.EstimatedMinutes)
			case t.wantCode != "":
				var body map[string]any
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.Equal(t.wantCode, body["code"])
			}
		})
	}
}

func (s *BookingsHandlerTestSuite) TestCreateRecurring() {
	parent := s.sampleBooking()
	child := s.sampleBooking()
	child.ID = 43
	child.BookingTime = parent.BookingTime.AddDate(0, 0, 7)
	child.ParentBookingID = &parent.ID

	s.bookingService.createFn = func(_ context.Context, args service.CreateBookingArgs) (*service.CreateBookingResult, error) {
		s.Require().NotNil(args.RecurringPattern)
		s.Equal(domain.FrequencyWeekly, args.RecurringPattern.Frequency)
		s.Equal([]time.Weekday{time.Tuesday}, args.RecurringPattern.Days)
		return &service.CreateBookingResult{
			Booking: parent,
			Occurrences: []service.OccurrenceResult{
				{Time: child.BookingTime, Booking: child},
				{Time: child.BookingTime.AddDate(0, 0, 7), Skipped: true, Reason: "table unavailable in requested window"},
			},
		}, nil
	}

	payload := `{
		"restaurantId": 1, "tableId": 2, "bookingTime": "2025-07-01T19:00:00Z", "partySize": 4,
		"recurringPattern": {"frequency": "WEEKLY", "days": [2], "endDate": "2025-07-20T00:00:00Z"}
	}`
	res, err := s.makeJSONRequest(http.MethodPost, RouteGroup+BookingsRoute, payload, s.userToken)
	s.Require().NoError(err)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusCreated, res.StatusCode)

	var body BookingCreateResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.Require().Len(body.Occurrences, 2)
	s.Require().NotNil(body.Occurrences[0].Booking)
	s.EqualValues(43, body.Occurrences[0].Booking.ID)
	s.True(body.Occurrences[1].Skipped)
	s.NotEmpty(body.Occurrences[1].Reason)
}

func (s *BookingsHandlerTestSuite) TestIndex() {
	cases := []struct {
		name       string
		jwtToken   string
		bookings   []domain.Booking
		wantStatus int
	}{
		{
			name:       "all ok",
			jwtToken:   s.userToken,
			bookings:   []domain.Booking{*s.sampleBooking()},
			wantStatus: http.StatusOK,
		}, {
			name:       "no bookings",
			jwtToken:   s.userToken,
			wantStatus: http.StatusNoContent,
		}, {
			name:       "not authorized",
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			bookings := t.bookings
			s.bookingService.getByUserIDFn = func(_ context.Context, userID int64) ([]domain.Booking, error) {
				s.Equal(s.userID, userID)
				return bookings, nil
			}

			res, err := s.makeJSONRequest(http.MethodGet, RouteGroup+BookingsRoute, "", t.jwtToken)
			s.Require().NoError(err)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)
			if t.wantStatus == http.StatusOK {
				var body []BookingResponse
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.Require().Len(body, 1)
				s.EqualValues(42, body[0].ID)
			}
		})
	}
}

func (s *BookingsHandlerTestSuite) TestShowByCode() {
	cases := []struct {
		name       string
		code       string
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "all ok",
			code:       "A1B2C3",
			jwtToken:   s.userToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "unknown code",
			code:       "ZZZZZZ",
			jwtToken:   s.userToken,
			wantStatus: http.StatusNotFound,
		}, {
			name:       "not authorized",
			code:       "A1B2C3",
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			s.bookingService.getByCodeFn = func(_ context.Context, userID int64, code string) (*domain.Booking, error) {
				s.Equal(s.userID, userID)
				if code != "A1B2C3" {
					return nil, fmt.Errorf("booking with code %q: %w", code, domain.ErrRecordNotFound)
				}
				return s.sampleBooking(), nil
			}

			res, err := s.makeJSONRequest(http.MethodGet, RouteGroup+BookingsRoute+"/code/"+t.code, "", t.jwtToken)
			s.Require().NoError(err)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)
			if t.wantStatus == http.StatusOK {
				var body BookingResponse
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.Equal("A1B2C3", body.ConfirmationCode)
			}
		})
	}
}

func (s *BookingsHandlerTestSuite) TestUpdateStatus() {
	cases := []struct {
		name       string
		url        string
		payload    string
		jwtToken   string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "all ok",
			url:        RouteGroup + BookingsRoute + "/42",
			payload:    `{"status": "CANCELLED"}`,
			jwtToken:   s.userToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "not authorized",
			url:        RouteGroup + BookingsRoute + "/42",
			payload:    `{"status": "CANCELLED"}`,
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "bad booking id",
			url:        RouteGroup + BookingsRoute + "/forty-two",
			payload:    `{"status": "CANCELLED"}`,
			jwtToken:   s.userToken,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "unknown status",
			url:        RouteGroup + BookingsRoute + "/42",
			payload:    `{"status": "EATEN"}`,
			jwtToken:   s.userToken,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "invalid transition",
			url:        RouteGroup + BookingsRoute + "/42",
			payload:    `{"status": "CONFIRMED"}`,
			jwtToken:   s.userToken,
			serviceErr: &domain.InvalidTransitionError{From: domain.BookingStatusCompleted, To: domain.BookingStatusConfirmed},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_transition",
		}, {
			name:       "foreign booking",
			url:        RouteGroup + BookingsRoute + "/42",
			payload:    `{"status": "CANCELLED"}`,
			jwtToken:   s.userToken,
			serviceErr: domain.ErrForbidden,
			wantStatus: http.StatusForbidden,
		}, {
			name:       "unknown booking",
			url:        RouteGroup + BookingsRoute + "/42",
			payload:    `{"status": "CANCELLED"}`,
			jwtToken:   s.userToken,
			serviceErr: domain.ErrRecordNotFound,
			wantStatus: http.StatusNotFound,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			serviceErr := t.serviceErr
			s.bookingService.updateStatusFn = func(_ context.Context, args service.UpdateStatusArgs) (*domain.Booking, error) {
				s.EqualValues(42, args.BookingID)
				s.Equal(s.userID, args.ActorID)
				if serviceErr != nil {
					return nil, fmt.Errorf("updating booking status: %w", serviceErr)
				}
				updated := s.sampleBooking()
				updated.Status = args.NewStatus
				return updated, nil
			}

			res, err := s.makeJSONRequest(http.MethodPut, t.url, t.payload, t.jwtToken)
			s.Require().NoError(err)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)

			switch {
			case t.wantStatus == http.StatusOK:
				var body BookingResponse
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.Equal(domain.BookingStatusCancelled, body.Status)
			case t.wantCode != "":
				var body map[string]any
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.Equal(t.wantCode, body["code"])
			}
		})
	}
}

func (s *BookingsHandlerTestSuite) makeJSONRequest(method, url, payload, jwtToken string) (*http.Response, error) {
	args := testutils.RequestArgs{
		Router: s.router,
		Method: method,
		URL:    url,
	}
	if payload != "" {
		args.Body = bytes.NewReader([]byte(payload))
	}
	reqOpts := []func(*testutils.RequestOptions){
		testutils.WithHeader("Content-Type", "application/json"),
	}
	if jwtToken != "" {
		reqOpts = append(reqOpts, testutils.WithBearerToken(jwtToken))
	}
	return testutils.MakeRequest(args, reqOpts...) //nolint:wrapcheck
}
