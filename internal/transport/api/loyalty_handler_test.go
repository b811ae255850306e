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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/logger"
	"github.com/dinebook/dinebook/internal/service"
	"github.com/dinebook/dinebook/internal/tokens"
	"github.com/dinebook/dinebook/internal/transport/api/testutils"
)

type LoyaltyHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	ledgerService     *stubLedgerService
	redemptionService *stubRedemptionService
	jwtSecret         []byte
	userToken         string
	userID            int64
}

func TestLoyaltyHandlerSuite(t *testing.T) {
	suite.Run(t, new(LoyaltyHandlerTestSuite))
}

func (s *LoyaltyHandlerTestSuite) SetupTest() {
	s.ledgerService = &stubLedgerService{}
	s.redemptionService = &stubRedemptionService{}
	s.jwtSecret = []byte("super secret key")
	s.userID = 1

	s.router = New(RouterArgs{
		Logger:            logger.New(os.Stdout),
		LedgerService:     s.ledgerService,
		RedemptionService: s.redemptionService,
		JWTSecretKey:      s.jwtSecret,
	})

	var err error
	s.userToken, err = tokens.GenerateUserJWT(s.userID, domain.RoleCustomer, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
}

func (s *LoyaltyHandlerTestSuite) TestBalance() {
	tiers := domain.DefaultTiers()
	s.ledgerService.balanceFn = func(_ context.Context, userID int64) (*service.BalanceSummary, error) {
		s.Equal(s.userID, userID)
		return &service.BalanceSummary{
			Points:     1600,
			TotalSpent: decimal.NewFromFloat(1234.50),
			Tier:       domain.EvaluateTier(1600, decimal.NewFromFloat(1234.50), tiers),
		}, nil
	}

	res, err := s.makeJSONRequest(http.MethodGet, RouteGroup+BalanceRoute, "", s.userToken)
	s.Require().NoError(err)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusOK, res.StatusCode)

	var body BalanceResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.EqualValues(1600, body.Points)
	s.InDelta(1234.50, body.TotalSpent, 0.001)
	s.Equal("Silver", body.Tier.Name)
	s.Equal("Gold", body.Tier.Next)
}

func (s *LoyaltyHandlerTestSuite) TestBalanceUnauthorized() {
	res, err := s.makeJSONRequest(http.MethodGet, RouteGroup+BalanceRoute, "", "")
	s.Require().NoError(err)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusUnauthorized, res.StatusCode)
}

func (s *LoyaltyHandlerTestSuite) TestTransactions() {
	now := time.Now()
	cases := []struct {
		name         string
		transactions []domain.LoyaltyTransaction
		wantStatus   int
	}{
		{
			name: "all ok",
			transactions: []domain.LoyaltyTransaction{
				{ID: 2, CreatedAt: now, UserID: s.userID, Type: domain.TransactionRedeemed, Points: -50},
				{ID: 1, CreatedAt: now.Add(-time.Hour), UserID: s.userID, Type: domain.TransactionEarned, Points: 100},
			},
			wantStatus: http.StatusOK,
		}, {
			name:       "empty history",
			wantStatus: http.StatusNoContent,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			transactions := t.transactions
			s.ledgerService.historyFn = func(_ context.Context, userID int64) ([]domain.LoyaltyTransaction, error) {
				s.Equal(s.userID, userID)
				return transactions, nil
			}

			res, err := s.makeJSONRequest(http.MethodGet, RouteGroup+TransactionsRoute, "", s.userToken)
			s.Require().NoError(err)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)
			if t.wantStatus == http.StatusOK {
				var body []TransactionResponse
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.Require().Len(body, 2)
				s.EqualValues(-50, body[0].Points)
				s.Equal(domain.TransactionRedeemed, body[0].Type)
			}
		})
	}
}

func (s *LoyaltyHandlerTestSuite) TestRedeem() {
	cases := []struct {
		name       string
		payload    string
		serviceErr error
		giftCard   *domain.GiftCard
		wantStatus int
		wantCode   string
	}{
		{
			name:       "all ok",
			payload:    `{"points": 600, "type": "FREE_DELIVERY"}`,
			wantStatus: http.StatusCreated,
		}, {
			name:       "gift card issued",
			payload:    `{"points": 12000, "type": "GIFT_CARD"}`,
			giftCard:   &domain.GiftCard{Code: "GC-TEST", FaceValue: decimal.NewFromInt(10000)},
			wantStatus: http.StatusCreated,
		}, {
			name:       "zero points",
			payload:    `{"points": 0, "type": "FREE_DELIVERY"}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "unknown type",
			payload:    `{"points": 600, "type": "TIME_TRAVEL"}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "not enough points",
			payload:    `{"points": 600, "type": "FREE_DELIVERY"}`,
			serviceErr: &domain.InsufficientPointsError{Requested: 600, Available: 100},
			wantStatus: http.StatusBadRequest,
			wantCode:   "insufficient_points",
		}, {
			name:       "balance floor",
			payload:    `{"points": 600, "type": "FREE_DELIVERY"}`,
			serviceErr: &domain.MinimumBalanceError{Balance: 650, Requested: 600, Floor: 100},
			wantStatus: http.StatusBadRequest,
			wantCode:   "minimum_balance",
		}, {
			name:       "below type minimum",
			payload:    `{"points": 600, "type": "VIP_UPGRADE"}`,
			serviceErr: &domain.InvalidRedemptionError{Type: domain.RedemptionVIPUpgrade, Required: 5000, Requested: 600},
			wantStatus: http.StatusBadRequest,
			wantCode:   "redemption_minimum",
		}, {
			name:       "daily limit",
			payload:    `{"points": 600, "type": "FREE_DELIVERY"}`,
			serviceErr: domain.ErrDailyLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "daily_limit",
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			serviceErr := t.serviceErr
			giftCard := t.giftCard
			s.redemptionService.redeemFn = func(
				_ context.Context,
				userID int64,
				points int64,
				_ domain.RedemptionType,
				_ string,
			) (*service.RedeemResult, error) {
				s.Equal(s.userID, userID)
				if serviceErr != nil {
					return nil, fmt.Errorf("redeeming points: %w", serviceErr)
				}
				return &service.RedeemResult{
					Balance: 1000 - points,
					Transaction: &domain.LoyaltyTransaction{
						ID:     11,
						UserID: userID,
						Type:   domain.TransactionRedeemed,
						Points: -points,
					},
					GiftCard: giftCard,
				}, nil
			}

			res, err := s.makeJSONRequest(http.MethodPost, RouteGroup+RedeemRoute, t.payload, s.userToken)
			s.Require().NoError(err)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)

			switch {
			case t.wantStatus == http.StatusCreated && giftCard != nil:
				var body RedeemResponse
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.Require().NotNil(body.GiftCard)
				s.Equal("GC-TEST", body.GiftCard.Code)
				s.InDelta(10000, body.GiftCard.Value, 0.001)
			case t.wantStatus == http.StatusCreated:
				var body RedeemResponse
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.EqualValues(400, body.Balance)
				s.Require().NotNil(body.Transaction)
				s.EqualValues(-600, body.Transaction.Points)
				s.Equal(domain.TransactionRedeemed, body.Transaction.Type)
				s.Nil(body.GiftCard)
			case t.wantCode != "":
				var body map[string]any
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.Equal(t.wantCode, body["code"])
			}
		})
	}
}

func (s *LoyaltyHandlerTestSuite) TestPartner() {
	cases := []struct {
		name       string
		payload    string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "all ok",
			payload:    `{"partnerId": 3, "amount": 250, "externalId": "txn-1"}`,
			wantStatus: http.StatusCreated,
		}, {
			name:       "missing partner id",
			payload:    `{"amount": 250}`,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "replayed transaction",
			payload:    `{"partnerId": 3, "amount": 250, "externalId": "txn-1"}`,
			serviceErr: &domain.DuplicateTransactionError{PartnerID: 3, ExternalID: "txn-1"},
			wantStatus: http.StatusConflict,
			wantCode:   "duplicate_transaction",
		}, {
			name:       "unknown partner",
			payload:    `{"partnerId": 3, "amount": 250}`,
			serviceErr: domain.ErrRecordNotFound,
			wantStatus: http.StatusNotFound,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			serviceErr := t.serviceErr
			s.redemptionService.partnerFn = func(
				_ context.Context,
				args service.PartnerTransactionArgs,
			) (*service.PartnerTransactionResult, error) {
				s.Equal(s.userID, args.UserID)
				s.EqualValues(3, args.PartnerID)
				if serviceErr != nil {
					return nil, fmt.Errorf("recording partner transaction: %w", serviceErr)
				}
				return &service.PartnerTransactionResult{Points: 125, Balance: 1125}, nil
			}

			res, err := s.makeJSONRequest(http.MethodPost, RouteGroup+PartnersRoute, t.payload, s.userToken)
			s.Require().NoError(err)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)

			switch {
			case t.wantStatus == http.StatusCreated:
				var body PartnerTransactionResponse
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.EqualValues(125, body.Points)
				s.EqualValues(1125, body.Balance)
			case t.wantCode != "":
				var body map[string]any
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
				s.Equal(t.wantCode, body["code"])
			}
		})
	}
}

func (s *LoyaltyHandlerTestSuite) makeJSONRequest(method, url, payload, jwtToken string) (*http.Response, error) {
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
