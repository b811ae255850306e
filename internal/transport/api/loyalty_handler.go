package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/dinebook/dinebook/internal/domain"
	"github.com/dinebook/dinebook/internal/service"
)

type LoyaltyHandler struct {
	ledgerSvs     LedgerServicer
	redemptionSvs RedemptionServicer
}

func NewLoyaltyHandler(ledgerSvs LedgerServicer, redemptionSvs RedemptionServicer) *LoyaltyHandler {
	return &LoyaltyHandler{
		ledgerSvs:     ledgerSvs,
		redemptionSvs: redemptionSvs,
	}
}

type TierResponse struct {
	Name     string  `json:"name"`
	Next     string  `json:"next,omitempty"`
	Progress float64 `json:"progress"`
}

type BalanceResponse struct {
	Points     int64        `json:"points"`
	TotalSpent float64      `json:"totalSpent"`
	Tier       TierResponse `json:"tier"`
}

// Balance GET RouteGroup + BalanceRoute.
func (h *LoyaltyHandler) Balance(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	summary, err := h.ledgerSvs.Balance(reqCtx, currentUserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	tier := TierResponse{
		Name:     summary.Tier.Tier.Name,
		Progress: summary.Tier.Progress,
	}
	if summary.Tier.Next != nil {
		tier.Next = summary.Tier.Next.Name
	}

	c.JSON(http.StatusOK, &BalanceResponse{
		Points:     summary.Points,
		TotalSpent: summary.TotalSpent.InexactFloat64(),
		Tier:       tier,
	})
}

type TransactionResponse struct {
	ID          int64                  `json:"id"`
	BookingID   *int64                 `json:"bookingId,omitempty"`
	Type        domain.TransactionType `json:"type"`
	Points      int64                  `json:"points"`
	Description string                 `json:"description,omitempty"`
	ExpiresAt   *time.Time             `json:"expiresAt,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// Transactions GET RouteGroup + TransactionsRoute.
func (h *LoyaltyHandler) Transactions(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := h.ledgerSvs.History(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if len(transactions) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]TransactionResponse, len(transactions))
	for i, transaction := range transactions {
		response[i] = TransactionResponse{
			ID:          transaction.ID,
			BookingID:   transaction.BookingID,
			Type:        transaction.Type,
			Points:      transaction.Points,
			Description: transaction.Description,
			ExpiresAt:   transaction.ExpiresAt,
			CreatedAt:   transaction.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, response)
}

type RedeemParams struct {
	Points      int64  `binding:"required,min=1"                                              json:"points"`
	Type        string `binding:"required,oneof=FREE_DELIVERY VIP_UPGRADE BIRTHDAY_CAKE GIFT_CARD" json:"type"`
	Description string `binding:"omitempty,max_bytes=500"                                     json:"description"`
}

type GiftCardResponse struct {
	Code  string  `json:"code"`
	Value float64 `json:"value"`
}

type RedeemResponse struct {
	Balance     int64                `json:"balance"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	GiftCard    *GiftCardResponse    `json:"giftCard,omitempty"`
}

// Redeem POST RouteGroup + RedeemRoute.
func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params RedeemParams
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

	result, err := h.redemptionSvs.Redeem(
		reqCtx,
		currentUserID,
		params.Points,
		domain.RedemptionType(params.Type),
		params.Description,
	)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	response := RedeemResponse{Balance: result.Balance}
	if result.Transaction != nil {
		response.Transaction = &TransactionResponse{
			ID:          result.Transaction.ID,
			BookingID:   result.Transaction.BookingID,
			Type:        result.Transaction.Type,
			Points:      result.Transaction.Points,
			Description: result.Transaction.Description,
			ExpiresAt:   result.Transaction.ExpiresAt,
			CreatedAt:   result.Transaction.CreatedAt,
		}
	}
	if result.GiftCard != nil {
		response.GiftCard = &GiftCardResponse{
			Code:  result.GiftCard.Code,
			Value: result.GiftCard.FaceValue.InexactFloat64(),
		}
	}

	c.JSON(http.StatusCreated, response)
}

type PartnerTransactionParams struct {
	PartnerID  int64           `binding:"required"                 json:"partnerId"`
	Amount     decimal.Decimal `binding:"required"                 json:"amount"`
	ExternalID *string         `binding:"omitempty,max_bytes=100"  json:"externalId"`
}

type PartnerTransactionResponse struct {
	Points  int64 `json:"points"`
	Balance int64 `json:"balance"`
}

// Partner POST RouteGroup + PartnersRoute.
func (h *LoyaltyHandler) Partner(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params PartnerTransactionParams
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

	result, err := h.redemptionSvs.PartnerTransaction(reqCtx, service.PartnerTransactionArgs{
		UserID:     currentUserID,
		PartnerID:  params.PartnerID,
		Amount:     params.Amount,
		ExternalID: params.ExternalID,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, &PartnerTransactionResponse{
		Points:  result.Points,
		Balance: result.Balance,
	})
}
