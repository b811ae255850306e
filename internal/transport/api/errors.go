package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dinebook/dinebook/internal/domain"
)

// abortWithDomainError renders a domain error as an HTTP response.
// Policy violations carry a machine-readable code plus the numbers the
// client needs to correct the request. Anything unrecognized is treated
// as private and funneled to the Errors middleware.
func abortWithDomainError(c *gin.Context, err error) {
	var (
		insufficientErr *domain.InsufficientPointsError
		minBalanceErr   *domain.MinimumBalanceError
		redemptionErr   *domain.InvalidRedemptionError
		capacityErr     *domain.CapacityExceededError
		transitionErr   *domain.InvalidTransitionError
		duplicateErr    *domain.DuplicateTransactionError
	)

	switch {
	case errors.As(err, &insufficientErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     insufficientErr.Error(),
			"code":      "insufficient_points",
			"requested": insufficientErr.Requested,
			"available": insufficientErr.Available,
		})
	case errors.As(err, &minBalanceErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   minBalanceErr.Error(),
			"code":    "minimum_balance",
			"balance": minBalanceErr.Balance,
			"floor":   minBalanceErr.Floor,
		})
	case errors.As(err, &redemptionErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":    redemptionErr.Error(),
			"code":     "redemption_minimum",
			"required": redemptionErr.Required,
		})
	case errors.As(err, &capacityErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":    capacityErr.Error(),
			"code":     "capacity_exceeded",
			"capacity": capacityErr.Capacity,
		})
	case errors.As(err, &transitionErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": transitionErr.Error(),
			"code":  "invalid_transition",
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
	case errors.As(err, &duplicateErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error": duplicateErr.Error(),
			"code":  "duplicate_transaction",
		})
	case errors.Is(err, domain.ErrTableUnavailable):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error": "table is not available for the requested time",
			"code":  "table_unavailable",
		})
	case errors.Is(err, domain.ErrDailyLimitExceeded):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "daily redemption limit reached",
			"code":  "daily_limit",
		})
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, domain.ErrValidation):
		_ = c.AbortWithError(http.StatusBadRequest, err).SetType(gin.ErrorTypePublic)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
