package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/tiffinlabs/dabba/internal/catalog/domain"
	groupdomain "github.com/tiffinlabs/dabba/internal/deliverygroup/domain"
	scheduledomain "github.com/tiffinlabs/dabba/internal/schedule/domain"
	subscriptiondomain "github.com/tiffinlabs/dabba/internal/subscription/domain"
	upgradedomain "github.com/tiffinlabs/dabba/internal/upgrade/domain"
	walletdomain "github.com/tiffinlabs/dabba/internal/wallet/domain"
	"github.com/tiffinlabs/dabba/pkg/rules"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

// ErrorHandlingMiddleware maps the last handler error to a status and a
// structured payload. It performs no business logic of its own.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var violation *rules.Violation
	if errors.As(err, &violation) {
		return http.StatusConflict, errorPayload{
			Type:    "business_rule_violation",
			Code:    violation.Code,
			Message: violation.Message,
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isOwnershipError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "ownership_error",
			Code:    err.Error(),
			Message: "resource is not owned by the caller",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    err.Error(),
			Message: "not found",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    err.Error(),
			Message: "invalid request",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrPackageNotFound),
		errors.Is(err, catalogdomain.ErrTokenPackageNotFound),
		errors.Is(err, catalogdomain.ErrPriceRuleNotFound),
		errors.Is(err, catalogdomain.ErrAddressNotFound),
		errors.Is(err, subscriptiondomain.ErrSubscriptionNotFound),
		errors.Is(err, scheduledomain.ErrMealNotFound),
		errors.Is(err, groupdomain.ErrGroupNotFound),
		errors.Is(err, groupdomain.ErrMemberNotFound),
		errors.Is(err, walletdomain.ErrWalletNotFound),
		errors.Is(err, walletdomain.ErrOrderNotFound),
		errors.Is(err, upgradedomain.ErrUpgradeNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isOwnershipError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrAddressNotOwned),
		errors.Is(err, subscriptiondomain.ErrSubscriptionNotOwned),
		errors.Is(err, scheduledomain.ErrMealNotOwned),
		errors.Is(err, groupdomain.ErrGroupNotOwned),
		errors.Is(err, groupdomain.ErrMemberNotOwned),
		errors.Is(err, walletdomain.ErrOrderNotOwned),
		errors.Is(err, upgradedomain.ErrUpgradeNotOwned):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, subscriptiondomain.ErrInvalidStartDate),
		errors.Is(err, subscriptiondomain.ErrInvalidEndReason),
		errors.Is(err, subscriptiondomain.ErrInvalidContainer),
		errors.Is(err, groupdomain.ErrInvalidMemberKind),
		errors.Is(err, groupdomain.ErrMemberCancelled),
		errors.Is(err, groupdomain.ErrMemberAlreadyGrouped),
		errors.Is(err, walletdomain.ErrInvalidItemType),
		errors.Is(err, upgradedomain.ErrInvalidUpgradeRange),
		errors.Is(err, upgradedomain.ErrMissingMealType):
		return true
	default:
		return false
	}
}
