package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	scheduledomain "github.com/tiffinlabs/dabba/internal/schedule/domain"
	subscriptiondomain "github.com/tiffinlabs/dabba/internal/subscription/domain"
	walletdomain "github.com/tiffinlabs/dabba/internal/wallet/domain"
	"github.com/tiffinlabs/dabba/pkg/rules"
	"gorm.io/gorm"
)

func TestMapErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"business rule", rules.ErrCutoffPassed, http.StatusConflict},
		{"ownership", scheduledomain.ErrMealNotOwned, http.StatusForbidden},
		{"not found", subscriptiondomain.ErrSubscriptionNotFound, http.StatusNotFound},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"validation", walletdomain.ErrInvalidItemType, http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := mapError(tc.err)
			assert.Equal(t, tc.status, status)
		})
	}
}

func TestMapErrorCarriesViolationCode(t *testing.T) {
	_, payload := mapError(rules.ErrInsufficientTokens)
	assert.Equal(t, "business_rule_violation", payload.Type)
	assert.Equal(t, "INSUFFICIENT_TOKENS", payload.Code)
}
