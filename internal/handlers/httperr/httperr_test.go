package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/pkg/utils"
)

func TestRespond(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest, "invalid amount"},
		{"invalid shares", domain.ErrInvalidShareCount, http.StatusBadRequest, "invalid shares"},
		{"unknown symbol", fmt.Errorf("%w: ZZZ", domain.ErrUnknownSymbol), http.StatusBadRequest, "invalid symbol"},
		{"not enough cash", domain.ErrInsufficientFunds, http.StatusPaymentRequired, "not enough cash"},
		{"not enough shares", domain.ErrInsufficientShares, http.StatusUnprocessableEntity, "not enough shares"},
		{"quotes down", domain.ErrQuoteUnavailable, http.StatusServiceUnavailable, "quote service unavailable"},
		{"store down", fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, errors.New("conn refused")), http.StatusServiceUnavailable, "ledger store unavailable: conn refused"},
		{"unknown user", domain.ErrUserNotFound, http.StatusUnauthorized, "user not found"},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Respond(rr, tt.err)

			assert.Equal(t, tt.code, rr.Code)
			var resp utils.Response
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}
