package httperr

import (
	"errors"
	"net/http"

	"github.com/GlebRadaev/finance/internal/domain"
	"github.com/GlebRadaev/finance/pkg/utils"
)

// Status maps a ledger error to the HTTP status the API answers with.
func Status(err error) int {
	switch {
	case domain.IsTransient(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrInsufficientShares):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidShareCount),
		errors.Is(err, domain.ErrUnknownSymbol):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err with its mapped status. Internal failures are not
// echoed to the client.
func Respond(w http.ResponseWriter, err error) {
	code := Status(err)
	switch {
	case code == http.StatusInternalServerError:
		utils.RespondWithError(w, code, "Internal server error")
	case domain.IsValidation(err):
		utils.RespondWithError(w, code, validationMessage(err))
	default:
		utils.RespondWithError(w, code, err.Error())
	}
}

func validationMessage(err error) string {
	for _, sentinel := range []error{
		domain.ErrInvalidAmount,
		domain.ErrInvalidShareCount,
		domain.ErrUnknownSymbol,
		domain.ErrInsufficientFunds,
		domain.ErrInsufficientShares,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
