package server

import (
	"errors"
	"net/http"
	"testing"

	catalogdomain "github.com/dukalabs/soko/internal/catalog/domain"
	"github.com/dukalabs/soko/internal/identity"
	orderdomain "github.com/dukalabs/soko/internal/order/domain"
	payoutdomain "github.com/dukalabs/soko/internal/payout/domain"
	refunddomain "github.com/dukalabs/soko/internal/refund/domain"
	"github.com/dukalabs/soko/internal/server/apperr"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		errType string
	}{
		{apperr.ValidationErrors{{Field: "items", Message: "required"}}, http.StatusBadRequest, "validation_error"},
		{identity.ErrInvalidActor, http.StatusUnauthorized, "unauthenticated"},
		{identity.ErrForbidden, http.StatusForbidden, "forbidden"},
		{orderdomain.ErrOrderNotFound, http.StatusNotFound, "not_found"},
		{refunddomain.ErrRefundNotFound, http.StatusNotFound, "not_found"},
		{orderdomain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{refunddomain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{orderdomain.ErrConflict, http.StatusConflict, "conflict"},
		{refunddomain.ErrOrderNotRefundable, http.StatusUnprocessableEntity, "policy_violation"},
		{refunddomain.ErrAmountNotRefundable, http.StatusUnprocessableEntity, "policy_violation"},
		{catalogdomain.ErrInsufficientStock, http.StatusUnprocessableEntity, "policy_violation"},
		{payoutdomain.ErrNothingToSettle, http.StatusUnprocessableEntity, "policy_violation"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		status, payload := mapError(tc.err)
		assert.Equal(t, tc.status, status, "%v", tc.err)
		assert.Equal(t, tc.errType, payload.Type, "%v", tc.err)
	}
}

func TestValidationErrorsCarryFields(t *testing.T) {
	verr := apperr.ValidationErrors{
		{Field: "items", Message: "required"},
		{Field: "quantity", Message: "must be positive"},
	}
	_, payload := mapError(verr)
	assert.Len(t, payload.Errors, 2)
	assert.Equal(t, "items", payload.Errors[0].Field)
}
