package server

import (
	"errors"
	"net/http"

	catalogdomain "github.com/dukalabs/soko/internal/catalog/domain"
	commissiondomain "github.com/dukalabs/soko/internal/commission/domain"
	"github.com/dukalabs/soko/internal/identity"
	orderdomain "github.com/dukalabs/soko/internal/order/domain"
	payoutdomain "github.com/dukalabs/soko/internal/payout/domain"
	refunddomain "github.com/dukalabs/soko/internal/refund/domain"
	"github.com/dukalabs/soko/internal/server/apperr"
	statementdomain "github.com/dukalabs/soko/internal/statement/domain"
	"github.com/gin-gonic/gin"
)

type errorPayload struct {
	Type    string             `json:"type"`
	Message string             `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// AbortWithError attaches the error to the gin context; the error handling
// middleware renders it once the handler chain unwinds.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandlingMiddleware converts the last attached error into the JSON
// error envelope.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		lastErr := c.Errors.Last()
		if lastErr == nil || c.Writer.Written() {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.JSON(status, errorResponse{Error: payload})
	}
}

// ClassifyError reports the error type and code for request logging.
func ClassifyError(err error) (string, string) {
	_, payload := mapError(err)
	return payload.Type, payload.Message
}

func mapError(err error) (int, errorPayload) {
	var verr apperr.ValidationErrors
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "request validation failed",
			Errors:  verr,
		}
	}

	switch {
	case errors.Is(err, identity.ErrInvalidActor):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthenticated",
			Message: "valid actor headers are required",
		}
	case errors.Is(err, identity.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "actor is not allowed to perform this action",
		}
	case errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, refunddomain.ErrRefundNotFound),
		errors.Is(err, catalogdomain.ErrProductNotFound),
		errors.Is(err, payoutdomain.ErrTransactionNotFound),
		errors.Is(err, commissiondomain.ErrPolicyNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case errors.Is(err, orderdomain.ErrInvalidTransition),
		errors.Is(err, refunddomain.ErrInvalidTransition):
		return http.StatusConflict, errorPayload{
			Type:    "invalid_transition",
			Message: "the requested state change is not allowed from the current state",
		}
	case errors.Is(err, orderdomain.ErrConflict),
		errors.Is(err, refunddomain.ErrConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "the resource was modified concurrently, retry the request",
		}
	case errors.Is(err, refunddomain.ErrOrderNotRefundable),
		errors.Is(err, refunddomain.ErrActiveRefundExists),
		errors.Is(err, refunddomain.ErrAmountNotRefundable),
		errors.Is(err, catalogdomain.ErrInsufficientStock),
		errors.Is(err, catalogdomain.ErrProductInactive),
		errors.Is(err, commissiondomain.ErrInvalidRate),
		errors.Is(err, payoutdomain.ErrNothingToSettle):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "policy_violation",
			Message: err.Error(),
		}
	case errors.Is(err, statementdomain.ErrInvalidPeriod):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "period must be one of all, month, quarter, year",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal",
			Message: "an internal error occurred",
		}
	}
}
