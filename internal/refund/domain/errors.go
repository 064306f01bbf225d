package domain

import "errors"

var (
	ErrRefundNotFound      = errors.New("refund_not_found")
	ErrInvalidTransition   = errors.New("invalid_transition")
	ErrConflict            = errors.New("conflict")
	ErrOrderNotRefundable  = errors.New("order_not_refundable")
	ErrActiveRefundExists  = errors.New("active_refund_exists")
	ErrAmountNotRefundable = errors.New("amount_exceeds_refundable")
)
