package domain

import "errors"

var (
	ErrPolicyNotFound = errors.New("commission_policy_not_found")
	ErrInvalidRate    = errors.New("invalid_commission_rate")
)
