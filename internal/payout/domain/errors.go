package domain

import "errors"

var (
	ErrTransactionNotFound = errors.New("payout_transaction_not_found")
	ErrNothingToSettle     = errors.New("nothing_to_settle")
)
