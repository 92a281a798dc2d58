package domain

import "errors"

var (
	ErrPropertyUnavailable = errors.New("property is no longer available")
	ErrWrongListingType    = errors.New("property is not listed for this transaction")
	ErrAmountMismatch      = errors.New("amount does not match the listed price")
	ErrPaymentFailed       = errors.New("payment failed")
)
