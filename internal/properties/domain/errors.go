package domain

import "errors"

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrNotOwner         = errors.New("property belongs to another agent")
	ErrInvalidListing   = errors.New("invalid listing")
	ErrHasTransactions  = errors.New("property has rentals or purchases")
	ErrUnitTypeNotFound = errors.New("unit type not found")
)
