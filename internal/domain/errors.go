package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidFilter  = errors.New("invalid filter")
	ErrInvalidListing = errors.New("invalid listing")
)
