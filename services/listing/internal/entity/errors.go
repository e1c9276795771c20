package entity

import "errors"

var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrNotOwner         = errors.New("caller does not own this resource")
	ErrSelfUnlock       = errors.New("cannot unlock your own listing")
	ErrViewLimitReached = errors.New("listing view limit reached")
	ErrUnlockNotFound   = errors.New("unlock record not found")
	ErrAlreadyConfirmed = errors.New("deal already confirmed")
)
