package service

import "errors"

var (
	ErrCartEmpty              = errors.New("cart is empty, nothing to check out")
	ErrDiscountAlreadyApplied = errors.New("a gift card is already applied — remove it first")
	ErrGiftCardInactive       = errors.New("gift card is not active")
	ErrGiftCardExpired        = errors.New("gift card has expired")
	ErrGiftCardExhausted      = errors.New("gift card has no remaining balance")
	ErrNothingToApply         = errors.New("nothing to apply, cart total is zero")
	ErrInvalidAddress         = errors.New("notification address is missing or invalid")
)
