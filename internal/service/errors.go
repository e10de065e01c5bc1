package service

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrAlreadyPaid          = errors.New("job is already paid")
	ErrNotPaid              = errors.New("job is not paid yet")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrDepositLimitExceeded = errors.New("deposit limit exceeded")
	ErrInvalidInput         = errors.New("invalid input")
)
