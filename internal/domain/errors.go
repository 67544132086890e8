package domain

import "errors"

// Sentinel errors for the application. Services wrap these with context;
// handlers unwrap them into HTTP statuses.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrValidation         = errors.New("invalid input")
	ErrConflict           = errors.New("resource already exists")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrNotVerified        = errors.New("email not verified")
	ErrExpiredOTP         = errors.New("verification code has expired")
	ErrOTPMismatch        = errors.New("invalid verification code")
	ErrNoPendingOTP       = errors.New("no verification code pending")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDeliveryFailure    = errors.New("failed to deliver verification code")
	ErrInternal           = errors.New("internal server error")
)
