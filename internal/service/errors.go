package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/logging"
)

const (
	MsgNameRequired        = "Name is required"
	MsgInvalidEmail        = "Invalid email"
	MsgPasswordTooShort    = "Password must be at least 6 characters"
	MsgUserExists          = "User already exists"
	MsgEnterValidEmail     = "Enter a valid email"
	MsgPasswordRequired    = "Password is required"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgTooManyLogins       = "Too many login attempts. Please try again after 5 minutes."
	MsgMissingFields       = "Missing fields"
	MsgMissingCard         = "Missing card details"
	MsgMissingUPI          = "Missing UPI ID"
	MsgMissingBank         = "Missing bank name"
	MsgUnsupportedPayment  = "Unsupported payment mode"
	MsgMissingContactField = "Name, email and message are required"
)

func invalid(msg string) error {
	return apperr.New(apperr.ErrValidation, msg)
}

// internal logs the cause and returns the generic server error.
func internal(ctx context.Context, svc, event string, err error) error {
	logging.FromContext(ctx).With("svc", svc).Error(event, "status", "failed", "error", err)
	return apperr.Internal()
}
