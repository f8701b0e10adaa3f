package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid query execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Access-grant errors
	ErrInvalidCoupon       = errors.New("coupon is invalid or inactive")
	ErrCouponExhausted     = errors.New("coupon has reached its usage limit")
	ErrNotAuthorized       = errors.New("caller lacks admin capability")
	ErrEmailMismatch       = errors.New("session email does not match account email")
	ErrPaymentNotCompleted = errors.New("payment has not been completed")
	ErrAlreadyPaid         = errors.New("account has already paid")

	// Infrastructure errors. The caller layer retries these a bounded
	// number of times and then fails closed for any grant operation.
	ErrStoreUnavailable    = errors.New("account store unavailable")
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)
