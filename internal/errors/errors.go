package errors

import "errors"

// Failure taxonomy for the purchase and refund workflows. Services return
// these (possibly wrapped); handlers map them onto HTTP statuses.

var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")

// ErrNotFound covers a missing session, ticket type, seat, ticket or refund,
// and a seat that does not belong to the resolved event.
var ErrNotFound = errors.New("resource not found")

// ErrSeatTaken means the conditional seat lock matched zero rows.
var ErrSeatTaken = errors.New("seat is not available")

// ErrOutOfStock means the conditional inventory decrement matched zero rows.
var ErrOutOfStock = errors.New("out of stock")

// ErrInsufficientCredit means the conditional balance debit matched zero rows.
var ErrInsufficientCredit = errors.New("insufficient credit")

// ErrInvalidState is returned for refund actions against a refund or ticket
// that is not in the required state, including duplicate refund requests.
var ErrInvalidState = errors.New("invalid state for requested operation")

// ErrLockUnavailable means the advisory mutex could not be acquired within
// its wait timeout. Only surfaced when the purchase service is configured to
// treat mutex acquisition as required; it is retryable.
var ErrLockUnavailable = errors.New("advisory lock unavailable")
