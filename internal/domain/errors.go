package domain

import "errors"

var (
	ErrInvalidID      = errors.New("invalid identifier")
	ErrRecordNotFound = errors.New("record not found")
	ErrOutOfBounds    = errors.New("seat coordinate out of bounds")
	ErrSeatConflict   = errors.New("one or more selected seats are already booked")
	ErrNoSeats        = errors.New("at least one seat must be selected")
	ErrDuplicateSeat  = errors.New("the same seat is selected more than once")
	ErrInvalidGrid    = errors.New("seat grid must have at least one row and one column")
	// ErrUnderflow means the available-seat counter would drop below zero. It is an
	// invariant violation, never a user error.
	ErrUnderflow = errors.New("available seat counter underflow")
	// ErrTransient wraps storage or transaction failures that are safe to retry.
	ErrTransient = errors.New("transient storage failure")
)
