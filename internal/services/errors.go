package services

import "errors"

// Service errors
var (
	// Chart errors
	ErrEmptySeries = errors.New("no chart data provided")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
