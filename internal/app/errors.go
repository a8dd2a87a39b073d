package service

import "errors"

// Service errors surfaced to the transport layer.
var (
	// ErrEmptyArtistName is returned when a scoring request carries no
	// artist name after trimming whitespace.
	ErrEmptyArtistName = errors.New("artist name must not be empty")
)
