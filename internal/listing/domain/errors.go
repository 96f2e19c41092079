package domain

import "errors"

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrValidationFailed = errors.New("validation failed")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrNotFound         = errors.New("not found")
	ErrUpstreamFailure  = errors.New("upstream failure")

	// ErrCacheMiss is returned by FacetCache implementations when a key is absent.
	ErrCacheMiss = errors.New("cache miss")
)
