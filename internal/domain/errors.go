package domain

import "errors"

var (
	ErrAuthFailure          = errors.New("invalid credential")
	ErrQuotaExceeded        = errors.New("quota exceeded")
	ErrValidation           = errors.New("invalid input")
	ErrNoReferenceImages    = errors.New("no reference images available")
	ErrMissingRequiredImage = errors.New("reference image required")
	ErrProviderFailure      = errors.New("provider failure")
	ErrEmptyResult          = errors.New("provider returned no images")
	ErrConfiguration        = errors.New("configuration error")
)
