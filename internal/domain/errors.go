package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFoodNotFound is returned when a Korean name has no stored record
	ErrFoodNotFound = errors.New("food not found")

	// ErrAnalysisNotFound is returned when no analysis exists for an image hash
	ErrAnalysisNotFound = errors.New("analysis not found")

	// ErrMalformedResponse is returned when the generative model produced
	// empty or unparseable output
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrProviderUnavailable is returned when an image or text provider is
	// missing its API key or unreachable; triggers fallback, never fatal
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrValidationFailed is returned when a candidate image URL is
	// unreachable or serves the wrong content type
	ErrValidationFailed = errors.New("image validation failed")

	// ErrNoImageFound is returned when every provider in the waterfall
	// came up empty
	ErrNoImageFound = errors.New("no image found")

	// ErrUsageLimitExceeded is returned when a session has used up its
	// free-tier analyses
	ErrUsageLimitExceeded = errors.New("free usage limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
)

// TooManyItemsError rejects a whole analysis when the menu photo shows
// more items than the product allows. The detected count is surfaced
// verbatim so the client can tell the user to retry with a smaller photo.
type TooManyItemsError struct {
	Detected int
	Limit    int
}

func (e *TooManyItemsError) Error() string {
	return fmt.Sprintf("menu has %d items, maximum is %d", e.Detected, e.Limit)
}

// IsTooManyItems reports whether err wraps a TooManyItemsError.
func IsTooManyItems(err error) (*TooManyItemsError, bool) {
	var tooMany *TooManyItemsError
	if errors.As(err, &tooMany) {
		return tooMany, true
	}
	return nil, false
}
