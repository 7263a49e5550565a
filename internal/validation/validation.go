package validation

import (
	"fmt"
	"net/url"

	"unifiedinbox/internal/errors"
)

// Required reports whether every value is non-empty.
func Required(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return false
		}
	}
	return true
}

// ValidateNumericRange validates numeric values against bounds
func ValidateNumericRange(value int, fieldName string, min, max int) error {
	if value < min {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s too small (min %d)", fieldName, min))
	}

	if value > max {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s too large (max %d)", fieldName, max))
	}

	return nil
}

// ValidateTimeout validates timeout values
func ValidateTimeout(timeoutSec int, fieldName string) error {
	if timeoutSec < 1 {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s must be at least 1 second", fieldName))
	}

	if timeoutSec > 3600 { // Max 1 hour
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s too large (max 3600 seconds)", fieldName))
	}

	return nil
}

// ValidateBaseURL checks that raw is an absolute http(s) URL without query or fragment.
func ValidateBaseURL(raw, fieldName string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, fmt.Sprintf("%s is not a valid URL", fieldName))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s must use http or https", fieldName))
	}
	if u.Host == "" {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s must include a host", fieldName))
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s must not contain a query or fragment", fieldName))
	}
	return nil
}
