package config

import (
	"fmt"
	"time"
)

// ValidatePositiveDuration returns an error naming field unless d > 0.
func ValidatePositiveDuration(field string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %v", field, d)
	}
	return nil
}

// ValidateDurationRange returns an error naming field unless min <= d <= max.
//
// Example:
//
//	if err := ValidateDurationRange("collection.timeout", timeout, time.Second, 10*time.Minute); err != nil {
//	    return err
//	}
func ValidateDurationRange(field string, d, min, max time.Duration) error {
	if min > max {
		return fmt.Errorf("%s: invalid range: min (%v) cannot be greater than max (%v)", field, min, max)
	}
	if d < min {
		return fmt.Errorf("%s: %v is below minimum %v", field, d, min)
	}
	if d > max {
		return fmt.Errorf("%s: %v exceeds maximum %v", field, d, max)
	}
	return nil
}
