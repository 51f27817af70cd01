package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String length limits
const (
	MaxPositionLength = 128
	MaxPageLength     = 256
)

var (
	// PositionPattern allows alphanumerics plus . _ - : / after a leading
	// alphanumeric
	PositionPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._:/-]*$`)
	// PagePattern allows slash separated segments of safe characters
	PagePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+(\.[a-zA-Z0-9]+)?(/[a-zA-Z0-9_-]+(\.[a-zA-Z0-9]+)?)*$`)
)

// ValidateString validates string length and UTF-8 encoding
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if value == "" {
		if required {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}

	if !utf8.ValidString(value) {
		return fmt.Errorf("%s contains invalid UTF-8", fieldName)
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must be at most %d characters", fieldName, maxLen)
	}

	return nil
}

// ValidatePosition validates a module position name
func ValidatePosition(position string) error {
	if err := ValidateString(position, "position", 1, MaxPositionLength, true); err != nil {
		return err
	}
	if !PositionPattern.MatchString(position) {
		return fmt.Errorf("position contains invalid characters")
	}
	return nil
}

// ValidatePage validates a page name taken from a URL path. A leading
// slash is ignored; traversal segments are rejected.
func ValidatePage(page string) error {
	page = strings.TrimPrefix(page, "/")
	if page == "" {
		return nil
	}
	if err := ValidateString(page, "page", 1, MaxPageLength, true); err != nil {
		return err
	}
	if !PagePattern.MatchString(page) {
		return fmt.Errorf("page contains invalid characters")
	}
	return nil
}
