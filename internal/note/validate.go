package note

import (
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLength   = 200
	maxContentLength = 10000
)

// validateInput returns the itemized validation failures for a note body,
// or nil when the input is acceptable.
func validateInput(title string, content *string) []string {
	var details []string

	if strings.TrimSpace(title) == "" {
		details = append(details, "Title is required and must be a non-empty string")
	}

	if utf8.RuneCountInString(title) > maxTitleLength {
		details = append(details, "Title must be less than 200 characters")
	}

	if content != nil && utf8.RuneCountInString(*content) > maxContentLength {
		details = append(details, "Content must be less than 10000 characters")
	}

	return details
}

// normalizeContent trims the content and maps an empty result to NULL.
func normalizeContent(content *string) *string {
	if content == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*content)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
