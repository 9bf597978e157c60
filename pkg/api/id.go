package api

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	idLength = 12

	completionIDPrefix = "chatcmpl-"
)

var completionIDPattern = regexp.MustCompile(`^chatcmpl-[0-9a-f]{12}$`)

// NewCompletionID generates a new response ID with the "chatcmpl-" prefix
// followed by 12 lowercase hex characters taken from a random UUID.
func NewCompletionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return completionIDPrefix + hex[:idLength]
}

// ValidateCompletionID checks whether the given string is a valid response ID
// (matches "chatcmpl-" + 12 lowercase hex characters).
func ValidateCompletionID(id string) bool {
	return completionIDPattern.MatchString(id)
}
