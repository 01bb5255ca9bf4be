package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sakif/recipe-api/internal/apperror"
)

// MaxNameLength bounds tag, ingredient and recipe names.
const MaxNameLength = 255

// cleanName trims name and checks it is present and not too long.
// field names the offending input in the validation error.
func cleanName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.ValidationFailed(field, field+" is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be %d characters or less", field, MaxNameLength))
	}
	return name, nil
}
