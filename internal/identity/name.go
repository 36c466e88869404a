package identity

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FallbackName is used whenever no usable display name is known. It is
// never persisted.
const FallbackName = "Dost"

func IsValidName(name string) bool {
	if name == "" || name == FallbackName {
		return false
	}
	if isNumeric(name) {
		return false
	}
	if containsFold(name, "facebook") {
		return false
	}
	return utf8.RuneCountInString(name) >= 2
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
