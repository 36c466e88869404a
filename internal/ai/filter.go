package ai

import "regexp"

var (
	capitalBhai = regexp.MustCompile(`\bBhai\b`)
	anyBhai     = regexp.MustCompile(`(?i)\bbhai\b`)
)

// RewriteAddressTerms replaces "bhai" with "yaar", keeping a leading capital.
func RewriteAddressTerms(text string) string {
	text = capitalBhai.ReplaceAllString(text, "Yaar")
	return anyBhai.ReplaceAllString(text, "yaar")
}
