package matching

import "regexp"

// Reference extraction patterns, tried in order:
// a labeled reference ("ref", "reference" or "no" followed by 5-20
// alphanumeric/dash characters), then any standalone run of at least 10
// alphanumeric characters.
var (
	labeledRefPattern    = regexp.MustCompile(`(?i)\b(?:ref|reference|no)\b[\s.:#]*([A-Za-z0-9-]{5,20})`)
	standaloneRefPattern = regexp.MustCompile(`\b([A-Za-z0-9]{10,})\b`)
)

// ExtractReference pulls a payment reference token out of free text.
// Returns the empty string when no reference-like token is present.
func ExtractReference(text string) string {
	if text == "" {
		return ""
	}

	if m := labeledRefPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := standaloneRefPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	return ""
}
