package ai

import (
	"regexp"
	"strings"
)

// fenceRe matches a code-fence delimiter standing on its own line, with an
// optional language tag. JSON-encoded content escapes its line breaks, so a
// fence inside a string value never starts a line.
var fenceRe = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_+-]*[ \t]*\r?$")

// Sanitize removes code-fence lines and the C0 control characters that
// corrupt JSON parsing from raw model output. It never fails.
func Sanitize(raw string) string {
	// line breaks survive until the fences are gone
	cleaned := stripControl(raw, func(r rune) bool { return r != '\n' && r != '\r' })
	cleaned = fenceRe.ReplaceAllString(cleaned, "")
	cleaned = stripControl(cleaned, func(rune) bool { return true })
	cleaned = strings.TrimSpace(cleaned)
	// joining lines can leave a lone fence as the whole text
	return strings.TrimSpace(fenceRe.ReplaceAllString(cleaned, ""))
}

// unfence strips code-fence lines and surrounding whitespace but keeps line
// breaks; used for free-text stages such as rendering.
func unfence(raw string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))
}

func stripControl(s string, drop func(rune) bool) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x1F && drop(r) {
			return -1
		}
		return r
	}, s)
}
