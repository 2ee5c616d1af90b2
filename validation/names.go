package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	minNameLength = 2
	maxNameLength = 50
	maxRepeat     = 10
)

var (
	// Letters of any script, digits, spaces and the punctuation found in drug
	// and substance names.
	nameRegex = regexp.MustCompile(`^[\p{L}\p{M}0-9 \-'.+()/%,]+$`)

	// Matched case-insensitively as substrings
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "eval(", "expression(", "url(", "@import",
		// SQL
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(", "execute(",
		// Shell
		"; ", "| ", "& ", "`", "$(", "${",
		// Paths
		"../", "..\\", "%2e%2e", "file://",
		// NoSQL
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:",
	}
)

// ValidateName checks a drug, substance or country name and returns it
// normalized: whitespace collapsed, each word capitalized.
func ValidateName(raw string) Field[string] {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" {
		return Invalid[string]("name is required")
	}

	n := utf8.RuneCountInString(name)
	if n < minNameLength {
		return Invalid[string]("name too short: minimum %d characters", minNameLength)
	}
	if n > maxNameLength {
		return Invalid[string]("name too long: maximum %d characters", maxNameLength)
	}

	lower := strings.ToLower(name)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return Invalid[string]("name contains potentially dangerous content")
		}
	}

	if !nameRegex.MatchString(name) {
		return Invalid[string]("name contains invalid characters")
	}

	if hasExcessiveRepetition(name) {
		return Invalid[string]("name contains excessive character repetition")
	}

	return Valid(CorrectName(name))
}

// CorrectName title-cases a display name: "aSPIRIN  forte" → "Aspirin Forte".
func CorrectName(name string) string {
	return cases.Title(language.Und).String(strings.Join(strings.Fields(name), " "))
}

// foldName returns the case-folded form of name. A cases.Caser keeps state
// and must not be shared between goroutines, so each call builds its own.
func foldName(name string) string {
	return cases.Fold().String(name)
}

// SameName compares names case-insensitively.
func SameName(a, b string) bool {
	return foldName(strings.TrimSpace(a)) == foldName(strings.TrimSpace(b))
}

// hasExcessiveRepetition reports a rune repeated more than maxRepeat times in
// a row.
func hasExcessiveRepetition(s string) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
			if run > maxRepeat {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}
