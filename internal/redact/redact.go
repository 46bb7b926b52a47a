// Package redact scrubs credentials, tokens, addresses and SQL values from
// strings before they are logged or returned in error responses.
package redact

import "regexp"

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules run in order; earlier rules may rewrite text later rules would
// otherwise match.
var rules = []rule{
	// Credentials embedded in postgres://, redis:// and similar URLs.
	{regexp.MustCompile(`(?i)\b([a-z][a-z0-9+.-]*://)[^/\s:@]*:[^/\s@]+@`), "${1}[REDACTED_CREDENTIAL]@"},
	{regexp.MustCompile(`eyJ[\w-]+\.eyJ[\w-]+\.[\w-]+`), "[REDACTED_JWT]"},
	{regexp.MustCompile(`(?i)\bbearer\s+\S+`), "Bearer [REDACTED_KEY]"},
	{
		regexp.MustCompile(`(?i)\b(password|passwd|pwd|secret|api[_-]?key|token)(\s*[=:]\s*)['"]?[^\s'"&,]+['"]?`),
		"${1}${2}[REDACTED_CREDENTIAL]",
	},
	{regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), "[REDACTED_EMAIL]"},
	{regexp.MustCompile(`(?i)\bVALUES\s*\(.*\)`), "VALUES [REDACTED]"},
	{regexp.MustCompile(`(?i)\bWHERE\b.*`), "WHERE [REDACTED]"},
}

// String redacts sensitive information from s.
func String(s string) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error redacts err's message. A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
