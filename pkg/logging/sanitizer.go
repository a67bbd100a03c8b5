package logging

import (
	"regexp"
)

const (
	// MaxQueryLogLength is the maximum length of a Gravsearch query to log
	MaxQueryLogLength = 200
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Matches password fields in JSON bodies and key=value forms
	passwordPattern = regexp.MustCompile(`(?i)("?(?:password|pwd|pass)"?\s*[:=]\s*)("[^"]*"|[^,;&\s}]+)`)

	// Matches bearer JWT tokens (three base64 segments separated by dots)
	jwtPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+\.[A-Za-z0-9-_]*`)

	// Matches a token field in an authentication response body
	tokenFieldPattern = regexp.MustCompile(`("token"\s*:\s*)"[^"]*"`)
)

// SanitizeError removes credentials and tokens from error messages.
// Use this before logging any error returned by the Knora client.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeBody(err.Error())
}

// SanitizeBody removes credentials and tokens from a request or response body.
func SanitizeBody(body string) string {
	if body == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(body, "${1}"+RedactedText)
	sanitized = jwtPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)
	sanitized = tokenFieldPattern.ReplaceAllString(sanitized, `${1}"`+RedactedText+`"`)

	return sanitized
}

// SanitizeQuery truncates a Gravsearch query for logging.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}
	return TruncateString(query, MaxQueryLogLength)
}

// RedactToken keeps only a short prefix of a session token, enough to tell
// tokens apart in logs.
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return RedactedText
	}
	return token[:8] + "..." + RedactedText
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
