// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. Translation providers
// echo request URLs and credentials in their errors, so every provider failure
// passes through here before it reaches a log record or a client.
package redact

import "regexp"

// Constants for redaction placeholders
const (
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules are applied in order. Provider key formats come first so the generic
// key pattern does not leave half a key behind.
var rules = []rule{
	// Anthropic keys: sk-ant-api03-...
	{regexp.MustCompile(`sk-ant-[A-Za-z0-9_\-]{8,}`), RedactedKeyPlaceholder},
	// OpenAI keys: sk-... and sk-proj-...
	{regexp.MustCompile(`sk-[A-Za-z0-9_\-]{16,}`), RedactedKeyPlaceholder},
	// Google API keys: AIza...
	{regexp.MustCompile(`AIza[0-9A-Za-z_\-]{20,}`), RedactedKeyPlaceholder},
	// Keys passed as URL query parameters.
	{regexp.MustCompile(`(?i)([?&](?:key|api_key)=)[^&\s"']+`), "${1}" + RedactedKeyPlaceholder},
	// Authorization headers.
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/=]{8,}`), "Bearer " + RedactedKeyPlaceholder},

	// Database connection strings
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql|db|database|connection)://[^@\s]+@`), RedactedCredentialPlaceholder},

	// Credentials and tokens
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`), RedactedCredentialPlaceholder},
	{
		regexp.MustCompile(`(?i)(api[_-]?key|x-api-key|x-goog-api-key|token|secret|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		RedactedKeyPlaceholder,
	},

	// File paths
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`), RedactedPathPlaceholder},

	// Stack trace fragments
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), "[STACK_TRACE_REDACTED]"},

	// SQL queries and fragments
	{
		regexp.MustCompile(
			`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)[\s\w,*()]+(?:FROM|INTO|SET|TABLE)(?:[\s\w,*()='"]+)?`,
		),
		"[REDACTED_SQL]",
	},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
