package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures so the orchestrator can decide whether an error
// aborts the whole run, one package, or should be retried.
var (
	// ErrTagConfig marks missing or invalid required input. Fatal, raised
	// before any I/O.
	ErrTagConfig = goerr.NewTag("config")

	// ErrTagParse marks a malformed trigger command. Reported as a reply
	// comment, never fatal.
	ErrTagParse = goerr.NewTag("parse")

	// ErrTagNotFound marks a missing PR, package, or alert. Reported as an
	// informational comment.
	ErrTagNotFound = goerr.NewTag("not_found")

	// ErrTagBackend marks an AI invocation that failed after retries.
	ErrTagBackend = goerr.NewTag("backend")

	// ErrTagPublish marks a comment API failure.
	ErrTagPublish = goerr.NewTag("publish")

	// ErrTagTransient marks errors worth retrying (timeouts, 5xx).
	ErrTagTransient = goerr.NewTag("transient")
)

// IsConfigError reports whether err is a pre-flight configuration failure.
func IsConfigError(err error) bool {
	return goerr.HasTag(err, ErrTagConfig)
}

// IsParseError reports whether err is a trigger parse failure.
func IsParseError(err error) bool {
	return goerr.HasTag(err, ErrTagParse)
}

// IsTransient reports whether err is explicitly marked retryable.
func IsTransient(err error) bool {
	return goerr.HasTag(err, ErrTagTransient)
}
