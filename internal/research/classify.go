package research

import "strings"

// nonRetryableMarkers identifies failures from the image and PDF tasks that
// retrying cannot fix: authorization and quota problems, malformed
// requests, and serialization or encoding faults. The list must stay
// identical for both tasks so their retry behavior matches.
var nonRetryableMarkers = []string{
	"403",                                // forbidden / organization not verified
	"invalid_request_error",              // malformed request configuration
	"Your organization must be verified", // image API verification gate
	"insufficient_quota",                 // quota exceeded
	"invalid_api_key",                    // auth errors
	"serialization error",                // payload could not be serialized
	"invalid utf-8 sequence",             // encoding errors
}

// IsTerminalActivityError classifies an external task failure. It returns
// true when the error carries a known non-retryable marker, meaning the
// task layer must not retry and the pipeline treats the task as
// failed-but-tolerated. A nil error is never terminal.
//
// The check is a pure string match over the error text with no side
// effects; classification of an unknown failure defaults to retryable so
// the task layer's standard retry policy applies.
func IsTerminalActivityError(err error) bool {
	if err == nil {
		return false
	}
	return IsTerminalActivityMessage(err.Error())
}

// IsTerminalActivityMessage classifies a failure by message text alone, for
// task layers that report errors as strings rather than error values.
func IsTerminalActivityMessage(msg string) bool {
	for _, marker := range nonRetryableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
