package vision

import "errors"

// Fatal extraction errors. Each aborts the stage that raised it; the
// pipeline boundary converts them into result error messages instead of
// letting them escape.
var (
	// ErrRecognitionEngine wraps any failure reported by the external
	// recognition engine.
	ErrRecognitionEngine = errors.New("recognition engine failure")

	// ErrUnrecognizedFieldName reports a stat line whose first token is
	// not in the stat vocabulary.
	ErrUnrecognizedFieldName = errors.New("unrecognized stat field name")

	// ErrMalformedLine reports a stat line whose token pattern matches no
	// recoverable case.
	ErrMalformedLine = errors.New("malformed stat line")
)
