package dataset

import "fmt"

// ParseError indicates a malformed or incomplete record at load time.
// It always identifies the offending key so a record can be located in
// the source file. Load never skips bad records silently: the first
// ParseError aborts the load to keep the in-memory dataset whole.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ParseError struct {
	// Key is the concept name or section the error refers to.
	// Empty when the file as a whole could not be parsed.
	Key    string
	Reason string
	cause  error
}

func (e *ParseError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("parse dataset: %s", e.Reason)
	}
	return fmt.Sprintf("parse concept %q: %s", e.Key, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.cause }
