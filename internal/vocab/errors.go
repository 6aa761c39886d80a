package vocab

import "fmt"

// FormatError reports a malformed vocabulary record. It aborts the whole
// load: a partially loaded vocabulary set is worse than a failed startup.
type FormatError struct {
	Source string
	Row    int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("vocab: %s row %d: %s", e.Source, e.Row, e.Reason)
	}
	return fmt.Sprintf("vocab: %s: %s", e.Source, e.Reason)
}

// Code returns the stable error code used in handler logs.
func (e *FormatError) Code() string { return "DATA_FORMAT" }

// NotFoundError reports a level with zero vocabulary entries. Callers must
// surface it to the user instead of silently falling back to another level.
type NotFoundError struct {
	Level int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("vocab: no entries for HSK level %d", e.Level)
}

// Code returns the stable error code used in handler logs.
func (e *NotFoundError) Code() string { return "LEVEL_NOT_FOUND" }
