package syncer

import "fmt"

// ParseError reports a malformed source document or data entry. Entries that
// fail to parse are skipped with a warning; a ParseError never aborts the
// sync of remaining entries.
type ParseError struct {
	Path  string // file the entry came from
	Entry string // entry identifier, best effort
	Err   error
}

func (e *ParseError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("parse %s (entry %s): %v", e.Path, e.Entry, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
