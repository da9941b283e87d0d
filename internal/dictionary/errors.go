package dictionary

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty means no usable word was found in the source.
	ErrEmpty = errors.New("word list is empty")
	// ErrMalformed means an entry is not a five-letter alphabetic word.
	ErrMalformed = errors.New("malformed entry")
)

// LoadError is returned when a word list cannot be turned into a dictionary.
type LoadError struct {
	Source string // file path, "inline" or the embedded list name
	Line   int    // 1-based line of the offending entry, 0 when not line-specific
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("dictionary: load %s line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("dictionary: load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
