package roller

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSeed is returned when hash+token is not a hexadecimal numeral.
	ErrInvalidSeed = errors.New("invalid seed")

	// ErrEmptyCandidateList is returned when there is nothing to select from.
	ErrEmptyCandidateList = errors.New("empty candidate list")
)

// SeedError describes seed material that could not be parsed.
type SeedError struct {
	Input string // the concatenated hash and token
	Pos   int    // byte offset of the first offending character, -1 if empty
}

func (e *SeedError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("%v: empty seed string", ErrInvalidSeed)
	}
	return fmt.Sprintf("%v: %q has non-hex character %q at offset %d", ErrInvalidSeed, e.Input, e.Input[e.Pos], e.Pos)
}

func (e *SeedError) Unwrap() error {
	return ErrInvalidSeed
}
