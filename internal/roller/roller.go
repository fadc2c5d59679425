package roller

import (
	"fmt"
	"strconv"

	"github.com/roach88/raffleverify/internal/twister"
)

// DefaultToken is the roll token used when none is given.
const DefaultToken = "1"

// Result records every intermediate value of one selection.
type Result struct {
	SeedString string `json:"seed_string"`
	Seed       uint32 `json:"seed"`
	Raw        uint32 `json:"raw"`
	Index      int    `json:"index"`
	Element    string `json:"element"`
}

// Select returns the candidate chosen by hashHex and rollToken.
// An empty rollToken means DefaultToken.
func Select(hashHex, rollToken string, candidates []string) (string, error) {
	res, err := Roll(hashHex, rollToken, candidates)
	if err != nil {
		return "", err
	}
	return res.Element, nil
}

// Roll performs a selection and returns the seed, raw output, and index
// along with the chosen element.
func Roll(hashHex, rollToken string, candidates []string) (Result, error) {
	if rollToken == "" {
		rollToken = DefaultToken
	}
	seedString := hashHex + rollToken

	seed, err := ParseSeed(seedString)
	if err != nil {
		return Result{}, err
	}
	if len(candidates) == 0 {
		return Result{}, fmt.Errorf("roll %s: %w", seedString, ErrEmptyCandidateList)
	}

	raw := twister.New(seed).Uint32()
	index := int(uint64(raw) % uint64(len(candidates)))

	return Result{
		SeedString: seedString,
		Seed:       seed,
		Raw:        raw,
		Index:      index,
		Element:    candidates[index],
	}, nil
}

// ParseSeed parses s as a base-16 numeral of any length and returns its
// value mod 2^32. Only the last eight hex digits contribute to the result,
// but every character is validated.
func ParseSeed(s string) (uint32, error) {
	if s == "" {
		return 0, &SeedError{Input: s, Pos: -1}
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return 0, &SeedError{Input: s, Pos: i}
		}
	}

	low := s
	if len(low) > 8 {
		low = low[len(low)-8:]
	}
	v, err := strconv.ParseUint(low, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return uint32(v), nil
}

func isHexDigit(c byte) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case 'a' <= c && c <= 'f':
		return true
	case 'A' <= c && c <= 'F':
		return true
	}
	return false
}
