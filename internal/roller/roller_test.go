package roller

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var letters = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}

var roundTypes = []string{"pool", "pplns", "solo"}

func TestSelect_ReferenceVector(t *testing.T) {
	// "0"+"1" parses to 1; the first output for seed 1 is 1791095845.
	got, err := Select("0", "1", letters)
	require.NoError(t, err)
	assert.Equal(t, letters[1791095845%len(letters)], got)
	assert.Equal(t, "f", got)

	got, err = Select("0", "1", roundTypes)
	require.NoError(t, err)
	assert.Equal(t, "pplns", got)
}

func TestRoll_KnownVectors(t *testing.T) {
	tests := []struct {
		hash    string
		token   string
		seed    uint32
		raw     uint32
		index   int
		element string
	}{
		{"0", "1", 1, 1791095845, 5, "f"},
		{"157", "1", 5489, 3499211612, 2, "c"},
		{"abcdef123456", "1", 4045620577, 2386683428, 8, "i"},
		{"abcdef123456", "2", 4045620578, 3909901165, 5, "f"},
		{"abcdef123456", "3", 4045620579, 782718209, 9, "j"},
		{"ABCDEF123456", "1", 4045620577, 2386683428, 8, "i"},
		{"d4f1c7ea9b02", "1", 2125049889, 3935260975, 5, "f"},
		{"d4f1c7ea9b02", "2", 2125049890, 133323629, 9, "j"},
		{"d4f1c7ea9b02", "12", 3936027154, 1004032430, 0, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.hash+"/"+tt.token, func(t *testing.T) {
			res, err := Roll(tt.hash, tt.token, letters)
			require.NoError(t, err)
			assert.Equal(t, tt.hash+tt.token, res.SeedString)
			assert.Equal(t, tt.seed, res.Seed)
			assert.Equal(t, tt.raw, res.Raw)
			assert.Equal(t, tt.index, res.Index)
			assert.Equal(t, tt.element, res.Element)
		})
	}
}

func TestRoll_MatchesHistoricalTwoStepFormula(t *testing.T) {
	// The original computed random(size+1)-1 where
	// random(max) = raw % ((max-1) - 1 + 1) + 1.
	for n := 1; n <= 50; n++ {
		candidates := make([]string, n)
		for i := range candidates {
			candidates[i] = fmt.Sprint(i)
		}
		res, err := Roll("d4f1c7ea9b02", "1", candidates)
		require.NoError(t, err)

		hi := n + 1
		hi = hi - 1
		lo := 1
		historical := int(uint64(res.Raw)%uint64(hi-lo+1)) + lo - 1
		assert.Equal(t, historical, res.Index, "n=%d", n)
	}
}

func TestSelect_EmptyTokenDefaults(t *testing.T) {
	a, err := Select("0", "", letters)
	require.NoError(t, err)
	b, err := Select("0", DefaultToken, letters)
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestSelect_Deterministic(t *testing.T) {
	first, err := Select("abcdef123456", "2", letters)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		got, err := Select("abcdef123456", "2", letters)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestSelect_SeedSensitivity(t *testing.T) {
	seen := map[int]bool{}
	for _, token := range []string{"1", "2", "3", "4", "5"} {
		res, err := Roll("abcdef123456", token, letters)
		require.NoError(t, err)
		seen[res.Index] = true
	}
	assert.Greater(t, len(seen), 1, "changing the roll token must change the selection")
}

func TestSelect_RangeSafety(t *testing.T) {
	hashes := []string{"0", "ffffffffffff", "123456789abc", "80000000"}
	for _, h := range hashes {
		for n := 1; n <= 17; n++ {
			res, err := Roll(h, "7", make([]string, n))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, res.Index, 0)
			assert.Less(t, res.Index, n)
		}
	}
}

func TestSelect_SingleCandidate(t *testing.T) {
	got, err := Select("abcdef", "9", []string{"only"})
	require.NoError(t, err)
	assert.Equal(t, "only", got)
}

func TestSelect_EmptyCandidates(t *testing.T) {
	for _, h := range []string{"0", "abcdef123456"} {
		_, err := Select(h, "1", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyCandidateList)

		_, err = Select(h, "3", []string{})
		assert.ErrorIs(t, err, ErrEmptyCandidateList)
	}
}

func TestSelect_InvalidHex(t *testing.T) {
	_, err := Select("zz", "1", []string{"a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSeed)

	var seedErr *SeedError
	require.True(t, errors.As(err, &seedErr))
	assert.Equal(t, "zz1", seedErr.Input)
	assert.Equal(t, 0, seedErr.Pos)
	assert.Contains(t, err.Error(), `'z'`)
}

func TestSelect_InvalidHexWinsOverEmptyList(t *testing.T) {
	_, err := Select("0xab", "1", nil)
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

func TestParseSeed(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"0", 0},
		{"01", 1},
		{"ffffffff", 0xffffffff},
		{"100000000", 0},
		{"1ffffffff", 0xffffffff},
		{"abcdef1234561", 0xf1234561},
		{"0000000000000000000000000000000000000002a", 42},
		{"DeadBeef", 0xdeadbeef},
	}
	for _, tt := range tests {
		got, err := ParseSeed(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseSeed_Invalid(t *testing.T) {
	for _, in := range []string{"", "g", "12 3", "-1", "0x10", "abc\n"} {
		_, err := ParseSeed(in)
		assert.ErrorIs(t, err, ErrInvalidSeed, "%q", in)
	}

	_, err := ParseSeed("")
	assert.Contains(t, err.Error(), "empty seed string")
}

func TestSelect_ConcurrentCallsAreIndependent(t *testing.T) {
	want, err := Select("d4f1c7ea9b02", "1", letters)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			got, err := Select("d4f1c7ea9b02", token, letters)
			if err != nil {
				t.Error(err)
				return
			}
			if token == "1" && got != want {
				t.Errorf("token 1: got %q, want %q", got, want)
			}
		}([]string{"1", "2"}[i%2])
	}
	wg.Wait()
}
