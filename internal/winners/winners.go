// Package winners parses the published list of recent raffle winners.
//
// The list is tab-separated, newest first, one raffle per row. Only the
// columns needed to re-derive a result are interpreted; the rest are kept
// verbatim in Record.Fields.
package winners

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Column positions in a winners row.
const (
	colWinner    = 0
	colTimestamp = 1
	colHeight    = 3
	colHash      = 5
	colRolls     = 6
	colRoundType = 8

	minColumns = colRoundType + 1
)

// ShortIDLength is how many leading characters of a winner ID are published
// and compared.
const ShortIDLength = 8

var (
	// ErrHeightNotFound is returned when no row matches a block height.
	ErrHeightNotFound = errors.New("no winner at height")

	// ErrNoRecords is returned when the list is empty.
	ErrNoRecords = errors.New("winners list is empty")

	// ErrMalformed wraps every error Parse returns for unreadable rows.
	ErrMalformed = errors.New("malformed winners list")
)

// Record is one row of the winners list.
type Record struct {
	Winner    string
	Timestamp string
	Height    int64
	Hash      string // short block hash, 12 hex characters
	Rolls     string // "<winner roll>/<round roll>"
	RoundType string
	Fields    []string
	Line      int
}

// ShortWinner returns the published prefix of the winner ID.
func (r Record) ShortWinner() string {
	return ShortID(r.Winner)
}

// WinnerRoll is the roll token used to draw the winner: the first segment
// of the rolls column.
func (r Record) WinnerRoll() string {
	roll, _, _ := strings.Cut(r.Rolls, "/")
	return roll
}

// RoundRoll is the roll token used to draw the round type: the last segment
// of the rolls column.
func (r Record) RoundRoll() string {
	if i := strings.LastIndex(r.Rolls, "/"); i >= 0 {
		return r.Rolls[i+1:]
	}
	return r.Rolls
}

// Time parses the reported timestamp.
func (r Record) Time() (time.Time, error) {
	return ParseTime(r.Timestamp)
}

// ShortID truncates id to ShortIDLength characters.
func ShortID(id string) string {
	if len(id) > ShortIDLength {
		return id[:ShortIDLength]
	}
	return id
}

// Parse reads every row of a winners list.
func Parse(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	var records []Record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		line, _ := cr.FieldPos(0)

		if len(fields) < minColumns {
			return nil, fmt.Errorf("%w: line %d: expected at least %d columns, got %d", ErrMalformed, line, minColumns, len(fields))
		}

		height, err := strconv.ParseInt(strings.TrimSpace(fields[colHeight]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid height %q", ErrMalformed, line, fields[colHeight])
		}

		records = append(records, Record{
			Winner:    strings.TrimSpace(fields[colWinner]),
			Timestamp: strings.TrimSpace(fields[colTimestamp]),
			Height:    height,
			Hash:      strings.TrimSpace(fields[colHash]),
			Rolls:     strings.TrimSpace(fields[colRolls]),
			RoundType: strings.TrimSpace(fields[colRoundType]),
			Fields:    fields,
			Line:      line,
		})
	}
	return records, nil
}

// FindByHeight returns the first record at height.
func FindByHeight(records []Record, height int64) (Record, error) {
	for _, r := range records {
		if r.Height == height {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w %d", ErrHeightNotFound, height)
}

// Latest returns the newest record, which is the first row.
func Latest(records []Record) (Record, error) {
	if len(records) == 0 {
		return Record{}, ErrNoRecords
	}
	return records[0], nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseTime parses the timestamp formats used by the winners list and block
// explorers. Values without a zone are UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
