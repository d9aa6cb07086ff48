package bourse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strings"

	"github.com/etnz/bourse/date"
	"github.com/shopspring/decimal"
)

// Canonical column names.
const (
	ColSymbol = "Symbol"
	ColDate   = "Date"
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColClose  = "Close"
	ColVolume = "Volume"
)

// columnNames translates the French headers of the source files into canonical names.
var columnNames = map[string]string{
	"symbole":   ColSymbol,
	"date":      ColDate,
	"ouverture": ColOpen,
	"haut":      ColHigh,
	"bas":       ColLow,
	"cloture":   ColClose,
	"volume":    ColVolume,
}

// requiredColumns must be present in every file, in the order they are reported when missing.
var requiredColumns = []string{ColDate, ColOpen, ColHigh, ColLow, ColClose, ColVolume}

// Hint is the remediation advice attached to every FormatError.
const Hint = "Common solutions:\n" +
	"1. Ensure the CSV uses semicolon (;) as column separator\n" +
	"2. Ensure decimals use a comma (,)\n" +
	"3. Date format should be DD/MM/YYYY"

// FormatError reports a file that cannot be read as a French price file.
type FormatError struct {
	Missing []string // Required columns absent from the header.
	Err     error    // Underlying parse error, if any.
}

func (e *FormatError) Error() string {
	var cause string
	switch {
	case len(e.Missing) > 0:
		cause = "missing columns: " + strings.Join(e.Missing, ", ")
	case e.Err != nil:
		cause = e.Err.Error()
	default:
		cause = "invalid format"
	}
	return fmt.Sprintf("error loading data: %s\n%s", cause, Hint)
}

func (e *FormatError) Unwrap() error { return e.Err }

// canonicalName returns the canonical name of a header cell.
// Canonical names are accepted as they are.
func canonicalName(header string) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
	if name, ok := columnNames[h]; ok {
		return name, true
	}
	for _, name := range columnNames {
		if strings.ToLower(name) == h {
			return name, true
		}
	}
	return "", false
}

// Load reads a semicolon separated price file using the French conventions
// (comma decimal point, space thousands separator, day first dates) and
// returns the canonical series.
//
// Rows with a missing or invalid value in a required column are dropped.
// Rows are sorted by date, and when a date appears twice the last row wins.
func Load(r io.Reader) (*Series, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &FormatError{Err: errors.New("empty file")}
	}
	if err != nil {
		return nil, &FormatError{Err: fmt.Errorf("failed to read header: %w", err)}
	}

	index := make(map[string]int)
	for i, cell := range header {
		name, ok := canonicalName(cell)
		if !ok {
			continue
		}
		if _, exists := index[name]; !exists {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &FormatError{Missing: missing}
	}

	var observations []Observation
	dropped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &FormatError{Err: fmt.Errorf("failed to read csv: %w", err)}
		}
		o, err := parseRecord(record, index)
		if err != nil {
			line, _ := reader.FieldPos(0)
			log.Printf("dropping line %d: %v", line, err)
			dropped++
			continue
		}
		observations = append(observations, o)
	}

	slices.SortStableFunc(observations, func(a, b Observation) int { return a.Date.Compare(b.Date) })

	// Keep the last occurrence of each date, stable sort keeps the input order among equal dates.
	unique := observations[:0]
	duplicates := 0
	for i, o := range observations {
		if i+1 < len(observations) && observations[i+1].Date == o.Date {
			duplicates++
			continue
		}
		unique = append(unique, o)
	}

	if dropped > 0 || duplicates > 0 {
		log.Printf("loaded %d observations, dropped %d incomplete rows and %d duplicated dates", len(unique), dropped, duplicates)
	}

	s := &Series{Observations: unique}
	for _, o := range unique {
		if o.Symbol != "" {
			s.Symbol = o.Symbol
			break
		}
	}
	return s, nil
}

// parseRecord parses a single csv record into an observation.
func parseRecord(record []string, index map[string]int) (Observation, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	on, err := date.ParseDayFirst(field(ColDate))
	if err != nil {
		return Observation{}, err
	}
	o := newObservation(on)
	o.Symbol = field(ColSymbol)

	for _, col := range []struct {
		name string
		dst  *float64
	}{
		{ColOpen, &o.Open},
		{ColHigh, &o.High},
		{ColLow, &o.Low},
		{ColClose, &o.Close},
		{ColVolume, &o.Volume},
	} {
		v, err := ParseNumber(field(col.name))
		if err != nil {
			return Observation{}, fmt.Errorf("invalid %s: %w", col.name, err)
		}
		*col.dst = v
	}
	return o, nil
}

// ParseNumber parses a number written with the French conventions: "1 234,56".
//
// Spaces (including the non breaking ones used by French typography) are
// thousands separators, and the comma is the decimal point.
func ParseNumber(s string) (float64, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, errors.New("missing value")
	}
	if strings.Count(s, ",") > 1 {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}
