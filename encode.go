package bourse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/bourse/date"
)

// Series are persisted as JSONL, one observation per line, in chronological order:
//
//	{"date":"2025-01-02","symbol":"AIR","open":120.5,"high":122,"low":119.8,"close":121.3,"volume":1234567,"ma50":118.2,"rsi":61.4}
//
// Undefined derived values are omitted.

// MarshalJSON writes the observation fields in a stable order.
func (o Observation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", o.Date)
	w.Optional("symbol", o.Symbol)
	w.Append("open", o.Open)
	w.Append("high", o.High)
	w.Append("low", o.Low)
	w.Append("close", o.Close)
	w.Append("volume", o.Volume)
	w.Defined("ma50", o.MA50)
	w.Defined("ma200", o.MA200)
	w.Defined("rsi", o.RSI)
	return w.MarshalJSON()
}

// UnmarshalJSON reads an observation, missing derived values are undefined.
func (o *Observation) UnmarshalJSON(data []byte) error {
	var jo struct {
		Date   date.Date `json:"date"`
		Symbol string    `json:"symbol"`
		Open   float64   `json:"open"`
		High   float64   `json:"high"`
		Low    float64   `json:"low"`
		Close  float64   `json:"close"`
		Volume float64   `json:"volume"`
		MA50   *float64  `json:"ma50"`
		MA200  *float64  `json:"ma200"`
		RSI    *float64  `json:"rsi"`
	}
	if err := json.Unmarshal(data, &jo); err != nil {
		return err
	}
	*o = newObservation(jo.Date)
	o.Symbol = jo.Symbol
	o.Open, o.High, o.Low, o.Close, o.Volume = jo.Open, jo.High, jo.Low, jo.Close, jo.Volume
	for _, f := range []struct {
		src *float64
		dst *float64
	}{{jo.MA50, &o.MA50}, {jo.MA200, &o.MA200}, {jo.RSI, &o.RSI}} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	return nil
}

// MarshalJSON writes the summary, undefined indicators are omitted.
func (s Summary) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("symbol", s.Symbol)
	w.Append("date", s.Date)
	w.Append("close", s.Close)
	w.Defined("ma50", s.MA50)
	w.Defined("ma200", s.MA200)
	w.Defined("rsi", s.RSI)
	w.Append("volume", s.Volume)
	w.Optional("currency", s.Currency)
	return w.MarshalJSON()
}

// EncodeObservation marshals a single observation to JSON and writes it to the
// writer, followed by a newline, in JSONL format.
func EncodeObservation(w io.Writer, o Observation) error {
	jsonData, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal observation %s: %w", o.Date, err)
	}

	if _, err := w.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write observation: %w", err)
	}
	return nil
}

// EncodeSeries persists the series to an io.Writer in JSONL format.
func EncodeSeries(w io.Writer, s *Series) error {
	for _, o := range s.Observations {
		if err := EncodeObservation(w, o); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSeries decodes a series from a stream of JSONL data.
//
// The observations must be strictly sorted by date.
func DecodeSeries(r io.Reader) (*Series, error) {
	s := new(Series)
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		var o Observation
		if err := json.Unmarshal(lineBytes, &o); err != nil {
			return nil, fmt.Errorf("format error on line %d %q: %w", line, string(lineBytes), err)
		}
		if last, ok := s.Last(); ok && !o.Date.After(last.Date) {
			return nil, fmt.Errorf("format error on line %d: %s is not after %s", line, o.Date, last.Date)
		}
		if s.Symbol == "" {
			s.Symbol = o.Symbol
		}
		s.Observations = append(s.Observations, o)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return s, nil
}
