package bourse

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecodeSeries(t *testing.T) {
	s := newSeries(ramp(10, 0.5, 60)...)
	if _, err := Analyze(s); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := EncodeSeries(&buf, s); err != nil {
		t.Fatalf("EncodeSeries() failed: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 60 {
		t.Errorf("got %d lines, want 60", got)
	}

	back, err := DecodeSeries(&buf)
	if err != nil {
		t.Fatalf("DecodeSeries() failed: %v", err)
	}
	if diff := cmp.Diff(s, back, seriesOptions); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeObservation(t *testing.T) {
	s := newSeries(10)
	var buf bytes.Buffer
	if err := EncodeObservation(&buf, s.Observations[0]); err != nil {
		t.Fatal(err)
	}
	want := `{"date":"2024-01-01","symbol":"TEST","open":10,"high":11,"low":9,"close":10,"volume":1000}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecodeSeries_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "invalid json",
			input:   `{"date":"2024-01-01",`,
			wantErr: "format error on line 1",
		},
		{
			name: "not sorted",
			input: `{"date":"2024-01-02","open":1,"high":1,"low":1,"close":1,"volume":1}
{"date":"2024-01-01","open":1,"high":1,"low":1,"close":1,"volume":1}`,
			wantErr: "is not after",
		},
		{
			name: "duplicated",
			input: `{"date":"2024-01-02","open":1,"high":1,"low":1,"close":1,"volume":1}

{"date":"2024-01-02","open":1,"high":1,"low":1,"close":1,"volume":1}`,
			wantErr: "format error on line 3",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeSeries(strings.NewReader(tc.input))
			if err == nil {
				t.Fatalf("DecodeSeries() expected an error, but got none")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("DecodeSeries() error = %q, want to contain %q", err, tc.wantErr)
			}
		})
	}
}
