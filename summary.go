package bourse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/bourse/date"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RSI thresholds.
const (
	Overbought = 70
	Oversold   = 30
)

// DefaultCurrency is the currency used to print prices when none is set.
const DefaultCurrency = "USD"

// Summary is the latest state of an analyzed series.
//
// It is the only data sent to the insights generator.
type Summary struct {
	Symbol   string
	Date     date.Date
	Close    float64
	MA50     float64
	MA200    float64
	RSI      float64
	Volume   float64
	Currency string // ISO 4217 code.
}

// NewSummary summarizes the last observation of an analyzed series.
func NewSummary(s *Series) (Summary, error) {
	last, ok := s.Last()
	if !ok {
		return Summary{}, errors.New("cannot summarize an empty series")
	}
	return Summary{
		Symbol:   s.Symbol,
		Date:     last.Date,
		Close:    last.Close,
		MA50:     last.MA50,
		MA200:    last.MA200,
		RSI:      last.RSI,
		Volume:   last.Volume,
		Currency: DefaultCurrency,
	}, nil
}

// Trend returns "Above" if the close is above the average v, "Below" otherwise.
func (s Summary) Trend(v float64) string {
	if s.Close > v {
		return "Above"
	}
	return "Below"
}

// Momentum qualifies the RSI: "Overbought", "Oversold" or "Neutral".
func (s Summary) Momentum() string {
	switch {
	case s.RSI > Overbought:
		return "Overbought"
	case s.RSI < Oversold:
		return "Oversold"
	default:
		return "Neutral"
	}
}

// symbol returns the grapheme of the summary currency, or its code when unknown.
func (s Summary) symbol() string {
	code := s.Currency
	if code == "" {
		code = DefaultCurrency
	}
	if c := money.GetCurrency(code); c != nil {
		return c.Grapheme
	}
	return code + " "
}

// Price formats v in the summary currency, "n/a" when undefined.
func (s Summary) Price(v float64) string {
	if !Defined(v) {
		return "n/a"
	}
	return fmt.Sprintf("%s%.2f", s.symbol(), v)
}

// FormattedVolume returns the volume without decimals, grouped by thousands.
func (s Summary) FormattedVolume() string {
	return message.NewPrinter(language.English).Sprintf("%.0f", s.Volume)
}

func (s Summary) average(v float64) string {
	if !Defined(v) {
		return "n/a"
	}
	return fmt.Sprintf("%s (%s)", s.Price(v), s.Trend(v))
}

// String formats the summary in the fixed format expected by the insights generator:
//
//	Stock Analysis Summary:
//	- Latest Close: $123.45
//	- 50-Day MA: $120.00 (Above)
//	- 200-Day MA: $130.00 (Below)
//	- RSI: 45.2 (Neutral)
//	- Volume: 1,234,567
func (s Summary) String() string {
	var b strings.Builder
	b.WriteString("Stock Analysis Summary:\n")
	fmt.Fprintf(&b, "- Latest Close: %s\n", s.Price(s.Close))
	fmt.Fprintf(&b, "- 50-Day MA: %s\n", s.average(s.MA50))
	fmt.Fprintf(&b, "- 200-Day MA: %s\n", s.average(s.MA200))
	if Defined(s.RSI) {
		fmt.Fprintf(&b, "- RSI: %.1f (%s)\n", s.RSI, s.Momentum())
	} else {
		b.WriteString("- RSI: n/a\n")
	}
	fmt.Fprintf(&b, "- Volume: %s\n", s.FormattedVolume())
	return b.String()
}

// Prompt returns the request sent to the insights generator.
func (s Summary) Prompt() string {
	return "Analyze this stock data and provide professional insights:\n" +
		s.String() + "\n" +
		"Include technical analysis, trend identification, and risk assessment."
}
