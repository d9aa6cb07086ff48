// Package bourse reads daily price files exported with the French conventions
// and computes the technical indicators used to review a stock.
//
// The core functionalities include:
//   - Loading: Load parses a semicolon separated file with comma decimals,
//     space thousands separators and day first dates, translates its French
//     headers and returns a canonical Series sorted by date.
//   - Analysis: Analyze computes the 50 and 200 days simple moving averages
//     and the 14 days Relative Strength Index of every observation.
//   - Summary: NewSummary extracts the latest state of the series in the
//     fixed textual format sent to the insights generator.
//   - Persistence: EncodeSeries and DecodeSeries read and write a series as
//     JSONL, a human-readable and git-friendly format.
//
// The chart is drawn by the chart package, and the analysis package chains
// all the steps for the `bourse` command-line tool and its web server.
package bourse
