package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/bourse"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	json   bool
	prompt bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the latest indicators of a price file" }
func (*summaryCmd) Usage() string {
	return `bourse summary [-json] [-prompt] <file.csv>

  Prints the summary of the last trading day, as sent to Gemini.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the summary as JSON")
	f.BoolVar(&c.prompt, "prompt", false, "Print the full request sent to Gemini")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: summary expects exactly one price file")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	in, err := openInput(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening price file: %v\n", err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	s, err := bourse.Load(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	if _, err := bourse.Analyze(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	sum, err := bourse.NewSummary(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	sum.Currency = cfg.Currency

	switch {
	case c.json:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	case c.prompt:
		fmt.Println(sum.Prompt())
	default:
		fmt.Print(sum)
	}
	return subcommands.ExitSuccess
}
