// Command bourse analyzes daily price files exported by French brokers.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"path"

	"github.com/etnz/bourse/cmd"
	"github.com/etnz/bourse/docs"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
func completion() *complete.Command {
	topics, _ := docs.GetAllTopics()
	csv := predict.Files("*.csv")
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
			"v":      predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"analyze": {
				Flags: map[string]complete.Predictor{
					"o":    predict.Files("*.png"),
					"json": predict.Files("*.jsonl"),
					"from": predict.Something,
					"to":   predict.Something,
					"ai":   predict.Nothing,
				},
				Args: csv,
			},
			"summary": {
				Flags: map[string]complete.Predictor{
					"json":   predict.Nothing,
					"prompt": predict.Nothing,
				},
				Args: csv,
			},
			"serve": {
				Flags: map[string]complete.Predictor{"addr": predict.Something},
			},
			"topic": {Args: predict.Set(topics)},
		},
	}
}

func main() {
	// Exits when invoked by the shell for completion.
	completion().Complete("bourse")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander)
	flag.Parse()

	if !*cmd.Verbose {
		log.SetOutput(io.Discard)
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	// Unknown subcommands are looked up as bourse-<subcommand> extensions.
	if flag.NArg() > 0 {
		known := false
		commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
			known = known || c.Name() == flag.Arg(0)
		})
		if !known {
			if found, code := cmd.RunExtension(flag.Arg(0), flag.Args()[1:]); found {
				os.Exit(code)
			}
		}
	}

	os.Exit(int(commander.Execute(context.Background())))
}
