package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/hanmaru/kordict/internal/app/examples"
)

var examplesCommand = &cli.Command{
	Name:  "examples",
	Usage: "filter example-sentence CSV files",
	Subcommands: []*cli.Command{
		{
			Name:      "shortest",
			Usage:     "keep the shortest half of rows by first-column length",
			ArgsUsage: "INPUT [OUTPUT]",
			Action: func(c *cli.Context) error {
				return runFilter(c, "short", examples.Shortest)
			},
		},
		{
			Name:      "pairs",
			Usage:     "keep rows whose first column is exactly two words",
			ArgsUsage: "INPUT [OUTPUT]",
			Action: func(c *cli.Context) error {
				return runFilter(c, "pairs", examples.Pairs)
			},
		},
	},
}

func runFilter(c *cli.Context, name string, filter func(in, out string) (examples.Result, error)) error {
	if c.NArg() < 1 {
		return cli.Exit("missing INPUT csv path", 1)
	}
	in := c.Args().Get(0)
	out := c.Args().Get(1)
	if out == "" {
		out = examples.DefaultOutPath(in, name)
	}

	res, err := filter(in, out)
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", name, err), 1)
	}

	fmt.Fprintf(c.App.Writer, "%s: kept %d of %d rows -> %s\n", name, res.Kept, res.Total, out)
	return nil
}
