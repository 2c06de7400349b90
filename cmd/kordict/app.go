package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"sigs.k8s.io/release-utils/version"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Korean dictionary XML ingestion toolkit.",
		Commands: []*cli.Command{
			ingestCommand,
			examplesCommand,
			versionCommand,
		},
	}
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "print version information",
	Action: func(c *cli.Context) error {
		info := version.GetVersionInfo()
		fmt.Fprintln(c.App.Writer, info.String())
		return nil
	},
}
