package main

import (
	"os"

	"github.com/phillarmonic/paramflow/cmd/paramflow/app"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli := app.NewApp(version, commit, date)
	if err := cli.Execute(os.Args[1:]); err != nil {
		app.ReportError(os.Stderr, err)
		os.Exit(1)
	}
}
