package main

import (
	"fmt"
	"os"

	"github.com/xab-mack/solhunt/internal/app"
	"github.com/xab-mack/solhunt/internal/cli"
)

func main() {
	if err := app.BuildRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "solhunt:", err)
		os.Exit(cli.ExitCode(err))
	}
}
