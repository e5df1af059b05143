package main

import (
	"fmt"
	"os"

	"github.com/dashlab/labctl/internal/cli"
	"github.com/dashlab/labctl/internal/compose"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		// Engine failures keep their original exit code; everything else
		// (usage errors included) exits 1.
		os.Exit(compose.ExitCode(err))
	}
}
