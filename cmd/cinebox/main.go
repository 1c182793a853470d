// Command cinebox runs and inspects the movie ticket vending machine.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/cinebox/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
