package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/raffleverify/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()

	// Commands report their own failures; only errors raised by cobra
	// itself (unknown flags, wrong argument counts) still need printing.
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
