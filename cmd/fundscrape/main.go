package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/fundscrape/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}
