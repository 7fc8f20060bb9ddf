package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/llxisdsh/tsync/internal/cli"
)

const (
	cmdName = "tsyncstress"

	shortDesc = "Stress the tsync thread-coordination primitives."
	longDesc  = `Stress the tsync thread-coordination primitives.

Each subcommand drives one primitive from many goroutines under a deadline
and checks its invariants: exactly one barrier leader per episode, no
generation confusion between episodes, events observed as published, mutual
exclusion, and condition gate liveness.
`
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		stop()
		os.Exit(1)
	}
}
