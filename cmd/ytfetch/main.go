package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	ytcmd "ytfetch/internal/cli/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := ytcmd.Execute(ctx)
	stop()
	if err == nil {
		os.Exit(ytcmd.ExitOK)
	}

	var ee *ytcmd.ExitError
	if errors.As(err, &ee) {
		if ee.Err != nil {
			fmt.Fprintln(os.Stderr, ee.Err)
		}
		os.Exit(ee.Code)
	}
	fmt.Fprintln(os.Stderr, err)
	if ctx.Err() != nil {
		os.Exit(ytcmd.ExitCancelled)
	}
	os.Exit(ytcmd.ExitCLIError)
}
