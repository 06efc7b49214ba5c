package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aryankumar/esadmin/internal/cli"
	"github.com/aryankumar/esadmin/internal/util"
)

func main() {
	// Setup signal handling for graceful shutdown
	ctx, cancel := util.SetupSignalHandler(context.Background(), slog.Default())
	defer cancel()

	// Execute the CLI
	if err := cli.Execute(ctx); err != nil {
		slog.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, util.FriendlyError(err))
		cancel()
		os.Exit(1)
	}
}
