package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zksuit/zksuit/cmd/zksuitd/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cmd.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
