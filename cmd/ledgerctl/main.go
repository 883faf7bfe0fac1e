package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"masar-finance/internal/bootstrap"
	"masar-finance/internal/cli"
	"masar-finance/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := bootstrap.NewLogger(cfg.App.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = cli.NewRootCommand(cli.DefaultDeps(cfg)).ExecuteContext(context.Background())
	_ = logger.Sync()

	switch {
	case err == nil:
	case errors.Is(err, cli.ErrDriftDetected):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
