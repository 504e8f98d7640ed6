package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-leave-go/internal/app"
	"github.com/cmlabs-hris/attendance-leave-go/internal/cli"
	"github.com/cmlabs-hris/attendance-leave-go/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	factory := func(ctx context.Context) (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
		return app.New(ctx, cfg)
	}

	c := cli.New(factory)
	defer c.Close()
	return c.Execute(context.Background(), os.Args[1:])
}
