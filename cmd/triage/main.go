package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/ogtriage/internal/agents"
	"github.com/akolanti/ogtriage/internal/app"
	"github.com/akolanti/ogtriage/internal/cli"
	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	// stdout carries reports and the MCP stdio stream
	logger_i.InitWithWriter(os.Stderr, settings.IsProd, settings.LogLevel)

	cli.SetLoader(func(ctx context.Context, withAgents bool) (*cli.Services, error) {
		clients, err := app.Open(ctx, settings, withAgents)
		if err != nil {
			return nil, err
		}
		svc := &cli.Services{
			Chunker:        clients.Chunker,
			Store:          clients.Store,
			Search:         agents.NewRegulationSearch(clients.Store, settings.TopK),
			RegulationsDir: settings.RegulationsDir,
			Close:          clients.Close,
		}
		if withAgents {
			assembly, err := clients.Triage()
			if err != nil {
				clients.Close()
				return nil, err
			}
			svc.Classifier = assembly.Classifier
			svc.Triager = assembly.Pipeline
		}
		return svc, nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
