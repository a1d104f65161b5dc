package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"skybook/internal/api"
	"skybook/internal/config"
	"skybook/internal/logger"
	"skybook/internal/validation"

	"github.com/spf13/pflag"
)

func main() {
	// api validate --url=http://localhost:8080 прогоняет smoke-сценарий
	if len(os.Args) > 1 && os.Args[1] == "validate" {
		runValidation(os.Args[2:])
		return
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	server, err := api.NewServer(cfg)
	if err != nil {
		logger.Fatal("Failed to start API", "error", err)
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.Fatal("Server stopped with error", "error", err)
	}
	logger.Get().Info("Server stopped")
}

func runValidation(args []string) {
	flags := pflag.NewFlagSet("validate", pflag.ExitOnError)
	baseURL := flags.String("url", "http://localhost:8080", "base URL of the running API")
	flags.Parse(args)

	logger.Init("info", "text")
	if err := validation.NewSmokeValidator(*baseURL).ValidateAll(); err != nil {
		logger.Fatal("Validation failed", "error", err)
	}
}
