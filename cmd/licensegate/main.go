package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"licensegate/internal/app"
	"licensegate/internal/config"
	"licensegate/pkg/contracts"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	version := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *version {
		info := contracts.GetVersionInfo()
		fmt.Printf("%s (api %s, commit %s, built %s, %s)\n",
			contracts.GetVersionString(), info.APIVersion, info.GitCommit, info.BuildTime, info.GoVersion)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
