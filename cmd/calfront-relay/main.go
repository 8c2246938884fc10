package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/calfront/calfront/internal"
	"github.com/calfront/calfront/internal/config"
	"github.com/calfront/calfront/internal/log"
)

var BuildVersion = "dev"

func main() {
	conf := flag.String("config", "", "path to config file (required)")
	version := flag.Bool("version", false, "print version and exit")
	help := flag.Bool("help", false, "print help and exit")
	flag.Parse()
	if *help {
		flag.Usage()
		return
	}
	if *version {
		fmt.Println(BuildVersion)
		return
	}

	if *conf == "" {
		fmt.Fprintf(os.Stderr, "Error: -config flag is required\n")
		fmt.Fprintf(os.Stderr, "Run with -help for usage information\n")
		os.Exit(1)
	}

	cfg, err := config.Load(*conf)
	if err != nil {
		log.LogError("Failed to load config: %v", err)
		os.Exit(1)
	}

	log.LogInfoWithFields("main", "Starting calfront-relay", map[string]any{
		"version": BuildVersion,
		"config":  *conf,
	})

	ctx := context.Background()
	relayApp, err := internal.NewRelay(ctx, cfg)
	if err != nil {
		log.LogError("Failed to create relay application: %v", err)
		os.Exit(1)
	}

	if err := relayApp.Run(); err != nil {
		log.LogError("Failed to start server: %v", err)
		os.Exit(1)
	}
}
