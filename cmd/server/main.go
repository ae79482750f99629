// Package main is the entry point for the svsbridge API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/svsbridge/pkg/api"
	"github.com/james-see/svsbridge/pkg/config"
	"github.com/james-see/svsbridge/pkg/metrics"
)

func main() {
	envFile := flag.String("env-file", ".env", "Configuration file")
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}

	flush, err := metrics.Init(cfg.SentryDSN, cfg.SentryEnvironment, "server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sentry error: %v\n", err)
		os.Exit(1)
	}
	defer flush()

	fmt.Printf("Starting svsbridge API server on port %d...\n", cfg.Port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", cfg.Port)

	if err := api.StartServer(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		flush()
		os.Exit(1)
	}
}
