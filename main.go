package main

import (
	"flag"
	"log"

	"github.com/athapong/ldbc-dense/pkg/config"
	"github.com/athapong/ldbc-dense/tools"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env", ".env", "Path to environment file")
	configFile := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Printf("Warning: Error loading env file %s: %v\n", *envFile, err)
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}

	// stdout carries the MCP protocol; logrus writes to stderr
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{})

	mcpServer := server.NewMCPServer(
		"ldbc-dense",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	tools.RegisterGraphTools(mcpServer, cfg, logger)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
