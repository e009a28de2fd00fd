// ABOUTME: Entry point for the tidsreg-gateway server
// ABOUTME: Bridges the upstream Tidsreg application to MCP and REST clients

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/trifork/tidsreg-gateway/internal/api"
	"github.com/trifork/tidsreg-gateway/internal/config"
	"github.com/trifork/tidsreg-gateway/internal/mcp"
	"github.com/trifork/tidsreg-gateway/internal/session"
	"github.com/trifork/tidsreg-gateway/internal/tidsreg"
	"github.com/trifork/tidsreg-gateway/internal/warnings"
)

// version is set at build time via -ldflags.
var version = "dev"

const banner = `
 _   _     _                                       _
| |_(_) __| |___ _ __ ___  __ _       __ _  __ _ _| |_ _____      ____ _ _   _
| __| |/ _' / __| '__/ _ \/ _' |____ / _' |/ _' |_  __/ _ \ \ /\ / / _' | | | |
| |_| | (_| \__ \ | |  __/ (_| |____| (_| | (_| | | | |  __/\ V  V / (_| | |_| |
 \__|_|\__,_|___/_|  \___|\__, |     \__, |\__,_| |_|  \___| \_/\_/ \__,_|\__, |
                          |___/      |___/                                |___/
`

// getConfigPath returns the path to the gateway config file.
// Priority: TIDSREG_CONFIG env var > XDG_CONFIG_HOME/tidsreg/gateway.yaml > ~/.config/tidsreg/gateway.yaml
func getConfigPath() string {
	if envPath := os.Getenv("TIDSREG_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "tidsreg", "gateway.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: tidsreg-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the REST/HTTP mirror")
		fmt.Println("  mcp      Run the MCP stdio server (JSON-RPC over stdin/stdout)")
		fmt.Println("  init     Create a starter config file")
		fmt.Println("  health   Check a running HTTP server's health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "mcp":
		err = runMCP(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildClient wires session store, warning engine, and navigation client from
// the loaded config.
func buildClient(cfg *config.Config, logger *slog.Logger) (*tidsreg.Client, error) {
	store, err := session.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, logger)
	if err != nil {
		return nil, fmt.Errorf("creating session store: %w", err)
	}

	engine := warnings.New(cfg.Warnings.FullDayHours, cfg.Warnings.AbsenceActivities)
	return tidsreg.New(store, engine, logger), nil
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging, os.Stdout)

	// Startup info
	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Upstream:  %s\n", cfg.Upstream.BaseURL)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	fmt.Println()

	logger.Info("starting tidsreg-gateway",
		"config", configPath,
		"upstream", cfg.Upstream.BaseURL,
		"http_addr", cfg.Server.HTTPAddr,
	)

	client, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}

	restServer := api.New(client, logger, cfg.Server.AllowedOrigins)
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: restServer.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func runMCP(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// stdout carries JSON-RPC frames; everything else goes to stderr.
	logger := setupLogger(cfg.Logging, os.Stderr)

	client, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}

	server := mcp.New(client, logger, os.Stdin, os.Stdout)
	return server.Run(ctx)
}

const starterConfig = `upstream:
  base_url: https://tidsreg.example.com
  timeout: 15s

server:
  http_addr: :8750
  allowed_origins: ["*"]

logging:
  level: info
  format: text

warnings:
  full_day_hours: 7.0
  absence_activities: [sygdom, ferie, barsel, afspadsering, orlov]
`

func runInit() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(starterConfig), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("Edit upstream.base_url before starting the gateway.")
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.Server.HTTPAddr
	if addr[0] == ':' {
		addr = "localhost" + addr
	}

	url := fmt.Sprintf("http://%s/health", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
