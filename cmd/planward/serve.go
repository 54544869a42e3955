package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/planward/planward/internal/clock"
	"github.com/planward/planward/internal/config"
	"github.com/planward/planward/internal/domain/plan"
	"github.com/planward/planward/internal/domain/template"
	"github.com/planward/planward/internal/mcp"
	"github.com/planward/planward/internal/sqlite"
	"github.com/planward/planward/internal/transport"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (REST plus MCP under /mcp)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		return runServe(cfg)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio (local use, no auth)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		return runStdio(cfg)
	},
}

func runServe(cfg config.Config) error {
	logger := buildLogger(cfg, os.Stdout)

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return err
	}
	defer db.Close()

	templateRepo := sqlite.NewTemplateRepository(db)
	planRepo := sqlite.NewPlanRepository(db)

	clk := clock.System{}
	templateSvc := template.NewService(templateRepo, clk, logger)
	planSvc := plan.NewService(planRepo, templateRepo, clk, logger)

	resolver := &apiTokenResolver{db: db}

	var authMiddleware func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		authMiddleware = transport.AuthMiddleware(resolver)
	}
	router := transport.NewRouter(templateSvc, planSvc, authMiddleware, logger)

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      mcp.Services{Templates: templateSvc, Plans: planSvc},
		Resolver:      resolver,
		AuthEnabled:   cfg.Auth.Enabled,
		TransportMode: "http",
		Logger:        logger,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/*", mcpHandler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}

func runStdio(cfg config.Config) error {
	// Logs go to stderr to keep stdout clean for JSON-RPC.
	logger := buildLogger(cfg, os.Stderr)

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return err
	}
	defer db.Close()

	templateRepo := sqlite.NewTemplateRepository(db)
	planRepo := sqlite.NewPlanRepository(db)

	clk := clock.System{}
	templateSvc := template.NewService(templateRepo, clk, logger)
	planSvc := plan.NewService(planRepo, templateRepo, clk, logger)

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      mcp.Services{Templates: templateSvc, Plans: planSvc},
		TransportMode: "stdio",
		Logger:        logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting stdio transport", "auth", "disabled")
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
		logger.Error("stdio server error", "error", err)
		return err
	}
	return nil
}
