package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart-grocery/internal/app"
	"smart-grocery/internal/config"
	"smart-grocery/internal/httpapi"
	"smart-grocery/internal/logging"
	"smart-grocery/internal/receipt"

	"github.com/gin-gonic/gin"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	// token only needs the secret, not the stores.
	if os.Args[1] == "token" {
		tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
		subject := tokenCmd.String("subject", "cli", "Token subject")
		ttl := tokenCmd.Duration("ttl", 24*time.Hour, "Token lifetime")
		tokenCmd.Parse(os.Args[2:])

		token, err := httpapi.IssueToken(cfg.APISecret, *subject, *ttl)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	application, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	switch os.Args[1] {
	case "serve":
		if err := serve(application); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case "seed":
		report, err := application.Seed(ctx)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		fmt.Printf("Seeded %d item(s) and %d basket(s).\n", report.Items, report.Baskets)
	case "import-receipt":
		importCmd := flag.NewFlagSet("import-receipt", flag.ExitOnError)
		selector := importCmd.String("selector", receipt.DefaultSelector, "CSS selector for item names")
		importCmd.Parse(os.Args[2:])
		if importCmd.NArg() != 1 {
			fmt.Println("Usage: smart-grocery import-receipt [-selector css] <file|url>")
			os.Exit(1)
		}

		id, items, err := application.ImportReceipt(ctx, importCmd.Arg(0), *selector)
		if err != nil {
			log.Fatalf("Receipt import failed: %v", err)
		}
		fmt.Printf("Recorded basket %d with %d item(s): %v\n", id, len(items), items)
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := application.CleanupMetrics(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func serve(a *app.App) error {
	cfg := a.Config()
	logger := a.Logger()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Smart grocery API listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exiting")
	return nil
}

func printUsage() {
	fmt.Println("Usage: smart-grocery <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  serve              Run the HTTP API")
	fmt.Println("  seed               Load sample inventory and basket history")
	fmt.Println("  import-receipt     Record a basket from an HTML receipt file or URL")
	fmt.Println("  metrics-cleanup    Remove old metric records")
	fmt.Println("  token              Print a signed API token (requires API_SECRET)")
}
