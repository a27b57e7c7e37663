package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/ftscore/api"
	"github.com/gcbaptista/ftscore/config"
	"github.com/gcbaptista/ftscore/internal/engine"
)

func main() {
	help := flag.Bool("help", false, "Show help message")
	version := flag.Bool("version", false, "Show version information")

	// --help and --version are picked out here; everything else goes to
	// config.ParseFlags, whose own flag set does not know them.
	var rest []string
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-help", "--help":
			*help = true
		case "-version", "--version":
			*version = true
		default:
			rest = append(rest, arg)
		}
	}

	cfg, err := config.ParseFlags(rest)
	if err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	if *help {
		fmt.Printf("ftscored - an embeddable, typo-tolerant full-text search engine\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                          # Start server on default port 8080\n", os.Args[0])
		fmt.Printf("  %s --port 9000              # Start server on port 9000\n", os.Args[0])
		fmt.Printf("  %s --data-dir /tmp/search   # Use custom data directory\n", os.Args[0])
		return
	}

	if *version {
		fmt.Printf("ftscored v1.0.0\n")
		return
	}

	log.Printf("Using data directory: %s", cfg.DataDir)
	eng, err := engine.NewEngineWithConfig(cfg)
	if err != nil {
		log.Fatalf("failed to start engine: %v", err)
	}

	router := gin.Default()
	api.SetupRoutes(router, eng)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Starting server on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	eng.Close(ctx)

	log.Println("Server exited")
}
