// Command ugit-viz serves a live, read-only view of one repository's
// commit graph over HTTP and websocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/relayvcs/ugit/internal/progress"
	"github.com/relayvcs/ugit/internal/repocontext"
	"github.com/relayvcs/ugit/internal/termcolor"
	"github.com/relayvcs/ugit/internal/vizserver"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	initLogger()

	if v := os.Getenv("UGIT_DIR"); v != "" {
		repocontext.SetDefault(v)
	}

	repoPath := flag.String("repo", getEnv("UGIT_VIZ_REPO", "."), "Path to the ugit repository's working directory")
	port := flag.String("port", getEnv("UGIT_VIZ_PORT", "8080"), "Port to listen on")
	host := flag.String("host", getEnv("UGIT_VIZ_HOST", ""), "Host to bind to (empty = all interfaces)")
	colorFlag := flag.String("color", "auto", "Color output: auto, always, never")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	colorMode, err := termcolor.ParseColorMode(*colorFlag)
	if err != nil {
		slog.Error("invalid -color flag", "value", *colorFlag, "err", err)
		os.Exit(1)
	}
	cw := termcolor.NewWriter(os.Stdout, colorMode)

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	workDir, err := filepath.Abs(*repoPath)
	if err != nil {
		slog.Error("resolving repository path", "err", err)
		os.Exit(1)
	}
	repoDir := filepath.Join(workDir, repoDirName())

	spin := progress.New("Loading repository...")
	spin.Start()
	if _, err := os.Stat(repoDir); err != nil {
		spin.Stop()
		slog.Error("not a ugit repository", "dir", repoDir, "err", err)
		os.Exit(1)
	}
	spin.Stop()

	server := vizserver.New(workDir, repoDir, slog.Default())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Watch(ctx); err != nil {
		slog.Error("starting repository watch", "err", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf("%s:%s", *host, *port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Printf("%s %s\n", cw.BoldCyan("ugit-viz"), cw.Green(version))
	fmt.Printf("  repo:    %s\n", workDir)
	fmt.Printf("  listen:  http://%s\n", addr)
	if termcolor.IsTerminal(os.Stdout.Fd()) {
		fmt.Printf("\n%s\n", cw.Bold("Press Ctrl+C to stop."))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "err", err)
		}
	}
}

func repoDirName() string {
	return repocontext.Dir()
}

func initLogger() {
	level := slog.LevelInfo
	switch getEnv("UGIT_VIZ_LOG_LEVEL", "info") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if getEnv("UGIT_VIZ_LOG_FORMAT", "text") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func printVersion() {
	fmt.Printf("ugit-viz %s\n", version)
	fmt.Printf("  commit:    %s\n", commit)
	fmt.Printf("  built:     %s\n", buildDate)
}
