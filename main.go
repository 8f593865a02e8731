package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/sabacan365/cliparse"
	"github.com/danielhkuo/sabacan365/db"
	"github.com/danielhkuo/sabacan365/importer"
	"github.com/danielhkuo/sabacan365/router"
	"github.com/danielhkuo/sabacan365/scheduler"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var err error

	// Human-readable logs in a terminal, JSON everywhere else
	if isatty.IsTerminal(os.Stderr.Fd()) {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to the database
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// One-shot import mode
	if cfg.ImportPath != "" {
		result, err := importer.New(dbConn).ImportFile(ctx, cfg.ImportPath, cfg.ImportSlug)
		if err != nil {
			slog.Error("import failed", "path", cfg.ImportPath, "error", err)
			dbConn.Close()
			os.Exit(1)
		}
		for _, msg := range result.Errors {
			slog.Warn("import skipped", "reason", msg)
		}
		slog.Info("import finished",
			"articles", result.Articles,
			"quizzes", result.Quizzes,
			"vocab_lists", result.VocabLists,
			"skipped", result.Skipped,
		)
		return
	}

	// Sweep abandoned quiz attempts in the background
	sweeper := scheduler.New(dbConn, cfg.AttemptTTL)
	if err := sweeper.Start(); err != nil {
		slog.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	// Create server
	server := http.Server{
		Handler:           router.NewRouter(dbConn, cfg),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		slog.Error("listen failed", "addr", server.Addr, "error", err)
		return
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)

	// Start server
	slog.Info("Listening", "port", cfg.Port, "base_url", cfg.BaseURL)
	if err := serve(&server, ln, ctrlc); err != nil {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}

// serve runs server on ln until stop fires, then returns once in-flight
// requests have drained (or the shutdown timeout has passed)
func serve(server *http.Server, ln net.Listener, stop <-chan os.Signal) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-stop
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	err := server.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	// Serve returns as soon as Shutdown starts
	<-done
	return nil
}
