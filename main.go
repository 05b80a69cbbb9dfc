package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/ledger"
	"github.com/danielhkuo/ballotbox/mailer"
	"github.com/danielhkuo/ballotbox/router"
	"github.com/danielhkuo/ballotbox/scheduler"
)

func main() {
	var err error

	// Optional .env for local development
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database (sqlite or postgres)
	driver := "sqlite"
	if cfg.DatabaseType == "postgres" {
		driver = "postgres"
	}
	dbConn, err := sql.Open(driver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Vote ledger shared by the HTTP handlers and the scheduler
	l := ledger.New(dbConn, cfg.VoteLockWait)

	// Report delivery: real SMTP when configured, logging otherwise
	var m mailer.Mailer = mailer.Log{}
	if cfg.SMTPAddr != "" {
		m = mailer.NewSMTP(cfg.SMTPAddr, cfg.SMTPFrom)
		slog.Info("Report delivery via SMTP", "addr", cfg.SMTPAddr)
	} else {
		slog.Info("Report delivery via log only")
	}

	// Re-arm report jobs that were scheduled before the last shutdown
	sched := scheduler.New(dbConn, l, m)
	if err := sched.Resume(context.Background()); err != nil {
		slog.Error("scheduler resume failed", "error", err)
		os.Exit(1)
	}
	defer sched.Shutdown()

	// Create router
	mux := router.NewRouter(dbConn, cfg, l, sched)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
