package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminToken   string
	SMTPAddr     string
	SMTPFrom     string
	VoteLockWait time.Duration
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("ballotbox", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminToken, "admin-token", "", "Admin API token (prefer env)")

	// Report delivery (optional; reports are logged when unset)
	fs.StringVar(&cfg.SMTPAddr, "smtp-addr", "", "SMTP server host:port")
	fs.StringVar(&cfg.SMTPFrom, "smtp-from", "", "Report sender address")

	fs.DurationVar(&cfg.VoteLockWait, "vote-lock-wait", 0, "Max wait for a voting's vote lock")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3319 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	// Secrets - MUST be provided
	if cfg.AdminToken == "" {
		cfg.AdminToken = os.Getenv("ADMIN_TOKEN")
	}
	if cfg.AdminToken == "" {
		return Config{}, errors.New("ADMIN_TOKEN required")
	}

	if cfg.SMTPAddr == "" {
		cfg.SMTPAddr = os.Getenv("SMTP_ADDR")
	}
	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = os.Getenv("SMTP_FROM")
	}
	if cfg.SMTPAddr != "" && cfg.SMTPFrom == "" {
		return Config{}, errors.New("SMTP_FROM required when SMTP_ADDR is set")
	}

	if cfg.VoteLockWait == 0 {
		if waitStr := os.Getenv("VOTE_LOCK_WAIT"); waitStr != "" {
			wait, err := time.ParseDuration(waitStr)
			if err != nil {
				return Config{}, errors.New("invalid VOTE_LOCK_WAIT env variable")
			}
			cfg.VoteLockWait = wait
		} else {
			cfg.VoteLockWait = 3 * time.Second
		}
	}

	return cfg, nil
}
