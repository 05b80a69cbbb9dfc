// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Ballot Box API server.

Ballot Box is a time-bounded voting contest service: votings open and close
by calendar date (or early, when a member reaches the vote ceiling), votes
accrue one at a time through a concurrency-safe ledger, and deferred report
jobs email CSV standings at a scheduled instant.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=ballotbox.db ADMIN_TOKEN=secret go run main.go

Or with flags:

	go run main.go -p 3319 -d "postgres://..." -t postgres -admin-token secret

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string
  - ADMIN_TOKEN (-admin-token): Secret for admin operations

Optional settings:

  - PORT (-p): Server port (default: 3319)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - SMTP_ADDR (-smtp-addr): SMTP host:port for report delivery
  - SMTP_FROM (-smtp-from): Report sender address (required with SMTP_ADDR)
  - VOTE_LOCK_WAIT (-vote-lock-wait): Max wait for a voting's vote lock

A .env file in the working directory is loaded when present.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - contest: Voting state evaluation (open/finished, winner, age)
  - ledger: Concurrency-safe vote accrual
  - scheduler: Deferred one-shot report jobs
  - report: Report rendering (body and CSV attachment)
  - mailer: SMTP delivery with a logging fallback
  - handlers: HTTP request handlers (votings, characters, votes, reports)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types
  - auth: ID generation and admin token validation
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
