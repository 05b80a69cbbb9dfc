// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment
variables.

CLI flags take precedence over environment variables.

# Settings

Required:

  - DATABASE_URL (-d): database connection string
  - ADMIN_TOKEN (-admin-token): token for admin endpoints

Optional:

  - PORT (-p): server port (default: 3319)
  - DATABASE_TYPE (-t): "sqlite" or "postgres" (default: sqlite)
  - SMTP_ADDR (-smtp-addr): SMTP server for report delivery; when unset,
    reports are logged instead of mailed
  - SMTP_FROM (-smtp-from): sender address, required with SMTP_ADDR
  - VOTE_LOCK_WAIT (-vote-lock-wait): bound on waiting for a voting's
    vote lock (default: 3s)
*/
package cliparse
