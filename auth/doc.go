// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides entity ID generation and admin token validation.

# ID Generation

Random hex IDs for votings, characters, and export tasks:

	id, err := auth.GenerateID(16) // 32 hex chars

# Admin Token

The service uses a single operator-configured token for all admin
operations (entity creation/deletion, report scheduling). Reads and vote
casting are public:

	if err := auth.ValidateAdminToken(r.Header.Get("X-Admin-Token"), cfg.AdminToken); err != nil {
		// 401
	}

Comparison is constant time.
*/
package auth
