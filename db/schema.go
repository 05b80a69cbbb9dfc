// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Votings
CREATE TABLE IF NOT EXISTS voting (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL UNIQUE,
    start_date DATE NOT NULL,
    end_date DATE NOT NULL,
    max_votes INTEGER,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_voting_dates ON voting(start_date, end_date);

-- Characters
CREATE TABLE IF NOT EXISTS character (
    id TEXT PRIMARY KEY,
    last_name TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL DEFAULT '',
    second_name TEXT NOT NULL DEFAULT '',
    birth_date DATE NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

-- Vote records: one counter per (voting, character) pair
CREATE TABLE IF NOT EXISTS vote_record (
    voting_id TEXT NOT NULL REFERENCES voting(id) ON DELETE CASCADE,
    character_id TEXT NOT NULL REFERENCES character(id) ON DELETE CASCADE,
    amount INTEGER NOT NULL DEFAULT 0 CHECK (amount >= 0),
    PRIMARY KEY (voting_id, character_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_record_voting ON vote_record(voting_id);

-- Export tasks: scheduled report jobs
CREATE TABLE IF NOT EXISTS export_task (
    id TEXT PRIMARY KEY,
    voting_id TEXT NOT NULL REFERENCES voting(id),
    email TEXT NOT NULL,
    execute_at TIMESTAMP NOT NULL,
    job_id TEXT,
    fired_at TIMESTAMP,
    report BYTEA,
    report_name TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_export_task_voting ON export_task(voting_id);
CREATE INDEX IF NOT EXISTS idx_export_task_job ON export_task(job_id);
`
