// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - voting: Contest metadata (title, date window, optional vote ceiling)
  - character: Candidate entities
  - vote_record: One vote counter per (voting, character) pair
  - export_task: Scheduled report jobs and their rendered artifacts

# Relationships

	voting 1──* vote_record
	character 1──* vote_record
	voting 1──* export_task

vote_record cascades on deletion of either parent. export_task rows are
cleaned up explicitly when their voting is deleted (see the votings
handler), never by cascade, so a dangling job cannot fire against a
half-deleted voting.

# Constraints

  - voting.title is unique
  - character.last_name is unique
  - vote_record (voting_id, character_id) is the primary key; amount >= 0
  - export_task.job_id is assigned once, guarded by a compare-and-set
    UPDATE (see the scheduler package)
*/
package db
