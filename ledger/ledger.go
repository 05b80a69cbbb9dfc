// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/ballotbox/contest"
	"github.com/danielhkuo/ballotbox/models"
)

var (
	// ErrVotingNotFound means the targeted voting does not exist.
	ErrVotingNotFound = errors.New("voting not found")
	// ErrVotingClosed means the voting is outside its date window or the
	// vote ceiling has been reached.
	ErrVotingClosed = errors.New("voting is not open")
	// ErrNotAMember means no vote record exists for the targeted
	// (voting, character) pair.
	ErrNotAMember = errors.New("character is not a member of the voting")
	// ErrContention means the per-voting lock could not be acquired within
	// the configured wait. Safe to retry.
	ErrContention = errors.New("voting is busy, retry")
)

// DefaultLockWait bounds how long a vote waits for its voting's lock.
const DefaultLockWait = 3 * time.Second

// Ledger is the authoritative store of vote records. All mutation goes
// through CastVote, which serializes on a per-voting lock so that the
// open-check and the increment observe the same snapshot.
type Ledger struct {
	db       *sql.DB
	locks    *votingLocks
	lockWait time.Duration
}

// New creates a Ledger. A non-positive lockWait falls back to
// DefaultLockWait.
func New(db *sql.DB, lockWait time.Duration) *Ledger {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &Ledger{
		db:       db,
		locks:    newVotingLocks(),
		lockWait: lockWait,
	}
}

// CastVote records one vote for a character within a voting and returns
// the new amount.
//
// The existence check, the open check, the membership check, and the
// increment run as one transaction under the voting's exclusive lock, so a
// voting cannot close between the check and the increment and no two
// concurrent votes can read the same base amount. Failure modes:
// ErrVotingNotFound, ErrVotingClosed, ErrNotAMember, ErrContention.
func (l *Ledger) CastVote(ctx context.Context, votingID, characterID string, now time.Time) (int, error) {
	lockCtx, cancel := context.WithTimeout(ctx, l.lockWait)
	defer cancel()
	if err := l.locks.Acquire(lockCtx, votingID); err != nil {
		return 0, ErrContention
	}
	defer l.locks.Release(votingID)

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback()

	voting, err := scanVoting(tx.QueryRowContext(ctx, votingQuery+` WHERE id = $1`, votingID))
	if err == sql.ErrNoRows {
		return 0, ErrVotingNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query voting: %w", err)
	}

	votes, err := queryRecords(ctx, tx, votingID)
	if err != nil {
		return 0, err
	}

	if !contest.IsOpen(voting, votes, now) {
		return 0, ErrVotingClosed
	}

	member := false
	for _, vr := range votes {
		if vr.CharacterID == characterID {
			member = true
			break
		}
	}
	if !member {
		return 0, ErrNotAMember
	}

	var newAmount int
	err = tx.QueryRowContext(ctx, `
		UPDATE vote_record
		SET amount = amount + 1
		WHERE voting_id = $1 AND character_id = $2
		RETURNING amount
	`, votingID, characterID).Scan(&newAmount)
	if err != nil {
		return 0, fmt.Errorf("failed to increment vote record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit vote transaction: %w", err)
	}

	return newAmount, nil
}

// Voting loads a single voting. Returns ErrVotingNotFound if absent.
func (l *Ledger) Voting(ctx context.Context, votingID string) (models.Voting, error) {
	v, err := scanVoting(l.db.QueryRowContext(ctx, votingQuery+` WHERE id = $1`, votingID))
	if err == sql.ErrNoRows {
		return models.Voting{}, ErrVotingNotFound
	}
	if err != nil {
		return models.Voting{}, fmt.Errorf("failed to query voting: %w", err)
	}
	return v, nil
}

// Records returns a voting's vote records ordered by descending amount,
// ties broken by character ID for stable output.
func (l *Ledger) Records(ctx context.Context, votingID string) ([]models.VoteRecord, error) {
	return queryRecords(ctx, l.db, votingID)
}

// Snapshot loads a voting together with its vote records in a single
// transaction, so winner queries and report rendering see one consistent
// state. Returns ErrVotingNotFound if the voting is absent.
func (l *Ledger) Snapshot(ctx context.Context, votingID string) (models.Voting, []models.VoteRecord, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Voting{}, nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	voting, err := scanVoting(tx.QueryRowContext(ctx, votingQuery+` WHERE id = $1`, votingID))
	if err == sql.ErrNoRows {
		return models.Voting{}, nil, ErrVotingNotFound
	}
	if err != nil {
		return models.Voting{}, nil, fmt.Errorf("failed to query voting: %w", err)
	}

	votes, err := queryRecords(ctx, tx, votingID)
	if err != nil {
		return models.Voting{}, nil, err
	}

	if err := tx.Commit(); err != nil {
		return models.Voting{}, nil, fmt.Errorf("failed to commit snapshot transaction: %w", err)
	}

	return voting, votes, nil
}

const votingQuery = `
	SELECT id, title, start_date, end_date, max_votes, created_at
	FROM voting`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanVoting(row *sql.Row) (models.Voting, error) {
	var v models.Voting
	err := row.Scan(&v.ID, &v.Title, &v.StartDate, &v.EndDate, &v.MaxVotes, &v.CreatedAt)
	return v, err
}

func queryRecords(ctx context.Context, q querier, votingID string) ([]models.VoteRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT voting_id, character_id, amount
		FROM vote_record
		WHERE voting_id = $1
		ORDER BY amount DESC, character_id
	`, votingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vote records: %w", err)
	}
	defer rows.Close()

	var votes []models.VoteRecord
	for rows.Next() {
		var vr models.VoteRecord
		if err := rows.Scan(&vr.VotingID, &vr.CharacterID, &vr.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan vote record: %w", err)
		}
		votes = append(votes, vr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vote records: %w", err)
	}
	return votes, nil
}
