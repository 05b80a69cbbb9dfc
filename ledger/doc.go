// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger owns the vote_record table and the vote accrual transaction.

# Casting a Vote

	l := ledger.New(db, 3*time.Second)
	amount, err := l.CastVote(ctx, votingID, characterID, time.Now())

CastVote runs the full accrual sequence as one unit:

 1. Voting must exist → ErrVotingNotFound
 2. Voting must be open at the given instant → ErrVotingClosed
 3. A vote record must exist for the character → ErrNotAMember
 4. Atomic increment (UPDATE ... SET amount = amount + 1 ... RETURNING)

The sequence executes inside a database transaction while holding a
per-voting lock, so the open check and the increment observe the same
state: a voting cannot close (by ceiling) between steps 2 and 4, and two
concurrent votes can never read the same base amount. Votes on different
votings use different locks and proceed in parallel.

Lock acquisition is bounded (ErrContention after the configured wait), so
callers fail fast under pathological load instead of queueing forever.
ErrContention is transient and safe to retry.

# Reads

Voting, Records, and Snapshot provide the read paths the evaluator, the
winner endpoint, and the report job consume. Snapshot loads the voting and
its records in one transaction so both sides of the report agree.
*/
package ledger
