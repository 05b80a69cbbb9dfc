// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package contest evaluates voting state: open/closed status, leader amount,
and winner determination.

All functions are pure - they take a voting, its vote records, and an
explicit instant, and never touch storage or the wall clock. Callers load a
snapshot (see the ledger package) and pass it in, so the HTTP layer and the
report job agree on state by construction.

# Open/Closed Rule

A voting is open when both hold:

  - start_date < today <= end_date (calendar dates, UTC). The start date
    itself is closed; the end date itself is open.
  - If max_votes is set and any vote records exist, the leading member's
    amount is still below max_votes.

The ceiling rule is first-past-the-post: the contest closes the moment any
single member reaches max_votes, regardless of the date window.

# Winner

Winner is only defined for closed votings:

	record, err := contest.Winner(voting, votes, time.Now())

Possible typed outcomes: ErrStillActive (voting is open), ErrNoMembers (no
vote records), ErrNoLeader (ambiguous tie at the maximum). All three are
expected results for the API to surface, not faults.
*/
package contest
