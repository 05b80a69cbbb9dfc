// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contest

import (
	"errors"
	"time"

	"github.com/danielhkuo/ballotbox/models"
)

var (
	// ErrStillActive means a winner was requested for a voting that is
	// still open.
	ErrStillActive = errors.New("voting is still active")
	// ErrNoMembers means the voting has no vote records at all.
	ErrNoMembers = errors.New("voting has no members")
	// ErrNoLeader means two or more members tie at the maximum amount.
	ErrNoLeader = errors.New("voting members have no leader")
)

// IsOpen reports whether a voting accepts votes at the given instant.
//
// A voting is open iff the current calendar date is strictly after the
// start date and at or before the end date, and additionally, when a vote
// ceiling is set and any vote records exist, the leader amount is still
// below the ceiling. The boundary is asymmetric on purpose: the start date
// itself is closed, the end date itself is open.
func IsOpen(v models.Voting, votes []models.VoteRecord, now time.Time) bool {
	today := dateOf(now)
	start := dateOf(v.StartDate)
	end := dateOf(v.EndDate)

	if !start.Before(today) || today.After(end) {
		return false
	}
	if v.MaxVotes == nil {
		return true
	}
	leader, ok := LeaderAmount(votes)
	if !ok {
		return true
	}
	return leader < *v.MaxVotes
}

// LeaderAmount returns the maximum amount across the vote records.
// The second return is false when there are no records.
func LeaderAmount(votes []models.VoteRecord) (int, bool) {
	if len(votes) == 0 {
		return 0, false
	}
	leader := votes[0].Amount
	for _, vr := range votes[1:] {
		if vr.Amount > leader {
			leader = vr.Amount
		}
	}
	return leader, true
}

// Winner returns the vote record holding the unique maximum amount.
//
// It is only defined for closed votings: ErrStillActive if the voting is
// open, ErrNoMembers if it has no vote records, ErrNoLeader if two or more
// records tie at the maximum. All three are legitimate outcomes for the
// caller to surface, not faults.
func Winner(v models.Voting, votes []models.VoteRecord, now time.Time) (models.VoteRecord, error) {
	if IsOpen(v, votes, now) {
		return models.VoteRecord{}, ErrStillActive
	}
	leader, ok := LeaderAmount(votes)
	if !ok {
		return models.VoteRecord{}, ErrNoMembers
	}

	var winner models.VoteRecord
	count := 0
	for _, vr := range votes {
		if vr.Amount == leader {
			winner = vr
			count++
		}
	}
	if count > 1 {
		return models.VoteRecord{}, ErrNoLeader
	}
	return winner, nil
}

// Age returns full years elapsed between the birth date and now.
func Age(birthDate, now time.Time) int {
	today := dateOf(now)
	birth := dateOf(birthDate)

	// The birthday itself still counts as the previous year.
	years := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() <= birth.Day()) {
		years--
	}
	return years
}

// dateOf truncates an instant to its UTC calendar date. All voting window
// comparisons happen at date granularity, matching the stored DATE columns.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
