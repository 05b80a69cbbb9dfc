// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package report renders voting snapshot reports.

Build is pure: it takes a voting, its vote records (descending by amount),
a character-ID-to-last-name map, and the open/closed state at fire time,
and produces the email subject, a plain-text header block, and a CSV
attachment of (last name, votes) rows. Votings with no members get a plain
notice instead of an attachment.

The scheduler package calls Build when an export job fires; the same
evaluator output feeds the "Is active" line, so the report and the API
never disagree on state.
*/
package report
