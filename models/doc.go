// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateVotingRequest: title, start_date, end_date, max_votes
  - CreateCharacterRequest: last_name, first_name, second_name, birth_date, description
  - AddMemberRequest: character_id
  - ScheduleReportRequest: email, execute_at

Calendar dates on the wire are YYYY-MM-DD strings (DateFormat);
execute_at is a full RFC 3339 timestamp.

# Response Types

Types for JSON responses:

  - CreateVotingResponse: voting_id
  - CreateCharacterResponse: character_id
  - CastVoteResponse: voting_id, character_id, amount
  - ScheduleReportResponse: task_id, job_id
  - VotingView: voting with leader_votes annotation
  - CharacterView: character with derived age and optional votes_amount
  - ExportTaskView: scheduled report task state
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Voting: contest with a date window and optional vote ceiling
  - Character: candidate eligible to receive votes
  - VoteRecord: vote counter for one character within one voting
  - ExportTask: one-shot scheduled report job

A voting with MaxVotes == nil has no ceiling. A character participates in a
voting iff a VoteRecord exists for the pair; the pair is unique and Amount
only ever increases.
*/
package models
