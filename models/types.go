// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// DateFormat is the wire format for calendar-date fields.
const DateFormat = "2006-01-02"

// Request types

type CreateVotingRequest struct {
	Title     string `json:"title"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	MaxVotes  *int   `json:"max_votes,omitempty"`
}

type CreateCharacterRequest struct {
	LastName    string `json:"last_name"`
	FirstName   string `json:"first_name"`
	SecondName  string `json:"second_name"`
	BirthDate   string `json:"birth_date"` // YYYY-MM-DD
	Description string `json:"description"`
}

type AddMemberRequest struct {
	CharacterID string `json:"character_id"`
}

type ScheduleReportRequest struct {
	Email     string    `json:"email"`
	ExecuteAt time.Time `json:"execute_at"`
}

// Response types

type CreateVotingResponse struct {
	VotingID string `json:"voting_id"`
}

type CreateCharacterResponse struct {
	CharacterID string `json:"character_id"`
}

type CastVoteResponse struct {
	VotingID    string `json:"voting_id"`
	CharacterID string `json:"character_id"`
	Amount      int    `json:"amount"`
}

type ScheduleReportResponse struct {
	TaskID string `json:"task_id"`
	JobID  string `json:"job_id"`
}

// VotingView is the serialized form of a voting, with calendar dates and
// the leader_votes annotation (null when the voting has no members).
type VotingView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	MaxVotes    *int   `json:"max_votes"`
	LeaderVotes *int   `json:"leader_votes"`
}

// CharacterView is the serialized form of a character. Age is derived from
// the birth date at read time, never stored. VotesAmount is only set when
// the character is listed as a member of a specific voting.
type CharacterView struct {
	ID          string `json:"id"`
	LastName    string `json:"last_name"`
	FirstName   string `json:"first_name,omitempty"`
	SecondName  string `json:"second_name,omitempty"`
	Age         int    `json:"age"`
	Description string `json:"description,omitempty"`
	VotesAmount *int   `json:"votes_amount,omitempty"`
}

// ExportTaskView is the serialized form of a scheduled report task. FiredAt
// and ReportName stay null until the job has run.
type ExportTaskView struct {
	ID         string     `json:"id"`
	VotingID   string     `json:"voting_id"`
	Email      string     `json:"email"`
	ExecuteAt  time.Time  `json:"execute_at"`
	JobID      *string    `json:"job_id"`
	FiredAt    *time.Time `json:"fired_at"`
	ReportName *string    `json:"report_name"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Domain types

type Voting struct {
	ID        string
	Title     string
	StartDate time.Time
	EndDate   time.Time
	MaxVotes  *int // nil means no ceiling
	CreatedAt time.Time
}

type Character struct {
	ID          string
	LastName    string
	FirstName   string
	SecondName  string
	BirthDate   time.Time
	Description string
	CreatedAt   time.Time
}

// VoteRecord is the vote counter for one character within one voting.
// The (voting, character) pair is unique; Amount only ever increases.
type VoteRecord struct {
	VotingID    string
	CharacterID string
	Amount      int
}

// ExportTask is a scheduled, one-shot report job. JobID is assigned exactly
// once when the task is first scheduled. Report holds the rendered artifact
// after the job has fired.
type ExportTask struct {
	ID         string
	VotingID   string
	Email      string
	ExecuteAt  time.Time
	JobID      *string
	Report     []byte
	ReportName *string
	CreatedAt  time.Time
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
