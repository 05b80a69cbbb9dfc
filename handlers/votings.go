// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/contest"
	"github.com/danielhkuo/ballotbox/ledger"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

type VotingsHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	ledger *ledger.Ledger
}

func NewVotingsHandler(db *sql.DB, cfg cliparse.Config, l *ledger.Ledger) *VotingsHandler {
	return &VotingsHandler{db: db, cfg: cfg, ledger: l}
}

// CreateVoting handles POST /votings
func (h *VotingsHandler) CreateVoting(w http.ResponseWriter, r *http.Request) {
	if err := auth.ValidateAdminToken(r.Header.Get("X-Admin-Token"), h.cfg.AdminToken); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin token")
		return
	}

	var req models.CreateVotingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	startDate, err := time.Parse(models.DateFormat, req.StartDate)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	endDate, err := time.Parse(models.DateFormat, req.EndDate)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}
	if endDate.Before(startDate) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "end_date must not precede start_date")
		return
	}
	if req.MaxVotes != nil && *req.MaxVotes <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "max_votes must be positive")
		return
	}

	votingID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate voting ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create voting")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO voting (id, title, start_date, end_date, max_votes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, votingID, req.Title, startDate, endDate, req.MaxVotes, time.Now())

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Voting title already taken")
			return
		}
		slog.Error("failed to insert voting", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create voting")
		return
	}

	slog.Info("voting created", "voting_id", votingID, "title", req.Title)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateVotingResponse{
		VotingID: votingID,
	})
}

// ListVotings handles GET /votings
func (h *VotingsHandler) ListVotings(w http.ResponseWriter, r *http.Request) {
	all, err := h.loadVotings()
	if err != nil {
		slog.Error("failed to query votings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	views := []models.VotingView{}
	for _, vw := range all {
		views = append(views, votingView(vw.voting, vw.votes))
	}
	middleware.JSONResponse(w, http.StatusOK, views)
}

// ListActive handles GET /votings/active
// A voting is active when its date window is open and, if a ceiling is
// set, the leader amount is still below it.
func (h *VotingsHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.listByState(w, r, true)
}

// ListFinished handles GET /votings/finished
// Finished votings ended by date or reached their ceiling. Together with
// /votings/active this partitions the full voting set.
func (h *VotingsHandler) ListFinished(w http.ResponseWriter, r *http.Request) {
	h.listByState(w, r, false)
}

func (h *VotingsHandler) listByState(w http.ResponseWriter, r *http.Request, wantOpen bool) {
	all, err := h.loadVotings()
	if err != nil {
		slog.Error("failed to query votings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now()
	views := []models.VotingView{}
	for _, vw := range all {
		if contest.IsOpen(vw.voting, vw.votes, now) == wantOpen {
			views = append(views, votingView(vw.voting, vw.votes))
		}
	}
	middleware.JSONResponse(w, http.StatusOK, views)
}

// GetVoting handles GET /votings/{id}
func (h *VotingsHandler) GetVoting(w http.ResponseWriter, r *http.Request) {
	votingID := r.PathValue("id")
	if votingID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voting_id is required")
		return
	}

	voting, votes, err := h.ledger.Snapshot(r.Context(), votingID)
	if err == ledger.ErrVotingNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting not found")
		return
	}
	if err != nil {
		slog.Error("failed to query voting", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, votingView(voting, votes))
}

// DeleteVoting handles DELETE /votings/{id}
// Vote records go with the voting via cascade; export tasks are cleaned up
// explicitly here so no orphaned report job references a dead voting.
func (h *VotingsHandler) DeleteVoting(w http.ResponseWriter, r *http.Request) {
	if err := auth.ValidateAdminToken(r.Header.Get("X-Admin-Token"), h.cfg.AdminToken); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin token")
		return
	}

	votingID := r.PathValue("id")
	if votingID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voting_id is required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM export_task WHERE voting_id = $1`, votingID); err != nil {
		slog.Error("failed to delete export tasks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete voting")
		return
	}

	res, err := tx.Exec(`DELETE FROM voting WHERE id = $1`, votingID)
	if err != nil {
		slog.Error("failed to delete voting", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete voting")
		return
	}
	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read delete result", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete voting")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting not found")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete voting")
		return
	}

	slog.Info("voting deleted", "voting_id", votingID)
	w.WriteHeader(http.StatusNoContent)
}

// AddMember handles POST /votings/{id}/members
// Registers a character as a participant by creating its vote record.
func (h *VotingsHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	if err := auth.ValidateAdminToken(r.Header.Get("X-Admin-Token"), h.cfg.AdminToken); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin token")
		return
	}

	votingID := r.PathValue("id")
	if votingID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voting_id is required")
		return
	}

	var req models.AddMemberRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CharacterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "character_id is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM voting WHERE id = $1)`, votingID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query voting", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting not found")
		return
	}

	err = h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM character WHERE id = $1)`, req.CharacterID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query character", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Character not found")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO vote_record (voting_id, character_id, amount)
		VALUES ($1, $2, 0)
	`, votingID, req.CharacterID)
	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Character is already a member")
			return
		}
		slog.Error("failed to insert vote record", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add member")
		return
	}

	slog.Info("member added", "voting_id", votingID, "character_id", req.CharacterID)
	w.WriteHeader(http.StatusCreated)
}

// ListMembers handles GET /votings/{id}/members
func (h *VotingsHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	votingID := r.PathValue("id")
	if votingID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voting_id is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM voting WHERE id = $1)`, votingID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query voting", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting not found")
		return
	}

	rows, err := h.db.Query(`
		SELECT c.id, c.last_name, c.first_name, c.second_name, c.birth_date, c.description, vr.amount
		FROM character c
		JOIN vote_record vr ON vr.character_id = c.id
		WHERE vr.voting_id = $1
		ORDER BY vr.amount DESC, c.id
	`, votingID)
	if err != nil {
		slog.Error("failed to query members", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	now := time.Now()
	members := []models.CharacterView{}
	for rows.Next() {
		var c models.Character
		var amount int
		if err := rows.Scan(&c.ID, &c.LastName, &c.FirstName, &c.SecondName, &c.BirthDate, &c.Description, &amount); err != nil {
			slog.Error("failed to scan member", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		view := characterView(c, now)
		view.VotesAmount = &amount
		members = append(members, view)
	}

	middleware.JSONResponse(w, http.StatusOK, members)
}

// Winner handles GET /votings/{id}/winner
func (h *VotingsHandler) Winner(w http.ResponseWriter, r *http.Request) {
	votingID := r.PathValue("id")
	if votingID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voting_id is required")
		return
	}

	voting, votes, err := h.ledger.Snapshot(r.Context(), votingID)
	if err == ledger.ErrVotingNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting not found")
		return
	}
	if err != nil {
		slog.Error("failed to snapshot voting", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	record, err := contest.Winner(voting, votes, time.Now())
	switch err {
	case nil:
	case contest.ErrStillActive:
		middleware.ErrorResponse(w, http.StatusConflict, "Voting is still active")
		return
	case contest.ErrNoMembers:
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting has no members")
		return
	case contest.ErrNoLeader:
		middleware.ErrorResponse(w, http.StatusConflict, "Voting members have no leader")
		return
	default:
		slog.Error("failed to compute winner", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute winner")
		return
	}

	var c models.Character
	err = h.db.QueryRow(`
		SELECT id, last_name, first_name, second_name, birth_date, description
		FROM character WHERE id = $1
	`, record.CharacterID).Scan(&c.ID, &c.LastName, &c.FirstName, &c.SecondName, &c.BirthDate, &c.Description)
	if err != nil {
		slog.Error("failed to query winning character", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	view := characterView(c, time.Now())
	view.VotesAmount = &record.Amount
	middleware.JSONResponse(w, http.StatusOK, view)
}

type votingWithRecords struct {
	voting models.Voting
	votes  []models.VoteRecord
}

// loadVotings reads every voting and its vote records in two queries and
// groups them in memory, so state partitioning happens in one place
// (contest.IsOpen) instead of duplicated SQL date/ceiling filters.
func (h *VotingsHandler) loadVotings() ([]votingWithRecords, error) {
	rows, err := h.db.Query(`
		SELECT id, title, start_date, end_date, max_votes, created_at
		FROM voting
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []votingWithRecords
	index := make(map[string]int)
	for rows.Next() {
		var v models.Voting
		if err := rows.Scan(&v.ID, &v.Title, &v.StartDate, &v.EndDate, &v.MaxVotes, &v.CreatedAt); err != nil {
			return nil, err
		}
		index[v.ID] = len(all)
		all = append(all, votingWithRecords{voting: v})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recordRows, err := h.db.Query(`
		SELECT voting_id, character_id, amount FROM vote_record
	`)
	if err != nil {
		return nil, err
	}
	defer recordRows.Close()

	for recordRows.Next() {
		var vr models.VoteRecord
		if err := recordRows.Scan(&vr.VotingID, &vr.CharacterID, &vr.Amount); err != nil {
			return nil, err
		}
		if i, ok := index[vr.VotingID]; ok {
			all[i].votes = append(all[i].votes, vr)
		}
	}
	return all, recordRows.Err()
}

func votingView(v models.Voting, votes []models.VoteRecord) models.VotingView {
	view := models.VotingView{
		ID:        v.ID,
		Title:     v.Title,
		StartDate: v.StartDate.Format(models.DateFormat),
		EndDate:   v.EndDate.Format(models.DateFormat),
		MaxVotes:  v.MaxVotes,
	}
	if leader, ok := contest.LeaderAmount(votes); ok {
		view.LeaderVotes = &leader
	}
	return view
}

func characterView(c models.Character, now time.Time) models.CharacterView {
	return models.CharacterView{
		ID:          c.ID,
		LastName:    c.LastName,
		FirstName:   c.FirstName,
		SecondName:  c.SecondName,
		Age:         contest.Age(c.BirthDate, now),
		Description: c.Description,
	}
}

// isUniqueViolation matches unique-constraint errors from both supported
// drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
