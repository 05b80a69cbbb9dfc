// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/ballotbox/ledger"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

type VotesHandler struct {
	ledger *ledger.Ledger
}

func NewVotesHandler(l *ledger.Ledger) *VotesHandler {
	return &VotesHandler{ledger: l}
}

// CastVote handles PUT /votings/{id}/votes/{characterID}
//
// Domain outcomes map to statuses: missing voting 404, closed voting 409,
// non-member character 400, lock contention 503. Contention is the only
// retryable one.
func (h *VotesHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	votingID := r.PathValue("id")
	characterID := r.PathValue("characterID")
	if votingID == "" || characterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voting_id and character_id are required")
		return
	}

	amount, err := h.ledger.CastVote(r.Context(), votingID, characterID, time.Now())
	switch err {
	case nil:
	case ledger.ErrVotingNotFound:
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting not found")
		return
	case ledger.ErrVotingClosed:
		middleware.ErrorResponse(w, http.StatusConflict, "Voting is finished")
		return
	case ledger.ErrNotAMember:
		middleware.ErrorResponse(w, http.StatusBadRequest, "Character is not a member of this voting")
		return
	case ledger.ErrContention:
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Voting is busy, retry")
		return
	default:
		slog.Error("failed to cast vote", "voting_id", votingID, "character_id", characterID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	slog.Info("vote cast",
		"voting_id", votingID,
		"character_id", characterID,
		"amount", amount,
		"remote", middleware.GetClientIP(r),
	)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		VotingID:    votingID,
		CharacterID: characterID,
		Amount:      amount,
	})
}
