// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

type CharactersHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewCharactersHandler(db *sql.DB, cfg cliparse.Config) *CharactersHandler {
	return &CharactersHandler{db: db, cfg: cfg}
}

// CreateCharacter handles POST /characters
func (h *CharactersHandler) CreateCharacter(w http.ResponseWriter, r *http.Request) {
	if err := auth.ValidateAdminToken(r.Header.Get("X-Admin-Token"), h.cfg.AdminToken); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin token")
		return
	}

	var req models.CreateCharacterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.LastName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "last_name is required")
		return
	}
	birthDate, err := time.Parse(models.DateFormat, req.BirthDate)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "birth_date must be YYYY-MM-DD")
		return
	}

	characterID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate character ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create character")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO character (id, last_name, first_name, second_name, birth_date, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, characterID, req.LastName, req.FirstName, req.SecondName, birthDate, req.Description, time.Now())

	if err != nil {
		if isUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Last name already taken")
			return
		}
		slog.Error("failed to insert character", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create character")
		return
	}

	slog.Info("character created", "character_id", characterID, "last_name", req.LastName)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateCharacterResponse{
		CharacterID: characterID,
	})
}

// ListCharacters handles GET /characters
func (h *CharactersHandler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, last_name, first_name, second_name, birth_date, description
		FROM character
		ORDER BY created_at
	`)
	if err != nil {
		slog.Error("failed to query characters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	now := time.Now()
	views := []models.CharacterView{}
	for rows.Next() {
		var c models.Character
		if err := rows.Scan(&c.ID, &c.LastName, &c.FirstName, &c.SecondName, &c.BirthDate, &c.Description); err != nil {
			slog.Error("failed to scan character", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		views = append(views, characterView(c, now))
	}

	middleware.JSONResponse(w, http.StatusOK, views)
}

// GetCharacter handles GET /characters/{id}
func (h *CharactersHandler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	characterID := r.PathValue("id")
	if characterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "character_id is required")
		return
	}

	var c models.Character
	err := h.db.QueryRow(`
		SELECT id, last_name, first_name, second_name, birth_date, description
		FROM character WHERE id = $1
	`, characterID).Scan(&c.ID, &c.LastName, &c.FirstName, &c.SecondName, &c.BirthDate, &c.Description)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Character not found")
		return
	}
	if err != nil {
		slog.Error("failed to query character", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, characterView(c, time.Now()))
}

// DeleteCharacter handles DELETE /characters/{id}
// The character's vote records cascade away with it.
func (h *CharactersHandler) DeleteCharacter(w http.ResponseWriter, r *http.Request) {
	if err := auth.ValidateAdminToken(r.Header.Get("X-Admin-Token"), h.cfg.AdminToken); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin token")
		return
	}

	characterID := r.PathValue("id")
	if characterID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "character_id is required")
		return
	}

	res, err := h.db.Exec(`DELETE FROM character WHERE id = $1`, characterID)
	if err != nil {
		slog.Error("failed to delete character", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete character")
		return
	}
	affected, err := res.RowsAffected()
	if err != nil {
		slog.Error("failed to read delete result", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete character")
		return
	}
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Character not found")
		return
	}

	slog.Info("character deleted", "character_id", characterID)
	w.WriteHeader(http.StatusNoContent)
}
