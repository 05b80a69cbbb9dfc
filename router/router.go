// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/handlers"
	"github.com/danielhkuo/ballotbox/ledger"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/scheduler"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, l *ledger.Ledger, sched *scheduler.Scheduler) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	votingsHandler := handlers.NewVotingsHandler(db, cfg, l)
	charactersHandler := handlers.NewCharactersHandler(db, cfg)
	votesHandler := handlers.NewVotesHandler(l)
	reportsHandler := handlers.NewReportsHandler(db, cfg, sched)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Voting management (admin operations)
	mux.HandleFunc("POST /votings", middleware.WithLogging(votingsHandler.CreateVoting))
	mux.HandleFunc("DELETE /votings/{id}", middleware.WithLogging(votingsHandler.DeleteVoting))
	mux.HandleFunc("POST /votings/{id}/members", middleware.WithLogging(votingsHandler.AddMember))

	// Voting retrieval (public)
	mux.HandleFunc("GET /votings", middleware.WithLogging(votingsHandler.ListVotings))
	mux.HandleFunc("GET /votings/active", middleware.WithLogging(votingsHandler.ListActive))
	mux.HandleFunc("GET /votings/finished", middleware.WithLogging(votingsHandler.ListFinished))
	mux.HandleFunc("GET /votings/{id}", middleware.WithLogging(votingsHandler.GetVoting))
	mux.HandleFunc("GET /votings/{id}/members", middleware.WithLogging(votingsHandler.ListMembers))
	mux.HandleFunc("GET /votings/{id}/winner", middleware.WithLogging(votingsHandler.Winner))

	// Vote casting (public)
	mux.HandleFunc("PUT /votings/{id}/votes/{characterID}", middleware.WithLogging(votesHandler.CastVote))

	// Character roster
	mux.HandleFunc("POST /characters", middleware.WithLogging(charactersHandler.CreateCharacter))
	mux.HandleFunc("GET /characters", middleware.WithLogging(charactersHandler.ListCharacters))
	mux.HandleFunc("GET /characters/{id}", middleware.WithLogging(charactersHandler.GetCharacter))
	mux.HandleFunc("DELETE /characters/{id}", middleware.WithLogging(charactersHandler.DeleteCharacter))

	// Report scheduling (admin operations)
	mux.HandleFunc("POST /votings/{id}/reports", middleware.WithLogging(reportsHandler.CreateReportTask))
	mux.HandleFunc("GET /reports", middleware.WithLogging(reportsHandler.ListReportTasks))
	mux.HandleFunc("GET /reports/{id}/download", middleware.WithLogging(reportsHandler.DownloadReport))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballotbox API v1"))
	})

	return mux
}
