// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Ballot Box API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, ledger, sched)

# Endpoints

Health:

	GET /health

Voting management (admin, requires X-Admin-Token):

	POST   /votings               - Create voting
	DELETE /votings/{id}          - Delete voting and its report tasks
	POST   /votings/{id}/members  - Register a character as a member

Voting retrieval (public):

	GET /votings                - All votings
	GET /votings/active         - Votings currently accepting votes
	GET /votings/finished       - Votings ended by date or ceiling
	GET /votings/{id}           - Single voting with leader annotation
	GET /votings/{id}/members   - Members ordered by votes
	GET /votings/{id}/winner    - Winner (finished votings only)

Vote casting (public):

	PUT /votings/{id}/votes/{characterID} - Cast one vote

Character roster:

	POST   /characters      - Create character (admin)
	GET    /characters      - List characters
	GET    /characters/{id} - Get character
	DELETE /characters/{id} - Delete character (admin)

Report scheduling (admin, requires X-Admin-Token):

	POST /votings/{id}/reports  - Schedule a deferred report
	GET  /reports               - List report tasks
	GET  /reports/{id}/download - Download a rendered CSV artifact

# Handler Initialization

The router creates handler instances with dependency injection:

	votingsHandler := handlers.NewVotingsHandler(db, cfg, ledger)
	charactersHandler := handlers.NewCharactersHandler(db, cfg)
	votesHandler := handlers.NewVotesHandler(ledger)
	reportsHandler := handlers.NewReportsHandler(db, cfg, sched)

Vote casting goes through the shared ledger so concurrent casts on one
voting stay serialized; report scheduling goes through the shared
scheduler so job handles stay unique.
*/
package router
