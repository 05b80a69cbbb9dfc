// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Ballot Box API.

# Handler Types

Each handler is a struct with its dependencies injected via constructor:

  - VotingsHandler: Voting lifecycle, membership, and winner retrieval
  - CharactersHandler: Character roster management
  - VotesHandler: Vote casting through the ledger
  - ReportsHandler: Deferred report scheduling and artifact download

Handlers are created via constructor functions:

	votingsHandler := handlers.NewVotingsHandler(db, cfg, ledger)
	votesHandler := handlers.NewVotesHandler(ledger)
	reportsHandler := handlers.NewReportsHandler(db, cfg, sched)

# Voting Lifecycle

A voting is open on the days strictly after its start date through its end
date inclusive, and only while no member has reached the vote ceiling:

	POST   /votings               → CreateVoting (admin)
	GET    /votings/active        → ListActive
	GET    /votings/finished      → ListFinished
	GET    /votings/{id}/winner   → Winner (finished votings only)

Admin operations require the X-Admin-Token header.

# Vote Casting

Votes go through the ledger, which serializes concurrent casts per voting:

	PUT /votings/{id}/votes/{characterID} → CastVote

Outcomes map to statuses: 201 on success, 404 unknown voting, 409 closed
voting, 400 non-member, 503 lock contention.

# Reports

Report tasks fire once at a scheduled future instant and email a CSV of the
member standings. The rendered artifact stays downloadable afterwards:

	POST /votings/{id}/reports   → CreateReportTask (admin)
	GET  /reports                → ListReportTasks (admin)
	GET  /reports/{id}/download  → DownloadReport (admin)
*/
package handlers
