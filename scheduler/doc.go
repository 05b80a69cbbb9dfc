// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package scheduler runs deferred report jobs for export tasks.

# Scheduling

	sched := scheduler.New(db, ledger, mailer)
	jobID, err := sched.Schedule(ctx, taskID)

Schedule assigns the task's job handle exactly once (compare-and-set on
the job_id column) and arms an in-process timer for the task's execute_at
instant. Calling it again - or concurrently - returns the already-assigned
handle and never arms a second timer. ErrInvalidSchedule rejects instants
that are not strictly in the future.

# Job Body

When the timer fires, the job claims the task (fired_at, at-most-once),
snapshots the voting and its vote records through the ledger, evaluates
open/closed with the same contest logic the API uses, renders the report,
stores the CSV artifact on the task, and hands delivery to the Mailer.
Render and delivery failures are logged and the job ends; retry policy
belongs to an external supervisor, not this service.

# Restarts

Timers live in-process, so Resume re-arms every scheduled-but-unfired task
at boot (past-due tasks fire immediately). A task that already fired is
never re-armed. Shutdown stops armed timers and waits for in-flight jobs.
*/
package scheduler
