// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/contest"
	"github.com/danielhkuo/ballotbox/ledger"
	"github.com/danielhkuo/ballotbox/mailer"
	"github.com/danielhkuo/ballotbox/report"
)

var (
	// ErrInvalidSchedule means the task's execute_at is not strictly in
	// the future.
	ErrInvalidSchedule = errors.New("execute_at must be in the future")
	// ErrTaskNotFound means the export task does not exist.
	ErrTaskNotFound = errors.New("export task not found")
)

// Scheduler runs export tasks: each task gets a job handle exactly once
// and fires at most once, at or after its execute_at instant. Job bodies
// run asynchronously, outside any request cycle.
type Scheduler struct {
	db     *sql.DB
	ledger *ledger.Ledger
	mailer mailer.Mailer
	now    func() time.Time

	quit chan struct{}
	wg   sync.WaitGroup
}

func New(db *sql.DB, l *ledger.Ledger, m mailer.Mailer) *Scheduler {
	return &Scheduler{
		db:     db,
		ledger: l,
		mailer: m,
		now:    time.Now,
		quit:   make(chan struct{}),
	}
}

// Schedule assigns a job handle to an export task and arms its timer.
//
// Handle assignment is write-once: the job_id column is set through a
// compare-and-set UPDATE guarded by job_id IS NULL, so calling Schedule
// twice (or concurrently) on the same task returns the same handle and
// never arms a second timer. ErrInvalidSchedule if execute_at is not
// strictly in the future at first assignment.
func (s *Scheduler) Schedule(ctx context.Context, taskID string) (string, error) {
	var executeAt time.Time
	var existing *string
	err := s.db.QueryRowContext(ctx, `
		SELECT execute_at, job_id FROM export_task WHERE id = $1
	`, taskID).Scan(&executeAt, &existing)
	if err == sql.ErrNoRows {
		return "", ErrTaskNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query export task: %w", err)
	}

	if existing != nil {
		return *existing, nil
	}

	now := s.now()
	if !executeAt.After(now) {
		return "", ErrInvalidSchedule
	}

	jobID := uuid.NewString()
	res, err := s.db.ExecContext(ctx, `
		UPDATE export_task SET job_id = $1 WHERE id = $2 AND job_id IS NULL
	`, jobID, taskID)
	if err != nil {
		return "", fmt.Errorf("failed to assign job handle: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read job assignment result: %w", err)
	}
	if affected == 0 {
		// Lost the assignment race; the winner's handle is authoritative.
		var winner string
		err := s.db.QueryRowContext(ctx, `
			SELECT job_id FROM export_task WHERE id = $1
		`, taskID).Scan(&winner)
		if err != nil {
			return "", fmt.Errorf("failed to read winning job handle: %w", err)
		}
		return winner, nil
	}

	s.arm(jobID, taskID, executeAt.Sub(now))
	slog.Info("report scheduled", "task_id", taskID, "job_id", jobID, "execute_at", executeAt)
	return jobID, nil
}

// Resume re-arms timers for tasks that were scheduled but had not fired
// when the process last stopped. Past-due tasks fire immediately.
func (s *Scheduler) Resume(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, execute_at
		FROM export_task
		WHERE job_id IS NOT NULL AND fired_at IS NULL
	`)
	if err != nil {
		return fmt.Errorf("failed to query pending export tasks: %w", err)
	}
	defer rows.Close()

	now := s.now()
	count := 0
	for rows.Next() {
		var taskID, jobID string
		var executeAt time.Time
		if err := rows.Scan(&taskID, &jobID, &executeAt); err != nil {
			return fmt.Errorf("failed to scan pending export task: %w", err)
		}
		delay := executeAt.Sub(now)
		if delay < 0 {
			delay = 0
		}
		s.arm(jobID, taskID, delay)
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read pending export tasks: %w", err)
	}

	if count > 0 {
		slog.Info("resumed pending report jobs", "count", count)
	}
	return nil
}

// Shutdown stops armed timers and waits for in-flight jobs to finish.
func (s *Scheduler) Shutdown() {
	close(s.quit)
	s.wg.Wait()
}

func (s *Scheduler) arm(jobID, taskID string, delay time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			s.run(jobID, taskID)
		case <-s.quit:
		}
	}()
}

// run is the job body. Render or delivery failures are logged and the job
// ends; there is no retry in this service.
func (s *Scheduler) run(jobID, taskID string) {
	ctx := context.Background()

	// At-most-once guard: only the first claimant fires.
	res, err := s.db.ExecContext(ctx, `
		UPDATE export_task SET fired_at = $1 WHERE id = $2 AND fired_at IS NULL
	`, s.now(), taskID)
	if err != nil {
		slog.Error("failed to mark export task fired", "task_id", taskID, "job_id", jobID, "error", err)
		return
	}
	if affected, err := res.RowsAffected(); err != nil || affected == 0 {
		return
	}

	var votingID, email string
	err = s.db.QueryRowContext(ctx, `
		SELECT voting_id, email FROM export_task WHERE id = $1
	`, taskID).Scan(&votingID, &email)
	if err != nil {
		slog.Error("failed to load export task", "task_id", taskID, "job_id", jobID, "error", err)
		return
	}

	voting, votes, err := s.ledger.Snapshot(ctx, votingID)
	if err == ledger.ErrVotingNotFound {
		slog.Warn("voting deleted before report fired", "task_id", taskID, "voting_id", votingID)
		return
	}
	if err != nil {
		slog.Error("failed to snapshot voting for report", "task_id", taskID, "error", err)
		return
	}

	members, err := s.memberNames(ctx, votingID)
	if err != nil {
		slog.Error("failed to load member names for report", "task_id", taskID, "error", err)
		return
	}

	open := contest.IsOpen(voting, votes, s.now())
	rep, err := report.Build(voting, votes, members, open)
	if err != nil {
		slog.Warn("couldn't render report", "task_id", taskID, "error", err)
		return
	}

	if rep.Attachment != nil {
		_, err = s.db.ExecContext(ctx, `
			UPDATE export_task SET report = $1, report_name = $2 WHERE id = $3
		`, rep.Attachment, rep.AttachmentName, taskID)
		if err != nil {
			slog.Error("failed to store report artifact", "task_id", taskID, "error", err)
			return
		}
	}

	if err := s.mailer.Send(ctx, email, rep.Subject, rep.Body, rep.Attachment, rep.AttachmentName); err != nil {
		slog.Error("failed to deliver report", "task_id", taskID, "job_id", jobID, "error", err)
		return
	}

	slog.Info("report delivered", "task_id", taskID, "job_id", jobID, "voting_id", votingID)
}

func (s *Scheduler) memberNames(ctx context.Context, votingID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.last_name
		FROM character c
		JOIN vote_record vr ON vr.character_id = c.id
		WHERE vr.voting_id = $1
	`, votingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query member names: %w", err)
	}
	defer rows.Close()

	members := make(map[string]string)
	for rows.Next() {
		var id, lastName string
		if err := rows.Scan(&id, &lastName); err != nil {
			return nil, fmt.Errorf("failed to scan member name: %w", err)
		}
		members[id] = lastName
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read member names: %w", err)
	}
	return members, nil
}
