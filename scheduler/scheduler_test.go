// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/ballotbox/ledger"
	"github.com/danielhkuo/ballotbox/testutil"
)

type sentMail struct {
	to         string
	subject    string
	body       string
	attachment []byte
	filename   string
}

// captureMailer records sends and signals on a channel so tests can wait
// for jobs to fire without polling.
type captureMailer struct {
	mu    sync.Mutex
	sends []sentMail
	err   error
	fired chan struct{}
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{fired: make(chan struct{}, 16)}
}

func (m *captureMailer) Send(ctx context.Context, to, subject, body string, attachment []byte, filename string) error {
	m.mu.Lock()
	m.sends = append(m.sends, sentMail{to, subject, body, attachment, filename})
	m.mu.Unlock()
	m.fired <- struct{}{}
	return m.err
}

func (m *captureMailer) sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sends...)
}

func (m *captureMailer) waitForSend(t *testing.T) {
	t.Helper()
	select {
	case <-m.fired:
	case <-time.After(3 * time.Second):
		t.Fatal("job never delivered a report")
	}
}

func openVotingWithMembers(t *testing.T, db *sql.DB) (votingID string) {
	t.Helper()
	now := time.Now().UTC()
	votingID = testutil.CreateTestVoting(t, db, now.AddDate(0, 0, -1), now.AddDate(0, 0, 1), nil)
	a := testutil.CreateTestCharacter(t, db, "Vader")
	b := testutil.CreateTestCharacter(t, db, "Thanos")
	testutil.AddTestMember(t, db, votingID, a, 100)
	testutil.AddTestMember(t, db, votingID, b, 50)
	return votingID
}

func newTestScheduler(db *sql.DB, m *captureMailer) *Scheduler {
	return New(db, ledger.New(db, time.Second), m)
}

func TestSchedule_AssignsHandleOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	votingID := openVotingWithMembers(t, db)
	taskID := testutil.CreateTestExportTask(t, db, votingID, "admin@example.com", time.Now().Add(time.Hour))

	s := newTestScheduler(db, newCaptureMailer())
	defer s.Shutdown()

	jobID, err := s.Schedule(context.Background(), taskID)
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if jobID == "" {
		t.Fatal("expected a job handle")
	}

	// Scheduling again must return the same handle, not issue a second job
	again, err := s.Schedule(context.Background(), taskID)
	if err != nil {
		t.Fatalf("second Schedule failed: %v", err)
	}
	if again != jobID {
		t.Errorf("expected same handle %s, got %s", jobID, again)
	}

	var stored string
	if err := db.QueryRow(`SELECT job_id FROM export_task WHERE id = $1`, taskID).Scan(&stored); err != nil {
		t.Fatal(err)
	}
	if stored != jobID {
		t.Errorf("stored handle %s does not match returned %s", stored, jobID)
	}
}

func TestSchedule_PastInstantRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	votingID := openVotingWithMembers(t, db)
	taskID := testutil.CreateTestExportTask(t, db, votingID, "admin@example.com", time.Now().Add(-time.Minute))

	s := newTestScheduler(db, newCaptureMailer())
	defer s.Shutdown()

	_, err := s.Schedule(context.Background(), taskID)
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("expected ErrInvalidSchedule, got %v", err)
	}
}

func TestSchedule_TaskNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	s := newTestScheduler(db, newCaptureMailer())
	defer s.Shutdown()

	_, err := s.Schedule(context.Background(), "missing")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestJob_FiresAndDelivers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	votingID := openVotingWithMembers(t, db)
	taskID := testutil.CreateTestExportTask(t, db, votingID, "admin@example.com", time.Now().Add(50*time.Millisecond))

	m := newCaptureMailer()
	s := newTestScheduler(db, m)
	defer s.Shutdown()

	if _, err := s.Schedule(context.Background(), taskID); err != nil {
		t.Fatal(err)
	}

	m.waitForSend(t)

	sends := m.sent()
	if len(sends) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(sends))
	}
	mail := sends[0]
	if mail.to != "admin@example.com" {
		t.Errorf("unexpected recipient %s", mail.to)
	}
	if mail.subject != "Voting "+votingID+" report" {
		t.Errorf("unexpected subject %q", mail.subject)
	}
	if !strings.Contains(mail.body, "Is active:         true") {
		t.Errorf("body missing open state:\n%s", mail.body)
	}
	if !strings.Contains(string(mail.attachment), "Vader,100") {
		t.Errorf("attachment missing leader row:\n%s", mail.attachment)
	}

	// Artifact and fired marker are persisted
	var firedAt *time.Time
	var reportName *string
	var artifact []byte
	err := db.QueryRow(`
		SELECT fired_at, report_name, report FROM export_task WHERE id = $1
	`, taskID).Scan(&firedAt, &reportName, &artifact)
	if err != nil {
		t.Fatal(err)
	}
	if firedAt == nil {
		t.Error("expected fired_at to be set")
	}
	if reportName == nil || *reportName != "voting_"+votingID+"_members.csv" {
		t.Errorf("unexpected report name %v", reportName)
	}
	if len(artifact) == 0 {
		t.Error("expected stored report artifact")
	}
}

func TestJob_NoMembersNotice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	now := time.Now().UTC()
	votingID := testutil.CreateTestVoting(t, db, now.AddDate(0, 0, -1), now.AddDate(0, 0, 1), nil)
	taskID := testutil.CreateTestExportTask(t, db, votingID, "admin@example.com", time.Now().Add(50*time.Millisecond))

	m := newCaptureMailer()
	s := newTestScheduler(db, m)
	defer s.Shutdown()

	if _, err := s.Schedule(context.Background(), taskID); err != nil {
		t.Fatal(err)
	}
	m.waitForSend(t)

	mail := m.sent()[0]
	if !strings.Contains(mail.body, "Voting has no members.") {
		t.Errorf("body missing notice:\n%s", mail.body)
	}
	if mail.attachment != nil {
		t.Error("expected no attachment for a memberless voting")
	}
}

func TestJob_DeliveryFailureNotRetried(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	votingID := openVotingWithMembers(t, db)
	taskID := testutil.CreateTestExportTask(t, db, votingID, "admin@example.com", time.Now().Add(50*time.Millisecond))

	m := newCaptureMailer()
	m.err = errors.New("smtp unreachable")
	s := newTestScheduler(db, m)
	defer s.Shutdown()

	if _, err := s.Schedule(context.Background(), taskID); err != nil {
		t.Fatal(err)
	}
	m.waitForSend(t)

	// Give a would-be retry time to show up
	time.Sleep(200 * time.Millisecond)
	if n := len(m.sent()); n != 1 {
		t.Errorf("expected exactly 1 delivery attempt, got %d", n)
	}
}

func TestResume_RearmsUnfiredTasks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	votingID := openVotingWithMembers(t, db)
	taskID := testutil.CreateTestExportTask(t, db, votingID, "admin@example.com", time.Now().Add(-time.Minute))

	// Scheduled in a previous process life, never fired
	_, err := db.Exec(`UPDATE export_task SET job_id = 'job-from-last-boot' WHERE id = $1`, taskID)
	if err != nil {
		t.Fatal(err)
	}

	m := newCaptureMailer()
	s := newTestScheduler(db, m)
	defer s.Shutdown()

	if err := s.Resume(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Past-due task fires immediately
	m.waitForSend(t)
	if len(m.sent()) != 1 {
		t.Fatalf("expected 1 delivery after resume, got %d", len(m.sent()))
	}
}

func TestResume_SkipsFiredTasks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	votingID := openVotingWithMembers(t, db)
	taskID := testutil.CreateTestExportTask(t, db, votingID, "admin@example.com", time.Now().Add(-time.Hour))

	_, err := db.Exec(`
		UPDATE export_task SET job_id = 'old-job', fired_at = $1 WHERE id = $2
	`, time.Now().Add(-time.Hour), taskID)
	if err != nil {
		t.Fatal(err)
	}

	m := newCaptureMailer()
	s := newTestScheduler(db, m)

	if err := s.Resume(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.Shutdown()

	if len(m.sent()) != 0 {
		t.Errorf("fired task was re-run %d times", len(m.sent()))
	}
}
