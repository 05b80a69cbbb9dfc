// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/ballotbox/ledger"
	"github.com/danielhkuo/ballotbox/mailer"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/scheduler"
	"github.com/danielhkuo/ballotbox/testutil"
)

func TestCreateReportTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	l := ledger.New(db, cfg.VoteLockWait)
	sched := scheduler.New(db, l, mailer.Log{})
	defer sched.Shutdown()
	handler := NewReportsHandler(db, cfg, sched)

	votingID := testutil.CreateTestVoting(t, db, day(-1), day(+5), nil)

	tests := []struct {
		name           string
		votingID       string
		adminToken     string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name:       "valid report schedule",
			votingID:   votingID,
			adminToken: cfg.AdminToken,
			requestBody: models.ScheduleReportRequest{
				Email:     "admin@example.com",
				ExecuteAt: time.Now().Add(time.Hour),
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:       "past instant",
			votingID:   votingID,
			adminToken: cfg.AdminToken,
			requestBody: models.ScheduleReportRequest{
				Email:     "admin@example.com",
				ExecuteAt: time.Now().Add(-time.Minute),
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:       "missing email",
			votingID:   votingID,
			adminToken: cfg.AdminToken,
			requestBody: models.ScheduleReportRequest{
				ExecuteAt: time.Now().Add(time.Hour),
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid email",
			votingID:   votingID,
			adminToken: cfg.AdminToken,
			requestBody: models.ScheduleReportRequest{
				Email:     "not-an-email",
				ExecuteAt: time.Now().Add(time.Hour),
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:       "missing execute_at",
			votingID:   votingID,
			adminToken: cfg.AdminToken,
			requestBody: models.ScheduleReportRequest{
				Email: "admin@example.com",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown voting",
			votingID:   "missing",
			adminToken: cfg.AdminToken,
			requestBody: models.ScheduleReportRequest{
				Email:     "admin@example.com",
				ExecuteAt: time.Now().Add(time.Hour),
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:       "invalid admin token",
			votingID:   votingID,
			adminToken: "wrong-token",
			requestBody: models.ScheduleReportRequest{
				Email:     "admin@example.com",
				ExecuteAt: time.Now().Add(time.Hour),
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/votings/"+tt.votingID+"/reports", tt.requestBody,
				map[string]string{"X-Admin-Token": tt.adminToken})
			req.SetPathValue("id", tt.votingID)
			w := httptest.NewRecorder()

			handler.CreateReportTask(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.ScheduleReportResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.TaskID == "" {
					t.Error("Expected non-empty task_id")
				}
				if resp.JobID == "" {
					t.Error("Expected non-empty job_id")
				}

				// The persisted task carries the scheduler's handle.
				var jobID string
				err := db.QueryRow("SELECT job_id FROM export_task WHERE id = $1", resp.TaskID).Scan(&jobID)
				if err != nil {
					t.Fatalf("Failed to query export task: %v", err)
				}
				if jobID != resp.JobID {
					t.Errorf("Expected stored job_id %s, got %s", resp.JobID, jobID)
				}
			}
		})
	}

	// Only the successful request leaves a task behind.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM export_task").Scan(&count); err != nil {
		t.Fatalf("Failed to count export tasks: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 export task, got %d", count)
	}
}

func TestListReportTasks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	l := ledger.New(db, cfg.VoteLockWait)
	sched := scheduler.New(db, l, mailer.Log{})
	defer sched.Shutdown()
	handler := NewReportsHandler(db, cfg, sched)

	votingID := testutil.CreateTestVoting(t, db, day(-1), day(+5), nil)
	taskID := testutil.CreateTestExportTask(t, db, votingID, "admin@example.com", day(+1))

	req := testutil.MakeRequest("GET", "/reports", nil,
		map[string]string{"X-Admin-Token": cfg.AdminToken})
	w := httptest.NewRecorder()
	handler.ListReportTasks(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var tasks []models.ExportTaskView
	testutil.AssertJSON(t, w, &tasks)

	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(tasks))
	}
	if tasks[0].ID != taskID {
		t.Errorf("Expected task ID %s, got %s", taskID, tasks[0].ID)
	}
	if tasks[0].JobID != nil {
		t.Error("Unscheduled task should have no job_id")
	}
	if tasks[0].FiredAt != nil {
		t.Error("Unfired task should have no fired_at")
	}

	w = httptest.NewRecorder()
	handler.ListReportTasks(w, testutil.MakeRequest("GET", "/reports", nil, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestDownloadReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	l := ledger.New(db, cfg.VoteLockWait)
	sched := scheduler.New(db, l, mailer.Log{})
	defer sched.Shutdown()
	handler := NewReportsHandler(db, cfg, sched)

	votingID := testutil.CreateTestVoting(t, db, day(-1), day(+5), nil)
	taskID := testutil.CreateTestExportTask(t, db, votingID, "admin@example.com", day(+1))

	download := func(id, token string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("GET", "/reports/"+id+"/download", nil,
			map[string]string{"X-Admin-Token": token})
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.DownloadReport(w, req)
		return w
	}

	// Task exists but the job has not fired yet.
	testutil.AssertStatus(t, download(taskID, cfg.AdminToken), http.StatusNotFound)

	csv := "Last name,Votes\r\nVader,100\r\n"
	_, err := db.Exec("UPDATE export_task SET report = $1, report_name = $2 WHERE id = $3",
		[]byte(csv), "voting_members.csv", taskID)
	if err != nil {
		t.Fatalf("Failed to store report artifact: %v", err)
	}

	w := download(taskID, cfg.AdminToken)
	testutil.AssertStatus(t, w, http.StatusOK)
	if got := w.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("Expected Content-Type text/csv, got %s", got)
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="voting_members.csv"` {
		t.Errorf("Unexpected Content-Disposition: %s", got)
	}
	if w.Body.String() != csv {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}

	testutil.AssertStatus(t, download("missing", cfg.AdminToken), http.StatusNotFound)
	testutil.AssertStatus(t, download(taskID, "wrong-token"), http.StatusUnauthorized)
}
