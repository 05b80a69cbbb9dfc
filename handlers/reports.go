// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/scheduler"
)

type ReportsHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	sched *scheduler.Scheduler
}

func NewReportsHandler(db *sql.DB, cfg cliparse.Config, sched *scheduler.Scheduler) *ReportsHandler {
	return &ReportsHandler{db: db, cfg: cfg, sched: sched}
}

// CreateReportTask handles POST /votings/{id}/reports
//
// Persists the export task first, then asks the scheduler for a job handle.
// If scheduling is rejected the row is removed again so a failed request
// never leaves an unarmed task behind.
func (h *ReportsHandler) CreateReportTask(w http.ResponseWriter, r *http.Request) {
	if err := auth.ValidateAdminToken(r.Header.Get("X-Admin-Token"), h.cfg.AdminToken); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin token")
		return
	}

	votingID := r.PathValue("id")
	if votingID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voting_id is required")
		return
	}

	var req models.ScheduleReportRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if req.ExecuteAt.IsZero() {
		middleware.ErrorResponse(w, http.StatusBadRequest, "execute_at is required")
		return
	}
	if !req.ExecuteAt.After(time.Now()) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "execute_at must be in the future")
		return
	}

	var exists bool
	err := h.db.QueryRowContext(r.Context(),
		"SELECT EXISTS(SELECT 1 FROM voting WHERE id = $1)", votingID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check voting", "voting_id", votingID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to schedule report")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voting not found")
		return
	}

	taskID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate task ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to schedule report")
		return
	}

	_, err = h.db.ExecContext(r.Context(),
		"INSERT INTO export_task (id, voting_id, email, execute_at, created_at) VALUES ($1, $2, $3, $4, $5)",
		taskID, votingID, req.Email, req.ExecuteAt.UTC(), time.Now())
	if err != nil {
		slog.Error("failed to insert export task", "voting_id", votingID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to schedule report")
		return
	}

	jobID, err := h.sched.Schedule(r.Context(), taskID)
	if err != nil {
		if _, delErr := h.db.ExecContext(r.Context(), "DELETE FROM export_task WHERE id = $1", taskID); delErr != nil {
			slog.Error("failed to clean up export task", "task_id", taskID, "error", delErr)
		}
		if err == scheduler.ErrInvalidSchedule {
			middleware.ErrorResponse(w, http.StatusBadRequest, "execute_at must be in the future")
			return
		}
		slog.Error("failed to schedule report", "task_id", taskID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to schedule report")
		return
	}

	slog.Info("report scheduled",
		"task_id", taskID,
		"voting_id", votingID,
		"execute_at", req.ExecuteAt.UTC(),
		"remote", middleware.GetClientIP(r),
	)

	middleware.JSONResponse(w, http.StatusCreated, models.ScheduleReportResponse{
		TaskID: taskID,
		JobID:  jobID,
	})
}

// ListReportTasks handles GET /reports
func (h *ReportsHandler) ListReportTasks(w http.ResponseWriter, r *http.Request) {
	if err := auth.ValidateAdminToken(r.Header.Get("X-Admin-Token"), h.cfg.AdminToken); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin token")
		return
	}

	rows, err := h.db.QueryContext(r.Context(),
		`SELECT id, voting_id, email, execute_at, job_id, fired_at, report_name, created_at
		 FROM export_task ORDER BY created_at`)
	if err != nil {
		slog.Error("failed to query export tasks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list report tasks")
		return
	}
	defer rows.Close()

	tasks := []models.ExportTaskView{}
	for rows.Next() {
		var t models.ExportTaskView
		var firedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.VotingID, &t.Email, &t.ExecuteAt, &t.JobID, &firedAt, &t.ReportName, &t.CreatedAt); err != nil {
			slog.Error("failed to scan export task", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list report tasks")
			return
		}
		if firedAt.Valid {
			fired := firedAt.Time
			t.FiredAt = &fired
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate export tasks", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to list report tasks")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, tasks)
}

// DownloadReport handles GET /reports/{id}/download
//
// Serves the stored CSV artifact. A task that exists but has not fired yet
// has no artifact and reports 404 like a missing task.
func (h *ReportsHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	if err := auth.ValidateAdminToken(r.Header.Get("X-Admin-Token"), h.cfg.AdminToken); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin token")
		return
	}

	taskID := r.PathValue("id")
	if taskID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "task_id is required")
		return
	}

	var report []byte
	var reportName sql.NullString
	err := h.db.QueryRowContext(r.Context(),
		"SELECT report, report_name FROM export_task WHERE id = $1", taskID).
		Scan(&report, &reportName)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Report not found")
		return
	}
	if err != nil {
		slog.Error("failed to query report", "task_id", taskID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to download report")
		return
	}
	if report == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Report not generated yet")
		return
	}

	name := "report.csv"
	if reportName.Valid && reportName.String != "" {
		name = reportName.String
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report); err != nil {
		slog.Error("failed to write report body", "task_id", taskID, "error", err)
	}
}
