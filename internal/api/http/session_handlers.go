package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gradewise/gradewise-backend/internal/attendance"
	"github.com/gradewise/gradewise-backend/internal/core/errs"
	"github.com/gradewise/gradewise-backend/internal/rbac"
)

type createSessionReq struct {
	ScheduleID  string `json:"schedule_id" validate:"required"`
	SessionDate string `json:"session_date" validate:"required"`
}

// POST /sessions
func CreateSessionHandler(svc *attendance.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionReq
		if err := decode(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErr(w, errs.Validation(err.Error()))
			return
		}
		teacherID := rbac.SubjectFromContext(r.Context())
		sess, err := svc.CreateSession(r.Context(), req.ScheduleID, teacherID, req.SessionDate)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sess)
	}
}

type checkInReq struct {
	Token string `json:"token" validate:"required"`
}

// POST /attendance/checkin
func CheckInHandler(svc *attendance.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkInReq
		if err := decode(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErr(w, errs.Validation(err.Error()))
			return
		}
		studentID := rbac.SubjectFromContext(r.Context())
		rec, err := svc.CheckIn(r.Context(), req.Token, studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

type manualMarkReq struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required"`
	Comment   string `json:"comment"`
}

// POST /sessions/{sessionID}/records
func ManualMarkHandler(svc *attendance.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
		var req manualMarkReq
		if err := decode(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErr(w, errs.Validation(err.Error()))
			return
		}
		teacherID := rbac.SubjectFromContext(r.Context())
		rec, err := svc.ManualMark(r.Context(), sessionID, req.StudentID,
			attendance.Status(req.Status), req.Comment, teacherID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// POST /sessions/{sessionID}/finalize
func FinalizeSessionHandler(svc *attendance.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
		teacherID := rbac.SubjectFromContext(r.Context())
		if err := svc.Finalize(r.Context(), sessionID, teacherID); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "finalized"})
	}
}

// POST /sessions/{sessionID}/reopen
func ReopenSessionHandler(svc *attendance.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
		staffID := rbac.SubjectFromContext(r.Context())
		if err := svc.Reopen(r.Context(), sessionID, staffID); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reopened"})
	}
}

// GET /sessions/{sessionID}/records
func ListRecordsHandler(svc *attendance.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(chi.URLParam(r, "sessionID"))
		recs, err := svc.List(r.Context(), sessionID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}
