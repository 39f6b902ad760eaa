package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gradewise/gradewise-backend/internal/core/errs"
	"github.com/gradewise/gradewise-backend/internal/rbac"
	"github.com/gradewise/gradewise-backend/internal/scores"
)

type initScoreSessionReq struct {
	ScheduleID string `json:"schedule_id" validate:"required"`
}

// POST /score-sessions
func InitScoreSessionHandler(wf *scores.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req initScoreSessionReq
		if err := decode(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErr(w, errs.Validation(err.Error()))
			return
		}
		teacherID := rbac.SubjectFromContext(r.Context())
		sess, err := wf.Initialize(r.Context(), req.ScheduleID, teacherID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// GET /score-sessions/{scoreSessionID}
func GetScoreSessionHandler(wf *scores.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "scoreSessionID"))
		sess, rows, err := wf.Get(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session": sess, "scores": rows})
	}
}

type batchScoresReq struct {
	Entries []scores.ScoreEntry `json:"entries" validate:"required,min=1,dive"`
}

// PUT /score-sessions/{scoreSessionID}/scores
func BatchUpsertScoresHandler(wf *scores.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "scoreSessionID"))
		var req batchScoresReq
		if err := decode(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErr(w, errs.Validation(err.Error()))
			return
		}
		teacherID := rbac.SubjectFromContext(r.Context())
		if err := wf.BatchUpsertScores(r.Context(), id, req.Entries, teacherID); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"upserted": len(req.Entries)})
	}
}

// POST /score-sessions/{scoreSessionID}/recalculate
func RecalculateHandler(wf *scores.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "scoreSessionID"))
		teacherID := rbac.SubjectFromContext(r.Context())
		rows, err := wf.Recalculate(r.Context(), id, teacherID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

type submitReq struct {
	Comments string `json:"comments"`
}

// POST /score-sessions/{scoreSessionID}/submit
func SubmitScoresHandler(wf *scores.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "scoreSessionID"))
		var req submitReq
		if err := decode(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		teacherID := rbac.SubjectFromContext(r.Context())
		sess, err := wf.SubmitForReview(r.Context(), id, req.Comments, teacherID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

type reviewReq struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVED REJECTED PENDING"`
	Comments string `json:"comments"`
}

// POST /score-sessions/{scoreSessionID}/review
func ReviewScoresHandler(wf *scores.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "scoreSessionID"))
		var req reviewReq
		if err := decode(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErr(w, errs.Validation(err.Error()))
			return
		}
		reviewerID := rbac.SubjectFromContext(r.Context())
		sess, err := wf.Review(r.Context(), id, scores.State(req.Decision), req.Comments, reviewerID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// POST /score-sessions/{scoreSessionID}/reopen
func ReopenScoresHandler(wf *scores.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "scoreSessionID"))
		ctx := r.Context()
		actorID := rbac.SubjectFromContext(ctx)
		isStaff := rbac.IsStaff(rbac.RoleFromContext(ctx))
		sess, err := wf.Reopen(ctx, id, actorID, isStaff)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}
