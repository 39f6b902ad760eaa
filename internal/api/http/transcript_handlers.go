package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gradewise/gradewise-backend/internal/rbac"
	"github.com/gradewise/gradewise-backend/internal/transcript"
)

// GET /transcripts/{studentID}
// Students may only read their own transcript; staff read any.
func GetTranscriptHandler(b *transcript.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := strings.TrimSpace(chi.URLParam(r, "studentID"))
		ctx := r.Context()
		role := rbac.RoleFromContext(ctx)
		sub := rbac.SubjectFromContext(ctx)
		if role == "student" && sub != studentID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		t, err := b.Build(ctx, studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}
