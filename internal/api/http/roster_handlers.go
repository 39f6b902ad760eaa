package http

import (
	"net/http"

	"github.com/gradewise/gradewise-backend/internal/roster"
)

// POST /roster/schedules/bulk
// Mirrors schedule facts from the upstream system of record.
func BulkUpsertSchedulesHandler(store *roster.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []roster.Schedule
		if err := decode(r, &rows); err != nil {
			writeErr(w, err)
			return
		}
		n, err := store.UpsertSchedules(r.Context(), rows)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"upserted": n})
	}
}

// POST /roster/enrollments/bulk
func BulkUpsertEnrollmentsHandler(store *roster.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []roster.Enrollment
		if err := decode(r, &rows); err != nil {
			writeErr(w, err)
			return
		}
		n, err := store.UpsertEnrollments(r.Context(), rows)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"upserted": n})
	}
}
