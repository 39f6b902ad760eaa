package http

import (
	"net/http"

	"github.com/gradewise/gradewise-backend/internal/attendance"
	"github.com/gradewise/gradewise-backend/internal/core/errs"
)

// GET /attendance/percentage?student_id=&schedule_id=[&from=&to=]
func AttendancePercentageHandler(agg *attendance.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		studentID := q.Get("student_id")
		scheduleID := q.Get("schedule_id")
		if studentID == "" || scheduleID == "" {
			writeErr(w, errs.Validation("student_id and schedule_id are required"))
			return
		}
		out, err := agg.Percentage(r.Context(), studentID, scheduleID,
			attendance.Window{From: q.Get("from"), To: q.Get("to")})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /attendance/class-aggregate?class_id=&schedule_id=
func ClassAggregateHandler(agg *attendance.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		scheduleID := q.Get("schedule_id")
		if scheduleID == "" {
			writeErr(w, errs.Validation("schedule_id is required"))
			return
		}
		out, err := agg.ClassAggregate(r.Context(), q.Get("class_id"), scheduleID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
