package http

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gradewise/gradewise-backend/internal/core/errs"
)

type updateUserRoleReq struct {
	Role string `json:"role" validate:"required,oneof=student teacher staff admin"`
}

// AdminUpdateUserRoleHandler changes a user's role. The path segment
// accepts either the row id or the username. Demoting the last admin
// is refused so an instance cannot lock itself out of administration.
func AdminUpdateUserRoleHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := chi.URLParam(r, "userID")
		if target == "" {
			writeErr(w, errs.ValidationField("userID", "required"))
			return
		}
		var req updateUserRoleReq
		if err := decode(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		req.Role = strings.ToLower(strings.TrimSpace(req.Role))
		if err := validate.Struct(req); err != nil {
			writeErr(w, errs.ValidationField("role", "must be student, teacher, staff or admin"))
			return
		}

		var id, curRole string
		err := db.QueryRowContext(r.Context(),
			`SELECT id, role FROM users WHERE id=$1 OR username=$1`, target).Scan(&id, &curRole)
		if errors.Is(err, sql.ErrNoRows) {
			writeErr(w, errs.NotFound("user", target))
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		if curRole == "admin" && req.Role != "admin" {
			var admins int
			if err := db.QueryRowContext(r.Context(),
				`SELECT COUNT(1) FROM users WHERE role=$1`, "admin").Scan(&admins); err != nil {
				writeErr(w, err)
				return
			}
			if admins <= 1 {
				writeErr(w, errs.Conflict("cannot demote the last admin"))
				return
			}
		}

		if _, err := db.ExecContext(r.Context(),
			`UPDATE users SET role=$2 WHERE id=$1`, id, req.Role); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "role": req.Role})
	}
}
