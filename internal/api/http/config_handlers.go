package http

import (
	"math"
	"net/http"

	"github.com/gradewise/gradewise-backend/internal/core/errs"
	"github.com/gradewise/gradewise-backend/internal/grading"
	"github.com/gradewise/gradewise-backend/internal/scoreconfig"
)

type configReq struct {
	AttendancePct float64 `json:"attendance_pct" validate:"gte=0,lte=100"`
	AssignmentPct float64 `json:"assignment_pct" validate:"gte=0,lte=100"`
	MidtermPct    float64 `json:"midterm_pct" validate:"gte=0,lte=100"`
	FinalPct      float64 `json:"final_pct" validate:"gte=0,lte=100"`
}

type configResp struct {
	ID            string  `json:"id"`
	AttendancePct float64 `json:"attendance_pct"`
	AssignmentPct float64 `json:"assignment_pct"`
	MidtermPct    float64 `json:"midterm_pct"`
	FinalPct      float64 `json:"final_pct"`
	Status        string  `json:"status"`
	CreatedAt     int64   `json:"created_at"`
}

// pctToHundredths converts e.g. 12.50 -> 1250, rejecting values with
// more than 2 decimal places so the exact-sum check stays exact.
func pctToHundredths(v float64) (int, error) {
	scaled := v * 100
	rounded := math.Round(scaled)
	if math.Abs(scaled-rounded) > 1e-6 {
		return 0, errs.Validation("percentages may have at most 2 decimal places")
	}
	return int(rounded), nil
}

func toConfigResp(c scoreconfig.Config) configResp {
	return configResp{
		ID:            c.ID,
		AttendancePct: float64(c.AttendancePct100) / 100,
		AssignmentPct: float64(c.AssignmentPct100) / 100,
		MidtermPct:    float64(c.MidtermPct100) / 100,
		FinalPct:      float64(c.FinalPct100) / 100,
		Status:        c.Status,
		CreatedAt:     c.CreatedAt,
	}
}

// PUT /score-config
func UpdateConfigHandler(reg *scoreconfig.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req configReq
		if err := decode(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeErr(w, errs.Validation(err.Error()))
			return
		}
		var weights grading.Config
		var err error
		if weights.AttendancePct100, err = pctToHundredths(req.AttendancePct); err != nil {
			writeErr(w, err)
			return
		}
		if weights.AssignmentPct100, err = pctToHundredths(req.AssignmentPct); err != nil {
			writeErr(w, err)
			return
		}
		if weights.MidtermPct100, err = pctToHundredths(req.MidtermPct); err != nil {
			writeErr(w, err)
			return
		}
		if weights.FinalPct100, err = pctToHundredths(req.FinalPct); err != nil {
			writeErr(w, err)
			return
		}
		cfg, err := reg.CreateOrUpdate(r.Context(), weights)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toConfigResp(cfg))
	}
}

// GET /score-config
func GetConfigHandler(reg *scoreconfig.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := reg.Get(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toConfigResp(cfg))
	}
}
