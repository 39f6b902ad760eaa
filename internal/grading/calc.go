// Package grading holds the pure composite-score math: weighted totals,
// letter banding and 4.0-scale grade points. No storage, no clock.
package grading

import "math"

// Letter is a final letter grade.
type Letter string

const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
	LetterD Letter = "D"
	LetterF Letter = "F"
)

// Config is a weight set over the four score components. Weights are
// integer hundredths of a percent (10.00% -> 1000) so that the
// "weights total exactly 100.00" invariant is an integer comparison.
type Config struct {
	AttendancePct100 int `json:"attendance_pct100"`
	AssignmentPct100 int `json:"assignment_pct100"`
	MidtermPct100    int `json:"midterm_pct100"`
	FinalPct100      int `json:"final_pct100"`
}

// TotalPct100 is 100.00% in hundredths.
const TotalPct100 = 10000

// Sum returns the combined weight in hundredths.
func (c Config) Sum() int {
	return c.AttendancePct100 + c.AssignmentPct100 + c.MidtermPct100 + c.FinalPct100
}

// Components are the four per-student scores, each on a 0-100 scale.
type Components struct {
	Attendance float64 `json:"attendance"`
	Assignment float64 `json:"assignment"`
	Midterm    float64 `json:"midterm"`
	Final      float64 `json:"final"`
}

// Compose combines the components under cfg and rounds to 2 decimals.
// Monotonic non-decreasing in every component for a fixed cfg.
func Compose(comp Components, cfg Config) float64 {
	total := comp.Attendance*float64(cfg.AttendancePct100) +
		comp.Assignment*float64(cfg.AssignmentPct100) +
		comp.Midterm*float64(cfg.MidtermPct100) +
		comp.Final*float64(cfg.FinalPct100)
	return Round2(total / TotalPct100)
}

// GradeOf bands a total score into a letter. The lower bound of each
// band is inclusive: exactly 90.00 is an A, 89.99 a B.
func GradeOf(total float64) Letter {
	switch {
	case total >= 90:
		return LetterA
	case total >= 80:
		return LetterB
	case total >= 70:
		return LetterC
	case total >= 60:
		return LetterD
	default:
		return LetterF
	}
}

// GradePoints maps a letter onto the 4.0 scale.
func GradePoints(l Letter) float64 {
	switch l {
	case LetterA:
		return 4.0
	case LetterB:
		return 3.0
	case LetterC:
		return 2.0
	case LetterD:
		return 1.0
	default:
		return 0.0
	}
}

// Round2 rounds half away from zero to 2 decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
