package grading

import "testing"

var stdWeights = Config{
	AttendancePct100: 1000,
	AssignmentPct100: 3000,
	MidtermPct100:    3000,
	FinalPct100:      3000,
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name string
		comp Components
		want float64
	}{
		{"all zero", Components{}, 0},
		{"all perfect", Components{100, 100, 100, 100}, 100},
		{"mixed", Components{Attendance: 80, Assignment: 0, Midterm: 70, Final: 90}, 56},
		{"fractional", Components{Attendance: 85.5, Assignment: 90.25, Midterm: 77.75, Final: 88}, 85.35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(tt.comp, stdWeights)
			if got != tt.want {
				t.Fatalf("Compose(%+v) = %v, want %v", tt.comp, got, tt.want)
			}
		})
	}
}

func TestComposeMonotonic(t *testing.T) {
	base := Components{Attendance: 50, Assignment: 50, Midterm: 50, Final: 50}
	baseline := Compose(base, stdWeights)
	bumps := []Components{
		{Attendance: 60, Assignment: 50, Midterm: 50, Final: 50},
		{Attendance: 50, Assignment: 60, Midterm: 50, Final: 50},
		{Attendance: 50, Assignment: 50, Midterm: 60, Final: 50},
		{Attendance: 50, Assignment: 50, Midterm: 50, Final: 60},
	}
	for _, c := range bumps {
		if got := Compose(c, stdWeights); got < baseline {
			t.Fatalf("raising a component lowered the total: %v < %v", got, baseline)
		}
	}
}

func TestComposeZeroWeightComponentIgnored(t *testing.T) {
	cfg := Config{AttendancePct100: 0, AssignmentPct100: 4000, MidtermPct100: 3000, FinalPct100: 3000}
	a := Compose(Components{Attendance: 0, Assignment: 80, Midterm: 80, Final: 80}, cfg)
	b := Compose(Components{Attendance: 100, Assignment: 80, Midterm: 80, Final: 80}, cfg)
	if a != b {
		t.Fatalf("zero-weight component changed the total: %v vs %v", a, b)
	}
}

func TestGradeOfBoundaries(t *testing.T) {
	tests := []struct {
		total float64
		want  Letter
	}{
		{100, LetterA},
		{90, LetterA},
		{89.99, LetterB},
		{80, LetterB},
		{79.99, LetterC},
		{70, LetterC},
		{69.99, LetterD},
		{60, LetterD},
		{59.99, LetterF},
		{0, LetterF},
	}
	for _, tt := range tests {
		if got := GradeOf(tt.total); got != tt.want {
			t.Errorf("GradeOf(%v) = %s, want %s", tt.total, got, tt.want)
		}
	}
}

func TestGradePoints(t *testing.T) {
	tests := []struct {
		l    Letter
		want float64
	}{
		{LetterA, 4}, {LetterB, 3}, {LetterC, 2}, {LetterD, 1}, {LetterF, 0},
	}
	for _, tt := range tests {
		if got := GradePoints(tt.l); got != tt.want {
			t.Errorf("GradePoints(%s) = %v, want %v", tt.l, got, tt.want)
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{1.006, 1.01},
		{1.004, 1.0},
		{56.0, 56.0},
		{89.994999, 89.99},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigSum(t *testing.T) {
	if stdWeights.Sum() != TotalPct100 {
		t.Fatalf("Sum() = %d, want %d", stdWeights.Sum(), TotalPct100)
	}
}
