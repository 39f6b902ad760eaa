package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func row(year string, sem int, code string, credits int, total float64, grade string) Row {
	return Row{
		AcademicYear: year,
		Semester:     sem,
		CourseCode:   code,
		CourseName:   "Course " + code,
		Credits:      credits,
		TotalScore:   ptr(total),
		Grade:        ptr(grade),
	}
}

func TestAssembleEmpty(t *testing.T) {
	tr := Assemble(nil)
	assert.Empty(t, tr.Semesters)
	assert.Zero(t, tr.CumulativeGPA)
	assert.Zero(t, tr.CreditsAttempted)
}

func TestAssembleGroupingAndOrder(t *testing.T) {
	rows := []Row{
		row("2025-2026", 1, "MATH101", 3, 92, "A"),
		row("2024-2025", 2, "PHYS201", 4, 75, "C"),
		row("2024-2025", 1, "CHEM110", 3, 85, "B"),
		row("2024-2025", 1, "BIO100", 2, 64, "D"),
	}
	tr := Assemble(rows)

	require.Len(t, tr.Semesters, 3)
	assert.Equal(t, "2024-2025", tr.Semesters[0].AcademicYear)
	assert.Equal(t, 1, tr.Semesters[0].Semester)
	assert.Equal(t, 2, tr.Semesters[1].Semester)
	assert.Equal(t, "2025-2026", tr.Semesters[2].AcademicYear)

	// courses within a semester sorted by code
	first := tr.Semesters[0]
	require.Len(t, first.Courses, 2)
	assert.Equal(t, "BIO100", first.Courses[0].CourseCode)
	assert.Equal(t, "CHEM110", first.Courses[1].CourseCode)
}

func TestAssembleGPA(t *testing.T) {
	rows := []Row{
		row("2024-2025", 1, "CHEM110", 3, 85, "B"), // 3.0 × 3
		row("2024-2025", 1, "BIO100", 2, 64, "D"),  // 1.0 × 2
		row("2024-2025", 2, "PHYS201", 4, 75, "C"), // 2.0 × 4
	}
	tr := Assemble(rows)
	require.Len(t, tr.Semesters, 2)

	// semester 1: (9+2)/5 = 2.2
	assert.Equal(t, 2.2, tr.Semesters[0].SemesterGPA)
	assert.Equal(t, 5, tr.Semesters[0].CreditsAttempted)

	// cumulative after semester 2: (9+2+8)/9 = 2.11
	assert.Equal(t, 2.0, tr.Semesters[1].SemesterGPA)
	assert.Equal(t, 2.11, tr.Semesters[1].CumulativeGPA)
	assert.Equal(t, 9, tr.Semesters[1].CumulativeCredits)

	assert.Equal(t, 2.11, tr.CumulativeGPA)
	assert.Equal(t, 9, tr.CreditsAttempted)
	assert.Equal(t, 9, tr.CreditsEarned)
}

func TestAssembleCumulativeFromTotalsNotAverages(t *testing.T) {
	// Averaging the two semester GPAs would give (4.0+1.0)/2 = 2.5; the
	// credit-weighted truth is (1×4 + 5×1)/6 = 1.5.
	rows := []Row{
		row("2024-2025", 1, "SEM1", 1, 95, "A"),
		row("2024-2025", 2, "SEM2", 5, 62, "D"),
	}
	tr := Assemble(rows)
	assert.Equal(t, 1.5, tr.CumulativeGPA)
}

func TestAssembleFGradeAttemptedNotEarned(t *testing.T) {
	rows := []Row{
		row("2024-2025", 1, "FAIL1", 3, 40, "F"),
		row("2024-2025", 1, "PASS1", 3, 90, "A"),
	}
	tr := Assemble(rows)
	require.Len(t, tr.Semesters, 1)
	assert.Equal(t, 6, tr.Semesters[0].CreditsAttempted)
	assert.Equal(t, 3, tr.Semesters[0].CreditsEarned)
	// (0×3 + 4×3)/6 = 2.0
	assert.Equal(t, 2.0, tr.Semesters[0].SemesterGPA)
	assert.Equal(t, 6, tr.CreditsAttempted)
	assert.Equal(t, 3, tr.CreditsEarned)
}

func TestAssembleInProgressExcluded(t *testing.T) {
	rows := []Row{
		row("2024-2025", 1, "DONE1", 3, 88, "B"),
		{AcademicYear: "2024-2025", Semester: 1, CourseCode: "WIP2", CourseName: "Course WIP2", Credits: 3},
		{AcademicYear: "2024-2025", Semester: 1, CourseCode: "WIP1", CourseName: "Course WIP1", Credits: 2},
	}
	tr := Assemble(rows)

	require.Len(t, tr.InProgress, 2)
	assert.Equal(t, "WIP1", tr.InProgress[0].CourseCode)
	assert.Equal(t, "WIP2", tr.InProgress[1].CourseCode)

	require.Len(t, tr.Semesters, 1)
	assert.Equal(t, 3, tr.Semesters[0].CreditsAttempted)
	assert.Equal(t, 3.0, tr.CumulativeGPA)
}
