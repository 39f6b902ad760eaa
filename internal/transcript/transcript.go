// Package transcript rolls approved student scores into a chronological
// per-semester and cumulative GPA view.
package transcript

import (
	"context"
	"sort"

	"github.com/gradewise/gradewise-backend/internal/grading"
)

// Row is one approved course result joined with schedule credit data.
type Row struct {
	AcademicYear string
	Semester     int
	CourseCode   string
	CourseName   string
	Credits      int
	TotalScore   *float64
	Grade        *string
}

// Store loads a student's approved rows. Only scores whose score
// session reached APPROVED and whose schedule carries credit data
// qualify.
type Store interface {
	ApprovedRows(ctx context.Context, studentID string) ([]Row, error)
}

// CourseLine is one graded course inside a semester.
type CourseLine struct {
	CourseCode  string  `json:"course_code"`
	CourseName  string  `json:"course_name"`
	Credits     int     `json:"credits"`
	TotalScore  float64 `json:"total_score"`
	Grade       string  `json:"grade"`
	GradePoints float64 `json:"grade_points"`
}

// Semester is one (academic year, semester) block with its own GPA and
// the cumulative GPA as of its end.
type Semester struct {
	AcademicYear      string       `json:"academic_year"`
	Semester          int          `json:"semester"`
	Courses           []CourseLine `json:"courses"`
	CreditsAttempted  int          `json:"credits_attempted"`
	CreditsEarned     int          `json:"credits_earned"`
	SemesterGPA       float64      `json:"semester_gpa"`
	CumulativeCredits int          `json:"cumulative_credits"`
	CumulativeGPA     float64      `json:"cumulative_gpa"`
}

// Transcript is the full chronological roll-up for one student.
type Transcript struct {
	StudentID        string       `json:"student_id"`
	Semesters        []Semester   `json:"semesters"`
	InProgress       []CourseLine `json:"in_progress,omitempty"`
	CreditsAttempted int          `json:"credits_attempted"`
	CreditsEarned    int          `json:"credits_earned"`
	CumulativeGPA    float64      `json:"cumulative_gpa"`
}

// Builder assembles transcripts from approved rows.
type Builder struct {
	store Store
}

func NewBuilder(store Store) *Builder { return &Builder{store: store} }

func (b *Builder) Build(ctx context.Context, studentID string) (Transcript, error) {
	rows, err := b.store.ApprovedRows(ctx, studentID)
	if err != nil {
		return Transcript{}, err
	}
	t := Assemble(rows)
	t.StudentID = studentID
	return t, nil
}

type semesterKey struct {
	year     string
	semester int
}

// Assemble groups rows by (academicYear, semester) ascending, orders
// courses by course code, and computes per-semester plus cumulative
// GPA. Cumulative values come from the running totals to date, never
// from averaging prior semester GPAs, so rounding cannot compound.
func Assemble(rows []Row) Transcript {
	var t Transcript
	groups := map[semesterKey][]CourseLine{}
	var keys []semesterKey

	for _, r := range rows {
		if r.Grade == nil || r.TotalScore == nil {
			t.InProgress = append(t.InProgress, CourseLine{
				CourseCode: r.CourseCode,
				CourseName: r.CourseName,
				Credits:    r.Credits,
			})
			continue
		}
		k := semesterKey{year: r.AcademicYear, semester: r.Semester}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], CourseLine{
			CourseCode:  r.CourseCode,
			CourseName:  r.CourseName,
			Credits:     r.Credits,
			TotalScore:  *r.TotalScore,
			Grade:       *r.Grade,
			GradePoints: grading.GradePoints(grading.Letter(*r.Grade)),
		})
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].semester < keys[j].semester
	})
	sort.Slice(t.InProgress, func(i, j int) bool {
		return t.InProgress[i].CourseCode < t.InProgress[j].CourseCode
	})

	var runCredits, runEarned int
	var runQuality float64
	for _, k := range keys {
		courses := groups[k]
		sort.Slice(courses, func(i, j int) bool {
			return courses[i].CourseCode < courses[j].CourseCode
		})

		var semCredits, semEarned int
		var semQuality float64
		for _, c := range courses {
			semCredits += c.Credits
			if c.Grade != string(grading.LetterF) {
				semEarned += c.Credits
			}
			semQuality += float64(c.Credits) * c.GradePoints
		}
		runCredits += semCredits
		runEarned += semEarned
		runQuality += semQuality

		sem := Semester{
			AcademicYear:      k.year,
			Semester:          k.semester,
			Courses:           courses,
			CreditsAttempted:  semCredits,
			CreditsEarned:     semEarned,
			CumulativeCredits: runCredits,
		}
		if semCredits > 0 {
			sem.SemesterGPA = grading.Round2(semQuality / float64(semCredits))
		}
		if runCredits > 0 {
			sem.CumulativeGPA = grading.Round2(runQuality / float64(runCredits))
		}
		t.Semesters = append(t.Semesters, sem)
	}

	t.CreditsAttempted = runCredits
	t.CreditsEarned = runEarned
	if runCredits > 0 {
		t.CumulativeGPA = grading.Round2(runQuality / float64(runCredits))
	}
	return t
}
