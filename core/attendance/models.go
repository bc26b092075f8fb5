package attendance

import (
	"math"
	"time"

	"github.com/trezcool/shule/core"
)

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

const dateLayout = "2006-01-02"

var OrderingFields = []string{"date", "section", "created_at"}

type Entry struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	Status    string `json:"status" validate:"required,oneof=present absent late excused"`
	Remarks   string `json:"remarks,omitempty" validate:"omitempty,max=200"`
}

// Attendance is the sheet taken for a class section on one day.
type Attendance struct {
	ID        string    `json:"id" db:"id"`
	ClassID   string    `json:"class_id" db:"class_id"`
	Section   string    `json:"section" db:"section"`
	Date      time.Time `json:"date" db:"date"`
	TakenBy   *string   `json:"taken_by" db:"taken_by"`
	Entries   []Entry   `json:"entries" db:"entries"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (a Attendance) UniqueValues() map[string]string {
	return map[string]string{"date": a.Date.Format(dateLayout), "class_id": a.ClassID, "section": a.Section}
}

// Entry returns the entry of studentID on the sheet.
func (a Attendance) Entry(studentID string) (Entry, bool) {
	for _, e := range a.Entries {
		if e.StudentID == studentID {
			return e, true
		}
	}
	return Entry{}, false
}

type NewAttendance struct {
	ClassID string    `json:"class_id" validate:"required,uuid"`
	Section string    `json:"section" validate:"omitempty,max=20"`
	Date    time.Time `json:"date" validate:"required"`
	Entries []Entry   `json:"entries" validate:"required,min=1,dive"`
}

func cleanEntries(entries []Entry) {
	for i := range entries {
		entries[i].StudentID = core.CleanString(entries[i].StudentID)
		entries[i].Status = core.CleanString(entries[i].Status, true /* lower */)
		entries[i].Remarks = core.CleanString(entries[i].Remarks)
	}
}

func (na *NewAttendance) Clean() {
	na.ClassID = core.CleanString(na.ClassID)
	na.Section = core.CleanString(na.Section)
	na.Date = core.TruncateDay(na.Date, nil)
	cleanEntries(na.Entries)
}

// UpdateAttendance replaces the sheet's entries.
type UpdateAttendance struct {
	Entries []Entry `json:"entries" validate:"required,min=1,dive"`
}

func (ua *UpdateAttendance) Clean() {
	cleanEntries(ua.Entries)
}

type QueryFilter struct {
	ClassID   string    `query:"class_id"`
	Section   string    `query:"section"`
	DateFrom  time.Time `query:"date_from"`
	DateTo    time.Time `query:"date_to"`
	StudentID string    `query:"student_id"`
	IDs       []string  `query:"id"`
}

func (qf *QueryFilter) Clean() {
	qf.ClassID = core.CleanString(qf.ClassID)
	qf.Section = core.CleanString(qf.Section)
	qf.StudentID = core.CleanString(qf.StudentID)
}

// Summary counts a student's attendance across all sheets.
type Summary struct {
	StudentID  string  `json:"student_id"`
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Late       int     `json:"late"`
	Excused    int     `json:"excused"`
	Percentage float64 `json:"percentage"`
}

func (s *Summary) add(status string) {
	s.Total++
	switch status {
	case StatusPresent:
		s.Present++
	case StatusAbsent:
		s.Absent++
	case StatusLate:
		s.Late++
	case StatusExcused:
		s.Excused++
	}
}

// compute sets the share of sheets where the student showed up, late arrivals included.
func (s *Summary) compute() {
	if s.Total == 0 {
		s.Percentage = 0
		return
	}
	pct := float64(s.Present+s.Late) / float64(s.Total) * 100
	s.Percentage = math.Round(pct*100) / 100
}
