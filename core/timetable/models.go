package timetable

import (
	"sort"
	"strconv"
	"time"

	"github.com/trezcool/shule/core"
)

// Days of the week, Sunday first like time.Weekday.
var DayNames = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

var OrderingFields = []string{"day", "section", "created_at"}

type Period struct {
	Start     string `json:"start" validate:"required,clock"`
	End       string `json:"end" validate:"required,clock"`
	SubjectID string `json:"subject_id" validate:"omitempty,uuid"`
	TeacherID string `json:"teacher_id" validate:"omitempty,uuid"`
	Room      string `json:"room" validate:"omitempty,max=50"`
}

// Overlaps reports whether p and o share some time. Periods touching end to start do not overlap.
func (p Period) Overlaps(o Period) bool {
	return p.Start < o.End && o.Start < p.End
}

type Timetable struct {
	ID        string    `json:"id" db:"id"`
	ClassID   string    `json:"class_id" db:"class_id"`
	Section   string    `json:"section" db:"section"`
	Day       int       `json:"day" db:"day"`
	Periods   []Period  `json:"periods" db:"periods"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (t Timetable) UniqueValues() map[string]string {
	return map[string]string{"day": strconv.Itoa(t.Day), "class_id": t.ClassID, "section": t.Section}
}

func sortPeriods(periods []Period) {
	sort.SliceStable(periods, func(i, j int) bool { return periods[i].Start < periods[j].Start })
}

type NewTimetable struct {
	ClassID string   `json:"class_id" validate:"required,uuid"`
	Section string   `json:"section" validate:"omitempty,max=20"`
	Day     int      `json:"day" validate:"gte=0,lte=6"`
	Periods []Period `json:"periods" validate:"required,min=1,dive"`
}

func cleanPeriods(periods []Period) {
	for i := range periods {
		periods[i].Start = core.CleanString(periods[i].Start)
		periods[i].End = core.CleanString(periods[i].End)
		periods[i].SubjectID = core.CleanString(periods[i].SubjectID)
		periods[i].TeacherID = core.CleanString(periods[i].TeacherID)
		periods[i].Room = core.CleanString(periods[i].Room)
	}
	sortPeriods(periods)
}

func (nt *NewTimetable) Clean() {
	nt.ClassID = core.CleanString(nt.ClassID)
	nt.Section = core.CleanString(nt.Section)
	cleanPeriods(nt.Periods)
}

// UpdateTimetable replaces the day's periods.
type UpdateTimetable struct {
	Periods []Period `json:"periods" validate:"required,min=1,dive"`
}

func (ut *UpdateTimetable) Clean() {
	cleanPeriods(ut.Periods)
}

type QueryFilter struct {
	ClassID   string   `query:"class_id"`
	Section   string   `query:"section"`
	Days      []int    `query:"day"`
	TeacherID string   `query:"teacher_id"`
	IDs       []string `query:"id"`
}

func (qf *QueryFilter) Clean() {
	qf.ClassID = core.CleanString(qf.ClassID)
	qf.Section = core.CleanString(qf.Section)
	qf.TeacherID = core.CleanString(qf.TeacherID)
}
