// Package dashboard assembles the role-scoped overview shown on a user's home page.
package dashboard

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/event"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/grade"
	"github.com/trezcool/shule/core/notification"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/staff"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/subject"
	"github.com/trezcool/shule/core/timetable"
	"github.com/trezcool/shule/core/user"
)

const (
	upcomingEventsLimit = 5
	recentGradesLimit   = 5
)

type FeeTotals struct {
	Billed      float64 `json:"billed"`
	Paid        float64 `json:"paid"`
	Outstanding float64 `json:"outstanding"`
	Overdue     int     `json:"overdue"`
}

func (t *FeeTotals) add(f fee.Fee) {
	t.Billed += f.Amount
	t.Paid += f.PaidAmount
	t.Outstanding += f.Balance()
	if f.Status == fee.StatusOverdue {
		t.Overdue++
	}
}

// StudentOverview is what a student, or their parent, sees about the student.
type StudentOverview struct {
	Student      student.Student    `json:"student"`
	Attendance   attendance.Summary `json:"attendance"`
	Fees         FeeTotals          `json:"fees"`
	RecentGrades []grade.Grade      `json:"recent_grades"`
}

// Slot is one period of today's schedule.
type Slot struct {
	ClassID string           `json:"class_id"`
	Section string           `json:"section"`
	Period  timetable.Period `json:"period"`
}

type Dashboard struct {
	Role                string            `json:"role"`
	Counts              map[string]int    `json:"counts,omitempty"`
	Fees                *FeeTotals        `json:"fees,omitempty"`
	Children            []StudentOverview `json:"children,omitempty"`
	Student             *StudentOverview  `json:"student,omitempty"`
	Today               []Slot            `json:"today,omitempty"`
	UpcomingEvents      []event.Event     `json:"upcoming_events"`
	UnreadNotifications int               `json:"unread_notifications"`
}

// Sources are the services the dashboard reads from.
type Sources struct {
	Users         *user.Service
	Staff         *staff.Service
	Students      *student.Service
	Parents       *parent.Service
	Classes       *class.Service
	Subjects      *subject.Service
	Fees          *fee.Service
	Grades        *grade.Service
	Attendance    *attendance.Service
	Timetables    *timetable.Service
	Events        *event.Service
	Notifications *notification.Service
}

type Service struct {
	src     Sources
	loc     *time.Location
	NowFunc func() time.Time // mockable
}

func NewService(src Sources, conf *core.Config) *Service {
	return &Service{src: src, loc: conf.Timezone, NowFunc: time.Now}
}

// For builds the dashboard of usr.
func (svc *Service) For(ctx context.Context, usr user.User) (Dashboard, error) {
	d := Dashboard{Role: usr.Role}
	var err error

	switch usr.Role {
	case user.RoleAdmin:
		err = svc.fillAdmin(ctx, &d)
	case user.RoleStaff:
		err = svc.fillStaff(ctx, usr, &d)
	case user.RoleParent:
		err = svc.fillParent(ctx, usr, &d)
	case user.RoleStudent:
		err = svc.fillStudent(ctx, usr, &d)
	}
	if err != nil {
		return Dashboard{}, err
	}

	if d.UpcomingEvents, err = svc.upcomingEvents(ctx, usr.Role); err != nil {
		return Dashboard{}, err
	}
	unread, err := svc.src.Notifications.ForUser(ctx, usr, &notification.QueryFilter{Unread: true}, nil)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying notifications")
	}
	d.UnreadNotifications = len(unread)
	return d, nil
}

func (svc *Service) fillAdmin(ctx context.Context, d *Dashboard) error {
	users, err := svc.src.Users.Query(ctx, nil, nil)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	d.Counts = map[string]int{"users": len(users)}
	for _, role := range user.AllRoles {
		d.Counts[role] = 0
	}
	for _, usr := range users {
		d.Counts[usr.Role]++
	}

	classes, err := svc.src.Classes.Query(ctx, nil, nil)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	d.Counts["classes"] = len(classes)
	subjects, err := svc.src.Subjects.Query(ctx, nil, nil)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	d.Counts["subjects"] = len(subjects)

	fees, err := svc.src.Fees.Query(ctx, nil, nil)
	if err != nil {
		return errors.Wrap(err, "querying fees")
	}
	totals := new(FeeTotals)
	for _, f := range fees {
		totals.add(f)
	}
	d.Fees = totals
	return nil
}

func (svc *Service) fillStaff(ctx context.Context, usr user.User, d *Dashboard) error {
	member, err := svc.src.Staff.GetByUser(ctx, usr.ID)
	if err != nil {
		if errors.Cause(err) == staff.ErrNotFound {
			return nil
		}
		return err
	}

	classes, err := svc.src.Classes.Query(ctx, &class.QueryFilter{ClassTeacherID: member.ID}, nil)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	subjects, err := svc.src.Subjects.Query(ctx, &subject.QueryFilter{TeacherID: member.ID}, nil)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	d.Counts = map[string]int{"classes": len(classes), "subjects": len(subjects)}

	tables, err := svc.src.Timetables.Query(ctx, &timetable.QueryFilter{Days: []int{svc.weekday()}, TeacherID: member.ID}, nil)
	if err != nil {
		return errors.Wrap(err, "querying timetables")
	}
	for _, t := range tables {
		for _, p := range t.Periods {
			if p.TeacherID == member.ID {
				d.Today = append(d.Today, Slot{ClassID: t.ClassID, Section: t.Section, Period: p})
			}
		}
	}
	return nil
}

func (svc *Service) fillParent(ctx context.Context, usr user.User, d *Dashboard) error {
	p, err := svc.src.Parents.GetByUser(ctx, usr.ID)
	if err != nil {
		if errors.Cause(err) == parent.ErrNotFound {
			return nil
		}
		return err
	}
	children, err := svc.src.Students.Children(ctx, p.ID)
	if err != nil {
		return errors.Wrap(err, "querying children")
	}
	d.Children = make([]StudentOverview, 0, len(children))
	for _, child := range children {
		ov, err := svc.overview(ctx, child)
		if err != nil {
			return err
		}
		d.Children = append(d.Children, ov)
	}
	return nil
}

func (svc *Service) fillStudent(ctx context.Context, usr user.User, d *Dashboard) error {
	s, err := svc.src.Students.GetByUser(ctx, usr.ID)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return nil
		}
		return err
	}
	ov, err := svc.overview(ctx, s)
	if err != nil {
		return err
	}
	d.Student = &ov

	tables, err := svc.src.Timetables.Query(ctx, &timetable.QueryFilter{ClassID: s.ClassID, Days: []int{svc.weekday()}}, nil)
	if err != nil {
		return errors.Wrap(err, "querying timetables")
	}
	for _, t := range tables {
		if t.Section != "" && t.Section != s.Section {
			continue
		}
		for _, p := range t.Periods {
			d.Today = append(d.Today, Slot{ClassID: t.ClassID, Section: t.Section, Period: p})
		}
	}
	return nil
}

func (svc *Service) overview(ctx context.Context, s student.Student) (StudentOverview, error) {
	ov := StudentOverview{Student: s}

	summary, err := svc.src.Attendance.Summary(ctx, s.ID)
	if err != nil {
		return ov, errors.Wrap(err, "summarizing attendance")
	}
	ov.Attendance = summary

	fees, err := svc.src.Fees.Query(ctx, &fee.QueryFilter{StudentIDs: []string{s.ID}}, nil)
	if err != nil {
		return ov, errors.Wrap(err, "querying fees")
	}
	for _, f := range fees {
		ov.Fees.add(f)
	}

	grades, err := svc.src.Grades.Query(ctx, &grade.QueryFilter{StudentIDs: []string{s.ID}}, nil)
	if err != nil {
		return ov, errors.Wrap(err, "querying grades")
	}
	if len(grades) > recentGradesLimit {
		grades = grades[:recentGradesLimit]
	}
	ov.RecentGrades = grades
	return ov, nil
}

func (svc *Service) upcomingEvents(ctx context.Context, role string) ([]event.Event, error) {
	events, err := svc.src.Events.Query(ctx, &event.QueryFilter{From: svc.NowFunc().UTC(), Role: role},
		[]core.DBOrdering{{Field: "starts_at", Ascending: true}})
	if err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	if len(events) > upcomingEventsLimit {
		events = events[:upcomingEventsLimit]
	}
	return events, nil
}

func (svc *Service) weekday() int {
	now := svc.NowFunc()
	if svc.loc != nil {
		now = now.In(svc.loc)
	}
	return int(now.Weekday())
}
