package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/event"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/grade"
	"github.com/trezcool/shule/core/lms"
	"github.com/trezcool/shule/core/notification"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/staff"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/subject"
	"github.com/trezcool/shule/core/timetable"
	"github.com/trezcool/shule/core/user"
)

// The delete helpers below mirror the foreign keys of the SQL schema.

func isPtrTo(p *string, id string) bool {
	return p != nil && *p == id
}

func (db *DB) deleteUser(ctx context.Context, id string) error {
	_, undo := db.users.remove(func(u user.User) bool { return u.ID == id })
	record(ctx, undo)

	for _, s := range db.staff.list(func(s staff.Staff) bool { return s.UserID == id }) {
		if err := db.deleteStaff(ctx, s.ID); err != nil {
			return err
		}
	}
	for _, s := range db.students.list(func(s student.Student) bool { return s.UserID == id }) {
		if err := db.deleteStudent(ctx, s.ID); err != nil {
			return err
		}
	}
	for _, p := range db.parents.list(func(p parent.Parent) bool { return p.UserID == id }) {
		if err := db.deleteParent(ctx, p.ID); err != nil {
			return err
		}
	}

	record(ctx, db.grades.modify(
		func(g grade.Grade) bool { return isPtrTo(g.GradedBy, id) },
		func(g *grade.Grade) { g.GradedBy = nil },
	))
	record(ctx, db.attendance.modify(
		func(a attendance.Attendance) bool { return isPtrTo(a.TakenBy, id) },
		func(a *attendance.Attendance) { a.TakenBy = nil },
	))
	record(ctx, db.events.modify(
		func(e event.Event) bool { return isPtrTo(e.CreatedBy, id) },
		func(e *event.Event) { e.CreatedBy = nil },
	))
	record(ctx, db.notifications.modify(
		func(n notification.Notification) bool { return isPtrTo(n.CreatedBy, id) },
		func(n *notification.Notification) { n.CreatedBy = nil },
	))
	record(ctx, db.contents.modify(
		func(c lms.Content) bool { return isPtrTo(c.UploadedBy, id) },
		func(c *lms.Content) { c.UploadedBy = nil },
	))
	return nil
}

func (db *DB) deleteStaff(ctx context.Context, id string) error {
	_, undo := db.staff.remove(func(s staff.Staff) bool { return s.ID == id })
	record(ctx, undo)

	record(ctx, db.classes.modify(
		func(c class.Class) bool { return isPtrTo(c.ClassTeacherID, id) },
		func(c *class.Class) { c.ClassTeacherID = nil },
	))
	record(ctx, db.subjects.modify(
		func(s subject.Subject) bool { return isPtrTo(s.TeacherID, id) },
		func(s *subject.Subject) { s.TeacherID = nil },
	))
	return nil
}

func (db *DB) deleteStudent(ctx context.Context, id string) error {
	_, undo := db.students.remove(func(s student.Student) bool { return s.ID == id })
	record(ctx, undo)

	_, undo = db.fees.remove(func(f fee.Fee) bool { return f.StudentID == id })
	record(ctx, undo)
	_, undo = db.grades.remove(func(g grade.Grade) bool { return g.StudentID == id })
	record(ctx, undo)
	return nil
}

func (db *DB) deleteParent(ctx context.Context, id string) error {
	_, undo := db.parents.remove(func(p parent.Parent) bool { return p.ID == id })
	record(ctx, undo)

	record(ctx, db.students.modify(
		func(s student.Student) bool { return isPtrTo(s.ParentID, id) },
		func(s *student.Student) { s.ParentID = nil },
	))
	return nil
}

func (db *DB) deleteClass(ctx context.Context, id string) error {
	if db.students.count(func(s student.Student) bool { return s.ClassID == id }) > 0 {
		return core.NewInUseError("class", "students")
	}
	_, undo := db.classes.remove(func(c class.Class) bool { return c.ID == id })
	record(ctx, undo)

	_, undo = db.grades.remove(func(g grade.Grade) bool { return g.ClassID == id })
	record(ctx, undo)
	_, undo = db.attendance.remove(func(a attendance.Attendance) bool { return a.ClassID == id })
	record(ctx, undo)
	_, undo = db.timetables.remove(func(t timetable.Timetable) bool { return t.ClassID == id })
	record(ctx, undo)
	_, undo = db.contents.remove(func(c lms.Content) bool { return c.ClassID == id })
	record(ctx, undo)
	record(ctx, db.subjects.modify(
		func(s subject.Subject) bool { return isPtrTo(s.ClassID, id) },
		func(s *subject.Subject) { s.ClassID = nil },
	))
	return nil
}

func (db *DB) deleteSubject(ctx context.Context, id string) error {
	_, undo := db.subjects.remove(func(s subject.Subject) bool { return s.ID == id })
	record(ctx, undo)

	_, undo = db.grades.remove(func(g grade.Grade) bool { return g.SubjectID == id })
	record(ctx, undo)
	record(ctx, db.contents.modify(
		func(c lms.Content) bool { return isPtrTo(c.SubjectID, id) },
		func(c *lms.Content) { c.SubjectID = nil },
	))
	return nil
}
