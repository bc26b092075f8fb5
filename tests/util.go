// Package testutil builds the in-memory application stack used by the tests, along with fixtures.
package testutil

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/dashboard"
	"github.com/trezcool/shule/core/event"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/grade"
	"github.com/trezcool/shule/core/ident"
	"github.com/trezcool/shule/core/lms"
	"github.com/trezcool/shule/core/notification"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/staff"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/subject"
	"github.com/trezcool/shule/core/timetable"
	"github.com/trezcool/shule/core/unique"
	"github.com/trezcool/shule/core/user"
	appfs "github.com/trezcool/shule/fs"
	emailsvc "github.com/trezcool/shule/services/email"
	eventsvc "github.com/trezcool/shule/services/events"
	logsvc "github.com/trezcool/shule/services/logger"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
)

// Password satisfies the password policy for every fixture account.
const Password = "Xq7#mVp2Lz"

var loadAssets sync.Once

// Stack is the whole application wired on the in-memory backend.
type Stack struct {
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Policy     *unique.Policy
	DB         *dummydb.DB
	Counter    ident.Counter
	IDs        *ident.Generator
	Mail       *emailsvc.Outbox
	Published  *eventsvc.Recorder

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
	Contents      *lms.Service
	Dashboard     *dashboard.Service
}

func NewStack(t testing.TB) *Stack {
	t.Helper()

	conf := core.NewTestConfig()
	logger := logsvc.NewLogger(io.Discard, false, false)
	loadAssets.Do(func() {
		core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, true, logger)
		user.LoadCommonPasswords(appfs.FS, appfs.CommonPasswords, logger)
	})

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)

	policy := unique.DefaultPolicy()
	db := dummydb.Open(policy)
	checker := dummydb.NewUniqueChecker(db)
	counter := dummydb.NewCounter(db)

	s := &Stack{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		Policy:     policy,
		DB:         db,
		Counter:    counter,
		IDs:        ident.NewGenerator(counter, db, conf),
		Mail:       emailsvc.NewOutbox(conf, logger),
		Published:  new(eventsvc.Recorder),
	}

	s.Users = user.NewService(dummydb.NewUserRepository(db), checker, policy, validate, s.Mail, conf)
	s.Staff = staff.NewService(dummydb.NewStaffRepository(db), s.Users, s.IDs, db, validate, s.Published, logger)
	s.Parents = parent.NewService(dummydb.NewParentRepository(db), s.Users, db, validate, s.Published, logger)
	s.Classes = class.NewService(dummydb.NewClassRepository(db), s.Staff, checker, policy, validate)
	s.Students = student.NewService(
		dummydb.NewStudentRepository(db), s.Users, s.Classes, s.Parents, s.IDs, db, checker, policy, validate,
		s.Published, logger, conf,
	)
	s.Subjects = subject.NewService(dummydb.NewSubjectRepository(db), s.Classes, s.Staff, checker, policy, validate)
	s.Fees = fee.NewService(dummydb.NewFeeRepository(db), s.Students, validate, s.Published, logger, conf)
	s.Grades = grade.NewService(dummydb.NewGradeRepository(db), s.Students, s.Subjects, validate)
	s.Attendance = attendance.NewService(
		dummydb.NewAttendanceRepository(db), s.Classes, s.Students, checker, policy, validate,
	)
	s.Timetables = timetable.NewService(
		dummydb.NewTimetableRepository(db), s.Classes, s.Subjects, s.Staff, checker, policy, validate,
	)
	s.Events = event.NewService(dummydb.NewEventRepository(db), validate)
	s.Notifications = notification.NewService(
		dummydb.NewNotificationRepository(db), s.Users, validate, s.Mail, s.Published, logger,
	)
	s.Contents = lms.NewService(dummydb.NewContentRepository(db), s.Classes, s.Subjects, validate)
	s.Dashboard = dashboard.NewService(dashboard.Sources{
		Users:         s.Users,
		Staff:         s.Staff,
		Students:      s.Students,
		Parents:       s.Parents,
		Classes:       s.Classes,
		Subjects:      s.Subjects,
		Fees:          s.Fees,
		Grades:        s.Grades,
		Attendance:    s.Attendance,
		Timetables:    s.Timetables,
		Events:        s.Events,
		Notifications: s.Notifications,
	}, conf)
	return s
}

// SetYear pins the identifier generator to a date of year.
func (s *Stack) SetYear(year int) {
	s.IDs.NowFunc = func() time.Time { return time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC) }
}

// Fixtures

func CreateUser(t testing.TB, s *Stack, name, email, role string, isActive bool) user.User {
	t.Helper()
	ctx := context.Background()
	usr, err := s.Users.Create(ctx, user.NewUser{
		Name:            name,
		Email:           email,
		Role:            role,
		Password:        Password,
		PasswordConfirm: Password,
	})
	require.NoError(t, err, "CreateUser()")
	if !isActive {
		usr, err = s.Users.Update(ctx, usr.ID, user.UpdateUser{IsActive: &isActive})
		require.NoError(t, err, "CreateUser() deactivating")
	}
	return usr
}

func CreateAdmin(t testing.TB, s *Stack, name, email string) user.User {
	t.Helper()
	return CreateUser(t, s, name, email, user.RoleAdmin, true)
}

func CreateStaff(t testing.TB, s *Stack, name, email string) staff.Staff {
	t.Helper()
	member, err := s.Staff.Create(context.Background(), staff.NewStaff{
		NewUser:     user.NewUser{Name: name, Email: email, Password: Password, PasswordConfirm: Password},
		Designation: "Teacher",
		Department:  "Sciences",
		JoiningDate: time.Date(2020, time.September, 1, 0, 0, 0, 0, time.UTC),
		Salary:      1500,
	})
	require.NoError(t, err, "CreateStaff()")
	return member
}

func CreateParent(t testing.TB, s *Stack, name, email string) parent.Parent {
	t.Helper()
	p, err := s.Parents.Create(context.Background(), parent.NewParent{
		NewUser:      user.NewUser{Name: name, Email: email, Password: Password, PasswordConfirm: Password},
		Relationship: parent.RelationshipMother,
	})
	require.NoError(t, err, "CreateParent()")
	return p
}

func CreateClass(t testing.TB, s *Stack, name, academicYear string, sections ...string) class.Class {
	t.Helper()
	c, err := s.Classes.Create(context.Background(), class.NewClass{
		Name:         name,
		AcademicYear: academicYear,
		Sections:     sections,
		Capacity:     40,
	})
	require.NoError(t, err, "CreateClass()")
	return c
}

func CreateSubject(t testing.TB, s *Stack, name, code string) subject.Subject {
	t.Helper()
	sub, err := s.Subjects.Create(context.Background(), subject.NewSubject{Name: name, Code: code, Credits: 3})
	require.NoError(t, err, "CreateSubject()")
	return sub
}

// StudentOpts are the optional placement details of CreateStudent.
type StudentOpts struct {
	Section    string
	RollNumber string
	ParentID   string
}

func CreateStudent(t testing.TB, s *Stack, name, email, classID string, opts StudentOpts) student.Student {
	t.Helper()
	st, err := s.Students.Create(context.Background(), NewStudent(name, email, classID, opts))
	require.NoError(t, err, "CreateStudent()")
	return st
}

func NewStudent(name, email, classID string, opts StudentOpts) student.NewStudent {
	return student.NewStudent{
		NewUser:    user.NewUser{Name: name, Email: email, Password: Password, PasswordConfirm: Password},
		ClassID:    classID,
		Section:    opts.Section,
		RollNumber: opts.RollNumber,
		ParentID:   opts.ParentID,
		Gender:     student.GenderFemale,
	}
}
