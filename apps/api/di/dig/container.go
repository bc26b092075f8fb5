package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/shule/apps/api/echo"
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
	emailsvc "github.com/trezcool/shule/services/email"
	eventsvc "github.com/trezcool/shule/services/events"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/services/scheduler"
	seqsvc "github.com/trezcool/shule/services/sequence"
	"github.com/trezcool/shule/storage/database"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
	sqlxrepos "github.com/trezcool/shule/storage/database/sqlx"
)

// Storage backends
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Sequence backends
const (
	SequenceDatabase = "database"
	SequenceRedis    = "redis"
	SequenceMongo    = "mongo"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Closer releases a connection opened while building the container.
type Closer func() error

// Storage holds the repositories of the configured backend.
type Storage struct {
	dig.Out

	Tx            core.Transactor
	Checker       unique.Checker
	RecordCounter ident.Counter `name:"recordCounter"`
	DBCloser      Closer        `name:"dbCloser"`

	Users         user.Repository
	Staff         staff.Repository
	Students      student.Repository
	Parents       parent.Repository
	Classes       class.Repository
	Subjects      subject.Repository
	Fees          fee.Repository
	Grades        grade.Repository
	Attendance    attendance.Repository
	Timetables    timetable.Repository
	Events        event.Repository
	Notifications notification.Repository
	Contents      lms.Repository
}

type CounterParams struct {
	dig.In
	Conf          *core.Config
	Logger        core.Logger
	RecordCounter ident.Counter `name:"recordCounter"`
}

// Counter is the identifier sequence store along with its connection closer.
type Counter struct {
	dig.Out
	Counter ident.Counter
	Closer  Closer `name:"counterCloser"`
}

type DashboardParams struct {
	dig.In
	Conf          *core.Config
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

type ServerParams struct {
	dig.In
	Conf          *core.Config
	Logger        core.Logger
	Validate      *validator.Validate
	Translator    ut.Translator
	Policy        *unique.Policy
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

// Closers are every connection to release on shutdown.
type Closers struct {
	dig.In
	DB      Closer `name:"dbCloser"`
	Counter Closer `name:"counterCloser"`
}

func (c Closers) Close() error {
	for _, closer := range []Closer{c.Counter, c.DB} {
		if closer == nil {
			continue
		}
		if err := closer(); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewLogger(os.Stdout, conf.Debug, conf.Debug).Named("api"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(logsvc.NewLogger(os.Stdout, conf.Debug, conf.Debug).Named("db"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)
	return validate
}

func newStorage(conf *core.Config, policy *unique.Policy, loggerParam DBLoggerParam) (Storage, error) {
	switch conf.Database.Backend {
	case BackendMemory:
		loggerParam.Logger.Warn("using the in-memory storage: records are lost on shutdown")
		db := dummydb.Open(policy)
		return Storage{
			Tx:            db,
			Checker:       dummydb.NewUniqueChecker(db),
			RecordCounter: dummydb.NewCounter(db),
			DBCloser:      func() error { return nil },
			Users:         dummydb.NewUserRepository(db),
			Staff:         dummydb.NewStaffRepository(db),
			Students:      dummydb.NewStudentRepository(db),
			Parents:       dummydb.NewParentRepository(db),
			Classes:       dummydb.NewClassRepository(db),
			Subjects:      dummydb.NewSubjectRepository(db),
			Fees:          dummydb.NewFeeRepository(db),
			Grades:        dummydb.NewGradeRepository(db),
			Attendance:    dummydb.NewAttendanceRepository(db),
			Timetables:    dummydb.NewTimetableRepository(db),
			Events:        dummydb.NewEventRepository(db),
			Notifications: dummydb.NewNotificationRepository(db),
			Contents:      dummydb.NewContentRepository(db),
		}, nil

	case BackendPostgres:
		ctx := context.Background()
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return Storage{}, errors.Wrap(err, "creating database")
		}
		sqlDB, err := database.Open(conf)
		if err != nil {
			return Storage{}, err
		}
		if err = database.Migrate(ctx, sqlDB.DB); err != nil {
			_ = sqlDB.Close()
			return Storage{}, errors.Wrap(err, "migrating database")
		}
		loggerParam.Logger.Info(fmt.Sprintf("database %q ready", conf.Database.Name))

		db := sqlxrepos.NewDB(sqlDB, policy)
		return Storage{
			Tx:            db,
			Checker:       sqlxrepos.NewUniqueChecker(db),
			RecordCounter: sqlxrepos.NewCounter(db),
			DBCloser:      sqlDB.Close,
			Users:         sqlxrepos.NewUserRepository(db),
			Staff:         sqlxrepos.NewStaffRepository(db),
			Students:      sqlxrepos.NewStudentRepository(db),
			Parents:       sqlxrepos.NewParentRepository(db),
			Classes:       sqlxrepos.NewClassRepository(db),
			Subjects:      sqlxrepos.NewSubjectRepository(db),
			Fees:          sqlxrepos.NewFeeRepository(db),
			Grades:        sqlxrepos.NewGradeRepository(db),
			Attendance:    sqlxrepos.NewAttendanceRepository(db),
			Timetables:    sqlxrepos.NewTimetableRepository(db),
			Events:        sqlxrepos.NewEventRepository(db),
			Notifications: sqlxrepos.NewNotificationRepository(db),
			Contents:      sqlxrepos.NewContentRepository(db),
		}, nil
	}
	return Storage{}, errors.Errorf("unknown database backend %q", conf.Database.Backend)
}

// newCounter picks the identifier sequence store. The database counter shares the records'
// transactions; the Redis and MongoDB ones do not.
func newCounter(p CounterParams) (Counter, error) {
	ctx := context.Background()
	switch p.Conf.Sequence.Backend {
	case SequenceDatabase, "":
		return Counter{Counter: p.RecordCounter, Closer: func() error { return nil }}, nil

	case SequenceRedis:
		client, err := seqsvc.OpenRedis(ctx, p.Conf.Redis)
		if err != nil {
			return Counter{}, err
		}
		p.Logger.Warn("identifier sequences kept in redis: failed creations consume their number")
		prefix := strings.ToLower(p.Conf.AppName)
		return Counter{Counter: seqsvc.NewRedisCounter(client, prefix), Closer: client.Close}, nil

	case SequenceMongo:
		client, err := seqsvc.OpenMongo(ctx, p.Conf.Mongo)
		if err != nil {
			return Counter{}, err
		}
		p.Logger.Warn("identifier sequences kept in mongodb: failed creations consume their number")
		return Counter{
			Counter: seqsvc.NewMongoCounter(client.Database(p.Conf.Mongo.Database)),
			Closer:  func() error { return client.Disconnect(context.Background()) },
		}, nil
	}
	return Counter{}, errors.Errorf("unknown sequence backend %q", p.Conf.Sequence.Backend)
}

func newPublisher(conf *core.Config, logger core.Logger) (core.EventPublisher, error) {
	if !conf.Kafka.Enabled {
		return eventsvc.NewLogPublisher(logger), nil
	}
	publisher, err := eventsvc.NewKafkaPublisher(conf.Kafka)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to kafka")
	}
	return publisher, nil
}

func newDashboard(p DashboardParams) *dashboard.Service {
	return dashboard.NewService(dashboard.Sources{
		Users:         p.Users,
		Staff:         p.Staff,
		Students:      p.Students,
		Parents:       p.Parents,
		Classes:       p.Classes,
		Subjects:      p.Subjects,
		Fees:          p.Fees,
		Grades:        p.Grades,
		Attendance:    p.Attendance,
		Timetables:    p.Timetables,
		Events:        p.Events,
		Notifications: p.Notifications,
	}, p.Conf)
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:            p.Conf,
		Logger:          p.Logger,
		Validate:        p.Validate,
		Translator:      p.Translator,
		UserSvc:         p.Users,
		StaffSvc:        p.Staff,
		StudentSvc:      p.Students,
		ParentSvc:       p.Parents,
		ClassSvc:        p.Classes,
		SubjectSvc:      p.Subjects,
		FeeSvc:          p.Fees,
		GradeSvc:        p.Grades,
		AttendanceSvc:   p.Attendance,
		TimetableSvc:    p.Timetables,
		EventSvc:        p.Events,
		NotificationSvc: p.Notifications,
		ContentSvc:      p.Contents,
		DashboardSvc:    p.Dashboard,
		UniquePolicy:    p.Policy,
	})
}

// New returns a new dependency injection dig.Container
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(unique.DefaultPolicy))
	must(c.Provide(newStorage))
	must(c.Provide(newCounter))
	must(c.Provide(ident.NewGenerator))
	must(c.Provide(newPublisher))
	must(c.Provide(emailsvc.NewService))

	must(c.Provide(user.NewService))
	must(c.Provide(staff.NewService))
	must(c.Provide(parent.NewService))
	must(c.Provide(class.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(subject.NewService))
	must(c.Provide(fee.NewService))
	must(c.Provide(grade.NewService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(timetable.NewService))
	must(c.Provide(event.NewService))
	must(c.Provide(notification.NewService))
	must(c.Provide(lms.NewService))
	must(c.Provide(newDashboard))

	must(c.Provide(scheduler.New))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
