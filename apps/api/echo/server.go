package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/dashboard"
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
	"github.com/trezcool/shule/core/unique"
	"github.com/trezcool/shule/core/user"
)

// ServerDeps are the services the API delegates to.
type ServerDeps struct {
	Conf           *core.Config
	Logger         core.Logger
	Validate       *validator.Validate
	Translator     ut.Translator
	DisableReqLogs bool

	UserSvc         *user.Service
	StaffSvc        *staff.Service
	StudentSvc      *student.Service
	ParentSvc       *parent.Service
	ClassSvc        *class.Service
	SubjectSvc      *subject.Service
	FeeSvc          *fee.Service
	GradeSvc        *grade.Service
	AttendanceSvc   *attendance.Service
	TimetableSvc    *timetable.Service
	EventSvc        *event.Service
	NotificationSvc *notification.Service
	ContentSvc      *lms.Service
	DashboardSvc    *dashboard.Service
	UniquePolicy    *unique.Policy
}

type Server struct {
	deps     ServerDeps
	app      *echo.Echo
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	auth := newAuthenticator(conf, s.deps.UserSvc)

	registerAuthAPI(v1, auth, s.deps)
	registerUserAPI(v1, auth, s.deps)
	registerStaffAPI(v1, auth, s.deps)
	registerStudentAPI(v1, auth, s.deps)
	registerParentAPI(v1, auth, s.deps)
	registerClassAPI(v1, auth, s.deps)
	registerSubjectAPI(v1, auth, s.deps)
	registerTimetableAPI(v1, auth, s.deps)
	registerEventAPI(v1, auth, s.deps)
	registerFeeAPI(v1, auth, s.deps)
	registerGradeAPI(v1, auth, s.deps)
	registerAttendanceAPI(v1, auth, s.deps)
	registerNotificationAPI(v1, auth, s.deps)
	registerContentAPI(v1, auth, s.deps)
	registerDashboardAPI(v1, auth, s.deps)
	registerMetaAPI(v1, auth, s.deps)
}

// Start listens on the configured host. Listener errors are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

// ShutdownSignal receives OS interrupts, and the signal raised when a handler hits a shutdown error.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ok(ctx, http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!", nil)
}
