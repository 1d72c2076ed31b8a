// Package echoapi is a mock of the Gyaan Buddy REST API backed by in-memory fixtures.
// It serves local development and the client's mock-data mode.
package echoapi

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
	emailsvc "github.com/trezcool/gyaanbuddy/services/email"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		Validator      *core.Validator
		Mailer         core.EmailService // silent when nil
		DB             *DB               // seeded from the bundled fixtures when nil
		Prefix         string            // route prefix, e.g. "/api"
		Delay          time.Duration
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		opts     Options
		app      *echo.Echo
		db       *DB
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts Options) (Server, error) {
	if opts.Validator == nil {
		opts.Validator = core.NewValidator()
	}
	if opts.Mailer == nil {
		opts.Mailer = emailsvc.NewConsoleServiceMock(opts.Conf, opts.Logger)
	}
	db := opts.DB
	if db == nil {
		var err error
		if db, err = SeedDB(); err != nil {
			return nil, errors.Wrap(err, "seeding mock database")
		}
	}

	s := &server{
		opts:     opts,
		app:      echo.New(),
		db:       db,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s, nil
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORS())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	api := s.app.Group(s.opts.Prefix, delayMiddleware(s.opts.Delay))
	jwt := middleware.JWTWithConfig(s.jwtConfig())

	s.registerAuthAPI(api, jwt)
	s.registerTeacherAPI(api, jwt)
	s.registerStudentAPI(api, jwt)
	s.registerClassAPI(api, jwt)
	s.registerSubjectAPI(api, jwt)
	s.registerMissionAPI(api, jwt)
	s.registerReportAPI(api, jwt)
	s.registerSuggestionAPI(api, jwt)
}

func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.opts.Conf.Mock.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error { return s.errors }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

// ServeHTTP lets the server answer in-process, e.g. behind the client's mock-data transport.
func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the "+s.opts.Conf.AppName+" mock API!")
}

func (s *server) ok(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, envelope{Success: true, Data: data})
}

// PrefixOf returns the path of the API base URL, which the mock serves its routes under.
func PrefixOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Path, "/")
}
