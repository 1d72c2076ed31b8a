// Package dashboard assembles the Gyaan Buddy admin client: local storage, the REST client
// and one state slice per domain, composed in a root store.
package dashboard

import (
	"context"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	echoapi "github.com/trezcool/gyaanbuddy/apps/mockapi/echo"
	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/auth"
	"github.com/trezcool/gyaanbuddy/core/class"
	"github.com/trezcool/gyaanbuddy/core/mission"
	"github.com/trezcool/gyaanbuddy/core/question"
	"github.com/trezcool/gyaanbuddy/core/report"
	"github.com/trezcool/gyaanbuddy/core/store"
	"github.com/trezcool/gyaanbuddy/core/student"
	"github.com/trezcool/gyaanbuddy/core/subject"
	"github.com/trezcool/gyaanbuddy/core/suggestion"
	"github.com/trezcool/gyaanbuddy/core/teacher"
	apisvc "github.com/trezcool/gyaanbuddy/services/api"
	logsvc "github.com/trezcool/gyaanbuddy/services/logger"
	"github.com/trezcool/gyaanbuddy/storage"
)

type Options struct {
	Conf       *core.Config
	Logger     core.Logger           // a Rollbar logger writing to stderr when nil
	Storage    storage.Storage       // opened from Conf.Storage when nil
	Backend    http.Handler          // serves requests in-process when set; the mock API in mock-data mode
	Registerer prometheus.Registerer // client metrics stay private when nil
}

// App is the long-lived client state shared by every command.
type App struct {
	Conf    *core.Config
	Logger  core.Logger
	Store   *store.Root
	Client  *apisvc.Client
	Storage storage.Storage

	Auth        *auth.Service
	Teachers    *teacher.Service
	Students    *student.Service
	Classes     *class.Service
	Subjects    *subject.Service
	Questions   *question.Service
	Missions    *mission.Service
	Reports     *report.Service
	Suggestions *suggestion.Service

	ownsStorage bool
}

func New(opts Options) (*App, error) {
	conf := opts.Conf
	if conf == nil {
		return nil, errors.New("no configuration")
	}

	app := &App{Conf: conf, Logger: opts.Logger, Storage: opts.Storage, Store: store.NewRoot()}
	if app.Logger == nil {
		logger := logsvc.NewRollbarLogger(logsvc.NewConsoleWriter(os.Stderr), conf)
		logger.Enable(!conf.Debug && conf.RollbarToken != "")
		app.Logger = logger
	}
	if app.Storage == nil {
		st, err := storage.Open(conf.Storage)
		if err != nil {
			return nil, errors.Wrap(err, "opening local storage")
		}
		app.Storage, app.ownsStorage = st, true
	}

	validator := core.NewValidator()

	var clientOpts []apisvc.Option
	backend := opts.Backend
	if backend == nil && conf.API.UseMockData {
		mock, err := echoapi.NewServer(echoapi.Options{
			Conf:           conf,
			Logger:         app.Logger,
			Validator:      validator,
			Prefix:         echoapi.PrefixOf(conf.API.BaseURL),
			Delay:          conf.Mock.Delay,
			DisableReqLogs: true,
		})
		if err != nil {
			app.Close()
			return nil, errors.Wrap(err, "setting up mock data")
		}
		backend = mock
		app.Logger.Info("using mock data", map[string]interface{}{"delay": conf.Mock.Delay.String()})
	}
	if backend != nil {
		clientOpts = append(clientOpts, apisvc.WithHandler(backend))
	}
	if opts.Registerer != nil {
		clientOpts = append(clientOpts, apisvc.WithRegisterer(opts.Registerer))
	}
	app.Client = apisvc.New(conf.API, app.Storage, app.Logger, clientOpts...)

	app.Auth = auth.NewService(app.Client, app.Storage, validator, app.Logger)
	app.Teachers = teacher.NewService(app.Client, validator, app.Logger)
	app.Students = student.NewService(app.Client, validator, app.Logger)
	app.Classes = class.NewService(app.Client, validator, app.Logger)
	app.Subjects = subject.NewService(app.Client, validator, app.Logger)
	app.Questions = question.NewService(app.Client, validator, app.Logger)
	app.Missions = mission.NewService(app.Client, validator, app.Logger)
	app.Reports = report.NewService(app.Client, validator, app.Logger)
	app.Suggestions = suggestion.NewService(app.Client, validator, app.Logger)

	app.Store.MustRegister(
		app.Auth.Slice(),
		app.Teachers.Slice(),
		app.Students.Slice(),
		app.Classes.Slice(),
		app.Subjects.Slice(),
		app.Questions.Slice(),
		app.Missions.Slice(),
		app.Reports.Slice(),
		app.Suggestions.Slice(),
	)

	// the session ends: drop everything fetched with it
	app.Auth.OnLogout(func() { app.Store.Reset(app.domainSlices()...) })
	app.Client.OnSessionExpired(app.Auth.ForceLogout)

	return app, nil
}

func (app *App) domainSlices() []string {
	names := app.Store.Names()
	out := names[:0:0]
	for _, name := range names {
		if name != app.Auth.Slice().Name() {
			out = append(out, name)
		}
	}
	return out
}

// Start restores the persisted session, if any.
// An expired session is not an error: the user is simply logged out.
func (app *App) Start(ctx context.Context) error {
	err := app.Auth.Restore(ctx).Wait()
	if err == nil || core.IsCanceled(err) {
		return err
	}
	if core.IsNetwork(err) || core.IsThrottled(err) {
		return errors.Wrap(err, "restoring session")
	}
	app.Logger.Info("persisted session rejected", err)
	return nil
}

// Close releases the local storage opened by New.
func (app *App) Close() error {
	if !app.ownsStorage || app.Storage == nil {
		return nil
	}
	return errors.Wrap(app.Storage.Close(), "closing local storage")
}
