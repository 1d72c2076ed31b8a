// Package auth holds the session of the logged in principal or teacher.
package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/rest"
	"github.com/trezcool/gyaanbuddy/core/store"
)

// Operations
const (
	OpLogin    = "login"
	OpRegister = "register"
	OpRestore  = "restore"
	OpProfile  = "profile"
	OpPassword = "password"
	OpForgot   = "forgot"
	OpLogout   = "logout"
)

var ErrNoToken = errors.New("no token in login response")

type (
	Slice   = store.Slice[User, Extras]
	State   = store.State[User, Extras]
	reducer = store.Reducer[User, Extras]
)

type Service struct {
	slice     *Slice
	api       core.APIClient
	storage   core.LocalStorage
	validator *core.Validator
	logger    core.Logger

	mu       sync.Mutex
	onLogout []func()
}

func NewService(api core.APIClient, storage core.LocalStorage, validator *core.Validator, logger core.Logger) *Service {
	return &Service{
		slice: store.NewSlice[User]("auth", store.Config[Extras]{
			Keys:   []string{OpLogin, OpRegister, OpRestore, OpProfile, OpPassword, OpForgot, OpLogout},
			Logger: logger,
		}),
		api:       api,
		storage:   storage,
		validator: validator,
		logger:    logger,
	}
}

func (svc *Service) Slice() *Slice { return svc.slice }

// OnLogout registers fn to run whenever the session ends.
func (svc *Service) OnLogout(fn func()) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.onLogout = append(svc.onLogout, fn)
}

// User returns the logged in user.
func (svc *Service) User() (User, bool) {
	if !svc.Authenticated() {
		return User{}, false
	}
	return svc.slice.Current()
}

func (svc *Service) Authenticated() bool {
	return svc.slice.Extra().Authenticated
}

// Role returns the role of the logged in user, or "".
func (svc *Service) Role() string {
	usr, _ := svc.User()
	return usr.Role
}

// Navigation returns the pages the logged in user may visit.
func (svc *Service) Navigation() []NavItem {
	return NavigationFor(svc.Role())
}

func (svc *Service) Login(ctx context.Context, creds Credentials) *store.Op {
	return svc.slice.Dispatch(ctx, OpLogin, func(ctx context.Context) (reducer, error) {
		if err := creds.Validate(svc.validator); err != nil {
			return nil, err
		}
		sess, err := rest.Call[session](ctx, svc.api, core.APIRequest{
			Method: http.MethodPost,
			Path:   "/auth/login",
			Body:   creds,
		})
		if err != nil {
			return nil, errors.Wrap(err, "logging in")
		}
		return svc.startSession(ctx, sess)
	})
}

func (svc *Service) Register(ctx context.Context, reg Registration) *store.Op {
	return svc.slice.Dispatch(ctx, OpRegister, func(ctx context.Context) (reducer, error) {
		if err := reg.Validate(svc.validator); err != nil {
			return nil, err
		}
		sess, err := rest.Call[session](ctx, svc.api, core.APIRequest{
			Method: http.MethodPost,
			Path:   "/auth/register",
			Body:   reg,
		})
		if err != nil {
			return nil, errors.Wrap(err, "registering")
		}
		if sess.token() == "" {
			// account pending approval
			return nil, nil
		}
		return svc.startSession(ctx, sess)
	})
}

func (svc *Service) startSession(ctx context.Context, sess session) (reducer, error) {
	token := sess.token()
	if token == "" {
		return nil, ErrNoToken
	}
	if err := svc.storage.Set(ctx, core.TokenKey, token); err != nil {
		return nil, errors.Wrap(err, "saving token")
	}
	if s, ok := svc.api.(core.SessionAware); ok {
		s.SessionStarted()
	}
	usr := sess.User.Normalize()
	svc.logger.Info("logged in", usr)

	return func(st *State) {
		st.SetCurrent(usr)
		st.Extra = Extras{Token: token, Authenticated: true}
	}, nil
}

// Restore re-authenticates silently with the persisted token, if any.
// Without a token it succeeds and leaves the user logged out.
func (svc *Service) Restore(ctx context.Context) *store.Op {
	return svc.slice.Dispatch(ctx, OpRestore, func(ctx context.Context) (reducer, error) {
		token, err := svc.storage.Get(ctx, core.TokenKey)
		if err != nil {
			return nil, errors.Wrap(err, "reading token")
		}
		if token == "" {
			return nil, nil
		}

		usr, err := rest.Call[User](ctx, svc.api, core.APIRequest{Method: http.MethodGet, Path: "/auth/me"}, "user")
		if err == nil && usr.ID == "" {
			err = errors.New("invalid session")
		}
		if err != nil {
			if rmErr := svc.storage.Remove(ctx, core.TokenKey); rmErr != nil {
				svc.logger.Error("removing token", rmErr)
			}
			return nil, errors.Wrap(err, "restoring session")
		}
		if s, ok := svc.api.(core.SessionAware); ok {
			s.SessionStarted()
		}

		return func(st *State) {
			st.SetCurrent(usr)
			st.Extra = Extras{Token: token, Authenticated: true}
		}, nil
	})
}

func (svc *Service) UpdateProfile(ctx context.Context, pu ProfileUpdate) *store.Op {
	return svc.slice.Dispatch(ctx, OpProfile, func(ctx context.Context) (reducer, error) {
		if err := pu.Validate(svc.validator); err != nil {
			return nil, err
		}
		usr, err := rest.Call[User](ctx, svc.api, core.APIRequest{
			Method: http.MethodPut,
			Path:   "/auth/profile",
			Body:   pu,
		}, "user")
		if err != nil {
			return nil, errors.Wrap(err, "updating profile")
		}
		if usr.ID == "" {
			return nil, nil
		}
		return func(st *State) { st.SetCurrent(usr) }, nil
	})
}

func (svc *Service) ChangePassword(ctx context.Context, pc PasswordChange) *store.Op {
	return svc.slice.Dispatch(ctx, OpPassword, func(ctx context.Context) (reducer, error) {
		if err := pc.Validate(svc.validator); err != nil {
			return nil, err
		}
		_, err := svc.api.Do(ctx, core.APIRequest{Method: http.MethodPost, Path: "/auth/change-password", Body: pc})
		return nil, errors.Wrap(err, "changing password")
	})
}

func (svc *Service) ForgotPassword(ctx context.Context, email string) *store.Op {
	return svc.slice.Dispatch(ctx, OpForgot, func(ctx context.Context) (reducer, error) {
		fp := ForgotPassword{Email: core.CleanString(email, true /* lower */)}
		if err := svc.validator.Struct(fp); err != nil {
			return nil, err
		}
		_, err := svc.api.Do(ctx, core.APIRequest{Method: http.MethodPost, Path: "/auth/forgot-password", Body: fp})
		return nil, errors.Wrap(err, "requesting password reset")
	})
}

// Logout ends the session on the backend, then locally whatever the backend answered.
func (svc *Service) Logout(ctx context.Context) *store.Op {
	return svc.slice.Dispatch(ctx, OpLogout, func(ctx context.Context) (reducer, error) {
		if svc.Authenticated() {
			if _, err := svc.api.Do(ctx, core.APIRequest{Method: http.MethodPost, Path: "/auth/logout"}); err != nil {
				svc.logger.Warn("backend logout failed", err)
			}
		}
		if err := svc.endSession(ctx); err != nil {
			return nil, err
		}
		return func(st *State) {
			st.ClearCurrent()
			st.Extra = Extras{}
		}, nil
	})
}

// ForceLogout ends the session locally, e.g. when the backend rejected it.
func (svc *Service) ForceLogout() {
	if err := svc.endSession(context.Background()); err != nil {
		svc.logger.Error("forced logout", err)
	}
	svc.slice.Reset()
}

func (svc *Service) endSession(ctx context.Context) error {
	if err := svc.storage.Remove(ctx, core.TokenKey); err != nil {
		return errors.Wrap(err, "removing token")
	}
	svc.logger.Info("logged out")

	svc.mu.Lock()
	hooks := append([]func(){}, svc.onLogout...)
	svc.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	return nil
}
