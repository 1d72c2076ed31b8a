package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/storage/inmem"
	"github.com/trezcool/gyaanbuddy/tests"
)

const loginBody = `{"success":true,"data":{"token":"tok-1","user":{"id":"u1","name":"Asha Rao","email":"asha@school.in","role":"Principal"}}}`

func setup() (*Service, *testutil.FakeAPI, *inmemstore.Storage) {
	api := testutil.NewFakeAPI()
	storage := inmemstore.New()
	return NewService(api, storage, core.NewValidator(), testutil.NewLogger()), api, storage
}

func TestService_Login(t *testing.T) {
	tests := []struct {
		name      string
		creds     Credentials
		response  string
		fail      error
		wantErr   string
		wantToken string
	}{
		{
			name:      "success",
			creds:     Credentials{Email: " Asha@School.in ", Password: "secret123"},
			response:  loginBody,
			wantToken: "tok-1",
		},
		{
			name:      "access token alias",
			creds:     Credentials{Email: "asha@school.in", Password: "secret123"},
			response:  `{"accessToken":"tok-2","user":{"id":"u1","role":"principal"}}`,
			wantToken: "tok-2",
		},
		{
			name:    "invalid email",
			creds:   Credentials{Email: "asha", Password: "secret123"},
			wantErr: "email: email must be a valid email address",
		},
		{
			name:    "missing password",
			creds:   Credentials{Email: "asha@school.in"},
			wantErr: "password: this field is required",
		},
		{
			name:    "wrong credentials",
			creds:   Credentials{Email: "asha@school.in", Password: "nope"},
			fail:    &core.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"},
			wantErr: "Invalid credentials",
		},
		{
			name:     "no token",
			creds:    Credentials{Email: "asha@school.in", Password: "secret123"},
			response: `{"data":{"user":{"id":"u1"}}}`,
			wantErr:  ErrNoToken.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api, storage := setup()
			if tt.fail != nil {
				api.Fail(http.MethodPost, "/auth/login", tt.fail)
			} else {
				api.On(http.MethodPost, "/auth/login", tt.response)
			}

			_ = svc.Login(context.Background(), tt.creds).Wait()

			assert.Equal(t, tt.wantErr, svc.Slice().Error(OpLogin))
			assert.False(t, svc.Slice().Loading(OpLogin))
			assert.Equal(t, tt.wantToken, testutil.Token(t, storage))
			assert.Equal(t, tt.wantErr == "", svc.Authenticated())
			if tt.wantErr == "" {
				usr, ok := svc.User()
				require.True(t, ok)
				assert.Equal(t, RolePrincipal, usr.Role)
				assert.Equal(t, 1, api.Sessions())
				assert.Equal(t, "asha@school.in", api.Last().Body.(Credentials).Email)
			}
		})
	}
}

func TestService_Register(t *testing.T) {
	reg := Registration{Name: "Ravi Kumar", Email: "Ravi@School.in", Password: "secret123", PasswordConfirm: "secret123", Role: "Teacher"}

	tests := []struct {
		name      string
		reg       Registration
		response  string
		wantErr   string
		wantToken string
	}{
		{
			name:      "logged in",
			reg:       reg,
			response:  `{"data":{"token":"tok-9","user":{"id":"u9","name":"Ravi Kumar","role":"teacher"}}}`,
			wantToken: "tok-9",
		},
		{
			name:     "pending approval",
			reg:      reg,
			response: `{"success":true,"message":"awaiting approval"}`,
		},
		{
			name:    "unknown role",
			reg:     Registration{Name: "Ravi", Email: "ravi@school.in", Password: "secret123", PasswordConfirm: "secret123", Role: "student"},
			wantErr: "role: role must be one of [principal teacher]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api, storage := setup()
			api.On(http.MethodPost, "/auth/register", tt.response)

			_ = svc.Register(context.Background(), tt.reg).Wait()

			assert.Equal(t, tt.wantErr, svc.Slice().Error(OpRegister))
			assert.Equal(t, tt.wantToken, testutil.Token(t, storage))
			assert.Equal(t, tt.wantToken != "", svc.Authenticated())
			if tt.wantErr == "" {
				assert.Equal(t, "ravi@school.in", api.Last().Body.(Registration).Email)
			}
		})
	}
}

func TestService_Restore(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		svc, api, _ := setup()
		require.NoError(t, svc.Restore(context.Background()).Wait())
		assert.False(t, svc.Authenticated())
		assert.Empty(t, api.Requests())
	})

	t.Run("valid token", func(t *testing.T) {
		svc, api, storage := setup()
		testutil.SetToken(t, storage, "tok-1")
		api.On(http.MethodGet, "/auth/me", `{"data":{"user":{"id":"u2","name":"Ravi","role":"teacher"}}}`)

		require.NoError(t, svc.Restore(context.Background()).Wait())
		assert.True(t, svc.Authenticated())
		assert.Equal(t, RoleTeacher, svc.Role())
		assert.Equal(t, "tok-1", svc.Slice().Extra().Token)
		assert.Equal(t, NavigationFor(RoleTeacher), svc.Navigation())
	})

	t.Run("expired token", func(t *testing.T) {
		svc, api, storage := setup()
		testutil.SetToken(t, storage, "tok-1")
		api.Fail(http.MethodGet, "/auth/me", &core.APIError{Status: http.StatusUnauthorized, Message: "jwt expired"})

		assert.Error(t, svc.Restore(context.Background()).Wait())
		assert.False(t, svc.Authenticated())
		assert.Equal(t, "", testutil.Token(t, storage))
		assert.Equal(t, "jwt expired", svc.Slice().Error(OpRestore))
	})
}

func TestService_Logout(t *testing.T) {
	svc, api, storage := setup()
	api.On(http.MethodPost, "/auth/login", loginBody)
	api.Fail(http.MethodPost, "/auth/logout", &core.APIError{Status: http.StatusInternalServerError})

	var hooks int
	svc.OnLogout(func() { hooks++ })

	require.NoError(t, svc.Login(context.Background(), Credentials{Email: "asha@school.in", Password: "secret123"}).Wait())
	require.True(t, svc.Authenticated())

	require.NoError(t, svc.Logout(context.Background()).Wait())
	assert.False(t, svc.Authenticated())
	assert.Equal(t, "", testutil.Token(t, storage))
	assert.Equal(t, 1, hooks)
	_, ok := svc.User()
	assert.False(t, ok)
}

func TestService_ForceLogout(t *testing.T) {
	svc, api, storage := setup()
	api.On(http.MethodPost, "/auth/login", loginBody)
	require.NoError(t, svc.Login(context.Background(), Credentials{Email: "asha@school.in", Password: "secret123"}).Wait())

	var hooks int
	svc.OnLogout(func() { hooks++ })
	svc.ForceLogout()

	assert.False(t, svc.Authenticated())
	assert.Equal(t, "", testutil.Token(t, storage))
	assert.Equal(t, 1, hooks)
	assert.Equal(t, "", svc.Role())
}

func TestService_UpdateProfile(t *testing.T) {
	svc, api, _ := setup()
	api.On(http.MethodPost, "/auth/login", loginBody)
	api.On(http.MethodPut, "/auth/profile", `{"data":{"user":{"id":"u1","name":"Asha R.","email":"asha@school.in","role":"principal"}}}`)
	require.NoError(t, svc.Login(context.Background(), Credentials{Email: "asha@school.in", Password: "secret123"}).Wait())

	require.NoError(t, svc.UpdateProfile(context.Background(), ProfileUpdate{Name: "  Asha R. "}).Wait())
	usr, _ := svc.User()
	assert.Equal(t, "Asha R.", usr.Name)
	assert.Equal(t, "Asha R.", api.Last().Body.(ProfileUpdate).Name)

	err := svc.UpdateProfile(context.Background(), ProfileUpdate{Email: "nope"}).Wait()
	assert.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestService_ChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		pc      PasswordChange
		wantErr string
	}{
		{name: "valid", pc: PasswordChange{CurrentPassword: "old-secret", NewPassword: "new-secret", PasswordConfirm: "new-secret"}},
		{
			name:    "mismatch",
			pc:      PasswordChange{CurrentPassword: "old-secret", NewPassword: "new-secret", PasswordConfirm: "other-secret"},
			wantErr: "confirmPassword: confirmPassword must be equal to NewPassword",
		},
		{
			name:    "too short",
			pc:      PasswordChange{CurrentPassword: "old-secret", NewPassword: "short", PasswordConfirm: "short"},
			wantErr: "newPassword: newPassword must be at least 8 characters in length",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api, _ := setup()
			api.On(http.MethodPost, "/auth/change-password", `{"success":true}`)

			_ = svc.ChangePassword(context.Background(), tt.pc).Wait()
			assert.Equal(t, tt.wantErr, svc.Slice().Error(OpPassword))
		})
	}
}

func TestService_ForgotPassword(t *testing.T) {
	svc, api, _ := setup()
	api.On(http.MethodPost, "/auth/forgot-password", `{"message":"sent"}`)

	require.NoError(t, svc.ForgotPassword(context.Background(), " Asha@School.in").Wait())
	assert.Equal(t, `{"email":"asha@school.in"}`, testutil.BodyJSON(api.Last()))
}

func TestNavigationFor(t *testing.T) {
	tests := []struct {
		role     string
		page     string
		wantPass bool
	}{
		{role: RolePrincipal, page: PageTeachers, wantPass: true},
		{role: RolePrincipal, page: PageSuggestions},
		{role: RoleTeacher, page: PageSuggestions, wantPass: true},
		{role: RoleTeacher, page: PageTeachers},
		{role: "", page: PageDashboard},
	}
	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.page, func(t *testing.T) {
			if got := CanAccess(tt.role, tt.page); got != tt.wantPass {
				t.Errorf("CanAccess() = %v, want %v", got, tt.wantPass)
			}
		})
	}
	assert.Empty(t, NavigationFor("student"))
	assert.Equal(t, PageDashboard, NavigationFor(RoleTeacher)[0].Page)
}
