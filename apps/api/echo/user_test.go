package echoapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core/user"
	testutil "github.com/trezcool/shule/tests"
)

func Test_home(t *testing.T) {
	_, app := newApp(t)
	runHTTPTests(t, app, []httpTest{
		{name: "welcome", path: "/", wantData: okBody(t, "Welcome to Shule API!", nil)},
		{name: "unknown route", path: "/v1/lol", wantCode: http.StatusNotFound, wantData: errBody(t, "Not Found")},
		{
			name: "method not allowed", method: http.MethodPatch, path: "/v1/auth/login",
			wantCode: http.StatusMethodNotAllowed, wantData: errBody(t, "Method Not Allowed"),
		},
	})
}

func Test_authApi_login(t *testing.T) {
	s, app := newApp(t)
	admin := testutil.CreateAdmin(t, s, "Admin", "admin@test.cd")
	testutil.CreateUser(t, s, "Naughty", "naughty@test.cd", user.RoleStudent, false)

	path := "/v1/auth/login"
	badCreds := errBody(t, "authentication failed")
	creds := func(email, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Email: email, Password: pwd})
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "empty body", method: http.MethodPost, path: path, body: []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: errBody(t, "email: this field is required; password: this field is required", map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "unknown email", method: http.MethodPost, path: path, body: creds("lol@test.cd", testutil.Password),
			wantCode: http.StatusBadRequest, wantData: badCreds,
		},
		{
			name: "wrong password", method: http.MethodPost, path: path, body: creds("admin@test.cd", "Wrong#Pass99"),
			wantCode: http.StatusBadRequest, wantData: badCreds,
		},
		{
			name: "deactivated", method: http.MethodPost, path: path, body: creds("naughty@test.cd", testutil.Password),
			wantCode: http.StatusForbidden, wantData: errBody(t, "account deactivated"),
		},
	})

	t.Run("success", func(t *testing.T) {
		// email is matched case-insensitively
		rec := do(app, httpTest{method: http.MethodPost, path: path, body: creds(" ADMIN@test.cd ", testutil.Password)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.LoginResponse
		decodeData(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		require.NotNil(t, resp.User)
		assert.Equal(t, admin.ID, resp.User.ID)
		assert.NotNil(t, resp.User.LastLogin)

		me := do(app, httpTest{path: "/v1/auth/me", token: resp.Token})
		assert.Equal(t, http.StatusOK, me.Code, me.Body.String())
	})
}

func Test_authApi_me(t *testing.T) {
	s, app := newApp(t)
	admin := testutil.CreateAdmin(t, s, "Admin", "admin@test.cd")
	teacher := testutil.CreateStaff(t, s, "Teacher", "teacher@test.cd")
	class := testutil.CreateClass(t, s, "Grade 1", "2024-2025")
	pupil := testutil.CreateStudent(t, s, "Pupil", "pupil@test.cd", class.ID, testutil.StudentOpts{})

	type profile struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
	}
	type me struct {
		User    user.User `json:"user"`
		Profile *profile  `json:"profile"`
	}

	tests := []struct {
		name        string
		usr         user.User
		wantProfile string
	}{
		{name: "admin has no profile", usr: admin},
		{name: "staff", usr: *teacher.User, wantProfile: teacher.ID},
		{name: "student", usr: *pupil.User, wantProfile: pupil.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(app, httpTest{path: "/v1/auth/me", token: getToken(t, s, tt.usr)})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var got me
			decodeData(t, rec, &got)
			assert.Equal(t, tt.usr.ID, got.User.ID)
			if tt.wantProfile == "" {
				assert.Nil(t, got.Profile)
				return
			}
			require.NotNil(t, got.Profile)
			assert.Equal(t, tt.wantProfile, got.Profile.ID)
			assert.Equal(t, tt.usr.ID, got.Profile.UserID)
		})
	}
}

func Test_authApi_refreshToken(t *testing.T) {
	s, app := newApp(t)
	admin := testutil.CreateAdmin(t, s, "Admin", "admin@test.cd")
	naughty := testutil.CreateUser(t, s, "Naughty", "naughty@test.cd", user.RoleStudent, false)

	path := "/v1/auth/token-refresh"
	stale, err := echoapi.GenerateToken(
		echoapi.GetUserClaims(admin, s.Conf, time.Now().Add(-s.Conf.Server.JWTRefreshExpirationDelta-time.Minute).Unix()),
		s.Conf.SecretKey,
	)
	require.NoError(t, err)
	forged, err := echoapi.GenerateToken(echoapi.GetUserClaims(admin, s.Conf), "not-the-secret")
	require.NoError(t, err)

	runHTTPTests(t, app, []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: path,
			wantCode: http.StatusUnauthorized, wantData: errBody(t, "missing or malformed jwt"),
		},
		{
			name: "forged token", method: http.MethodPost, path: path, token: forged,
			wantCode: http.StatusUnauthorized, wantData: errBody(t, "invalid or expired jwt"),
		},
		{
			name: "deactivated", method: http.MethodPost, path: path, token: getToken(t, s, naughty),
			wantCode: http.StatusForbidden, wantData: errBody(t, "account deactivated"),
		},
		{
			name: "refresh expired", method: http.MethodPost, path: path, token: stale,
			wantCode: http.StatusForbidden, wantData: errBody(t, "refresh has expired"),
		},
	})

	t.Run("success", func(t *testing.T) {
		rec := do(app, httpTest{method: http.MethodPost, path: path, token: getToken(t, s, admin)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.LoginResponse
		decodeData(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Nil(t, resp.User)
	})
}

func Test_authApi_passwordReset(t *testing.T) {
	s, app := newApp(t)
	usr := testutil.CreateStaff(t, s, "Teacher", "teacher@test.cd")
	s.Mail.Reset()

	requested := okBody(t, "If the email address supplied is associated with an active account on this system, "+
		"an email will arrive in your inbox shortly with instructions to reset your password.", nil)

	runHTTPTests(t, app, []httpTest{
		{
			name: "invalid email", method: http.MethodPost, path: "/v1/auth/password-reset",
			body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol"}), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/v1/auth/password-reset",
			body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@test.cd"}), wantData: requested,
		},
	})
	require.Empty(t, s.Mail.Sent(), "no mail for unknown accounts")

	rec := do(app, httpTest{
		method: http.MethodPost, path: "/v1/auth/password-reset",
		body: marchallObj(t, echoapi.PasswordResetRequest{Email: "TEACHER@test.cd"}),
	})
	checkCodeAndData(t, httpTest{wantData: requested}, rec)

	sent := s.Mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "teacher@test.cd", sent[0].To[0].Address)
	data, isMap := sent[0].TemplateData.(map[string]string)
	require.True(t, isMap, "TemplateData = %T", sent[0].TemplateData)

	newPwd := "Nw9!kTr4Qp"
	confirm := func(uid, token string) []byte {
		return marchallObj(t, user.ResetUserPassword{UID: uid, Token: token, Password: newPwd, PasswordConfirm: newPwd})
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "invalid token", method: http.MethodPost, path: "/v1/auth/password-reset-confirm",
			body: confirm(data["UID"], "lol"), wantCode: http.StatusBadRequest,
		},
		{
			name: "invalid uid", method: http.MethodPost, path: "/v1/auth/password-reset-confirm",
			body: confirm("lol", data["Token"]), wantCode: http.StatusBadRequest,
		},
		{
			name: "success", method: http.MethodPost, path: "/v1/auth/password-reset-confirm",
			body: confirm(data["UID"], data["Token"]),
			wantData: okBody(t, "Password has been reset with the new password.", nil),
		},
	})

	login := do(app, httpTest{
		method: http.MethodPost, path: "/v1/auth/login",
		body: marchallObj(t, echoapi.LoginRequest{Email: usr.User.Email, Password: newPwd}),
	})
	assert.Equal(t, http.StatusOK, login.Code, login.Body.String())
}

func Test_userApi(t *testing.T) {
	s, app := newApp(t)
	admin := testutil.CreateAdmin(t, s, "Admin", "admin@test.cd")
	staffUsr := testutil.CreateUser(t, s, "Staff", "staff@test.cd", user.RoleStaff, true)
	other := testutil.CreateUser(t, s, "Other", "other@test.cd", user.RoleParent, true)

	adminToken := getToken(t, s, admin)
	staffToken := getToken(t, s, staffUsr)

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: errBody(t, "missing or malformed jwt")},
		{
			name: "admin required", path: "/v1/users", token: staffToken,
			wantCode: http.StatusForbidden, wantData: errBody(t, "permission denied"),
		},
		{name: "roles", path: "/v1/users/roles", token: adminToken, wantData: okBody(t, "", user.Roles)},
		{name: "own account", path: "/v1/users/" + staffUsr.ID, token: staffToken, wantData: okBody(t, "", staffUsr)},
		{
			name: "someone else's account", path: "/v1/users/" + other.ID, token: staffToken,
			wantCode: http.StatusNotFound, wantData: errBody(t, "not found"),
		},
		{name: "admin sees anyone", path: "/v1/users/" + other.ID, token: adminToken, wantData: okBody(t, "", other)},
		{
			name: "unknown user", path: "/v1/users/00000000-0000-0000-0000-000000000000", token: adminToken,
			wantCode: http.StatusNotFound, wantData: errBody(t, "user not found"),
		},
		{
			name: "non admin cannot change role", method: http.MethodPut, path: "/v1/users/" + staffUsr.ID,
			token: staffToken, body: marchallObj(t, map[string]string{"role": user.RoleAdmin}),
			wantCode: http.StatusForbidden, wantData: errBody(t, "permission denied"),
		},
		{
			name: "no self deletion", method: http.MethodDelete, path: "/v1/users/" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: errBody(t, "permission denied"),
		},
		{
			name: "no self deletion (multiple)", method: http.MethodDelete,
			path: "/v1/users?id=" + other.ID + "&id=" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: errBody(t, "permission denied"),
		},
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := do(app, httpTest{
			method: http.MethodPost, path: "/v1/users", token: adminToken,
			body: marchallObj(t, user.NewUser{
				Name: "Copy", Email: "STAFF@test.cd", Role: user.RoleStaff,
				Password: testutil.Password, PasswordConfirm: testutil.Password,
			}),
		})
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

		resp := decodeResponse(t, rec)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Errors, "email")
	})

	t.Run("create and update", func(t *testing.T) {
		rec := do(app, httpTest{
			method: http.MethodPost, path: "/v1/users", token: adminToken,
			body: marchallObj(t, user.NewUser{
				Name: "New", Email: "new@test.cd", Role: user.RoleStaff,
				Password: testutil.Password, PasswordConfirm: testutil.Password,
			}),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var created user.User
		decodeData(t, rec, &created)
		assert.Equal(t, "new@test.cd", created.Email)
		assert.True(t, created.IsActive)

		newToken := getToken(t, s, created)
		rec = do(app, httpTest{
			method: http.MethodPut, path: "/v1/users/" + created.ID, token: newToken,
			body: marchallObj(t, map[string]string{"name": "Renamed"}),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated user.User
		decodeData(t, rec, &updated)
		assert.Equal(t, "Renamed", updated.Name)
	})

	t.Run("deactivated users are locked out", func(t *testing.T) {
		inactive := false
		_, err := s.Users.Update(context.Background(), other.ID, user.UpdateUser{IsActive: &inactive})
		require.NoError(t, err)

		rec := do(app, httpTest{path: "/v1/auth/me", token: getToken(t, s, other)})
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: errBody(t, "account deactivated")}, rec)
	})

	t.Run("delete", func(t *testing.T) {
		rec := do(app, httpTest{method: http.MethodDelete, path: "/v1/users/" + other.ID, token: adminToken})
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = do(app, httpTest{path: "/v1/users/" + other.ID, token: adminToken})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
