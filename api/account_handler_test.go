package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/mycms/auth"
	"github.com/rpupo63/mycms/errs"
)

func TestSignup_Get(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.get(t, "/signup/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h2>Sign Up</h2>")
	assert.Contains(t, body, `<form method="post">`)
	assert.Contains(t, body, `<button type="submit" class="button-primary">Sign Up</button>`)
	assert.Contains(t, body, "<h2>myCMS</h2>")
	assert.NotContains(t, body, "Log out")
}

func TestSignup_CreatesUser(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.post(t, "/signup/", url.Values{
		"username":  {"newuser"},
		"password1": {"ijqs9283bfu"},
		"password2": {"ijqs9283bfu"},
	}, nil)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	user, err := env.db.UserRepo().FindByUsername(context.Background(), "newuser")
	require.NoError(t, err)
	assert.True(t, user.CheckPassword("ijqs9283bfu"))
}

func TestSignup_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "invalid username", username: "dan!", password: "ijqs9283bfu"},
		{name: "invalid password", username: "danmolloy1", password: "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t)

			rec := env.post(t, "/signup/", url.Values{
				"username":  {tt.username},
				"password1": {tt.password},
				"password2": {tt.password},
			}, nil)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `class="error"`)
			_, err := env.db.UserRepo().FindByUsername(context.Background(), tt.username)
			assert.True(t, errs.IsNotFound(err))
		})
	}
}

func TestSignup_TakenUsername(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "testuser")

	rec := env.post(t, "/signup/", url.Values{
		"username":  {"testuser"},
		"password1": {"ijqs9283bfu"},
		"password2": {"ijqs9283bfu"},
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "A user with that username already exists.")
}

func TestLogin(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "testuser")

	rec := env.post(t, "/accounts/login/", url.Values{"username": {"testuser"}, "password": {testPassword}}, nil)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	id, err := env.sessions.Verify(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
}

func TestLogin_Next(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "testuser")

	tests := []struct {
		next string
		want string
	}{
		{next: "/create/", want: "/create/"},
		{next: "", want: "/"},
		{next: "//evil.example/", want: "/"},
		{next: "https://evil.example/", want: "/"},
	}
	for _, tt := range tests {
		rec := env.post(t, "/accounts/login/", url.Values{
			"username": {"testuser"},
			"password": {testPassword},
			"next":     {tt.next},
		}, nil)
		require.Equal(t, http.StatusFound, rec.Code, tt.next)
		assert.Equal(t, tt.want, rec.Header().Get("Location"), tt.next)
	}
}

func TestLogin_Failures(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "testuser")

	for _, form := range []url.Values{
		{"username": {"testuser"}, "password": {"wrong-password"}},
		{"username": {"nobody"}, "password": {testPassword}},
		{"username": {"testuser"}},
	} {
		rec := env.post(t, "/accounts/login/", form, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please enter a correct username and password.")
		assert.Empty(t, rec.Result().Cookies())
	}
}

func TestLoginPage(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "testuser")

	rec := env.get(t, "/accounts/login/?next=/create/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="next" value="/create/"`)

	rec = env.get(t, "/accounts/login/?next=/create/", user)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/create/", rec.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "testuser")

	rec := env.post(t, "/accounts/logout/", nil, user)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/accounts/login/", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestSession_DeletedUser(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "testuser")
	require.NoError(t, env.db.UserRepo().Delete(context.Background(), user.ID))

	// the cookie still verifies but names a user that is gone
	rec := env.get(t, "/", user)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/accounts/login/?next=/", rec.Header().Get("Location"))
}

func TestLoginURLAndSafeNext(t *testing.T) {
	assert.Equal(t, "/accounts/login/?next=/", loginURL("/"))
	assert.Equal(t, "/accounts/login/?next=/posts/1/%3Fa%3Db%26c%3Dd", loginURL("/posts/1/?a=b&c=d"))

	for next, want := range map[string]string{
		"/":                   "/",
		"/update/3/":          "/update/3/",
		"":                    "/",
		"create/":             "/",
		"//evil.example":      "/",
		"/\\evil.example":     "/",
		"http://evil.example": "/",
	} {
		assert.Equal(t, want, safeNext(next), next)
	}
}
