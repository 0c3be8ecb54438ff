package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/mycms/config"
	"github.com/rpupo63/mycms/errs"
)

func newTestManager() *SessionManager {
	return NewSessionManager([]byte("test-secret-key-for-jwt-signing"), time.Hour, false)
}

func TestSessionManager_IssueVerify(t *testing.T) {
	m := newTestManager()
	want := Identity{UserID: 7, Username: "testuser"}

	token, expiresAt, err := m.Issue(want)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSessionManager_VerifyRejects(t *testing.T) {
	m := newTestManager()
	other := NewSessionManager([]byte("different-secret"), time.Hour, false)
	foreign, _, err := other.Issue(Identity{UserID: 1, Username: "x"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "not-a-jwt-token"},
		{"malformed JWT", "header.payload.signature"},
		{"wrong secret", foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, errs.ErrInvalidSession)
		})
	}
}

func TestSessionManager_Expired(t *testing.T) {
	m := newTestManager()
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.Issue(Identity{UserID: 1, Username: "x"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, errs.ErrExpiredSession)
}

func TestSessionManager_Cookies(t *testing.T) {
	m := NewSessionManager([]byte("secret"), time.Hour, true)
	rec := httptest.NewRecorder()
	require.NoError(t, m.SetCookie(rec, Identity{UserID: 3, Username: "brett_stable"}))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	id, err := m.FromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 3, Username: "brett_stable"}, id)

	_, err = m.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, errs.ErrInvalidSession)

	rec = httptest.NewRecorder()
	m.ClearCookie(rec)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)
	assert.Negative(t, cleared[0].MaxAge)
}

func TestSessionManagerFromConfig(t *testing.T) {
	m := SessionManagerFromConfig(config.Config{
		"SESSION_SECRET":    "s3cret",
		"SESSION_TTL_HOURS": "2",
		"SECURE_COOKIES":    "true",
	})
	assert.Equal(t, []byte("s3cret"), m.secret)
	assert.Equal(t, 2*time.Hour, m.ttl)
	assert.True(t, m.secure)

	m = SessionManagerFromConfig(config.Config{})
	assert.NotEmpty(t, m.secret)
	assert.Equal(t, defaultSessionTTL, m.ttl)
	assert.False(t, m.secure)
}

func TestIdentityContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: 1, Username: "testuser"})
	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "testuser", id.Username)
}
