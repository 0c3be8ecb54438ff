package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/mycms/config"
	"github.com/rpupo63/mycms/errs"
)

// CookieName is the cookie holding the signed session token
const CookieName = "mycms_session"

const defaultSessionTTL = 14 * 24 * time.Hour

// Identity is the authenticated user a request acts for
type Identity struct {
	UserID   uint
	Username string
}

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HS256 signed session cookies
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(secret []byte, ttl time.Duration, secure bool) *SessionManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionManager{
		secret: secret,
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// SessionManagerFromConfig reads SESSION_SECRET, SESSION_TTL_HOURS and
// SECURE_COOKIES. Without a secret a random one is used, so sessions do not
// survive a restart.
func SessionManagerFromConfig(c config.Config) *SessionManager {
	secret := config.GetString(c, "SESSION_SECRET", "")
	if secret == "" {
		log.Warn().Msg("SESSION_SECRET not set, using a random secret")
		secret = uuid.NewString() + uuid.NewString()
	}
	ttl := time.Duration(config.GetInt(c, "SESSION_TTL_HOURS", 0)) * time.Hour
	return NewSessionManager([]byte(secret), ttl, config.GetBool(c, "SECURE_COOKIES", false))
}

// Issue signs a session token for id
func (m *SessionManager) Issue(id Identity) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := sessionClaims{
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(id.UserID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, expiresAt, nil
}

// Verify checks the token signature and expiry and returns the identity it carries
func (m *SessionManager) Verify(tokenString string) (Identity, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, errs.ErrExpiredSession
		}
		return Identity{}, fmt.Errorf("%w: %v", errs.ErrInvalidSession, err)
	}
	if !token.Valid {
		return Identity{}, errs.ErrInvalidSession
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return Identity{}, fmt.Errorf("%w: bad subject %q", errs.ErrInvalidSession, claims.Subject)
	}
	return Identity{UserID: uint(userID), Username: claims.Username}, nil
}

// FromRequest returns the identity in the request's session cookie
func (m *SessionManager) FromRequest(r *http.Request) (Identity, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Identity{}, errs.ErrInvalidSession
	}
	return m.Verify(cookie.Value)
}

// SetCookie starts a session for id
func (m *SessionManager) SetCookie(w http.ResponseWriter, id Identity) error {
	token, expiresAt, err := m.Issue(id)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie ends the session in the browser
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
