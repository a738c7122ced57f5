package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionManager orchestrates cookie based sessions backed by Redis.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session holds per-request session data.
type Session struct {
	ID           string
	values       map[string]string
	userID       string
	email        string
	roleID       string
	loginPending bool
	manager      *SessionManager
	isNew        bool
	dirty        bool
	destroyed    bool
	ttlOverride  time.Duration
}

type sessionPayload struct {
	Values       map[string]string `json:"values"`
	UserID       string            `json:"user_id"`
	Email        string            `json:"email"`
	RoleID       string            `json:"role_id"`
	LoginPending bool              `json:"login_pending"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load loads or creates a new session for request.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}

	payload, err := sm.client.Get(ctx, sm.redisKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			sess := sm.newSession()
			sess.ID = cookie.Value
			sess.isNew = true
			return sess, nil
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}

	sess := sm.newSession()
	sess.ID = cookie.Value
	sess.values = stored.Values
	sess.userID = stored.UserID
	sess.email = stored.Email
	sess.roleID = stored.RoleID
	sess.loginPending = stored.LoginPending
	sess.isNew = false
	return sess, nil
}

// Commit persists the session and writes cookie headers as needed.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if err := sm.client.Del(ctx, sm.redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if sess.isNew && sess.ID == "" {
		sess.ID = sm.generateSessionID()
	}

	ttl := sm.ttl
	if sess.ttlOverride > 0 {
		ttl = sess.ttlOverride
	}

	if sess.dirty || sess.isNew {
		if err := sm.persist(ctx, sess); err != nil {
			return err
		}
	}

	if sess.ID != "" {
		cookie := &http.Cookie{
			Name:     sm.cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
			Expires:  time.Now().Add(ttl),
		}
		http.SetCookie(w, cookie)
	}

	return nil
}

// Save writes the session to the store immediately, without touching
// the response. Use it when another request must observe the state
// before this one's response commits, such as the login-pending flag
// read by guards in concurrently mounted requests.
func (sm *SessionManager) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.destroyed {
		return nil
	}
	if sess.isNew && sess.ID == "" {
		sess.ID = sm.generateSessionID()
	}
	return sm.persist(ctx, sess)
}

func (sm *SessionManager) persist(ctx context.Context, sess *Session) error {
	ttl := sm.ttl
	if sess.ttlOverride > 0 {
		ttl = sess.ttlOverride
	}
	data, err := json.Marshal(sessionPayload{
		Values:       sess.values,
		UserID:       sess.userID,
		Email:        sess.email,
		RoleID:       sess.roleID,
		LoginPending: sess.loginPending,
	})
	if err != nil {
		return err
	}
	if err := sm.client.Set(ctx, sm.redisKey(sess.ID), data, ttl).Err(); err != nil {
		return err
	}
	sess.dirty = false
	return nil
}

// Destroy marks the session for deletion.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// Session helpers

// Set stores a key-value pair.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	s.dirty = true
}

// Get retrieves a value.
func (s *Session) Get(key string) string {
	if s.values == nil {
		return ""
	}
	return s.values[key]
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	if s.values == nil {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// SetPrincipal associates the session with an authenticated account.
func (s *Session) SetPrincipal(userID, email, roleID string) {
	s.userID = userID
	s.email = email
	s.roleID = roleID
	s.dirty = true
}

// User returns the current user ID.
func (s *Session) User() string {
	return s.userID
}

// Email returns the email recorded at login.
func (s *Session) Email() string {
	return s.email
}

// RoleID returns the catalog role recorded at login.
func (s *Session) RoleID() string {
	return s.roleID
}

// SetLoginPending marks a credential exchange as in flight. While set,
// guards suppress the unauthenticated redirect so a half-established
// login is not bounced back to the login page.
func (s *Session) SetLoginPending(pending bool) {
	if s.loginPending == pending {
		return
	}
	s.loginPending = pending
	s.dirty = true
}

// LoginPending reports whether a credential exchange is in flight.
func (s *Session) LoginPending() bool {
	return s.loginPending
}

// ExtendTTL overrides the lifetime used on the next commit. Used by
// remember-me logins.
func (s *Session) ExtendTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.ttlOverride = ttl
	s.dirty = true
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		ID:      sm.generateSessionID(),
		values:  make(map[string]string),
		manager: sm,
		isNew:   true,
		dirty:   true,
	}
}

func (sm *SessionManager) redisKey(id string) string {
	return "session:" + id
}

func (sm *SessionManager) generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	if len(sm.secret) > 0 {
		for i := range b {
			b[i] ^= sm.secret[i%len(sm.secret)]
		}
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
