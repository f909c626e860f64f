// Package auth holds the per-request authentication context and the token
// stores behind it.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const defaultCookieAge = 365 * 24 * time.Hour

type Options struct {
	CookieName string
	Secure     bool
	// TTL bounds how long a stored token is kept. Zero keeps it until logout.
	TTL time.Duration
	// CheckExpiry drops JWTs whose exp claim has passed instead of treating
	// mere presence as authenticated.
	CheckExpiry bool
}

// Manager loads and mutates the token state of a browser session.
type Manager struct {
	store Store
	opts  Options
	now   func() time.Time
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "gc_sid"
	}
	return &Manager{store: store, opts: opts, now: time.Now}
}

// Context is the authentication state of one request.
type Context struct {
	sessionID string
	token     string
	claims    Claims
}

func (c *Context) Token() string {
	if c == nil {
		return ""
	}
	return c.token
}

func (c *Context) Authenticated() bool {
	return c.Token() != ""
}

// Username is the token subject when the token is a readable JWT.
func (c *Context) Username() string {
	if c == nil {
		return ""
	}
	return c.claims.Subject
}

// Load reads the browser session cookie and the token stored for it. A
// missing cookie or token yields an unauthenticated Context, not an error.
func (m *Manager) Load(r *http.Request) (*Context, error) {
	ac := &Context{}
	ck, err := r.Cookie(m.opts.CookieName)
	if err != nil || ck.Value == "" {
		return ac, nil
	}
	ac.sessionID = ck.Value

	key := StorageKey(ac.sessionID)
	token, err := m.store.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return ac, nil
		}
		return ac, err
	}

	claims, ok := InspectToken(token)
	if ok && m.opts.CheckExpiry && claims.Expired(m.now()) {
		_ = m.store.Remove(r.Context(), key)
		return ac, nil
	}
	ac.token = token
	ac.claims = claims
	return ac, nil
}

// Save stores token for the browser. A fresh session id is issued on every
// save so a pre-login cookie never carries an authenticated session.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, ac *Context, token string) error {
	if ac.sessionID != "" {
		_ = m.store.Remove(ctx, StorageKey(ac.sessionID))
	}

	sid := uuid.NewString()
	if err := m.store.Put(ctx, StorageKey(sid), token, m.opts.TTL); err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(sid))

	ac.sessionID = sid
	ac.token = token
	ac.claims, _ = InspectToken(token)
	return nil
}

// Clear removes the stored token and expires the cookie.
func (m *Manager) Clear(ctx context.Context, w http.ResponseWriter, ac *Context) error {
	var err error
	if ac.sessionID != "" {
		err = m.store.Remove(ctx, StorageKey(ac.sessionID))
	}
	expired := m.cookie("")
	expired.MaxAge = -1
	http.SetCookie(w, expired)

	ac.sessionID = ""
	ac.token = ""
	ac.claims = Claims{}
	return err
}

func (m *Manager) cookie(value string) *http.Cookie {
	age := m.opts.TTL
	if age <= 0 {
		age = defaultCookieAge
	}
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
