package browser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/hpungsan/plusblocks/internal/fsutil"
)

// Cookie is the persisted form of one browser cookie. Expires is Unix seconds;
// -1 marks a session cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
}

// CookieJar is the cookies.json document. SavedAt is Unix milliseconds.
type CookieJar struct {
	Cookies []Cookie `json:"cookies"`
	SavedAt int64    `json:"savedAt"`
}

// AuthState summarizes the stored session.
type AuthState struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	CookiesExist    bool  `json:"cookiesExist"`
	CookiesExpired  bool  `json:"cookiesExpired"`
	LastLoginAt     int64 `json:"lastLoginAt,omitempty"`
}

// SessionStore persists the authenticated session's cookies.
type SessionStore struct {
	path string
}

// NewSessionStore stores cookies at path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Path returns the cookie file location.
func (s *SessionStore) Path() string { return s.path }

// Save writes cookies with owner-only permissions.
func (s *SessionStore) Save(cookies []Cookie) error {
	jar := CookieJar{Cookies: cookies, SavedAt: time.Now().UnixMilli()}
	if _, err := fsutil.WriteJSON(s.path, jar, 0600); err != nil {
		return fmt.Errorf("write cookies: %w", err)
	}
	return nil
}

// Load reads the jar, normalizing missing fields. A missing or unreadable file
// yields ok=false.
func (s *SessionStore) Load() (*CookieJar, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false
	}
	var raw struct {
		Cookies []struct {
			Name     string   `json:"name"`
			Value    string   `json:"value"`
			Domain   *string  `json:"domain"`
			Path     *string  `json:"path"`
			Expires  *float64 `json:"expires"`
			HTTPOnly *bool    `json:"httpOnly"`
			Secure   *bool    `json:"secure"`
		} `json:"cookies"`
		SavedAt int64 `json:"savedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	jar := &CookieJar{SavedAt: raw.SavedAt, Cookies: make([]Cookie, 0, len(raw.Cookies))}
	for _, c := range raw.Cookies {
		n := Cookie{Name: c.Name, Value: c.Value, Path: "/", Expires: -1}
		if c.Domain != nil {
			n.Domain = *c.Domain
		}
		if c.Path != nil {
			n.Path = *c.Path
		}
		if c.Expires != nil {
			n.Expires = *c.Expires
		}
		if c.HTTPOnly != nil {
			n.HTTPOnly = *c.HTTPOnly
		}
		if c.Secure != nil {
			n.Secure = *c.Secure
		}
		jar.Cookies = append(jar.Cookies, n)
	}
	return jar, true
}

// Clear removes the stored session.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// AuthState reports whether a usable session exists at now. A jar counts as
// authenticated if any cookie is a session cookie or expires after now.
func (s *SessionStore) AuthState(now time.Time) AuthState {
	jar, ok := s.Load()
	if !ok {
		return AuthState{}
	}
	state := AuthState{CookiesExist: true, LastLoginAt: jar.SavedAt}
	nowSec := float64(now.Unix())
	for _, c := range jar.Cookies {
		if c.Expires == -1 || c.Expires > nowSec {
			state.IsAuthenticated = true
			break
		}
	}
	state.CookiesExpired = !state.IsAuthenticated
	return state
}

// Params converts the jar for page.SetCookies.
func (j *CookieJar) Params() []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(j.Cookies))
	for _, c := range j.Cookies {
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires != -1 {
			p.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		params = append(params, p)
	}
	return params
}

// FromNetworkCookies converts cookies read from a live page.
func FromNetworkCookies(cookies []*proto.NetworkCookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		expires := float64(c.Expires)
		if c.Session || expires <= 0 {
			expires = -1
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		out = append(out, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     path,
			Expires:  expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}
	return out
}
