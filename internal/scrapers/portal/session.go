package portal

import (
	"net/http"
	"net/url"
	"sync"
)

// Session holds everything the portal correlates requests by. It implements
// http.CookieJar so cookies from every hop (redirects included) are merged into it
// and sent back on every request.
//
// Cookies are only ever merged, a cookie the server sets again overwrites the value of the
// same name but nothing is removed until Clear is called.
type Session struct {
	mutex         sync.Mutex
	cookies       map[string]string
	order         []string
	token         string
	authenticated bool
}

func NewSession() *Session {
	return &Session{cookies: map[string]string{}}
}

func (s *Session) SetCookies(_ *url.URL, cookies []*http.Cookie) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		if _, exists := s.cookies[c.Name]; !exists {
			s.order = append(s.order, c.Name)
		}
		s.cookies[c.Name] = c.Value
	}
}

func (s *Session) Cookies(_ *url.URL) []*http.Cookie {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	out := make([]*http.Cookie, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, &http.Cookie{Name: name, Value: s.cookies[name]})
	}
	return out
}

// CookieMap returns a copy of the current cookies.
func (s *Session) CookieMap() map[string]string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	out := make(map[string]string, len(s.cookies))
	for k, v := range s.cookies {
		out[k] = v
	}
	return out
}

// Token returns the continuation token observed in the post-login redirect, if any.
func (s *Session) Token() (string, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.token, s.token != ""
}

func (s *Session) setToken(token string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.token = token
}

func (s *Session) Authenticated() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.authenticated
}

func (s *Session) setAuthenticated(authenticated bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.authenticated = authenticated
}

// Clear wipes cookies, token and the authenticated flag, it is safe to call repeatedly.
func (s *Session) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.cookies = map[string]string{}
	s.order = nil
	s.token = ""
	s.authenticated = false
}
