package portal

import (
	"classsync-backend/internal/components/telemetry"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const loginPage = `<html><body>
<form id="search" action="/search"><input type="text" name="q"></form>
<form id="loginForm" method="post" action="/login.xhtml">
	<input type="hidden" name="loginForm" value="loginForm">
	<input type="text" name="loginForm:username">
	<input type="password" name="loginForm:password">
	<input type="checkbox" name="loginForm:remember">
	<input type="hidden" name="javax.faces.ViewState" value="vs123">
	<button type="button" name="help">Help</button>
	<input type="submit" name="submitBtn" value="Login">
</form>
</body></html>`

const expectedLoginBody = "loginForm=loginForm&loginForm%3Ausername=jc123456&loginForm%3Apassword=p%40ss+word&javax.faces.ViewState=vs123&submitBtn=Login"

type stubPortal struct {
	loginStatus int
	loginPage   string
	onSubmit    func(w http.ResponseWriter, r *http.Request)
	pages       map[string]string
	submitted   string
}

func (p *stubPortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/login.xhtml" && r.Method == http.MethodGet:
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "session-1"})
		status := p.loginStatus
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		io.WriteString(w, p.loginPage)
	case r.URL.Path == "/login.xhtml" && r.Method == http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		p.submitted = string(body)
		p.onSubmit(w, r)
	default:
		page, ok := p.pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, page)
	}
}

func newTestClient(t testing.TB, handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{
		BaseUrl:  server.URL,
		MainPath: "/student/dashboard.xhtml",
	}, telemetry.NewRecorder())
	if err != nil {
		t.Fatal(err)
	}
	return client, server
}

func TestLoginDumpRedactsPasswordField(t *testing.T) {
	portal := &stubPortal{
		loginPage: strings.Replace(loginPage, "loginForm:password", "loginForm:pwd", 1),
		onSubmit: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Location", "/student/dashboard.xhtml")
			w.WriteHeader(http.StatusFound)
		},
		pages: map[string]string{
			"/student/dashboard.xhtml": `<html><body><div class="ui-menubar">menu</div></body></html>`,
		},
	}
	server := httptest.NewServer(portal)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	client, err := NewClient(Options{
		BaseUrl:  server.URL,
		MainPath: "/student/dashboard.xhtml",
		DumpDir:  dir,
	}, telemetry.NewRecorder())
	require.NoError(t, err)

	require.NoError(t, client.Login(context.Background(), "jc123456", "hunter2"))
	require.Contains(t, portal.submitted, "loginForm%3Apwd=hunter2")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var posted bool
	for _, entry := range entries {
		contents, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		require.NoError(t, err)
		require.NotContains(t, string(contents), "hunter2", entry.Name())
		if strings.HasSuffix(entry.Name(), "-post.txt") {
			posted = true
			require.Contains(t, string(contents), "loginForm%3Apwd=<redacted>")
		}
	}
	require.True(t, posted)
}

func TestLoginRedirectToDashboard(t *testing.T) {
	portal := &stubPortal{
		loginPage: loginPage,
		onSubmit: func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("JSESSIONID")
			if err != nil || cookie.Value != "session-1" {
				http.Error(w, "missing session cookie", http.StatusBadRequest)
				return
			}
			http.SetCookie(w, &http.Cookie{Name: "AUTH", Value: "granted"})
			w.Header().Set("Location", "/student/dashboard.xhtml?token=abc%2B123")
			w.WriteHeader(http.StatusFound)
		},
		pages: map[string]string{
			"/student/dashboard.xhtml": `<html><body><div class="ui-menubar">menu</div></body></html>`,
		},
	}
	client, _ := newTestClient(t, portal)

	err := client.Login(context.Background(), "jc123456", "p@ss word")
	require.NoError(t, err)
	require.Equal(t, expectedLoginBody, portal.submitted)

	require.True(t, client.Authenticated())
	require.Equal(t, StateAuthenticated, client.State())

	cookies := client.Session().CookieMap()
	require.Equal(t, "session-1", cookies["JSESSIONID"])
	require.Equal(t, "granted", cookies["AUTH"])

	token, ok := client.Session().Token()
	require.True(t, ok)
	require.Equal(t, "abc+123", token)

	client.Logout()
	client.Logout()
	require.False(t, client.Authenticated())
	require.Empty(t, client.Session().CookieMap())
	_, ok = client.Session().Token()
	require.False(t, ok)
}

func TestLoginRejected(t *testing.T) {
	testCases := []struct {
		name     string
		response string
		message  string
	}{
		{
			name:     "password field still present",
			response: loginPage,
			message:  "invalid credentials",
		},
		{
			name:     "explicit error message",
			response: `<div class="ui-messages-error"><span>Account locked</span></div>` + loginPage,
			message:  "Account locked",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			portal := &stubPortal{
				loginPage: loginPage,
				onSubmit: func(w http.ResponseWriter, r *http.Request) {
					io.WriteString(w, test.response)
				},
			}
			client, _ := newTestClient(t, portal)

			err := client.Login(context.Background(), "jc123456", "wrong")
			require.ErrorIs(t, err, ErrAuth)
			require.Contains(t, err.Error(), test.message)
			require.False(t, client.Authenticated())
			require.Equal(t, StateLoggedOut, client.State())
		})
	}
}

func TestLoginFallsBackToMainPage(t *testing.T) {
	portal := &stubPortal{
		loginPage: loginPage,
		onSubmit: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		pages: map[string]string{
			"/student/dashboard.xhtml": `<html><body><h1>Welcome, Alice</h1></body></html>`,
		},
	}
	client, _ := newTestClient(t, portal)

	err := client.Login(context.Background(), "jc123456", "secret")
	require.NoError(t, err)
	require.True(t, client.Authenticated())
}

func TestLoginReasonUnknown(t *testing.T) {
	portal := &stubPortal{
		loginPage: loginPage,
		onSubmit: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	}
	client, _ := newTestClient(t, portal)

	err := client.Login(context.Background(), "jc123456", "secret")
	require.ErrorIs(t, err, ErrAuth)
	require.Contains(t, err.Error(), "login failed, reason unknown")
}

func TestFetchLoginFormFailures(t *testing.T) {
	t.Run("no form is a protocol error", func(t *testing.T) {
		client, _ := newTestClient(t, &stubPortal{loginPage: `<form><input name="q"></form>`})
		_, err := client.FetchLoginForm(context.Background())
		require.ErrorIs(t, err, ErrProtocol)
		require.Contains(t, err.Error(), "no login form")
	})

	t.Run("non 200 is a network error", func(t *testing.T) {
		client, _ := newTestClient(t, &stubPortal{loginPage: loginPage, loginStatus: http.StatusServiceUnavailable})
		_, err := client.FetchLoginForm(context.Background())
		require.ErrorIs(t, err, ErrNetwork)
		require.False(t, errors.Is(err, ErrProtocol))
	})

	t.Run("timeout is a network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client, err := NewClient(Options{
			BaseUrl: server.URL,
			Timeout: 20 * time.Millisecond,
		}, telemetry.NewRecorder())
		if err != nil {
			t.Fatal(err)
		}
		_, err = client.FetchLoginForm(context.Background())
		require.ErrorIs(t, err, ErrNetwork)
	})
}

func TestFindLoginForm(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(loginPage))
	if err != nil {
		t.Fatal(err)
	}

	form, ok := findLoginForm(doc, nil)
	require.True(t, ok)
	require.Equal(t, "/login.xhtml", form.Action.String())
	require.Equal(t, "loginForm:username", form.UsernameField)
	require.Equal(t, "loginForm:password", form.PasswordField)
	require.Equal(t, "vs123", form.ViewState)
	require.Equal(t, "submitBtn", form.SubmitName)
	require.Equal(t, "Login", form.SubmitValue)
	require.Equal(t, expectedLoginBody, form.Encode("jc123456", "p@ss word"))
}

func TestConfirmLogin(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		confirmed bool
		check     string
	}{
		{
			name:      "menu marker",
			body:      `<div class="ui-menubar"></div><input type="password">`,
			confirmed: true,
			check:     "menu",
		},
		{
			name:      "personalized welcome",
			body:      `<p>Welcome back, Alice!</p><input type="password">`,
			confirmed: true,
			check:     "welcome",
		},
		{
			name:      "generic welcome does not count",
			body:      `<p>Welcome to the student portal</p><input type="password">`,
			confirmed: false,
		},
		{
			name:      "schedule marker",
			body:      `<table id="form:weeklySchedule"></table><input type="password">`,
			confirmed: true,
			check:     "schedule",
		},
		{
			// weakest check, an interstitial page without a password field passes it too
			name:      "no password field",
			body:      `<p>Please wait while we redirect you...</p>`,
			confirmed: true,
			check:     "no-password-field",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(test.body))
			if err != nil {
				t.Fatal(err)
			}
			check, ok := confirmLogin(doc)
			require.Equal(t, test.confirmed, ok)
			require.Equal(t, test.check, check)
		})
	}
}

func TestExtractToken(t *testing.T) {
	require.Equal(t, "abc+123", extractToken("https://portal.test/dashboard.xhtml?x=1&token=abc%2B123#top"))
	require.Equal(t, "plain", extractToken("/dashboard.xhtml?token=plain"))
	require.Equal(t, "", extractToken("/dashboard.xhtml?mytoken=nope"))
	require.Equal(t, "", extractToken("/dashboard.xhtml"))
}

func TestSessionMerge(t *testing.T) {
	s := NewSession()
	s.SetCookies(nil, []*http.Cookie{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}})
	s.SetCookies(nil, []*http.Cookie{{Name: "a", Value: "3"}, {Name: "", Value: "x"}})

	require.Equal(t, map[string]string{"a": "3", "b": "2"}, s.CookieMap())
	cookies := s.Cookies(nil)
	require.Len(t, cookies, 2)
	require.Equal(t, "a", cookies[0].Name)
	require.Equal(t, "b", cookies[1].Name)

	s.Clear()
	s.Clear()
	require.Empty(t, s.CookieMap())
	require.False(t, s.Authenticated())
}
