package restyutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestRedactForm(t *testing.T) {
	require.Equal(
		t,
		"loginForm%3Ausername=jc123456&loginForm%3Apassword=<redacted>&submitBtn=Login",
		redactForm("loginForm%3Ausername=jc123456&loginForm%3Apassword=p%40ss&submitBtn=Login", nil),
	)
	require.Equal(t, `{"password":"x"}`, redactForm(`{"password":"x"}`, nil))

	secret := func(name string) bool { return name == "loginForm:pwd" }
	require.Equal(
		t,
		"loginForm%3Ausername=jc&loginForm%3Apwd=<redacted>&submitBtn=Login",
		redactForm("loginForm%3Ausername=jc&loginForm%3Apwd=hunter2&submitBtn=Login", secret),
	)
}

func TestDumperWritesExchanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "secret-session"})
		io.WriteString(w, "<html>"+r.Method+"</html>")
	}))
	defer server.Close()

	dir := t.TempDir()
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := resty.New().SetBaseURL(server.URL)
	dumper := NewDumper(output)
	dumper.Attach(client)
	dumper.Redact("j_pw")

	_, err = client.R().Get("/dashboard.xhtml")
	require.NoError(t, err)
	_, err = client.R().
		SetFormData(map[string]string{"password": "hunter2", "j_pw": "hunter3"}).
		Post("/login.xhtml")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.True(t, strings.HasSuffix(entries[0].Name(), "-001-get.txt"))
	require.True(t, strings.HasSuffix(entries[1].Name(), "-002-post.txt"))

	post, err := os.ReadFile(filepath.Join(dir, entries[1].Name()))
	require.NoError(t, err)
	require.Contains(t, string(post), "password=<redacted>")
	require.Contains(t, string(post), "j_pw=<redacted>")
	require.NotContains(t, string(post), "hunter3")
	require.Contains(t, string(post), "<html>POST</html>")
	require.NotContains(t, string(post), "hunter2")
	require.NotContains(t, string(post), "secret-session")
}
