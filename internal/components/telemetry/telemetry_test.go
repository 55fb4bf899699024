package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	recorder := NewRecorder()
	scoped := NewScopedAPI("portal", recorder)

	scoped.ReportWarning("client.login", "bad")
	scoped.ReportCount("service.fetch-and-sync", 3)

	warnings := recorder.Reports("warning")
	require.Len(t, warnings, 1)
	require.Equal(t, "portal: client.login", warnings[0].Id)
	require.Equal(t, []any{"bad"}, warnings[0].Params)
	require.True(t, recorder.Has("count", "fetch-and-sync"))
	require.False(t, recorder.Has("broken", "client.login"))
	require.Len(t, recorder.Reports(""), 2)
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	recorder := NewRecorder()
	client := resty.New().SetBaseURL(server.URL)
	InstrumentResty(client, recorder, "test")

	res, err := client.R().Get("/")
	require.NoError(t, err)
	require.Equal(t, http.StatusTeapot, res.StatusCode())
	require.True(t, recorder.Has("debug", report_resty_request))
	require.True(t, recorder.Has("debug", report_resty_response))

	server.Close()
	_, err = client.R().Get("/")
	require.Error(t, err)
	require.True(t, recorder.Has("broken", report_resty_response))
}
