package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/peteraglen/restconsumer"
	"github.com/peteraglen/restconsumer/internal/config"
)

const testConfig = `
endpoint: %s
retry:
  max_attempts: 1
api:
  attrs:
    widget:
      path: /widget/%%id%%
      verbs: [GET]
      attrs:
        parts:
          path: /parts
          verbs: [GET, POST]
    status:
      path: /status
      verbs: [GET]
`

func testAPI() *restconsumer.Descriptor {
	return &restconsumer.Descriptor{
		Children: map[string]*restconsumer.Descriptor{
			"widget": {
				Path:  "/widget/%id%",
				Verbs: []restconsumer.Verb{restconsumer.VerbGet},
				Children: map[string]*restconsumer.Descriptor{
					"parts": {Path: "/parts", Verbs: []restconsumer.Verb{restconsumer.VerbGet, restconsumer.VerbPost}},
				},
			},
			"status": {Path: "/status", Verbs: []restconsumer.Verb{restconsumer.VerbGet}},
		},
	}
}

func TestSplitArgs(t *testing.T) {
	t.Parallel()

	segments, params, err := splitArgs([]string{"widget:7", "parts", "limit=10", "q=a b", "limit=20"})
	require.NoError(t, err)
	require.Equal(t, []string{"widget:7", "parts"}, segments)
	require.Equal(t, restconsumer.Params{{Key: "limit", Value: "20"}, {Key: "q", Value: "a b"}}, params)

	_, _, err = splitArgs([]string{"a=1", "widget"})
	require.ErrorContains(t, err, "follows parameters")

	_, _, err = splitArgs([]string{"=1"})
	require.ErrorContains(t, err, "has no name")

	segments, params, err = splitArgs(nil)
	require.NoError(t, err)
	require.Empty(t, segments)
	require.Empty(t, params)
}

func TestNavigate(t *testing.T) {
	t.Parallel()

	root, err := restconsumer.New("http://localhost", testAPI(), restconsumer.NewTransport())
	require.NoError(t, err)

	parts, err := navigate(root, []string{"widget:7", "parts"})
	require.NoError(t, err)
	require.Equal(t, "/widget/7/parts", parts.Path())

	same, err := navigate(root, nil)
	require.NoError(t, err)
	require.Same(t, root, same)

	_, err = navigate(root, []string{"widget"})
	require.ErrorIs(t, err, restconsumer.ErrMissingArgument)

	_, err = navigate(root, []string{"status:1"})
	require.ErrorIs(t, err, restconsumer.ErrUnexpectedArgument)

	_, err = navigate(root, []string{"nope"})
	require.ErrorIs(t, err, restconsumer.ErrUnknownAttribute)
}

func TestCall(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		if r.URL.Path == "/status" {
			_, _ = w.Write([]byte("all good"))
			return
		}
		_, _ = w.Write([]byte(`{"parts":[1,2]}`))
	}))
	defer server.Close()

	cfg, err := config.Parse([]byte(fmtConfig(server.URL)))
	require.NoError(t, err)

	var out bytes.Buffer
	err = call(context.Background(), &out, cfg, prometheus.NewRegistry(), []string{"get", "widget:7", "parts", "limit=2"})
	require.NoError(t, err)
	require.Equal(t, "/widget/7/parts", gotPath)
	require.Equal(t, "2", gotQuery.Get("limit"))
	require.JSONEq(t, `{"parts":[1,2]}`, out.String())

	out.Reset()
	err = call(context.Background(), &out, cfg, prometheus.NewRegistry(), []string{"GET", "status"})
	require.NoError(t, err)
	require.Equal(t, "all good\n", out.String())
}

func TestCall_Errors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg, err := config.Parse([]byte(fmtConfig(server.URL)))
	require.NoError(t, err)

	err = call(context.Background(), io.Discard, cfg, prometheus.NewRegistry(), []string{"fetch", "status"})
	require.ErrorIs(t, err, restconsumer.ErrInvalidOptions)

	err = call(context.Background(), io.Discard, cfg, prometheus.NewRegistry(), []string{"delete", "status"})
	require.ErrorIs(t, err, restconsumer.ErrUnknownAttribute)

	err = call(context.Background(), io.Discard, cfg, prometheus.NewRegistry(), []string{"get", "widget:9"})
	require.Equal(t, http.StatusNotFound, restconsumer.StatusCode(err))
	require.ErrorContains(t, err, "GET widget(9)")
}

func TestCall_TokensAndMetrics(t *testing.T) {
	t.Parallel()

	var token string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = r.URL.Query().Get("token")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg, err := config.Parse([]byte(fmtConfig(server.URL)))
	require.NoError(t, err)
	cfg.Tokens = map[string]string{"token": "foobar"}

	reg := prometheus.NewRegistry()
	require.NoError(t, call(context.Background(), io.Discard, cfg, reg, []string{"get", "status"}))
	require.Equal(t, "foobar", token)

	var metrics bytes.Buffer
	require.NoError(t, writeMetrics(&metrics, reg))
	require.Contains(t, metrics.String(), `restconsumer_requests_total{code="200",method="GET"} 1`)
}

func TestWriteTree(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, writeTree(&out, testAPI()))

	want := "" +
		"status       /status             GET\n" +
		"widget:<id>  /widget/%id%        GET\n" +
		"  parts      /widget/%id%/parts  GET,POST\n"
	require.Equal(t, want, out.String())
}

func TestLogLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, logLevel("info", true))
	require.Equal(t, slog.LevelWarn, logLevel("warn", false))
	require.Equal(t, slog.LevelError, logLevel("ERROR", false))
	require.Equal(t, slog.LevelInfo, logLevel("loud", false))
}

func fmtConfig(endpoint string) string {
	return fmt.Sprintf(testConfig, endpoint)
}
