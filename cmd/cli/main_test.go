package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadCommand(t *testing.T) {
	var gotName, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analyze", r.URL.Path)
		f, fh, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b, _ := io.ReadAll(f)
		gotName, gotBody = fh.Filename, string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"run_id":"r1","summary":{"top_genres":{"Dramas":2,"Comedies":1}}}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "titles.csv")
	require.NoError(t, os.WriteFile(path, []byte("type,rating\n"), 0o644))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--api", srv.URL, "upload", path})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "titles.csv", gotName)
	assert.Equal(t, "type,rating\n", gotBody)
	assert.Contains(t, out.String(), `"run_id": "r1"`)
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Dramas")), bytes.Index(out.Bytes(), []byte("Comedies")))
}

func TestRunsShow_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--api", srv.URL, "runs", "show", "missing"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestWebsocketURL(t *testing.T) {
	u, err := websocketURL("https://stats.example.com:8443/app", "/ws")
	require.NoError(t, err)
	assert.Equal(t, "wss://stats.example.com:8443/ws", u)

	u, err = websocketURL(defaultBaseURL, "/ws")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", u)
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	printEvent(&buf, []byte(`{"type":"run.completed"}`), false)
	assert.Equal(t, "{\n  \"type\": \"run.completed\"\n}\n", buf.String())

	buf.Reset()
	printEvent(&buf, []byte("not json"), false)
	assert.Equal(t, "not json\n", buf.String())
}
