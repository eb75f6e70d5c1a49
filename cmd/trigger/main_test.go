package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stegoweb/imagetrigger/internal/shared/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type imageServer struct {
	mu       sync.Mutex
	requests []string
	uploaded map[string][]byte
}

func (s *imageServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	if r.Method == http.MethodPost {
		if file, header, err := r.FormFile("image"); err == nil {
			data, _ := io.ReadAll(file)
			file.Close()
			s.uploaded[header.Filename] = data
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *imageServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func testConfig(serverURL, sourceDir string) config.Config {
	return config.Config{
		Upload: config.UploadConfig{ServerURL: serverURL, Path: "/current_image"},
		Reload: config.ReloadConfig{Notifiers: []string{"http"}, PageURL: serverURL + "/"},
		Source: config.SourceConfig{LocalPath: sourceDir},
	}
}

func TestRun_UploadsArgsAndReloads(t *testing.T) {
	images := &imageServer{uploaded: map[string][]byte{}}
	srv := httptest.NewServer(images)
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), []byte("B"), 0o644))

	reg := prometheus.NewRegistry()
	out := &bytes.Buffer{}
	opts := options{refs: []string{"photo.png", "missing.png"}}

	err := run(context.Background(), testConfig(srv.URL, dir), opts, strings.NewReader(""), out, reg)
	require.NoError(t, err)

	assert.Equal(t, []string{"POST /current_image", "GET /"}, images.Requests())
	assert.Equal(t, []byte("B"), images.uploaded["photo.png"])
	assert.Contains(t, out.String(), "Uploading photo.png...")
	assert.Contains(t, out.String(), "ERROR:")

	count, err := testutil.GatherAndCount(reg, "imagetrigger_uploads_started_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRun_Interactive(t *testing.T) {
	images := &imageServer{uploaded: map[string][]byte{}}
	srv := httptest.NewServer(images)
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.gif"), []byte("GIF89a"), 0o644))

	in := strings.NewReader("select\nselect a.gif b.gif\nwait\nquit\n")
	out := &bytes.Buffer{}

	err := run(context.Background(), testConfig(srv.URL, dir), options{interactive: true}, in, out, prometheus.NewRegistry())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Nothing selected.")
	assert.Contains(t, out.String(), "Uploading a.gif...")
	assert.Contains(t, out.String(), "State: idle (0 in flight)")
	assert.Equal(t, []string{"POST /current_image", "GET /"}, images.Requests())
}

func TestRun_TransportFailureDoesNotReload(t *testing.T) {
	images := &imageServer{uploaded: map[string][]byte{}}
	page := httptest.NewServer(images)
	defer page.Close()

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), []byte("B"), 0o644))

	cfg := testConfig(deadURL, dir)
	cfg.Reload.PageURL = page.URL + "/"

	err := run(context.Background(), cfg, options{refs: []string{"photo.png"}}, strings.NewReader(""), &bytes.Buffer{}, prometheus.NewRegistry())
	require.NoError(t, err)

	assert.Empty(t, images.Requests())
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := testConfig("not a url", t.TempDir())

	err := run(context.Background(), cfg, options{}, strings.NewReader(""), &bytes.Buffer{}, prometheus.NewRegistry())
	assert.Error(t, err)

	cfg = testConfig("http://localhost:5000", t.TempDir())
	cfg.Reload.Notifiers = []string{"smoke-signal"}
	err = run(context.Background(), cfg, options{}, strings.NewReader(""), &bytes.Buffer{}, prometheus.NewRegistry())
	assert.Error(t, err)
}
