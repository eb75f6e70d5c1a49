package reload_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stegoweb/imagetrigger/internal/modules/reload"
	"github.com/stegoweb/imagetrigger/internal/modules/reload/domain"
	upload "github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
	"github.com/stegoweb/imagetrigger/internal/shared/infrastructure/config"
	"github.com/stegoweb/imagetrigger/internal/shared/infrastructure/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModule_HTTPNotifier(t *testing.T) {
	var hits atomic.Int32
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer page.Close()

	cfg := config.Config{Reload: config.ReloadConfig{
		Notifiers: []string{reload.NotifierWebsocket, reload.NotifierHTTP},
		PageURL:   page.URL + "/",
	}}

	m, err := reload.NewModule(context.Background(), cfg, page.Client())
	require.NoError(t, err)
	defer m.Close()

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPHandler())
	assert.NotNil(t, m.Hub())
	assert.Equal(t, []string{"websocket", "http"}, m.Service().Notifiers())

	err = m.Service().Reload(context.Background(), upload.Submission{ID: uuid.New(), File: "a.png"})
	assert.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestNewModule_UnknownNotifier(t *testing.T) {
	cfg := config.Config{Reload: config.ReloadConfig{Notifiers: []string{"carrier-pigeon"}}}

	_, err := reload.NewModule(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownNotifier)
}

func TestNewModule_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Config{
		Reload: config.ReloadConfig{Notifiers: []string{reload.NotifierRedis}},
		Redis:  database.RedisConfig{Host: mr.Host(), Port: mr.Port()},
	}
	mr.Close()

	_, err := reload.NewModule(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func dialLiveReload(t *testing.T, m *reload.Module) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(m.HTTPHandler().Subscribe))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/livereload", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEvent keeps reloading until the page hears one, since registration
// with the hub is asynchronous.
func readEvent(t *testing.T, conn *websocket.Conn, trigger func()) domain.Event {
	t.Helper()
	received := make(chan []byte, 1)
	go func() {
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		if _, body, err := conn.ReadMessage(); err == nil {
			received <- body
		}
	}()

	var body []byte
	require.Eventually(t, func() bool {
		trigger()
		select {
		case body = <-received:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	event, err := domain.ParseEvent(body)
	require.NoError(t, err)
	return event
}

func TestNewModule_RedisAndWebsocket(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Config{
		Reload: config.ReloadConfig{Notifiers: []string{reload.NotifierWebsocket, reload.NotifierRedis}},
		Redis:  database.RedisConfig{Host: mr.Host(), Port: mr.Port()},
	}

	m, err := reload.NewModule(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, []string{"websocket", "redis"}, m.Service().Notifiers())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Run(ctx))

	conn := dialLiveReload(t, m)

	// Own reloads reach local pages directly, not through the relay.
	sub := upload.Submission{ID: uuid.New(), File: "photo.png"}
	event := readEvent(t, conn, func() {
		require.NoError(t, m.Service().Reload(context.Background(), sub))
	})
	assert.Equal(t, sub.ID, event.Submission)
}

func TestNewModule_RelayForwardsOtherProcesses(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Config{
		Reload: config.ReloadConfig{Notifiers: []string{reload.NotifierWebsocket, reload.NotifierRedis}},
		Redis:  database.RedisConfig{Host: mr.Host(), Port: mr.Port()},
	}

	local, err := reload.NewModule(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer local.Close()

	// Another trigger process publishing only to redis.
	remoteCfg := cfg
	remoteCfg.Reload.Notifiers = []string{reload.NotifierRedis}
	remote, err := reload.NewModule(context.Background(), remoteCfg, nil)
	require.NoError(t, err)
	defer remote.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Run returns only once the relay is subscribed.
	require.NoError(t, local.Run(ctx))
	require.NoError(t, remote.Run(ctx))

	conn := dialLiveReload(t, local)

	sub := upload.Submission{ID: uuid.New(), File: "remote.png"}
	event := readEvent(t, conn, func() {
		require.NoError(t, remote.Service().Reload(context.Background(), sub))
	})
	assert.Equal(t, sub.ID, event.Submission)
}

func TestModule_RunFailsWhenRelayCannotSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Config{
		Reload: config.ReloadConfig{Notifiers: []string{reload.NotifierWebsocket, reload.NotifierRedis}},
		Redis:  database.RedisConfig{Host: mr.Host(), Port: mr.Port()},
	}

	m, err := reload.NewModule(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer m.Close()

	mr.Close()
	assert.Error(t, m.Run(context.Background()))
}
