package http

import (
	_ "embed"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stegoweb/imagetrigger/internal/modules/reload/infrastructure/websocket"
)

//go:embed livereload.js
var liveReloadScript []byte

type ReloadHandler struct {
	hub      *websocket.Hub
	upgrader *gorillaws.Upgrader
}

// NewReloadHandler serves live-reload connections from allowedOrigins, a
// comma separated list as in ALLOWED_ORIGINS.
func NewReloadHandler(hub *websocket.Hub, allowedOrigins string) *ReloadHandler {
	return &ReloadHandler{hub: hub, upgrader: websocket.NewUpgrader(allowedOrigins)}
}

// Subscribe upgrades a page to a live-reload connection. The optional page
// query parameter scopes which reloads it receives.
func (h *ReloadHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.upgrader, w, r, r.URL.Query().Get("page"))
}

// Script serves the snippet pages include to follow reloads.
func (h *ReloadHandler) Script(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(liveReloadScript)
}
