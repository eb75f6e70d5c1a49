package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stegoweb/imagetrigger/internal/gateway/middleware"
	reload_http "github.com/stegoweb/imagetrigger/internal/modules/reload/interfaces/http"
)

// RouterConfig holds all the handlers and middleware settings needed for routing
type RouterConfig struct {
	ReloadHandler  *reload_http.ReloadHandler
	Gatherer       prometheus.Gatherer
	AllowedOrigins string
}

// SetupRoutes creates and configures all routes
func SetupRoutes(config RouterConfig) http.Handler {
	mux := http.NewServeMux()

	// Health Check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus Metrics Endpoint
	gatherer := config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Live Reload Routes
	mux.HandleFunc("GET /livereload", config.ReloadHandler.Subscribe)
	mux.HandleFunc("GET /livereload.js", config.ReloadHandler.Script)

	return middleware.PrometheusMiddleware(middleware.CORSMiddleware(mux, config.AllowedOrigins))
}
