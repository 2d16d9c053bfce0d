package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// Routes are the paths the filter handler is mounted on.
	Routes             []string
	CORSAllowedOrigins []string
	Development        bool
	// RateLimiter is optional.
	RateLimiter *RateLimiter
}

// NewRouter mounts the filter handler on every configured route plus /healthz.
// Middleware wraps the router so preflight requests never reach route matching.
func NewRouter(filter http.Handler, opts RouterOptions, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", healthz).Methods(http.MethodGet)

	api := filter
	if opts.RateLimiter != nil {
		api = opts.RateLimiter.Middleware(api)
	}
	for _, route := range opts.Routes {
		router.Handle(route, api).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "message": "not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "message": "method not allowed"})
	})

	var h http.Handler = router
	h = CORS(opts.CORSAllowedOrigins, opts.Development)(h)
	h = RequestLogger(logger)(h)
	h = RequestID(h)
	return h
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
