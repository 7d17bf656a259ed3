package httpapi

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/qrgen/core/logger"
)

// CORSConfig defines the Cross-Origin Resource Sharing policy.
type CORSConfig struct {
	// AllowOrigins specifies allowed origins. Empty or "*" allows all.
	AllowOrigins []string

	// AllowMethods specifies allowed HTTP methods.
	// If empty, defaults to GET, HEAD, PUT, PATCH, POST, DELETE.
	AllowMethods []string

	// AllowHeaders specifies allowed request headers.
	AllowHeaders []string

	// ExposeHeaders specifies which headers are exposed to the client.
	ExposeHeaders []string

	// AllowCredentials indicates whether credentials are allowed.
	// Incompatible with wildcard origins.
	AllowCredentials bool

	// MaxAge specifies how long preflight responses can be cached (seconds).
	MaxAge int
}

// CORS returns middleware applying the given policy. Handles preflight
// OPTIONS requests and decorates actual responses.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		}
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{
			"Accept",
			"Content-Type",
			"Origin",
			"Authorization",
			"X-Request-ID",
		}
	}

	allowMethods := strings.Join(cfg.AllowMethods, ",")
	allowHeaders := strings.Join(cfg.AllowHeaders, ",")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ",")

	allowOrigins := make(map[string]bool, len(cfg.AllowOrigins))
	for _, origin := range cfg.AllowOrigins {
		allowOrigins[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			var allowedOrigin string
			allowed := false
			if len(cfg.AllowOrigins) == 0 || allowOrigins["*"] {
				allowedOrigin = "*"
				allowed = true
			} else if allowOrigins[origin] {
				allowedOrigin = origin
				allowed = true
			}

			// Preflight detection: OPTIONS plus Access-Control-Request-Method.
			isPreflight := r.Method == http.MethodOptions &&
				r.Header.Get("Access-Control-Request-Method") != ""

			if isPreflight {
				requestMethod := r.Header.Get("Access-Control-Request-Method")
				if !allowed || !slices.Contains(cfg.AllowMethods, requestMethod) {
					w.WriteHeader(http.StatusForbidden)
					return
				}

				headers := w.Header()
				headers.Set("Access-Control-Allow-Origin", allowedOrigin)
				headers.Set("Access-Control-Allow-Methods", allowMethods)
				if r.Header.Get("Access-Control-Request-Headers") != "" {
					headers.Set("Access-Control-Allow-Headers", allowHeaders)
				}
				// Credentials must not be allowed with wildcard origins.
				if cfg.AllowCredentials && allowedOrigin != "*" {
					headers.Set("Access-Control-Allow-Credentials", "true")
				}
				if cfg.MaxAge > 0 {
					headers.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				headers.Add("Vary", "Origin")
				headers.Add("Vary", "Access-Control-Request-Method")
				headers.Add("Vary", "Access-Control-Request-Headers")

				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allowed {
				headers := w.Header()
				headers.Set("Access-Control-Allow-Origin", allowedOrigin)
				if cfg.AllowCredentials && allowedOrigin != "*" {
					headers.Set("Access-Control-Allow-Credentials", "true")
				}
				if exposeHeaders != "" {
					headers.Set("Access-Control-Expose-Headers", exposeHeaders)
				}
				headers.Add("Vary", "Origin")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per completed request. Paths in skip are not
// logged; probes and scrapes would otherwise dominate the output.
func RequestLogger(log *slog.Logger, skip ...string) func(http.Handler) http.Handler {
	skipPaths := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipPaths[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.InfoContext(r.Context(), "request completed",
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.StatusCode(ww.Status()),
				logger.BytesOut(int64(ww.BytesWritten())),
				logger.ClientIP(r.RemoteAddr),
				logger.RequestID(requestID(r)),
				logger.Duration(time.Since(start)))
		})
	}
}

func requestID(r *http.Request) string {
	return chimw.GetReqID(r.Context())
}
