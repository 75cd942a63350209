package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semdocs/internal/metrics"
)

// Route paths. The /functions/v1 paths keep existing browser clients working.
const (
	PathIngest      = "/functions/v1/generate-embedding"
	PathSearch      = "/functions/v1/semantic-search"
	PathDocuments   = "/documents"
	PathSearchShort = "/search"
	PathHealth      = "/health"
	PathMetrics     = "/metrics"
)

// NewRouter mounts the server's handlers behind the standard middleware stack.
// CORS runs before routing so preflight succeeds on any path.
func NewRouter(s *Server, allowedOrigins []string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(log))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(log))
	r.Use(CORS(allowedOrigins))
	r.Use(metrics.Middleware())

	r.Post(PathIngest, s.Ingest)
	r.Post(PathDocuments, s.Ingest)
	r.Post(PathSearch, s.Search)
	r.Post(PathSearchShort, s.Search)
	r.Get(PathHealth, s.HealthCheck)
	r.Get(PathMetrics, s.Metrics)

	return r
}
