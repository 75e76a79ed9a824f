package router

import (
	"net/http"

	"github.com/Dyastin-0/llmgate/internal/domainfilter"
	"github.com/Dyastin-0/llmgate/internal/gate"
	"github.com/Dyastin-0/llmgate/internal/logger"
	"github.com/Dyastin-0/llmgate/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// New wires the domain filter in front of upstream. Every path, including
// the exempt ones, ends up at upstream when allowed.
func New(g *gate.Gate, upstream http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(logger.RequestID)
	router.Use(logger.Handler)
	router.Use(metrics.UpdateHandler)
	router.Use(domainfilter.Handler(g))

	router.Handle("/*", upstream)

	return router
}

// UpstreamErrorHandler answers failed upstream round trips with a 502 in
// the same JSON envelope as rejections.
func UpstreamErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	log.Error().
		Err(err).
		Str("id", logger.GetRequestID(r.Context())).
		Str("path", r.URL.Path).
		Msg("upstream")

	domainfilter.WriteError(w, http.StatusBadGateway, "upstream_error", "Bad Gateway: upstream unavailable")
}
