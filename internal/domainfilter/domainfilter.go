package domainfilter

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Dyastin-0/llmgate/internal/gate"
	"github.com/Dyastin-0/llmgate/internal/logger"
	"github.com/Dyastin-0/llmgate/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const errorType = "domain_error"

// ErrorBody is the JSON envelope returned on rejection, in the shape
// OpenAI-compatible clients expect.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// Handler rejects requests whose origin domain the gate denies and passes
// everything else to next untouched.
func Handler(g *gate.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Evaluate(gate.Request{
				Path:    r.URL.Path,
				Origin:  r.Header.Get("Origin"),
				Referer: r.Header.Get("Referer"),
				Host:    r.Host,
			})

			record(r, d)

			if !d.Allowed() {
				WriteError(w, http.StatusForbidden, errorType, d.Err.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func record(r *http.Request, d gate.Decision) {
	metrics.ObserveDecision(d.Outcome(), d.Reason())

	var event *zerolog.Event
	if d.Allowed() {
		event = log.Info()
	} else {
		event = log.Warn()
	}

	event.
		Str("id", logger.GetRequestID(r.Context())).
		Str("path", r.URL.Path).
		Str("domain", d.Domain).
		Bool("resolved", d.Domain != "").
		Str("outcome", d.Outcome()).
		Str("reason", d.Reason())

	if d.Source != "" {
		event.Str("source", d.Source)
	}

	event.Msg("domainfilter")
}

// WriteError writes the JSON error envelope with the given status.
func WriteError(w http.ResponseWriter, status int, typ, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := ErrorBody{
		Error: ErrorDetail{
			Message: message,
			Type:    typ,
			Code:    strconv.Itoa(status),
		},
	}

	if err := json.NewEncoder(w).Encode(&body); err != nil {
		log.Error().Err(err).Msg("domainfilter")
	}
}
