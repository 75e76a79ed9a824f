package gate

import (
	"errors"
	"fmt"

	"github.com/Dyastin-0/llmgate/internal/domain"
)

var (
	ErrDomainNotAllowed = errors.New("domain not allowed")
	ErrNoDomain         = errors.New("no valid domain found")
)

// ExemptPaths bypass the domain check entirely.
var ExemptPaths = []string{
	"/health",
	"/health/readiness",
	"/health/liveliness",
	"/",
	"/docs",
	"/openapi.json",
}

// Matcher reports allowlist membership.
type Matcher interface {
	Contains(domain string) bool
}

// Request holds the parts of an inbound request the gate looks at. Empty
// header values are treated as absent.
type Request struct {
	Path    string
	Origin  string
	Referer string
	Host    string
}

// DenyError describes a rejected request. Reason is one of ErrDomainNotAllowed
// or ErrNoDomain.
type DenyError struct {
	Reason error
	Domain string
}

func (e *DenyError) Error() string {
	if errors.Is(e.Reason, ErrDomainNotAllowed) {
		return fmt.Sprintf("Forbidden: Domain '%s' not allowed", e.Domain)
	}
	return "Forbidden: No valid domain found in request"
}

func (e *DenyError) Unwrap() error {
	return e.Reason
}

type Decision struct {
	// Domain is the resolved domain, empty when none was found.
	Domain string
	// Source names the header the domain was read from.
	Source string
	Exempt bool
	Err    *DenyError
}

func (d Decision) Allowed() bool {
	return d.Err == nil
}

// Outcome is "allow" or "deny".
func (d Decision) Outcome() string {
	if d.Allowed() {
		return "allow"
	}
	return "deny"
}

// Reason is a short label for metrics and logs.
func (d Decision) Reason() string {
	switch {
	case d.Exempt:
		return "exempt"
	case d.Err == nil && d.Domain == "":
		return "no_domain"
	case d.Err == nil:
		return "allowed"
	case errors.Is(d.Err, ErrDomainNotAllowed):
		return "domain_not_allowed"
	default:
		return "no_valid_domain"
	}
}

type Gate struct {
	allowed Matcher
	strict  bool
	exempt  map[string]struct{}
}

// New returns a Gate over allowed. When strict is set, requests without a
// resolvable domain are denied.
func New(allowed Matcher, strict bool) *Gate {
	g := &Gate{
		allowed: allowed,
		strict:  strict,
		exempt:  make(map[string]struct{}, len(ExemptPaths)),
	}

	for _, p := range ExemptPaths {
		g.exempt[p] = struct{}{}
	}

	return g
}

func (g *Gate) Strict() bool {
	return g.strict
}

func (g *Gate) Evaluate(req Request) Decision {
	if _, ok := g.exempt[req.Path]; ok {
		return Decision{Exempt: true}
	}

	d := Decision{}
	d.Domain, d.Source = resolve(req)

	if d.Domain != "" && !g.allowed.Contains(d.Domain) {
		d.Err = &DenyError{Reason: ErrDomainNotAllowed, Domain: d.Domain}
		return d
	}

	if d.Domain == "" && g.strict {
		d.Err = &DenyError{Reason: ErrNoDomain}
	}

	return d
}

// resolve reads the first non-empty header in priority order. Later headers
// are never consulted, even when the first one yields no domain.
func resolve(req Request) (string, string) {
	candidates := []struct {
		source, value string
	}{
		{"origin", req.Origin},
		{"referer", req.Referer},
		{"host", req.Host},
	}

	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		host, _ := domain.Extract(c.value)
		return host, c.source
	}

	return "", ""
}
