package gate

import (
	"errors"
	"testing"

	"github.com/Dyastin-0/llmgate/internal/allowlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatPath = "/v1/chat/completions"

func defaultAllowlist(t *testing.T) *allowlist.Allowlist {
	t.Helper()

	list, err := allowlist.Parse("app.stickball.biz,musketeers.dev", false)
	require.NoError(t, err)
	return list
}

func TestEvaluate(t *testing.T) {
	list := defaultAllowlist(t)

	tests := []struct {
		name       string
		strict     bool
		req        Request
		wantAllow  bool
		wantDomain string
		wantReason error
		wantLabel  string
	}{
		{
			name:       "allowed origin",
			req:        Request{Path: chatPath, Origin: "https://app.stickball.biz"},
			wantAllow:  true,
			wantDomain: "app.stickball.biz",
			wantLabel:  "allowed",
		},
		{
			name:       "disallowed origin",
			req:        Request{Path: chatPath, Origin: "https://evil.com"},
			wantDomain: "evil.com",
			wantReason: ErrDomainNotAllowed,
			wantLabel:  "domain_not_allowed",
		},
		{
			name:       "no headers strict",
			strict:     true,
			req:        Request{Path: chatPath},
			wantReason: ErrNoDomain,
			wantLabel:  "no_valid_domain",
		},
		{
			name:      "no headers lenient",
			req:       Request{Path: chatPath},
			wantAllow: true,
			wantLabel: "no_domain",
		},
		{
			name:      "exempt path skips check",
			strict:    true,
			req:       Request{Path: "/health", Origin: "https://evil.com"},
			wantAllow: true,
			wantLabel: "exempt",
		},
		{
			name:       "subdomain not listed",
			req:        Request{Path: chatPath, Origin: "https://api.app.stickball.biz"},
			wantDomain: "api.app.stickball.biz",
			wantReason: ErrDomainNotAllowed,
			wantLabel:  "domain_not_allowed",
		},
		{
			name:       "referer used without origin",
			req:        Request{Path: chatPath, Referer: "https://musketeers.dev/chat?x=1", Host: "evil.com"},
			wantAllow:  true,
			wantDomain: "musketeers.dev",
			wantLabel:  "allowed",
		},
		{
			name:       "host used last",
			req:        Request{Path: chatPath, Host: "musketeers.dev:8443"},
			wantAllow:  true,
			wantDomain: "musketeers.dev",
			wantLabel:  "allowed",
		},
		{
			name:       "origin wins over allowed referer",
			req:        Request{Path: chatPath, Origin: "https://evil.com", Referer: "https://app.stickball.biz/"},
			wantDomain: "evil.com",
			wantReason: ErrDomainNotAllowed,
			wantLabel:  "domain_not_allowed",
		},
		{
			name:       "unresolvable origin does not fall through",
			strict:     true,
			req:        Request{Path: chatPath, Origin: "https://", Referer: "https://app.stickball.biz/"},
			wantReason: ErrNoDomain,
			wantLabel:  "no_valid_domain",
		},
		{
			name:       "case sensitive",
			req:        Request{Path: chatPath, Origin: "https://APP.stickball.biz"},
			wantDomain: "APP.stickball.biz",
			wantReason: ErrDomainNotAllowed,
			wantLabel:  "domain_not_allowed",
		},
		{
			name:       "exempt match is exact",
			req:        Request{Path: "/health/", Origin: "https://evil.com"},
			wantDomain: "evil.com",
			wantReason: ErrDomainNotAllowed,
			wantLabel:  "domain_not_allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(list, tt.strict).Evaluate(tt.req)

			assert.Equal(t, tt.wantAllow, d.Allowed())
			assert.Equal(t, tt.wantDomain, d.Domain)
			assert.Equal(t, tt.wantLabel, d.Reason())

			if tt.wantReason == nil {
				assert.Nil(t, d.Err)
				assert.Equal(t, "allow", d.Outcome())
				return
			}

			require.NotNil(t, d.Err)
			assert.True(t, errors.Is(d.Err, tt.wantReason))
			assert.Equal(t, "deny", d.Outcome())
		})
	}
}

func TestEvaluateEveryExemptPath(t *testing.T) {
	g := New(defaultAllowlist(t), true)

	for _, p := range ExemptPaths {
		t.Run(p, func(t *testing.T) {
			d := g.Evaluate(Request{Path: p, Origin: "https://evil.com"})
			assert.True(t, d.Allowed())
			assert.True(t, d.Exempt)
			assert.Empty(t, d.Domain)
		})
	}
}

func TestEmptyAllowlistDeniesResolvedDomains(t *testing.T) {
	list, err := allowlist.Parse("", false)
	require.NoError(t, err)

	g := New(list, false)

	d := g.Evaluate(Request{Path: chatPath, Host: "localhost:4000"})
	assert.False(t, d.Allowed())
	assert.Equal(t, "localhost", d.Domain)
	assert.Equal(t, "host", d.Source)

	d = g.Evaluate(Request{Path: chatPath})
	assert.True(t, d.Allowed())
}

func TestDenyErrorMessages(t *testing.T) {
	notAllowed := &DenyError{Reason: ErrDomainNotAllowed, Domain: "evil.com"}
	assert.Equal(t, "Forbidden: Domain 'evil.com' not allowed", notAllowed.Error())

	noDomain := &DenyError{Reason: ErrNoDomain}
	assert.Equal(t, "Forbidden: No valid domain found in request", noDomain.Error())
}
