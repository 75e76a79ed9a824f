package tls

import (
	"context"
	"crypto/tls"
	"errors"
	"net"

	"github.com/Dyastin-0/llmgate/internal/config"
	"github.com/caddyserver/certmagic"
	"github.com/libdns/cloudflare"
	"github.com/rs/zerolog/log"
)

// Configure sets the ACME defaults used by certmagic. With a Cloudflare
// token the DNS-01 challenge is used instead of HTTP-01/TLS-ALPN.
func Configure(cfg config.TLSConfig) {
	certmagic.DefaultACME.Email = cfg.Email
	certmagic.DefaultACME.Agreed = true
	certmagic.DefaultACME.CA = certmagic.LetsEncryptProductionCA
	if cfg.Staging {
		certmagic.DefaultACME.CA = certmagic.LetsEncryptStagingCA
	}

	if solver := dnsSolver(cfg); solver != nil {
		certmagic.DefaultACME.DNS01Solver = solver
		log.Info().Str("challenge", "dns-01").Str("provider", "cloudflare").Msg("tls")
	}
}

func dnsSolver(cfg config.TLSConfig) *certmagic.DNS01Solver {
	if cfg.CloudflareAPIToken == "" {
		return nil
	}

	return &certmagic.DNS01Solver{
		DNSManager: certmagic.DNSManager{
			DNSProvider: &cloudflare.Provider{APIToken: cfg.CloudflareAPIToken},
		},
	}
}

// Listen obtains certificates for domains and returns a TLS listener on addr.
func Listen(ctx context.Context, addr string, domains []string) (net.Listener, error) {
	if len(domains) == 0 {
		return nil, errors.New("no domains to manage")
	}

	magic := certmagic.NewDefault()

	if err := magic.ManageSync(ctx, domains); err != nil {
		return nil, err
	}

	tlsConfig := magic.TLSConfig()
	tlsConfig.NextProtos = append([]string{"h2", "http/1.1"}, tlsConfig.NextProtos...)

	ln, err := tls.Listen("tcp", addr, tlsConfig)
	if err != nil {
		return nil, err
	}

	log.Info().Str("addr", addr).Strs("domains", domains).Msg("tls")
	return ln, nil
}
