package domain

import (
	"net/url"
	"strings"
)

const schemeSep = "://"

// Extract returns the hostname carried by raw, which may be a full URL
// ("https://app.example.com:8443/path") or a bare host ("app.example.com:8443/path").
// Scheme, user-info, port and path are dropped. The second return value is
// false when no hostname can be derived.
func Extract(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	if i := strings.Index(raw, schemeSep); i != -1 {
		u, err := url.Parse(raw)
		if err == nil {
			return present(u.Hostname())
		}

		// Unparseable URL, fall back to the bare form after the scheme.
		raw = raw[i+len(schemeSep):]
		if at := strings.LastIndexByte(hostPart(raw), '@'); at != -1 {
			raw = raw[at+1:]
		}
	}

	return present(stripPort(hostPart(raw)))
}

// hostPart returns everything before the first "/".
func hostPart(s string) string {
	if i := strings.IndexByte(s, '/'); i != -1 {
		return s[:i]
	}
	return s
}

func stripPort(host string) string {
	if i := strings.IndexByte(host, ':'); i != -1 {
		return host[:i]
	}
	return host
}

func present(host string) (string, bool) {
	if host == "" {
		return "", false
	}
	return host, true
}
