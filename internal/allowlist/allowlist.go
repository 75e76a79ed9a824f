package allowlist

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/net/idna"
)

// Allowlist is an immutable set of domains. Matching is exact and
// case-sensitive; wildcard patterns ("*.example.com") are only accepted when
// the list is built with wildcards enabled.
type Allowlist struct {
	trie     *domainTrie
	wildcard bool
}

// New builds an Allowlist from domains. Entries are trimmed and empty entries
// are skipped. Unicode entries are stored in their punycode form.
func New(domains []string, wildcard bool) (*Allowlist, error) {
	a := &Allowlist{
		trie:     newDomainTrie(),
		wildcard: wildcard,
	}

	for _, raw := range domains {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}

		entry, err := normalize(entry, wildcard)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed domain %q: %w", raw, err)
		}

		a.trie.insert(entry)
	}

	return a, nil
}

// Parse splits a comma separated list, as found in ALLOWED_DOMAINS.
func Parse(list string, wildcard bool) (*Allowlist, error) {
	return New(strings.Split(list, ","), wildcard)
}

// Contains reports whether domain is allowed. A literal "*" in domain never
// matches.
func (a *Allowlist) Contains(domain string) bool {
	if domain == "" || strings.Contains(domain, wildcardLabel) {
		return false
	}
	return a.trie.match(domain)
}

// Domains returns the configured entries in sorted order.
func (a *Allowlist) Domains() []string {
	domains := a.trie.all()
	sort.Strings(domains)
	return domains
}

func (a *Allowlist) Len() int {
	return len(a.trie.all())
}

func (a *Allowlist) Wildcard() bool {
	return a.wildcard
}

func normalize(entry string, wildcard bool) (string, error) {
	if strings.Contains(entry, "://") {
		return "", fmt.Errorf("must not contain a scheme")
	}
	if strings.ContainsAny(entry, "/:@") {
		return "", fmt.Errorf("must be a bare hostname")
	}
	if strings.IndexFunc(entry, unicode.IsSpace) != -1 {
		return "", fmt.Errorf("must not contain whitespace")
	}

	if strings.Contains(entry, wildcardLabel) {
		if !wildcard {
			return "", fmt.Errorf("wildcard entries require wildcard matching to be enabled")
		}
		if !strings.HasPrefix(entry, "*.") || strings.Count(entry, wildcardLabel) != 1 {
			return "", fmt.Errorf("wildcard must be the leftmost label")
		}
	}

	if isASCII(entry) {
		return entry, nil
	}

	ascii, err := idna.Punycode.ToASCII(entry)
	if err != nil {
		return "", fmt.Errorf("idna: %w", err)
	}
	return ascii, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}
