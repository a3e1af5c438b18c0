// Package tenant maps storefront hostnames onto shop-scoped paths.
package tenant

import (
	"errors"
	"net"
	"strings"
)

// ErrRootDomainUnset is returned by NewResolver when no root domain is configured.
// The returned resolver is still usable and passes every request through.
var ErrRootDomainUnset = errors.New("tenant root domain is not configured")

// DefaultExcludedPrefixes are never rewritten, even on a shop subdomain.
var DefaultExcludedPrefixes = []string{"/api", "/static", "/_next", "/health", "/metrics", "/favicon.ico"}

// Result describes the outcome of resolving one request.
type Result struct {
	// Path is the path the request should be routed with.
	Path string
	// Subdomain is the shop label, exactly as sent. Empty on passthrough.
	Subdomain string
	// Rewritten reports whether Path differs from the incoming path.
	Rewritten bool
}

// Resolver rewrites <sub>.<root><path> into /shops/<sub><path>.
type Resolver struct {
	root     string
	excluded []string
}

// NewResolver builds a resolver for rootDomain. A nil excludedPrefixes uses the defaults.
func NewResolver(rootDomain string, excludedPrefixes []string) (*Resolver, error) {
	if excludedPrefixes == nil {
		excludedPrefixes = DefaultExcludedPrefixes
	}
	r := &Resolver{
		root:     strings.ToLower(strings.Trim(strings.TrimSpace(rootDomain), ".")),
		excluded: append([]string(nil), excludedPrefixes...),
	}
	if r.root == "" {
		return r, ErrRootDomainUnset
	}
	return r, nil
}

// RootDomain returns the normalized root domain.
func (r *Resolver) RootDomain() string {
	return r.root
}

// Resolve computes the routing path for a request addressed to host.
func (r *Resolver) Resolve(host, path string) Result {
	pass := Result{Path: path}
	if r == nil || r.root == "" {
		return pass
	}

	hostname := stripPort(host)
	lower := strings.ToLower(hostname)
	if lower == r.root || lower == "www."+r.root {
		return pass
	}

	suffix := "." + r.root
	if !strings.HasSuffix(lower, suffix) {
		return pass
	}
	sub := hostname[:len(hostname)-len(suffix)]
	if sub == "" || strings.Contains(sub, ".") {
		return pass
	}
	if r.isExcluded(path) {
		return pass
	}

	if path == "" {
		path = "/"
	}
	rewritten := "/shops/" + sub
	if path != "/" {
		rewritten += path
	}
	return Result{Path: rewritten, Subdomain: sub, Rewritten: true}
}

func (r *Resolver) isExcluded(path string) bool {
	for _, prefix := range r.excluded {
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

func stripPort(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		return strings.TrimSuffix(h, ".")
	}
	return strings.TrimSuffix(host, ".")
}
