package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver("example.com", nil)
	require.NoError(t, err)
	return r
}

func TestResolveRewritesSubdomain(t *testing.T) {
	r := newTestResolver(t)

	got := r.Resolve("shopA.example.com", "/products/1")
	assert.Equal(t, Result{Path: "/shops/shopA/products/1", Subdomain: "shopA", Rewritten: true}, got)
}

func TestResolveCases(t *testing.T) {
	r := newTestResolver(t)

	cases := []struct {
		name string
		host string
		path string
		want string
		sub  string
	}{
		{name: "root passthrough", host: "example.com", path: "/products/1", want: "/products/1"},
		{name: "www passthrough", host: "www.example.com", path: "/", want: "/"},
		{name: "api excluded", host: "shopA.example.com", path: "/api/cart", want: "/api/cart"},
		{name: "health excluded", host: "shopA.example.com", path: "/health/live", want: "/health/live"},
		{name: "favicon excluded", host: "shopA.example.com", path: "/favicon.ico", want: "/favicon.ico"},
		{name: "prefix needs segment boundary", host: "shopA.example.com", path: "/apiary", want: "/shops/shopA/apiary", sub: "shopA"},
		{name: "port stripped", host: "shopA.example.com:8080", path: "/cart", want: "/shops/shopA/cart", sub: "shopA"},
		{name: "root compare is case insensitive", host: "shopA.EXAMPLE.com", path: "/cart", want: "/shops/shopA/cart", sub: "shopA"},
		{name: "root path", host: "shopA.example.com", path: "/", want: "/shops/shopA", sub: "shopA"},
		{name: "empty path", host: "shopA.example.com", path: "", want: "/shops/shopA", sub: "shopA"},
		{name: "multi-level subdomain", host: "a.b.example.com", path: "/x", want: "/x"},
		{name: "foreign domain", host: "shopA.other.com", path: "/x", want: "/x"},
		{name: "lookalike domain", host: "shopAexample.com", path: "/x", want: "/x"},
		{name: "trailing dot host", host: "shopA.example.com.", path: "/x", want: "/shops/shopA/x", sub: "shopA"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Resolve(tc.host, tc.path)
			assert.Equal(t, tc.want, got.Path)
			assert.Equal(t, tc.sub, got.Subdomain)
			assert.Equal(t, tc.sub != "", got.Rewritten)
		})
	}
}

func TestResolverWithoutRootDomainPassesThrough(t *testing.T) {
	r, err := NewResolver("  ", nil)
	require.ErrorIs(t, err, ErrRootDomainUnset)
	require.NotNil(t, r)

	got := r.Resolve("shopA.example.com", "/products/1")
	assert.False(t, got.Rewritten)
	assert.Equal(t, "/products/1", got.Path)

	var nilResolver *Resolver
	assert.Equal(t, "/x", nilResolver.Resolve("a.example.com", "/x").Path)
}

func TestResolverCustomExclusions(t *testing.T) {
	r, err := NewResolver(".Example.com.", []string{"/assets/"})
	require.NoError(t, err)
	assert.Equal(t, "example.com", r.RootDomain())

	assert.False(t, r.Resolve("s1.example.com", "/assets/logo.png").Rewritten)
	assert.True(t, r.Resolve("s1.example.com", "/api/cart").Rewritten, "defaults are replaced by explicit prefixes")
}
