package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/shopfront-backend/pkg/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mu   sync.Mutex
	ttls map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{ttls: make(map[string]time.Duration)}
}

func (m *mockStore) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl > 0 {
		m.ttls[jti] = ttl
	}
	return nil
}

func (m *mockStore) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ttls[jti]
	return ok, nil
}

func TestRevokeUsesRemainingLifetime(t *testing.T) {
	store := newMockStore()
	revoker, err := NewRevoker(store)
	require.NoError(t, err)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	revoker.now = func() time.Time { return now }

	claims := &auth.AccessTokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "jti-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
	}}
	require.NoError(t, revoker.Revoke(context.Background(), claims))
	assert.Equal(t, 15*time.Minute, store.ttls["jti-1"])

	revoked, err := revoker.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = revoker.IsRevoked(context.Background(), "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeRequiresTokenID(t *testing.T) {
	revoker, err := NewRevoker(newMockStore())
	require.NoError(t, err)
	require.Error(t, revoker.Revoke(context.Background(), &auth.AccessTokenClaims{}))
	require.Error(t, revoker.Revoke(context.Background(), nil))
	_, err = revoker.IsRevoked(context.Background(), " ")
	require.Error(t, err)
}

func TestNewRevokerRequiresStore(t *testing.T) {
	_, err := NewRevoker(nil)
	require.Error(t, err)
}
