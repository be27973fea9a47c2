package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) *InMemoryBlacklistStore {
	t.Helper()
	store := NewInMemoryBlacklistStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewInMemoryBlacklistStore(t *testing.T) {
	store := newTestStore(t)
	assert.NotNil(t, store)
	assert.NotNil(t, store.blacklist)
}

func TestAddToBlacklist(t *testing.T) {
	store := newTestStore(t)
	jti := "test-token-id"
	exp := time.Now().Add(time.Hour)

	err := store.AddToBlacklist(context.Background(), jti, exp)
	assert.NoError(t, err)

	store.mu.RLock()
	expTime, exists := store.blacklist[jti]
	store.mu.RUnlock()

	assert.True(t, exists)
	assert.Equal(t, exp, expTime)
}

func TestIsBlacklisted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	isBlacklisted, err := store.IsBlacklisted(ctx, "non-existent-token")
	assert.NoError(t, err)
	assert.False(t, isBlacklisted)

	assert.NoError(t, store.AddToBlacklist(ctx, "blacklisted-token", time.Now().Add(time.Hour)))
	isBlacklisted, err = store.IsBlacklisted(ctx, "blacklisted-token")
	assert.NoError(t, err)
	assert.True(t, isBlacklisted)
}

func TestCleanUpExpired(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	expiredTime := time.Now().Add(-time.Hour)
	assert.NoError(t, store.AddToBlacklist(ctx, "expired-token-1", expiredTime))
	assert.NoError(t, store.AddToBlacklist(ctx, "expired-token-2", expiredTime))
	assert.NoError(t, store.AddToBlacklist(ctx, "valid-token", time.Now().Add(time.Hour)))

	store.CleanUpExpired()

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.Len(t, store.blacklist, 1)
	_, exists := store.blacklist["valid-token"]
	assert.True(t, exists)
}

func TestCleanUpExpired_EmptyStore(t *testing.T) {
	store := newTestStore(t)

	store.CleanUpExpired()

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.Empty(t, store.blacklist)
}

func TestClose_Twice(t *testing.T) {
	store := NewInMemoryBlacklistStore(time.Millisecond)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestConcurrentAccess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		jti := fmt.Sprintf("token-%d", i)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.AddToBlacklist(ctx, jti, exp))
		}()
		go func() {
			defer wg.Done()
			_, err := store.IsBlacklisted(ctx, jti)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.Len(t, store.blacklist, 10)
}
