package artifact

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrew/ai-gateway/pkg/models"
)

var baseCounter int32

func newMemStore() *Store {
	n := atomic.AddInt32(&baseCounter, 1)
	return New(fmt.Sprintf("mem://localhost/artifact-test-%d", n))
}

func TestKeyIsDeterministic(t *testing.T) {
	assert.Equal(t, "artifacts/user-1/req-1.md", Key("user-1", "req-1", "book"))
	assert.Equal(t, "artifacts/user-1/req-1.md", Key("user-1", "req-1", "article"))
	assert.Equal(t, "artifacts/user-1/req-1.md", Key("user-1", "req-1", "blog"))
	assert.Equal(t, "artifacts/user-1/req-1.txt", Key("user-1", "req-1", "email"))
	assert.Equal(t, "artifacts/user-1/req-1.txt", Key("user-1", "req-1", ""))
}

func TestPutAndGetRoundTrip(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()

	art := &models.GeneratedArtifact{UserID: "user-1", RequestID: "req-1", ContentType: "book"}
	url, err := s.Put(ctx, art, "once upon a time")
	require.NoError(t, err)
	assert.Equal(t, url, art.URL)
	assert.Equal(t, "artifacts/user-1/req-1.md", art.Key)

	got, err := s.Get(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "once upon a time", got)
}

func TestPutOverwrites(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()
	art := &models.GeneratedArtifact{UserID: "user-1", RequestID: "req-1", ContentType: "book"}

	first, err := s.Put(ctx, art, "draft one")
	require.NoError(t, err)
	second, err := s.Put(ctx, art, "draft two")
	require.NoError(t, err)
	assert.Equal(t, first, second, "same identity yields same locator")

	got, err := s.Get(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "draft two", got)
}

func TestExists(t *testing.T) {
	s := newMemStore()
	ctx := context.Background()

	ok, err := s.Exists(ctx, s.URL(Key("user-1", "missing", "book")))
	require.NoError(t, err)
	assert.False(t, ok)

	art := &models.GeneratedArtifact{UserID: "user-1", RequestID: "req-1", ContentType: "book"}
	url, err := s.Put(ctx, art, "content")
	require.NoError(t, err)

	ok, err = s.Exists(ctx, url)
	require.NoError(t, err)
	assert.True(t, ok)
}
