package artifact

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/viant/afs"

	"github.com/andrew/ai-gateway/pkg/models"
)

// Store writes generated artifacts to object storage. Keys are derived
// deterministically from (user id, request id), so writing the same artifact
// twice overwrites rather than duplicates — the property that makes queue
// redelivery safe.
type Store struct {
	fs      afs.Service
	baseURL string
}

// New returns a Store rooted at baseURL (e.g. file:///var/lib/gateway,
// s3://bucket/artifacts, or mem://localhost/artifacts in tests).
func New(baseURL string) *Store {
	return &Store{fs: afs.New(), baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Key returns the deterministic storage key for a (user, request) pair.
func Key(userID, requestID, contentType string) string {
	return fmt.Sprintf("artifacts/%s/%s%s", userID, requestID, extensionFor(contentType))
}

func extensionFor(contentType string) string {
	switch contentType {
	case "book", "article", "blog":
		return ".md"
	default:
		return ".txt"
	}
}

// URL returns the full storage locator for a key.
func (s *Store) URL(key string) string {
	return s.baseURL + "/" + key
}

// Put writes the artifact content under its deterministic key, overwriting
// any prior write, and returns the locator. The artifact's Key and URL
// fields are filled in.
func (s *Store) Put(ctx context.Context, art *models.GeneratedArtifact, content string) (string, error) {
	art.Key = Key(art.UserID, art.RequestID, art.ContentType)
	art.URL = s.URL(art.Key)
	if err := s.fs.Upload(ctx, art.URL, os.FileMode(0644), bytes.NewReader([]byte(content))); err != nil {
		return "", fmt.Errorf("failed to store artifact %s: %w", art.Key, err)
	}
	return art.URL, nil
}

// Get reads back the content stored under the given locator.
func (s *Store) Get(ctx context.Context, url string) (string, error) {
	data, err := s.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to load artifact %s: %w", url, err)
	}
	return string(data), nil
}

// Exists reports whether an artifact is present at the given locator.
func (s *Store) Exists(ctx context.Context, url string) (bool, error) {
	return s.fs.Exists(ctx, url)
}
