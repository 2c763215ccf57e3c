// Package media stores user-supplied images and hands back public URLs for them.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/google/uuid"
)

// Store persists image bytes and returns the URL clients fetch them from.
// Failures are reported as common.ErrMediaUploadFailed.
type Store interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
}

// DecodeImage accepts a data URL ("data:image/png;base64,...") or bare
// base64 and returns the image bytes. Non-image payloads are rejected.
func DecodeImage(s string) (*Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty image", common.ErrValidation)
	}

	var declared string
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("%w: image must be a base64 data URL", common.ErrValidation)
		}
		declared = strings.TrimSuffix(meta, ";base64")
		s = payload
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64", common.ErrValidation)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", common.ErrValidation)
	}

	ct := declared
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	if !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%w: unsupported content type %q", common.ErrValidation, ct)
	}

	return &Image{Data: data, ContentType: ct}, nil
}

// NewObjectKey returns a unique, date-partitioned object key.
func NewObjectKey(now time.Time, contentType string) string {
	return fmt.Sprintf("images/%d/%02d/%02d/%s%s", now.Year(), now.Month(), now.Day(), uuid.New(), extension(contentType))
}

func extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}

// MemoryStore keeps uploads in process. Used when no object store is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Image
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{baseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string]Image)}
}

func (m *MemoryStore) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrMediaUploadFailed, err)
	}
	key := NewObjectKey(time.Now(), contentType)

	m.mu.Lock()
	m.objects[key] = Image{Data: append([]byte(nil), data...), ContentType: contentType}
	m.mu.Unlock()

	return m.baseURL + "/" + key, nil
}

// Get returns a stored object by key.
func (m *MemoryStore) Get(key string) (Image, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, ok := m.objects[key]
	return img, ok
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
