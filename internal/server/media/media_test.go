package media

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
var pngBytes, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func TestDecodeImage(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString(pngBytes)

	tests := []struct {
		name    string
		in      string
		wantCT  string
		wantErr bool
	}{
		{name: "data url", in: "data:image/png;base64," + raw, wantCT: "image/png"},
		{name: "bare base64 sniffed", in: raw, wantCT: "image/png"},
		{name: "declared jpeg kept", in: "data:image/jpeg;base64," + raw, wantCT: "image/jpeg"},
		{name: "empty", in: "  ", wantErr: true},
		{name: "not base64", in: "data:image/png;base64,@@@", wantErr: true},
		{name: "not base64 encoded data url", in: "data:image/png," + raw, wantErr: true},
		{name: "text payload", in: base64.StdEncoding.EncodeToString([]byte("hello there")), wantErr: true},
		{name: "declared non image", in: "data:text/plain;base64," + raw, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeImage(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCT, img.ContentType)
			assert.Equal(t, pngBytes, img.Data)
		})
	}
}

func TestNewObjectKey(t *testing.T) {
	now := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	k1 := NewObjectKey(now, "image/png")
	k2 := NewObjectKey(now, "image/png")

	assert.True(t, strings.HasPrefix(k1, "images/2024/03/07/"))
	assert.True(t, strings.HasSuffix(k1, ".png"))
	assert.NotEqual(t, k1, k2)
	assert.False(t, strings.Contains(NewObjectKey(now, "image/x-unknown"), "."))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore("http://cdn.local/media/")

	url, err := s.Upload(context.Background(), pngBytes, "image/png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://cdn.local/media/images/"))

	key := strings.TrimPrefix(url, "http://cdn.local/media/")
	img, ok := s.Get(key)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, 1, s.Len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Upload(ctx, pngBytes, "image/png")
	assert.ErrorIs(t, err, common.ErrMediaUploadFailed)
}
