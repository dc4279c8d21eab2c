// internal/storage/archive/s3_test.go
package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/newthinker/hedgeai/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Store_ImplementsStore(t *testing.T) {
	var _ Store = (*S3Store)(nil)
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(config.S3Config{})
	assert.Error(t, err)
}

func TestS3Store_Key(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{"", "shot.png", "shot.png"},
		{"charts", "shot.png", "charts/shot.png"},
		{"/charts/", "shot.png", "charts/shot.png"},
	}

	for _, tt := range tests {
		s, err := NewS3(config.S3Config{Bucket: "b", Prefix: tt.prefix})
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.key(tt.key), "prefix %q", tt.prefix)
	}
}

// fakeBucket serves path-style PUT, GET and HEAD for a single bucket.
func fakeBucket(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	objects := map[string][]byte{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			objects[r.URL.Path] = body
			w.WriteHeader(http.StatusOK)
		case http.MethodGet, http.MethodHead:
			body, ok := objects[r.URL.Path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			if r.Method == http.MethodGet {
				w.Write(body)
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestS3Store_PutGetExists(t *testing.T) {
	srv := fakeBucket(t)
	store, err := NewS3(config.S3Config{
		Bucket:    "charts",
		Endpoint:  srv.URL,
		AccessKey: "key",
		SecretKey: "secret",
		Prefix:    "hedgeai",
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "screenshot_BINANCE_BTCUSDT_1.png", []byte("png"), "image/png"))

	got, err := store.Get(ctx, "screenshot_BINANCE_BTCUSDT_1.png")
	require.NoError(t, err)
	assert.Equal(t, "png", string(got))

	ok, err := store.Exists(ctx, "screenshot_BINANCE_BTCUSDT_1.png")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "missing.png")
	require.NoError(t, err)
	assert.False(t, ok)
}
