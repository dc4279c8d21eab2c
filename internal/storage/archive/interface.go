// internal/storage/archive/interface.go
package archive

import (
	"context"
	"errors"
	"strings"

	"github.com/newthinker/hedgeai/internal/core"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("archive: object not found")

// Store keeps captured chart images.
type Store interface {
	// Put stores data under key, replacing any previous object.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get retrieves the object stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)
}

// SnapshotKey names the image captured for a symbol and interval. A later
// capture of the same pair overwrites the earlier one.
func SnapshotKey(symbol core.Symbol, interval core.Timeframe) string {
	return "screenshot_" + strings.ReplaceAll(string(symbol), ":", "_") + "_" + string(interval) + ".png"
}
