// internal/storage/archive/archive.go
package archive

import (
	"fmt"

	"github.com/newthinker/hedgeai/internal/config"
)

// New builds the store selected by cfg.Type.
func New(cfg config.ArchiveConfig) (Store, error) {
	switch cfg.Type {
	case "", "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}
