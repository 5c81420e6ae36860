package storage

import (
	"context"
	"fmt"

	"github.com/nfrund/sparx/internal/config"
)

// UploadsPrefix is the route under which the local store is served.
const UploadsPrefix = "/uploads"

// NewStore creates the storage backend selected by STORAGE_BACKEND.
func NewStore(ctx context.Context, cfg config.Provider) (Store, error) {
	switch cfg.GetStorageBackend() {
	case "s3":
		store, err := NewS3Store(ctx, S3Config{
			Bucket:    cfg.GetS3Bucket(),
			Region:    cfg.GetS3Region(),
			Endpoint:  cfg.GetS3Endpoint(),
			AccessKey: cfg.GetS3AccessKey(),
			SecretKey: cfg.GetS3SecretKey(),
			PublicURL: cfg.GetS3PublicURL(),
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "local", "":
		store, err := NewLocalStore(cfg.GetStorageDir(), cfg.GetAppBaseURL()+UploadsPrefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.GetStorageBackend())
	}
}
