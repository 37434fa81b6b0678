package resource

import (
	"context"
	"fmt"

	"craftbench/internal/config"
)

// NewStoreFromConfig creates the Router used by the application: local files
// always, plus S3 objects when enabled.
func NewStoreFromConfig(ctx context.Context, cfg config.ResourcesConfig) (*Router, error) {
	local := NewOSStore()
	if !cfg.S3.Enabled {
		return NewRouter(local, nil), nil
	}

	s3Store, err := NewS3StoreFromConfig(ctx, cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("creating s3 store: %w", err)
	}
	return NewRouter(local, s3Store), nil
}
