package resource

import (
	"context"
	"fmt"
	"strings"

	"craftbench/internal/bench"
)

// Router dispatches resource IDs to a store by scheme. IDs starting with
// s3:// go to the S3 store; everything else is local.
type Router struct {
	local bench.ResourceStore
	s3    bench.ResourceStore
}

var _ bench.ResourceStore = (*Router)(nil)

// NewRouter creates a Router. s3 may be nil, in which case s3:// IDs are
// rejected.
func NewRouter(local, s3 bench.ResourceStore) *Router {
	return &Router{local: local, s3: s3}
}

func (r *Router) route(id string) (bench.ResourceStore, error) {
	if strings.HasPrefix(id, s3Scheme) {
		if r.s3 == nil {
			return nil, fmt.Errorf("s3 resources are not enabled: %s", id)
		}
		return r.s3, nil
	}
	return r.local, nil
}

func (r *Router) ReadText(ctx context.Context, id string) (string, error) {
	st, err := r.route(id)
	if err != nil {
		return "", err
	}
	return st.ReadText(ctx, id)
}

func (r *Router) WriteText(ctx context.Context, id string, content string) error {
	st, err := r.route(id)
	if err != nil {
		return err
	}
	return st.WriteText(ctx, id, content)
}

func (r *Router) Delete(ctx context.Context, id string) error {
	st, err := r.route(id)
	if err != nil {
		return err
	}
	return st.Delete(ctx, id)
}

func (r *Router) Basename(id string) string {
	if strings.HasPrefix(id, s3Scheme) {
		return (&S3Store{}).Basename(id)
	}
	return r.local.Basename(id)
}

func (r *Router) Dirname(id string) string {
	if strings.HasPrefix(id, s3Scheme) {
		return (&S3Store{}).Dirname(id)
	}
	return r.local.Dirname(id)
}

func (r *Router) Join(dir, name string) string {
	if strings.HasPrefix(dir, s3Scheme) {
		return (&S3Store{}).Join(dir, name)
	}
	return r.local.Join(dir, name)
}
