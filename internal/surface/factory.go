package surface

import (
	"fmt"
	"io"

	"craftbench/internal/bench"
	"craftbench/internal/config"
)

// Surface is an EditingSurface that holds resources until closed.
type Surface interface {
	bench.EditingSurface
	Close() error
}

// NewSurfaceFromConfig creates the surface selected by cfg.Type.
func NewSurfaceFromConfig(cfg config.SurfaceConfig, resources bench.ResourceStore, out io.Writer) (Surface, error) {
	switch cfg.Type {
	case "terminal", "":
		return NewTerminal(out, resources, cfg.Context), nil
	case "nvim":
		n, err := DialNvim(cfg.NvimAddress)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown surface type: %q", cfg.Type)
	}
}
