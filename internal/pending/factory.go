package pending

import (
	"fmt"

	"craftbench/internal/config"
)

// NewStoreFromConfig creates a Store based on the pending config type.
// table is only used for type "sqlite".
func NewStoreFromConfig(cfg config.PendingConfig, table Table) (*Store, error) {
	switch cfg.Type {
	case "memory", "":
		return NewMemoryStore(), nil
	case "sqlite":
		if table == nil {
			return nil, fmt.Errorf("sqlite pending store requires a database")
		}
		return NewSQLiteStore(table), nil
	default:
		return nil, fmt.Errorf("unknown pending store type: %s", cfg.Type)
	}
}
