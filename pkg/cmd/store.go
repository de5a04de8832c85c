package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cascadehq/cascade/pkg/store"
	"github.com/cascadehq/cascade/pkg/store/file"
	"github.com/cascadehq/cascade/pkg/store/memory"
	"github.com/cascadehq/cascade/pkg/store/postgres"
	"github.com/cascadehq/cascade/pkg/store/redis"
)

// NewStore picks a persistence backend from the database URL scheme:
// postgres://, redis://, file://, or "memory". A bare path is treated as a
// file store root.
func NewStore(databaseURL string, logger *slog.Logger) (store.Store, error) {
	switch {
	case databaseURL == "" || databaseURL == "memory":
		return memory.NewStore(), nil
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.NewStore(databaseURL, logger)
	case strings.HasPrefix(databaseURL, "redis://"), strings.HasPrefix(databaseURL, "rediss://"):
		return redis.NewStore(databaseURL)
	case strings.HasPrefix(databaseURL, "file://"):
		return file.NewStore(databaseURL), nil
	case strings.Contains(databaseURL, "://"):
		return nil, fmt.Errorf("unsupported database url: %s", databaseURL)
	default:
		return file.NewStore(databaseURL), nil
	}
}
