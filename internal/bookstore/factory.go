package bookstore

import (
	"fmt"

	"github.com/sant0-9/bookpal/internal/config"
)

// DefaultAPIBaseURL is where the remote books API listens when no base URL
// is configured.
const DefaultAPIBaseURL = "http://localhost:4540/api/books"

// NewFromConfig creates the store backend selected by config.
func NewFromConfig(cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case "http":
		base := cfg.Store.BaseURL
		if base == "" {
			base = DefaultAPIBaseURL
		}
		return NewHTTPStore(base), nil

	case "", "sqlite":
		path, err := cfg.DBPath()
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(path)

	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
