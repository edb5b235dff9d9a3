package store

import "fmt"

// New creates a Store based on the backend name.
//
// Supported backends:
//
//	"memory" - Go map (default)
//	"sqlite" - in-memory SQLite database
func New(backend string) (Store, error) {
	switch backend {
	case "memory", "":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSqliteStore()
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: memory, sqlite)", backend)
	}
}
