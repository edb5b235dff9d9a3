// Package store defines the resource store interface and implementations.
package store

import "errors"

// ErrNotFound is returned by callers that turn a missing id into an error.
// Store methods themselves report absence through their found result.
var ErrNotFound = errors.New("item not found")

// Resource is the named, priced entity held by a Store.
type Resource struct {
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
}

// Item is a Resource together with its identifier.
type Item struct {
	ID       int64 `json:"id" yaml:"id"`
	Resource `yaml:",inline"`
}

// Store is the interface that all backing stores must implement.
// Each id holds at most one Resource. All implementations are safe for
// concurrent use; the last write to an id wins.
type Store interface {
	// Create inserts or replaces the resource at id and returns the stored value.
	Create(id int64, r Resource) (Resource, error)

	// Get returns the resource at id. found is false if nothing is stored there.
	Get(id int64) (r Resource, found bool, err error)

	// Update replaces the resource at id. It does not check that id exists.
	Update(id int64, r Resource) (Resource, error)

	// Replace overwrites the resource at id only if one is already stored.
	// found is false, and nothing changes, when id is absent.
	Replace(id int64, r Resource) (stored Resource, found bool, err error)

	// Delete removes the resource at id and returns it. found is false if
	// nothing was stored there, in which case nothing changes.
	Delete(id int64) (r Resource, found bool, err error)

	// List returns every item ordered by id.
	List() ([]Item, error)

	// Len returns the number of stored items.
	Len() (int, error)
}
