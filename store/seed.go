package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk fixture layout:
//
//	items:
//	  - id: 1
//	    name: Laptop
//	    price: 999.99
type seedFile struct {
	Items []seedItem `json:"items" yaml:"items"`
}

// seedItem keeps id as a pointer so an entry without one is caught rather
// than seeded as id 0.
type seedItem struct {
	ID    *int64  `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
}

// LoadSeed reads fixture items from a .json, .yaml or .yml file.
func LoadSeed(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file %s: %w", path, err)
	}

	var f seedFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}

	items := make([]Item, 0, len(f.Items))
	for i, it := range f.Items {
		if it.ID == nil {
			return nil, fmt.Errorf("seed file %s: item %d has no id", path, i)
		}
		items = append(items, Item{ID: *it.ID, Resource: Resource{Name: it.Name, Price: it.Price}})
	}
	return items, nil
}

// Seed creates every item in s. Later entries for the same id overwrite
// earlier ones.
func Seed(s Store, items []Item) error {
	for _, it := range items {
		if _, err := s.Create(it.ID, it.Resource); err != nil {
			return fmt.Errorf("seeding item %d: %w", it.ID, err)
		}
	}
	return nil
}
