package store_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stevemurr/simple-item-server/store"
)

// runStoreTests runs a common test suite against any Store implementation.
// Subtests share state and run in order.
func runStoreTests(t *testing.T, s store.Store) {
	t.Helper()

	laptop := store.Resource{Name: "Laptop", Price: 999.99}
	gaming := store.Resource{Name: "Gaming Laptop", Price: 1299.99}

	t.Run("List empty", func(t *testing.T) {
		items, err := s.List()
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 0 {
			t.Fatalf("expected 0 items, got %d", len(items))
		}
	})

	t.Run("Get and Delete missing", func(t *testing.T) {
		_, found, err := s.Get(42)
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected found=false for unknown id")
		}
		_, found, err = s.Delete(42)
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected found=false deleting unknown id")
		}
	})

	t.Run("Create and Get", func(t *testing.T) {
		got, err := s.Create(1, laptop)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(laptop, got); diff != "" {
			t.Fatalf("Create returned unexpected value (-want +got):\n%s", diff)
		}
		got, found, err := s.Get(1)
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected item, got not found")
		}
		if diff := cmp.Diff(laptop, got); diff != "" {
			t.Fatalf("Get mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Create overwrites", func(t *testing.T) {
		other := store.Resource{Name: "Tablet", Price: 10}
		if _, err := s.Create(1, other); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Create(1, laptop); err != nil {
			t.Fatal(err)
		}
		got, _, err := s.Get(1)
		if err != nil {
			t.Fatal(err)
		}
		if got != laptop {
			t.Fatalf("expected last write %+v, got %+v", laptop, got)
		}
		n, err := s.Len()
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Fatalf("expected 1 item after overwrite, got %d", n)
		}
	})

	t.Run("Update replaces", func(t *testing.T) {
		got, err := s.Update(1, gaming)
		if err != nil {
			t.Fatal(err)
		}
		if got != gaming {
			t.Fatalf("expected %+v, got %+v", gaming, got)
		}
		got, _, err = s.Get(1)
		if err != nil {
			t.Fatal(err)
		}
		if got != gaming {
			t.Fatalf("expected %+v after update, got %+v", gaming, got)
		}
	})

	t.Run("Update absent id inserts", func(t *testing.T) {
		mouse := store.Resource{Name: "Mouse", Price: 19.9}
		if _, err := s.Update(7, mouse); err != nil {
			t.Fatal(err)
		}
		got, found, err := s.Get(7)
		if err != nil {
			t.Fatal(err)
		}
		if !found || got != mouse {
			t.Fatalf("expected %+v, got %+v (found=%v)", mouse, got, found)
		}
	})

	t.Run("Replace requires existing id", func(t *testing.T) {
		_, found, err := s.Replace(99, laptop)
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected found=false replacing unknown id")
		}
		if _, found, _ := s.Get(99); found {
			t.Fatal("Replace must not insert")
		}

		keyboard := store.Resource{Name: "Keyboard", Price: 49.9}
		if _, err := s.Create(99, keyboard); err != nil {
			t.Fatal(err)
		}
		got, found, err := s.Replace(99, laptop)
		if err != nil {
			t.Fatal(err)
		}
		if !found || got != laptop {
			t.Fatalf("expected %+v, got %+v (found=%v)", laptop, got, found)
		}
		if _, _, err := s.Delete(99); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("List ordered by id", func(t *testing.T) {
		if _, err := s.Create(3, store.Resource{Name: "Dock", Price: 0}); err != nil {
			t.Fatal(err)
		}
		items, err := s.List()
		if err != nil {
			t.Fatal(err)
		}
		want := []store.Item{
			{ID: 1, Resource: gaming},
			{ID: 3, Resource: store.Resource{Name: "Dock", Price: 0}},
			{ID: 7, Resource: store.Resource{Name: "Mouse", Price: 19.9}},
		}
		if diff := cmp.Diff(want, items); diff != "" {
			t.Fatalf("List mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Delete existing", func(t *testing.T) {
		got, found, err := s.Delete(1)
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found=true")
		}
		if got != gaming {
			t.Fatalf("expected deleted value %+v, got %+v", gaming, got)
		}
		if _, found, _ := s.Get(1); found {
			t.Fatal("expected not found after delete")
		}
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		_, found, err := s.Delete(1)
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected found=false on second delete")
		}
	})

	t.Run("Negative and zero ids", func(t *testing.T) {
		for _, id := range []int64{0, -5} {
			r := store.Resource{Name: "edge", Price: -1}
			if _, err := s.Create(id, r); err != nil {
				t.Fatal(err)
			}
			got, found, err := s.Get(id)
			if err != nil {
				t.Fatal(err)
			}
			if !found || got != r {
				t.Fatalf("id %d: expected %+v, got %+v (found=%v)", id, r, got, found)
			}
		}
	})
}

func TestMemoryStore(t *testing.T) {
	s := store.NewMemoryStore()
	runStoreTests(t, s)
}

func TestSqliteStore(t *testing.T) {
	s, err := store.NewSqliteStore()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	runStoreTests(t, s)
}

func TestSqliteStoresAreIsolated(t *testing.T) {
	a, err := store.NewSqliteStore()
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := store.NewSqliteStore()
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	a.Create(1, store.Resource{Name: "only in a", Price: 1})
	if _, found, _ := b.Get(1); found {
		t.Fatal("expected separate databases per store")
	}
}

func TestFactory(t *testing.T) {
	tests := []struct {
		backend string
	}{
		{"memory"},
		{"sqlite"},
		{""},
	}
	for _, tc := range tests {
		t.Run(tc.backend, func(t *testing.T) {
			s, err := store.New(tc.backend)
			if err != nil {
				t.Fatal(err)
			}
			n, err := s.Len()
			if err != nil {
				t.Fatal(err)
			}
			if n != 0 {
				t.Fatalf("expected empty store, got %d items", n)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := store.New("redis")
		if err == nil {
			t.Fatal("expected error for unknown backend")
		}
	})
}

func TestEndToEndScenario(t *testing.T) {
	for _, backend := range []string{"memory", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			s, err := store.New(backend)
			if err != nil {
				t.Fatal(err)
			}

			laptop := store.Resource{Name: "Laptop", Price: 999.99}
			if _, err := s.Create(1, laptop); err != nil {
				t.Fatal(err)
			}
			got, found, err := s.Get(1)
			if err != nil {
				t.Fatal(err)
			}
			if !found || got != laptop {
				t.Fatalf("unexpected read after create: %+v (found=%v)", got, found)
			}

			gaming := store.Resource{Name: "Gaming Laptop", Price: 1299.99}
			if _, err := s.Update(1, gaming); err != nil {
				t.Fatal(err)
			}
			got, found, err = s.Get(1)
			if err != nil {
				t.Fatal(err)
			}
			if !found || got != gaming {
				t.Fatalf("unexpected read after update: %+v (found=%v)", got, found)
			}

			deleted, found, err := s.Delete(1)
			if err != nil {
				t.Fatal(err)
			}
			if !found || deleted != gaming {
				t.Fatalf("unexpected delete result: %+v (found=%v)", deleted, found)
			}

			_, found, err = s.Get(1)
			if err != nil {
				t.Fatal(err)
			}
			if found {
				t.Fatal("expected not found after delete")
			}
		})
	}
}

func TestConcurrentWriters(t *testing.T) {
	for _, backend := range []string{"memory", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			s, err := store.New(backend)
			if err != nil {
				t.Fatal(err)
			}

			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					id := int64(i % 5)
					if _, err := s.Create(id, store.Resource{Name: "w", Price: float64(i)}); err != nil {
						t.Errorf("create %d: %v", id, err)
						return
					}
					if _, _, err := s.Get(id); err != nil {
						t.Errorf("get %d: %v", id, err)
					}
					if i%7 == 0 {
						if _, _, err := s.Delete(id); err != nil {
							t.Errorf("delete %d: %v", id, err)
						}
					}
				}(i)
			}
			wg.Wait()

			n, err := s.Len()
			if err != nil {
				t.Fatal(err)
			}
			if n > 5 {
				t.Fatalf("expected at most 5 ids, got %d", n)
			}
		})
	}
}

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "seed.yaml")
	os.WriteFile(yamlPath, []byte(`items:
  - id: 1
    name: Laptop
    price: 999.99
  - id: 2
    name: Mouse
    price: 19.5
`), 0o644)

	jsonPath := filepath.Join(dir, "seed.json")
	os.WriteFile(jsonPath, []byte(`{"items":[{"id":1,"name":"Laptop","price":999.99},{"id":2,"name":"Mouse","price":19.5}]}`), 0o644)

	want := []store.Item{
		{ID: 1, Resource: store.Resource{Name: "Laptop", Price: 999.99}},
		{ID: 2, Resource: store.Resource{Name: "Mouse", Price: 19.5}},
	}

	for _, path := range []string{yamlPath, jsonPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			items, err := store.LoadSeed(path)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(want, items); diff != "" {
				t.Fatalf("LoadSeed mismatch (-want +got):\n%s", diff)
			}

			s := store.NewMemoryStore()
			if err := store.Seed(s, items); err != nil {
				t.Fatal(err)
			}
			got, err := s.List()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("seeded store mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		p := filepath.Join(dir, "seed.txt")
		os.WriteFile(p, []byte("items: []"), 0o644)
		if _, err := store.LoadSeed(p); err == nil {
			t.Fatal("expected error for .txt seed file")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := store.LoadSeed(filepath.Join(dir, "nope.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("item without id", func(t *testing.T) {
		for name, body := range map[string]string{
			"noid.yaml": "items:\n  - id: 1\n    name: Laptop\n    price: 1\n  - name: Mouse\n    price: 2\n",
			"noid.json": `{"items":[{"name":"Mouse","price":2}]}`,
		} {
			p := filepath.Join(dir, name)
			if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := store.LoadSeed(p); err == nil {
				t.Fatalf("%s: expected error for item without id", name)
			}
		}
	})

	t.Run("explicit id zero", func(t *testing.T) {
		p := filepath.Join(dir, "zero.json")
		if err := os.WriteFile(p, []byte(`{"items":[{"id":0,"name":"Dock","price":5}]}`), 0o644); err != nil {
			t.Fatal(err)
		}
		items, err := store.LoadSeed(p)
		if err != nil {
			t.Fatal(err)
		}
		want := []store.Item{{ID: 0, Resource: store.Resource{Name: "Dock", Price: 5}}}
		if diff := cmp.Diff(want, items); diff != "" {
			t.Fatalf("LoadSeed mismatch (-want +got):\n%s", diff)
		}
	})
}
