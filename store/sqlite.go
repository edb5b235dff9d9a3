package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SqliteStore keeps all items in an in-memory SQLite database. Like
// MemoryStore, nothing survives a restart.
//
// Tables:
//
//	items(id, name, price)  PRIMARY KEY (id)
type SqliteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSqliteStore opens a fresh in-memory database. Every connection to
// ":memory:" sees its own database, so the pool is pinned to one connection.
func NewSqliteStore() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		price REAL NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating items table: %w", err)
	}
	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) Create(id int64, r Resource) (Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO items (id, name, price) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, price = excluded.price`,
		id, r.Name, r.Price,
	)
	if err != nil {
		return Resource{}, fmt.Errorf("writing item %d: %w", id, err)
	}
	return r, nil
}

func (s *SqliteStore) Get(id int64) (Resource, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id)
}

func (s *SqliteStore) get(id int64) (Resource, bool, error) {
	var r Resource
	err := s.db.QueryRow("SELECT name, price FROM items WHERE id = ?", id).Scan(&r.Name, &r.Price)
	if err == sql.ErrNoRows {
		return Resource{}, false, nil
	}
	if err != nil {
		return Resource{}, false, fmt.Errorf("reading item %d: %w", id, err)
	}
	return r, true, nil
}

func (s *SqliteStore) Update(id int64, r Resource) (Resource, error) {
	return s.Create(id, r)
}

func (s *SqliteStore) Replace(id int64, r Resource) (Resource, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec("UPDATE items SET name = ?, price = ? WHERE id = ?", r.Name, r.Price, id)
	if err != nil {
		return Resource{}, false, fmt.Errorf("replacing item %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Resource{}, false, fmt.Errorf("replacing item %d: %w", id, err)
	}
	if n == 0 {
		return Resource{}, false, nil
	}
	return r, true, nil
}

func (s *SqliteStore) Delete(id int64) (Resource, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, found, err := s.get(id)
	if err != nil || !found {
		return Resource{}, false, err
	}
	if _, err := s.db.Exec("DELETE FROM items WHERE id = ?", id); err != nil {
		return Resource{}, false, fmt.Errorf("deleting item %d: %w", id, err)
	}
	return r, true, nil
}

func (s *SqliteStore) List() ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.Query("SELECT id, name, price FROM items ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()
	result := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Price); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

func (s *SqliteStore) Len() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}
