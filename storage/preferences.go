package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// PreferenceDB is a sqlite-backed preference store. It satisfies
// config.Preferences.
type PreferenceDB struct {
	db *sql.DB
}

func NewPreferenceDB(dbPath string) (*PreferenceDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PreferenceDB{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (p *PreferenceDB) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := p.db.Exec(schema)
	return err
}

func (p *PreferenceDB) Get(key string) (string, bool, error) {
	var value string
	err := p.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, true, nil
}

func (p *PreferenceDB) Set(key, value string) error {
	query := `
	INSERT OR REPLACE INTO preferences (key, value, updated_at)
	VALUES (?, ?, ?)
	`
	if _, err := p.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

func (p *PreferenceDB) Delete(key string) error {
	if _, err := p.db.Exec(`DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}

func (p *PreferenceDB) All() (map[string]string, error) {
	rows, err := p.db.Query(`SELECT key, value FROM preferences`)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		prefs[key] = value
	}
	return prefs, rows.Err()
}

// UpdatedAt returns when key was last written.
func (p *PreferenceDB) UpdatedAt(key string) (time.Time, error) {
	var ts time.Time
	err := p.db.QueryRow(`SELECT updated_at FROM preferences WHERE key = ?`, key).Scan(&ts)
	if err != nil {
		return time.Time{}, err
	}
	return ts, nil
}

func (p *PreferenceDB) Close() error {
	return p.db.Close()
}
