package store

import (
	"database/sql"
	"errors"
)

// GetPreference retrieves a preference value by key
// Returns empty string if key doesn't exist
func (s *Store) GetPreference(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`
		SELECT value FROM preferences WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetPreference sets a preference value
func (s *Store) SetPreference(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}
