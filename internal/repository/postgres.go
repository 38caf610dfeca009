package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/toolshare/internal/domain"
)

// PostgresStore implements domain.RecordStore on PostgreSQL. All entity types
// share one records table keyed by (entity, id) with the record itself held
// as a JSON document, so the store stays a plain ID-to-record mapping.
type PostgresStore[T any] struct {
	db     *sql.DB
	entity string
	logger *slog.Logger
}

// NewPostgresStore creates a record store for one entity type
func NewPostgresStore[T any](db *sql.DB, entity string, logger *slog.Logger) *PostgresStore[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore[T]{
		db:     db,
		entity: entity,
		logger: logger,
	}
}

// EnsureSchema creates the shared records table if it does not exist
func EnsureSchema(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS records (
			entity     TEXT NOT NULL,
			id         TEXT NOT NULL,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (entity, id)
		)
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}
	return nil
}

// Get returns the record for id
func (s *PostgresStore[T]) Get(id string) (T, error) {
	var value T
	var data []byte

	query := `SELECT doc FROM records WHERE entity = $1 AND id = $2`

	err := s.db.QueryRow(query, s.entity, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return value, fmt.Errorf("record %q: %w", id, domain.ErrNotFound)
		}
		s.logger.Error("failed to get record",
			slog.String("entity", s.entity),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return value, fmt.Errorf("failed to get record: %w", err)
	}

	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("failed to unmarshal record %q: %w", id, err)
	}
	return value, nil
}

// Insert stores value under id, replacing any existing record
func (s *PostgresStore[T]) Insert(id string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal record %q: %w", id, err)
	}

	query := `
		INSERT INTO records (entity, id, doc, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (entity, id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`

	if _, err := s.db.Exec(query, s.entity, id, data); err != nil {
		s.logger.Error("failed to store record",
			slog.String("entity", s.entity),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to store record: %w", err)
	}
	return nil
}

// Remove deletes the record for id
func (s *PostgresStore[T]) Remove(id string) error {
	query := `DELETE FROM records WHERE entity = $1 AND id = $2`

	result, err := s.db.Exec(query, s.entity, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("record %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Values returns all records for this entity in unspecified order
func (s *PostgresStore[T]) Values() ([]T, error) {
	query := `SELECT doc FROM records WHERE entity = $1`

	rows, err := s.db.Query(query, s.entity)
	if err != nil {
		s.logger.Error("failed to list records",
			slog.String("entity", s.entity),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var values []T
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		var value T
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		values = append(values, value)
	}

	return values, rows.Err()
}
