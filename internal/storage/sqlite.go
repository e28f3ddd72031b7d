// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/CarolineDieterich/LS3/internal/models"
	"github.com/CarolineDieterich/LS3/internal/terms"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS process_models (
		id TEXT PRIMARY KEY,
		name TEXT,
		path TEXT,
		terms TEXT NOT NULL,
		metadata TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_models_created_at ON process_models(created_at);
	CREATE INDEX IF NOT EXISTS idx_models_path ON process_models(path);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateModel inserts a process model.
func (s *SQLiteStorage) CreateModel(ctx context.Context, model *models.ProcessModel) error {
	termsJSON, metadataJSON, err := encodeModel(model)
	if err != nil {
		return err
	}

	now := time.Now()
	model.CreatedAt = now
	model.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO process_models (id, name, path, terms, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		model.ID, model.Name, model.Path, termsJSON, metadataJSON, model.CreatedAt, model.UpdatedAt,
	)
	return err
}

// GetModel returns a process model by ID.
func (s *SQLiteStorage) GetModel(ctx context.Context, id string) (*models.ProcessModel, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, path, terms, metadata, created_at, updated_at
		 FROM process_models WHERE id = ?`, id,
	)
	model, err := scanModel(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("model not found: %s", id)
	}
	return model, err
}

// UpdateModel updates an existing process model.
func (s *SQLiteStorage) UpdateModel(ctx context.Context, model *models.ProcessModel) error {
	termsJSON, metadataJSON, err := encodeModel(model)
	if err != nil {
		return err
	}

	model.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx,
		`UPDATE process_models SET name = ?, path = ?, terms = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		model.Name, model.Path, termsJSON, metadataJSON, model.UpdatedAt, model.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("model not found: %s", model.ID)
	}
	return nil
}

// DeleteModel removes a process model by ID.
func (s *SQLiteStorage) DeleteModel(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM process_models WHERE id = ?`, id)
	return err
}

// ListModels returns models ordered by creation time, oldest first. A limit
// of 0 or less means no limit.
func (s *SQLiteStorage) ListModels(ctx context.Context, offset, limit int) ([]*models.ProcessModel, error) {
	if limit <= 0 {
		limit = -1 // SQLite: LIMIT -1 means unlimited
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, path, terms, metadata, created_at, updated_at
		 FROM process_models ORDER BY created_at, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ProcessModel
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, model)
	}
	return out, rows.Err()
}

// CountModels returns the total number of process models.
func (s *SQLiteStorage) CountModels(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM process_models`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func encodeModel(model *models.ProcessModel) (termsJSON, metadataJSON string, err error) {
	t, err := json.Marshal(model.TermBag)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal terms: %w", err)
	}
	m, err := json.Marshal(model.Metadata)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return string(t), string(m), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanModel(row rowScanner) (*models.ProcessModel, error) {
	var model models.ProcessModel
	var termsJSON, metadataJSON string
	if err := row.Scan(&model.ID, &model.Name, &model.Path, &termsJSON, &metadataJSON,
		&model.CreatedAt, &model.UpdatedAt); err != nil {
		return nil, err
	}
	model.TermBag = terms.NewBag()
	if termsJSON != "" {
		if err := json.Unmarshal([]byte(termsJSON), &model.TermBag); err != nil {
			return nil, fmt.Errorf("failed to unmarshal terms: %w", err)
		}
	}
	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &model.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &model, nil
}
