package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/infrastructure/database"
	"github.com/taskboard/core/internal/ports"
)

// documentKey identifies the single board row. The table acts as a
// key-value settings facility holding the document as one jsonb blob.
const documentKey = "board"

// PostgresRepository stores the board document in a single-row
// board_documents table.
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a Postgres-backed document repository.
func NewPostgresRepository(db *database.DB) ports.DocumentRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context) (*entities.Document, error) {
	query := `SELECT doc FROM board_documents WHERE key = $1`

	var raw []byte
	err := r.db.DB.GetContext(ctx, &raw, query, documentKey)
	if err != nil {
		if err == sql.ErrNoRows {
			return entities.NewDocument(), nil
		}
		return nil, fmt.Errorf("load document row: %w", err)
	}

	var doc entities.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document row: %w", err)
	}
	doc.Normalize()

	return &doc, nil
}

func (r *PostgresRepository) Save(ctx context.Context, doc *entities.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	query := `
		INSERT INTO board_documents (key, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`

	if _, err := r.db.DB.ExecContext(ctx, query, documentKey, raw); err != nil {
		return fmt.Errorf("save document row: %w", err)
	}

	return nil
}

// HealthCheck pings the database behind the document store.
func (r *PostgresRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
