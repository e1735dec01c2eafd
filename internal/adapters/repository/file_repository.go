package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/taskboard/core/internal/domain/entities"
	"github.com/taskboard/core/internal/ports"
)

// FileRepository persists the board document as a single JSON blob on
// disk. Writes go through a temp file and rename so a crash mid-write
// never leaves a truncated document behind.
type FileRepository struct {
	path string
}

// NewFileRepository creates a file-backed document repository at the
// given path. Parent directories are created on demand.
func NewFileRepository(path string) ports.DocumentRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Load(ctx context.Context) (*entities.Document, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entities.NewDocument(), nil
		}
		return nil, fmt.Errorf("read document file: %w", err)
	}

	var doc entities.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document file: %w", err)
	}
	doc.Normalize()

	return &doc, nil
}

func (r *FileRepository) Save(ctx context.Context, doc *entities.Document) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write document file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace document file: %w", err)
	}

	return nil
}

// HealthCheck verifies the document directory is reachable. A missing
// file is fine since Save creates it on demand.
func (r *FileRepository) HealthCheck(ctx context.Context) error {
	dir := filepath.Dir(r.path)
	if _, err := os.Stat(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat document directory: %w", err)
	}
	return nil
}

func (r *FileRepository) Close() error {
	return nil
}
