package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eykd/blockmark/internal/block"
	"github.com/eykd/blockmark/internal/markdown"
)

// DocumentInfo summarizes a stored document.
type DocumentInfo struct {
	Name      string    `json:"name"`
	Revision  int64     `json:"revision"`
	Blocks    int       `json:"blocks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentStore saves and loads block documents by name.
type DocumentStore struct {
	db *DB
	// now is replaceable in tests.
	now func() time.Time
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db, now: time.Now}
}

// Save replaces the stored blocks of document name, creating it if needed,
// and returns the document's new revision. Each save bumps the revision by
// one. The rendered Markdown is stored alongside the blocks.
func (s *DocumentStore) Save(ctx context.Context, name string, blocks []block.Block) (int64, error) {
	if name == "" {
		return 0, errors.New("save document: empty name")
	}
	now := s.now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var revision int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO documents (name, markdown, revision, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			markdown = excluded.markdown,
			revision = documents.revision + 1,
			updated_at = excluded.updated_at
		RETURNING revision`,
		name, markdown.Serialize(blocks), now, now,
	).Scan(&revision)
	if err != nil {
		return 0, fmt.Errorf("upsert document %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks WHERE document = ?`, name); err != nil {
		return 0, fmt.Errorf("delete blocks: %w", err)
	}
	for i, b := range blocks {
		data, err := json.Marshal(b)
		if err != nil {
			return 0, fmt.Errorf("encode block %s: %w", b.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO blocks (document, position, id, type, content, data_json) VALUES (?, ?, ?, ?, ?, ?)`,
			name, i, b.ID, string(b.Type), b.Content, string(data),
		)
		if err != nil {
			return 0, fmt.Errorf("insert block %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return revision, nil
}

// Load returns the blocks of document name in order.
func (s *DocumentStore) Load(ctx context.Context, name string) ([]block.Block, error) {
	if _, err := s.Info(ctx, name); err != nil {
		return nil, err
	}

	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT data_json FROM blocks WHERE document = ? ORDER BY position ASC`, name)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	defer rows.Close()

	blocks := make([]block.Block, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		var b block.Block
		if err := json.Unmarshal([]byte(data), &b); err != nil {
			return nil, fmt.Errorf("decode block: %w", err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// Markdown returns the Markdown rendered at the last save of document name.
func (s *DocumentStore) Markdown(ctx context.Context, name string) (string, error) {
	var md string
	err := s.db.conn.QueryRowContext(ctx, `SELECT markdown FROM documents WHERE name = ?`, name).Scan(&md)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("get markdown: %w", err)
	}
	return md, nil
}

// Info returns the summary of document name.
func (s *DocumentStore) Info(ctx context.Context, name string) (DocumentInfo, error) {
	row := s.db.conn.QueryRowContext(ctx, infoQuery+` WHERE d.name = ? GROUP BY d.name`, name)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return DocumentInfo{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("get document: %w", err)
	}
	return info, nil
}

// List returns every stored document ordered by name.
func (s *DocumentStore) List(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.db.conn.QueryContext(ctx, infoQuery+` GROUP BY d.name ORDER BY d.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var infos []DocumentInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Delete removes document name and its blocks.
func (s *DocumentStore) Delete(ctx context.Context, name string) error {
	result, err := s.db.conn.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

const infoQuery = `
	SELECT d.name, d.revision, COUNT(b.position), d.created_at, d.updated_at
	FROM documents d LEFT JOIN blocks b ON b.document = d.name`

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(sc scanner) (DocumentInfo, error) {
	var info DocumentInfo
	var created, updated string
	if err := sc.Scan(&info.Name, &info.Revision, &info.Blocks, &created, &updated); err != nil {
		return DocumentInfo{}, err
	}
	var err error
	if info.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return DocumentInfo{}, fmt.Errorf("parse created_at: %w", err)
	}
	if info.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return DocumentInfo{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return info, nil
}
