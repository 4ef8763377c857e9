package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/gptdesk/internal/domain"
)

const (
	selectDocumentSQL          = `SELECT document FROM session_store WHERE id = 1`
	selectDocumentForUpdateSQL = `SELECT document FROM session_store WHERE id = 1 FOR UPDATE`
	seedDocumentSQL            = `INSERT INTO session_store (id, document) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`
	upsertDocumentSQL          = `INSERT INTO session_store (id, document, updated_at) VALUES (1, $1, now())
ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`
)

// PostgresStore keeps the whole document in a single JSONB row. Update holds
// a row lock for the duration of the load-modify-save.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgresStore connects, applies migrations and returns a ready store.
func OpenPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	migrations, err := MigrationsFS()
	if err != nil {
		return nil, fmt.Errorf("load embedded migrations: %w", err)
	}
	if err := RunMigrations(databaseURL, migrations); err != nil {
		return nil, err
	}
	pool, err := NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return NewPostgresStore(pool), nil
}

// Init writes an empty document when the row is missing and checks that the
// stored one decodes.
func (s *PostgresStore) Init(ctx context.Context) error {
	return initRow(ctx, s.pool)
}

func (s *PostgresStore) Load(ctx context.Context) (*domain.Document, error) {
	return loadRow(ctx, s.pool, selectDocumentSQL)
}

func (s *PostgresStore) Save(ctx context.Context, doc *domain.Document) error {
	return saveRow(ctx, s.pool, doc)
}

func (s *PostgresStore) Update(ctx context.Context, fn func(doc *domain.Document) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	doc, err := loadRow(ctx, tx, selectDocumentForUpdateSQL)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	if err := saveRow(ctx, tx, doc); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// rowQuerier and execer are satisfied by both *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type rowStore interface {
	rowQuerier
	execer
}

func initRow(ctx context.Context, db rowStore) error {
	raw, err := json.Marshal(domain.NewDocument())
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := db.Exec(ctx, seedDocumentSQL, raw); err != nil {
		return fmt.Errorf("seed document: %w", err)
	}
	_, err = loadRow(ctx, db, selectDocumentSQL)
	return err
}

func loadRow(ctx context.Context, q rowQuerier, query string) (*domain.Document, error) {
	var raw []byte
	err := q.QueryRow(ctx, query).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return decodeDocument("session_store", raw)
}

func saveRow(ctx context.Context, e execer, doc *domain.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := e.Exec(ctx, upsertDocumentSQL, raw); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}
