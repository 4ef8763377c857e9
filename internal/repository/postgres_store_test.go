package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/set-night/gptdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow stands in for the session_store table: one optional document.
type fakeRow struct {
	document []byte
	execs    []string
}

func (f *fakeRow) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	switch sql {
	case seedDocumentSQL:
		if f.document == nil {
			f.document = args[0].([]byte)
		}
	case upsertDocumentSQL:
		f.document = args[0].([]byte)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeRow) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return scanRow{document: f.document}
}

type scanRow struct{ document []byte }

func (r scanRow) Scan(dest ...any) error {
	if r.document == nil {
		return pgx.ErrNoRows
	}
	*dest[0].(*[]byte) = r.document
	return nil
}

func TestInitRowSeedsEmptyDocument(t *testing.T) {
	db := &fakeRow{}
	require.NoError(t, initRow(context.Background(), db))

	assert.Equal(t, []string{seedDocumentSQL}, db.execs)
	assert.JSONEq(t, `{"sessions":{}}`, string(db.document))
}

func TestInitRowKeepsExistingDocument(t *testing.T) {
	existing := []byte(`{"sessions":{"sk-a":{"messages":[{"role":"user","content":"hi"}],"files":{}}}}`)
	db := &fakeRow{document: existing}
	require.NoError(t, initRow(context.Background(), db))

	assert.Equal(t, existing, db.document)
	doc, err := loadRow(context.Background(), db, selectDocumentSQL)
	require.NoError(t, err)
	rec, ok := doc.Lookup("sk-a")
	require.True(t, ok)
	assert.Len(t, rec.Messages, 1)
}

func TestInitRowCorruptDocument(t *testing.T) {
	db := &fakeRow{document: []byte(`{"other":1}`)}
	err := initRow(context.Background(), db)
	assert.True(t, errors.Is(err, domain.ErrStoreCorrupt), "got %v", err)
}

func TestSaveRowRoundTrip(t *testing.T) {
	db := &fakeRow{}
	doc := domain.NewDocument()
	doc.Session("sk-b").Messages = append(doc.Session("sk-b").Messages, domain.Message{Role: domain.RoleUser, Content: "hello"})
	require.NoError(t, saveRow(context.Background(), db, doc))

	got, err := loadRow(context.Background(), db, selectDocumentSQL)
	require.NoError(t, err)
	rec, ok := got.Lookup("sk-b")
	require.True(t, ok)
	assert.Equal(t, "hello", rec.Messages[0].Content)
}
