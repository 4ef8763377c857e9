package repository

import (
	"context"

	"github.com/set-night/gptdesk/internal/domain"
)

// Store owns the persisted session document. It only supports whole-document
// reads and writes; Update is a load-modify-save on top of those.
type Store interface {
	// Init creates an empty document when none exists and verifies an
	// existing one can be read.
	Init(ctx context.Context) error
	Load(ctx context.Context) (*domain.Document, error)
	Save(ctx context.Context, doc *domain.Document) error
	// Update loads the document, applies fn and saves the result. When fn
	// returns an error nothing is written.
	Update(ctx context.Context, fn func(doc *domain.Document) error) error
	Close() error
}
