package port

import (
	"context"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// DocumentRegistry is the subset of the C7 Document Registry Core that C9
// (section-level download) and C11 need: look a record up by ID, distinct
// Gone-vs-NotFound semantics already applied by the implementation.
type DocumentRegistry interface {
	Get(ctx context.Context, documentID string) (*entity.Document, error)
}
