package port

import (
	"context"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// ShortURLStore persists the shortID -> destination URL table used by the
// QR-capacity short-link redirect (spec.md §3, §4.13).
type ShortURLStore interface {
	Put(ctx context.Context, su *entity.ShortURL) error
	Get(ctx context.Context, shortID string) (*entity.ShortURL, error)
	Delete(ctx context.Context, shortID string) error
	All(ctx context.Context) []*entity.ShortURL
}
