// Package repository declares the storage ports of the digest store.
package repository

import (
	"context"
	"errors"

	"haberozet/internal/domain/entity"
)

// ErrDuplicate is returned by Create when a digest for the same article URL exists.
var ErrDuplicate = errors.New("digest already stored")

// DigestFilter narrows List results. Zero values mean no restriction;
// Limit is clamped by the implementation.
type DigestFilter struct {
	FeedURL string
	Limit   int
}

// DigestRepository stores summaries produced by the digest worker.
type DigestRepository interface {
	Create(ctx context.Context, digest *entity.Digest) error
	Get(ctx context.Context, id int64) (*entity.Digest, error)
	List(ctx context.Context, filter DigestFilter) ([]*entity.Digest, error)
	ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error)
	Count(ctx context.Context) (int64, error)
}
