// Package postgres implements the digest store on PostgreSQL through
// database/sql and the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"haberozet/internal/domain/entity"
	"haberozet/internal/observability/metrics"
	"haberozet/internal/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// DBTX is the query surface shared by *sql.DB and circuitbreaker.DBCircuitBreaker.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DigestRepo struct{ db DBTX }

func NewDigestRepo(db DBTX) repository.DigestRepository {
	return &DigestRepo{db: db}
}

const digestColumns = `id, feed_url, url, title, summary, method, sentence_count, compression_ratio, published_at, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDigest(row rowScanner) (*entity.Digest, error) {
	var (
		d         entity.Digest
		method    string
		published sql.NullTime
	)
	if err := row.Scan(
		&d.ID, &d.FeedURL, &d.URL, &d.Title, &d.Summary, &method,
		&d.SentenceCount, &d.CompressionRatio, &published, &d.CreatedAt,
	); err != nil {
		return nil, err
	}
	d.Method = entity.Method(method)
	if published.Valid {
		d.PublishedAt = published.Time
	}
	return &d, nil
}

func observe(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}

func (repo *DigestRepo) Create(ctx context.Context, d *entity.Digest) error {
	defer observe("digest_create", time.Now())

	if err := d.Validate(); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	const query = `
INSERT INTO digests (feed_url, url, title, summary, method, sentence_count, compression_ratio, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (url) DO NOTHING
RETURNING id, created_at`

	var published sql.NullTime
	if !d.PublishedAt.IsZero() {
		published = sql.NullTime{Time: d.PublishedAt, Valid: true}
	}

	err := repo.db.QueryRowContext(ctx, query,
		d.FeedURL, d.URL, d.Title, d.Summary, string(d.Method),
		d.SentenceCount, d.CompressionRatio, published,
	).Scan(&d.ID, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("Create: %w", repository.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *DigestRepo) Get(ctx context.Context, id int64) (*entity.Digest, error) {
	defer observe("digest_get", time.Now())

	query := `SELECT ` + digestColumns + ` FROM digests WHERE id = $1`
	d, err := scanDigest(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Get: %w", entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return d, nil
}

func (repo *DigestRepo) List(ctx context.Context, filter repository.DigestFilter) ([]*entity.Digest, error) {
	defer observe("digest_list", time.Now())

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT ` + digestColumns + ` FROM digests`)
	if filter.FeedURL != "" {
		args = append(args, filter.FeedURL)
		query.WriteString(` WHERE feed_url = $1`)
	}
	args = append(args, limit)
	query.WriteString(` ORDER BY published_at DESC NULLS LAST, id DESC LIMIT $` + strconv.Itoa(len(args)))

	rows, err := repo.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	digests := make([]*entity.Digest, 0, limit)
	for rows.Next() {
		d, err := scanDigest(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		digests = append(digests, d)
	}
	return digests, rows.Err()
}

// ExistsByURLBatch reports which of urls are already stored, in one query.
func (repo *DigestRepo) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	if len(urls) == 0 {
		return make(map[string]bool), nil
	}
	defer observe("digest_exists_batch", time.Now())

	placeholders := make([]string, len(urls))
	args := make([]any, len(urls))
	for i, u := range urls {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = u
	}
	query := `SELECT url FROM digests WHERE url IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool, len(urls))
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("ExistsByURLBatch: Scan: %w", err)
		}
		result[url] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: rows.Err: %w", err)
	}
	return result, nil
}

func (repo *DigestRepo) Count(ctx context.Context) (int64, error) {
	defer observe("digest_count", time.Now())

	var n int64
	if err := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM digests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}
