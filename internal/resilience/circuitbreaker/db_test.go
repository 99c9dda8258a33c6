package circuitbreaker

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockBreaker(t *testing.T, cfg Config) (*DBCircuitBreaker, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewDBCircuitBreakerWithConfig(db, cfg), mock
}

func fastDBConfig() Config {
	cfg := DBConfig()
	cfg.Timeout = 50 * time.Millisecond
	cfg.MaxRequests = 1
	return cfg
}

func TestNewDBCircuitBreaker(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	dcb := NewDBCircuitBreaker(db)
	assert.Same(t, db, dcb.DB())
	assert.Equal(t, gobreaker.StateClosed, dcb.State())
	assert.Equal(t, "database", dcb.cb.Name())
}

func TestDBCircuitBreaker_Query(t *testing.T) {
	dcb, mock := newMockBreaker(t, fastDBConfig())
	mock.ExpectQuery("SELECT id, title FROM digests").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(1, "Ekonomi"))

	rows, err := dcb.QueryContext(context.Background(), "SELECT id, title FROM digests WHERE id = $1", 1)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var (
		id    int64
		title string
	)
	require.NoError(t, rows.Scan(&id, &title))
	assert.Equal(t, "Ekonomi", title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCircuitBreaker_Exec(t *testing.T) {
	dcb, mock := newMockBreaker(t, fastDBConfig())
	mock.ExpectExec("DELETE FROM digests").WillReturnResult(sqlmock.NewResult(0, 3))

	res, err := dcb.ExecContext(context.Background(), "DELETE FROM digests WHERE created_at < $1", time.Now())
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestDBCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	dcb, mock := newMockBreaker(t, fastDBConfig())
	dbErr := errors.New("connection refused")
	for range 5 {
		mock.ExpectExec("INSERT INTO digests").WillReturnError(dbErr)
	}

	for range 5 {
		_, err := dcb.ExecContext(context.Background(), "INSERT INTO digests DEFAULT VALUES")
		assert.ErrorIs(t, err, dbErr)
	}
	require.True(t, dcb.IsOpen())

	_, err := dcb.QueryContext(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.ErrorIs(t, dcb.PingContext(context.Background()), gobreaker.ErrOpenState)
	assert.NoError(t, mock.ExpectationsWereMet(), "open breaker never reaches the database")
}

func TestDBCircuitBreaker_MixedResultsStayClosed(t *testing.T) {
	dcb, mock := newMockBreaker(t, fastDBConfig())
	for i := range 6 {
		if i == 3 {
			mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))
			continue
		}
		mock.ExpectExec("UPDATE").WillReturnError(errors.New("deadlock"))
	}

	for range 6 {
		_, _ = dcb.ExecContext(context.Background(), "UPDATE digests SET title = title")
	}
	assert.Equal(t, gobreaker.StateClosed, dcb.State())
}

func TestDBCircuitBreaker_IgnoresCancellationAndNoRows(t *testing.T) {
	dcb, mock := newMockBreaker(t, fastDBConfig())
	for range 3 {
		mock.ExpectQuery("SELECT").WillReturnError(context.Canceled)
		mock.ExpectQuery("SELECT").WillReturnError(sql.ErrNoRows)
	}

	for range 6 {
		_, _ = dcb.QueryContext(context.Background(), "SELECT 1")
	}
	assert.Equal(t, gobreaker.StateClosed, dcb.State())
}

func TestDBCircuitBreaker_HalfOpenProbe(t *testing.T) {
	dcb, mock := newMockBreaker(t, fastDBConfig())
	for range 5 {
		mock.ExpectPing().WillReturnError(errors.New("down"))
	}
	for range 5 {
		_ = dcb.PingContext(context.Background())
	}
	require.True(t, dcb.IsOpen())

	time.Sleep(80 * time.Millisecond)
	mock.ExpectPing()
	require.NoError(t, dcb.PingContext(context.Background()))
	assert.Equal(t, gobreaker.StateClosed, dcb.State())
}

func TestDBCircuitBreaker_QueryRowBypassesBreaker(t *testing.T) {
	dcb, mock := newMockBreaker(t, fastDBConfig())
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	var n int
	require.NoError(t, dcb.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM digests").Scan(&n))
	assert.Equal(t, 7, n)
}
