package main

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"betfunnels-copy/internal/common/database"
	"betfunnels-copy/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	pingErr error
	closed  bool
}

func (c *fakeConn) Ping(context.Context) error { return c.pingErr }

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestPingOrClose_ClosesPostgresPoolOnFailedPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(stderrors.New("connection refused"))
	mock.ExpectClose()

	err = pingOrClose(context.Background(), &database.PostgresClient{DB: db})
	assert.ErrorContains(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPingOrClose_KeepsHealthyPoolOpen(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.ExpectPing()

	require.NoError(t, pingOrClose(context.Background(), &database.PostgresClient{DB: db}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRetryWithBackoff_ReleasesEveryFailedAttempt(t *testing.T) {
	var opened []*fakeConn
	err := retryWithBackoff(func() error {
		c := &fakeConn{}
		if len(opened) < 2 {
			c.pingErr = stderrors.New("not ready")
		}
		opened = append(opened, c)
		return pingOrClose(context.Background(), c)
	}, 5, time.Millisecond, logger.NewNoOpLogger(), "PostgreSQL connection")

	require.NoError(t, err)
	require.Len(t, opened, 3)
	assert.True(t, opened[0].closed)
	assert.True(t, opened[1].closed)
	assert.False(t, opened[2].closed)
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(func() error {
		attempts++
		return stderrors.New("down")
	}, 3, time.Millisecond, logger.NewNoOpLogger(), "Redis connection")

	assert.Equal(t, 3, attempts)
	assert.ErrorContains(t, err, "Redis connection failed after 3 attempts: down")
}
