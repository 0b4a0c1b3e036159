package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"betfunnels-copy/internal/common/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordGate_Check(t *testing.T) {
	tests := []struct {
		name      string
		secret    string
		candidate string
		wantCode  errors.ErrorCode
	}{
		{"match", "segredo", "segredo", ""},
		{"mismatch", "segredo", "Segredo", errors.ErrCodeAuth},
		{"empty candidate", "segredo", "", errors.ErrCodeAuth},
		{"not configured", "", "anything", errors.ErrCodeConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPasswordGate(tt.secret).Check(tt.candidate)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			stdErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestAttemptLimiter_BlocksAfterMaxFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	limiter := NewAttemptLimiter(client, 3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, ok)
		_, err = limiter.RecordFailure(ctx, "10.0.0.1")
		require.NoError(t, err)
	}

	ok, retryAfter, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retryAfter)

	other, _, err := limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other)

	mr.FastForward(time.Minute + time.Second)
	ok, _, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAttemptLimiter_Reset(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	limiter := NewAttemptLimiter(client, 1, time.Minute)

	_, err := limiter.RecordFailure(ctx, "ip")
	require.NoError(t, err)
	ok, _, _ := limiter.Allow(ctx, "ip")
	require.False(t, ok)

	require.NoError(t, limiter.Reset(ctx, "ip"))
	ok, _, err = limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAttemptLimiter_RecordFailure_SetsWindowOnce(t *testing.T) {
	client, mock := redismock.NewClientMock()
	ctx := context.Background()
	limiter := NewAttemptLimiter(client, 5, 15*time.Minute)

	mock.ExpectIncr("pwd_attempts:ip").SetVal(1)
	mock.ExpectExpire("pwd_attempts:ip", 15*time.Minute).SetVal(true)
	mock.ExpectIncr("pwd_attempts:ip").SetVal(2)

	count, err := limiter.RecordFailure(ctx, "ip")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = limiter.RecordFailure(ctx, "ip")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptLimiter_Allow_RedisError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewAttemptLimiter(client, 5, time.Minute)

	mock.ExpectGet("pwd_attempts:ip").SetErr(fmt.Errorf("connection refused"))

	ok, _, err := limiter.Allow(context.Background(), "ip")
	assert.Error(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
