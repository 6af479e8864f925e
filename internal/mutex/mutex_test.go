package mutex

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_AcquireSuccess(t *testing.T) {
	client, mock := redismock.NewClientMock()
	locker := NewRedisLocker(client)

	mock.Regexp().ExpectSetNX("purchase:5:9", `.+`, 5*time.Second).SetVal(true)

	lease, err := locker.Acquire(context.Background(), "purchase:5:9", 5*time.Second, time.Second)
	require.NoError(t, err)
	require.NotNil(t, lease)
	assert.Equal(t, "purchase:5:9", lease.Key)
	assert.NotEmpty(t, lease.Token)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_AcquireTimesOut(t *testing.T) {
	client, mock := redismock.NewClientMock()
	locker := NewRedisLocker(client)

	mock.Regexp().ExpectSetNX("seat:42", `.+`, 5*time.Second).SetVal(false)

	lease, err := locker.Acquire(context.Background(), "seat:42", 5*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.Nil(t, lease)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_ReleaseUsesToken(t *testing.T) {
	client, mock := redismock.NewClientMock()
	locker := NewRedisLocker(client)

	mock.Regexp().ExpectSetNX("purchase:5:9", `.+`, 5*time.Second).SetVal(true)

	lease, err := locker.Acquire(context.Background(), "purchase:5:9", 5*time.Second, time.Second)
	require.NoError(t, err)

	mock.ExpectEval(releaseScript, []string{"purchase:5:9"}, lease.Token).SetVal(int64(1))

	assert.NoError(t, locker.Release(context.Background(), lease))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_ReleaseNilLease(t *testing.T) {
	client, _ := redismock.NewClientMock()
	locker := NewRedisLocker(client)

	assert.NoError(t, locker.Release(context.Background(), nil))
}

func TestNopLocker(t *testing.T) {
	locker := NewNopLocker()

	lease, err := locker.Acquire(context.Background(), "anything", time.Second, 0)
	require.NoError(t, err)
	require.NotNil(t, lease)
	assert.Equal(t, "anything", lease.Key)

	assert.NoError(t, locker.Release(context.Background(), lease))
}
