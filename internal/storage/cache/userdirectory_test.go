package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
)

type MockCacheClient struct {
	mock.Mock
}

func (m *MockCacheClient) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	if args.Error(0) == nil {
		*(dest.(*push.User)) = *(args.Get(1).(*push.User))
	}
	return args.Error(0)
}

func (m *MockCacheClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetUser(ctx context.Context, id string) (*push.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*push.User), args.Error(1)
}

func TestCachedUserDirectory_GetUser(t *testing.T) {
	ctx := context.Background()
	user := &push.User{ID: "user-a", Name: "alice", DisplayName: "Alice", DeviceToken: "device-a"}

	t.Run("cache hit skips the database", func(t *testing.T) {
		cacheClient := new(MockCacheClient)
		realDir := new(MockUserDirectory)
		dir := NewCachedUserDirectory(realDir, cacheClient, time.Minute)

		cacheClient.On("Get", mock.Anything, "push:user:user-a", mock.Anything).Return(nil, user)

		got, err := dir.GetUser(ctx, "user-a")
		require.NoError(t, err)
		assert.Equal(t, user, got)
		realDir.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("cache miss falls through and populates", func(t *testing.T) {
		cacheClient := new(MockCacheClient)
		realDir := new(MockUserDirectory)
		dir := NewCachedUserDirectory(realDir, cacheClient, time.Minute)

		cacheClient.On("Get", mock.Anything, "push:user:user-a", mock.Anything).Return(errors.New("redis: nil"))
		realDir.On("GetUser", mock.Anything, "user-a").Return(user, nil)
		cacheClient.On("Set", mock.Anything, "push:user:user-a", user, time.Minute).Return(nil)

		got, err := dir.GetUser(ctx, "user-a")
		require.NoError(t, err)
		assert.Equal(t, user, got)
		cacheClient.AssertExpectations(t)
	})

	t.Run("set failure is ignored", func(t *testing.T) {
		cacheClient := new(MockCacheClient)
		realDir := new(MockUserDirectory)
		dir := NewCachedUserDirectory(realDir, cacheClient, time.Minute)

		cacheClient.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis: nil"))
		realDir.On("GetUser", mock.Anything, "user-a").Return(user, nil)
		cacheClient.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

		got, err := dir.GetUser(ctx, "user-a")
		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("missing user is not cached", func(t *testing.T) {
		cacheClient := new(MockCacheClient)
		realDir := new(MockUserDirectory)
		dir := NewCachedUserDirectory(realDir, cacheClient, time.Minute)

		cacheClient.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis: nil"))
		realDir.On("GetUser", mock.Anything, "ghost").Return(nil, nil)

		got, err := dir.GetUser(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, got)
		cacheClient.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("database error propagates", func(t *testing.T) {
		cacheClient := new(MockCacheClient)
		realDir := new(MockUserDirectory)
		dir := NewCachedUserDirectory(realDir, cacheClient, time.Minute)

		cacheClient.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis: nil"))
		realDir.On("GetUser", mock.Anything, "user-a").Return(nil, errors.New("connection reset"))

		_, err := dir.GetUser(ctx, "user-a")
		assert.Error(t, err)
	})
}
