// internal/store/memory_user_store_test.go
package store_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmorate/internal/domain"
	"filmorate/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newUserStore(t *testing.T, logins ...string) *store.MemoryUserStore {
	t.Helper()
	s := store.NewMemoryUserStore(testLogger())
	for _, login := range logins {
		_, err := s.Create(context.Background(), &domain.User{
			Email: login + "@example.com",
			Login: login,
		})
		require.NoError(t, err)
	}
	return s
}

func TestAddFriendReciprocalApproval(t *testing.T) {
	ctx := context.Background()
	s := newUserStore(t, "alice", "bob")

	require.NoError(t, s.AddFriend(ctx, 1, 2))
	direct, err := s.GetFriendship(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipUnapproved, direct.Status)

	// Встречная заявка переводит обе записи в APPROVED.
	require.NoError(t, s.AddFriend(ctx, 2, 1))
	direct, err = s.GetFriendship(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipApproved, direct.Status)
	opposite, err := s.GetFriendship(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipApproved, opposite.Status)

	// Удаление прямой записи понижает встречную до UNAPPROVED.
	require.NoError(t, s.DeleteFriend(ctx, 1, 2))
	_, err = s.GetFriendship(ctx, 1, 2)
	assert.ErrorIs(t, err, store.ErrFriendshipNotFound)
	opposite, err = s.GetFriendship(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendshipUnapproved, opposite.Status)
}

func TestAddFriendIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newUserStore(t, "alice", "bob")

	require.NoError(t, s.AddFriend(ctx, 1, 2))
	require.NoError(t, s.AddFriend(ctx, 1, 2))

	friends, err := s.GetUserFriends(ctx, 1)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, int64(2), friends[0].ID)
}

func TestDeleteFriendMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newUserStore(t, "alice", "bob")

	require.NoError(t, s.DeleteFriend(ctx, 1, 2))
}

func TestGetUserFriendsIsAsymmetric(t *testing.T) {
	ctx := context.Background()
	s := newUserStore(t, "alice", "bob")

	require.NoError(t, s.AddFriend(ctx, 1, 2))

	// Односторонняя заявка уже видна как друг у заявителя,
	// но не у адресата.
	aliceFriends, err := s.GetUserFriends(ctx, 1)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	assert.Equal(t, int64(2), aliceFriends[0].ID)

	bobFriends, err := s.GetUserFriends(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, bobFriends)
}

func TestUserIDsNeverReused(t *testing.T) {
	ctx := context.Background()
	s := newUserStore(t, "alice", "bob")

	require.NoError(t, s.Delete(ctx, 2))
	created, err := s.Create(ctx, &domain.User{Email: "carol@example.com", Login: "carol"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
}

func TestDeleteUserRemovesFriendshipsBothSides(t *testing.T) {
	ctx := context.Background()
	s := newUserStore(t, "alice", "bob", "carol")

	require.NoError(t, s.AddFriend(ctx, 1, 2))
	require.NoError(t, s.AddFriend(ctx, 2, 1))
	require.NoError(t, s.AddFriend(ctx, 3, 1))

	require.NoError(t, s.Delete(ctx, 1))

	_, err := s.GetByID(ctx, 1)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
	_, err = s.GetFriendship(ctx, 2, 1)
	assert.ErrorIs(t, err, store.ErrFriendshipNotFound)
	_, err = s.GetFriendship(ctx, 3, 1)
	assert.ErrorIs(t, err, store.ErrFriendshipNotFound)

	friends, err := s.GetUserFriends(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, friends)
}

func TestCreateUserDefaultsBlankName(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryUserStore(testLogger())

	created, err := s.Create(ctx, &domain.User{Email: "dave@example.com", Login: "dave", Name: "   "})
	require.NoError(t, err)
	assert.Equal(t, "dave", created.Name)
}
