// internal/store/user_store.go
package store

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"filmorate/internal/domain"
)

// Кастомные ошибки хранилища пользователей.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrFriendshipNotFound = errors.New("friendship not found")
)

// UserStore определяет интерфейс для операций с пользователями и дружбами.
//
// Дружба — направленная запись со статусом. Статус APPROVED выставляется
// хранилищем тогда и только тогда, когда существует встречная запись;
// вызывающая сторона статусом не управляет.
type UserStore interface {
	GetAll(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, userID int64) error
	GetByID(ctx context.Context, userID int64) (*domain.User, error)

	// AddFriend создает направленную запись userID -> friendID.
	// Существующая запись — no-op. При наличии встречной записи обе
	// переводятся в APPROVED.
	AddFriend(ctx context.Context, userID, friendID int64) error
	// DeleteFriend удаляет направленную запись userID -> friendID.
	// Отсутствующая запись — no-op. Встречная запись, если есть,
	// понижается до UNAPPROVED.
	DeleteFriend(ctx context.Context, userID, friendID int64) error
	GetFriendship(ctx context.Context, userID, friendID int64) (*domain.Friendship, error)
	// GetUserFriends возвращает пользователей, на которых есть исходящая
	// запись от userID, независимо от статуса.
	GetUserFriends(ctx context.Context, userID int64) ([]*domain.User, error)
}

// MemoryUserStore — хранилище пользователей в памяти на мапах.
type MemoryUserStore struct {
	mu               sync.RWMutex
	users            map[int64]*domain.User
	friendships      map[int64]*domain.Friendship
	byPair           map[[2]int64]int64 // (user_id, friend_id) -> friendship_id
	nextID           int64
	nextFriendshipID int64
	logger           *slog.Logger
}

// NewMemoryUserStore создает новый экземпляр MemoryUserStore.
func NewMemoryUserStore(logger *slog.Logger) *MemoryUserStore {
	return &MemoryUserStore{
		users:       make(map[int64]*domain.User),
		friendships: make(map[int64]*domain.Friendship),
		byPair:      make(map[[2]int64]int64),
		logger:      logger,
	}
}

func copyUser(user *domain.User) *domain.User {
	userCopy := *user
	if user.Birthday != nil {
		d := *user.Birthday
		userCopy.Birthday = &d
	}
	return &userCopy
}

// defaultName подставляет логин вместо пустого имени.
func defaultName(user *domain.User) {
	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.Login
	}
}

func (m *MemoryUserStore) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, copyUser(m.users[id]))
	}
	return users, nil
}

func (m *MemoryUserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	userCopy := copyUser(user)
	userCopy.ID = m.nextID
	defaultName(userCopy)
	m.users[userCopy.ID] = userCopy

	m.logger.DebugContext(ctx, "User created in memory store", slog.Int64("userID", userCopy.ID))
	return copyUser(userCopy), nil
}

func (m *MemoryUserStore) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return nil, ErrUserNotFound
	}
	userCopy := copyUser(user)
	defaultName(userCopy)
	m.users[user.ID] = userCopy
	return copyUser(userCopy), nil
}

// Delete удаляет пользователя и все направленные записи дружбы,
// в которых он участвует с любой стороны. Лайки пользователя удаляет
// сервисный слой через FilmStore.DeleteLikesByUser.
func (m *MemoryUserStore) Delete(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return ErrUserNotFound
	}
	for id, friendship := range m.friendships {
		if friendship.UserID == userID || friendship.FriendID == userID {
			delete(m.byPair, [2]int64{friendship.UserID, friendship.FriendID})
			delete(m.friendships, id)
		}
	}
	delete(m.users, userID)
	return nil
}

func (m *MemoryUserStore) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(user), nil
}

func (m *MemoryUserStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byPair[[2]int64{userID, friendID}]; ok {
		return nil
	}

	status := domain.FriendshipUnapproved
	if oppositeID, ok := m.byPair[[2]int64{friendID, userID}]; ok {
		status = domain.FriendshipApproved
		m.friendships[oppositeID].Status = domain.FriendshipApproved
	}

	m.nextFriendshipID++
	friendship := &domain.Friendship{
		ID:       m.nextFriendshipID,
		UserID:   userID,
		FriendID: friendID,
		Status:   status,
	}
	m.friendships[friendship.ID] = friendship
	m.byPair[[2]int64{userID, friendID}] = friendship.ID
	return nil
}

func (m *MemoryUserStore) DeleteFriend(ctx context.Context, userID, friendID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	directID, ok := m.byPair[[2]int64{userID, friendID}]
	if !ok {
		return nil
	}
	if oppositeID, ok := m.byPair[[2]int64{friendID, userID}]; ok {
		m.friendships[oppositeID].Status = domain.FriendshipUnapproved
	}
	delete(m.friendships, directID)
	delete(m.byPair, [2]int64{userID, friendID})
	return nil
}

func (m *MemoryUserStore) GetFriendship(ctx context.Context, userID, friendID int64) (*domain.Friendship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byPair[[2]int64{userID, friendID}]
	if !ok {
		return nil, ErrFriendshipNotFound
	}
	friendshipCopy := *m.friendships[id]
	return &friendshipCopy, nil
}

func (m *MemoryUserStore) GetUserFriends(ctx context.Context, userID int64) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var friendIDs []int64
	for pair := range m.byPair {
		if pair[0] == userID {
			friendIDs = append(friendIDs, pair[1])
		}
	}
	sort.Slice(friendIDs, func(i, j int) bool { return friendIDs[i] < friendIDs[j] })

	friends := make([]*domain.User, 0, len(friendIDs))
	for _, id := range friendIDs {
		if friend, ok := m.users[id]; ok {
			friends = append(friends, copyUser(friend))
		}
	}
	return friends, nil
}
