// internal/store/postgres_user_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // Для обработки ошибок PostgreSQL

	"filmorate/internal/domain"
)

// PostgresUserStore реализует UserStore для PostgreSQL.
type PostgresUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresUserStore создает новый экземпляр PostgresUserStore.
func NewPostgresUserStore(db *sqlx.DB, logger *slog.Logger) (*PostgresUserStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresUserStore")
	}
	return &PostgresUserStore{db: db, logger: logger}, nil
}

type userRow struct {
	ID       int64        `db:"user_id"`
	Email    string       `db:"email"`
	Login    string       `db:"login"`
	Name     string       `db:"name"`
	Birthday sql.NullTime `db:"birthday"`
}

func rowToUser(row *userRow) *domain.User {
	user := &domain.User{
		ID:    row.ID,
		Email: row.Email,
		Login: row.Login,
		Name:  row.Name,
	}
	if row.Birthday.Valid {
		d := domain.Date{Time: row.Birthday.Time.UTC()}
		user.Birthday = &d
	}
	return user
}

// birthday возвращает дату рождения для вставки, NULL если дата не задана.
func birthday(user *domain.User) sql.NullTime {
	if user.Birthday == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: user.Birthday.Time, Valid: true}
}

// GetAll возвращает всех пользователей, упорядоченных по ID.
func (s *PostgresUserStore) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT user_id, email, login, name, birthday FROM users ORDER BY user_id`
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, rowToUser(&rows[i]))
	}
	return users, nil
}

// Create создает пользователя. Пустое имя заменяется логином.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	defaultName(user)
	query := `INSERT INTO users (email, login, name, birthday)
              VALUES ($1, $2, $3, $4)
              RETURNING user_id`

	s.logger.DebugContext(ctx, "Executing Create user query", slog.String("login", user.Login))
	var userID int64
	err := s.db.QueryRowContext(ctx, query, user.Email, user.Login, user.Name, birthday(user)).Scan(&userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create user in DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User created successfully in DB", slog.Int64("userID", userID))
	return s.GetByID(ctx, userID)
}

// Update полностью заменяет изменяемые поля пользователя.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	defaultName(user)
	query := `UPDATE users SET email = $1, login = $2, name = $3, birthday = $4
              WHERE user_id = $5`

	s.logger.DebugContext(ctx, "Executing Update user query", slog.Int64("userID", user.ID))
	result, err := s.db.ExecContext(ctx, query, user.Email, user.Login, user.Name, birthday(user), user.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update user in DB", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		s.logger.WarnContext(ctx, "No user found to update in DB", slog.Int64("userID", user.ID))
		return nil, ErrUserNotFound
	}
	s.logger.InfoContext(ctx, "User updated successfully in DB", slog.Int64("userID", user.ID))
	return s.GetByID(ctx, user.ID)
}

// Delete удаляет пользователя и все записи дружбы, где он участвует
// с любой стороны, вместе со строками-связками user_friends.
// Лайки пользователя удаляет сервисный слой через FilmStore.
func (s *PostgresUserStore) Delete(ctx context.Context, userID int64) error {
	s.logger.DebugContext(ctx, "Executing Delete user queries", slog.Int64("userID", userID))

	queries := []string{
		`DELETE FROM user_friends WHERE user_id = $1`,
		`DELETE FROM user_friends WHERE friendship_id IN
             (SELECT friendship_id FROM friendships WHERE friend_id = $1)`,
		`DELETE FROM friendships WHERE user_id = $1 OR friend_id = $1`,
	}
	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
			s.logger.ErrorContext(ctx, "Failed to delete user friendships in DB", slog.Int64("userID", userID), slog.String("error", err.Error()))
			return fmt.Errorf("failed to delete user friendships: %w", err)
		}
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	s.logger.InfoContext(ctx, "User deleted from DB", slog.Int64("userID", userID))
	return nil
}

// GetByID находит пользователя по его ID.
func (s *PostgresUserStore) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	query := `SELECT user_id, email, login, name, birthday FROM users WHERE user_id = $1`
	var row userRow

	s.logger.DebugContext(ctx, "Executing GetUserByID query", slog.Int64("userID", userID))
	err := s.db.GetContext(ctx, &row, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "User not found by ID in DB", slog.Int64("userID", userID))
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get user by ID from DB", slog.Int64("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return rowToUser(&row), nil
}

// AddFriend создает направленную запись дружбы userID -> friendID.
// Если встречная запись уже существует, обе получают статус APPROVED.
func (s *PostgresUserStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	direct, err := s.GetFriendship(ctx, userID, friendID)
	if err != nil && !errors.Is(err, ErrFriendshipNotFound) {
		return err
	}
	if direct != nil {
		// Запись уже есть, повторное добавление — no-op.
		return nil
	}

	status := domain.FriendshipUnapproved
	opposite, err := s.GetFriendship(ctx, friendID, userID)
	if err != nil && !errors.Is(err, ErrFriendshipNotFound) {
		return err
	}
	if opposite != nil {
		status = domain.FriendshipApproved
		if err := s.updateFriendshipStatus(ctx, opposite.ID, status); err != nil {
			return err
		}
	}

	s.logger.DebugContext(ctx, "Creating friendship", slog.Int64("userID", userID), slog.Int64("friendID", friendID), slog.String("status", status))
	var friendshipID int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO friendships (user_id, friend_id, status) VALUES ($1, $2, $3) RETURNING friendship_id`,
		userID, friendID, status).Scan(&friendshipID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to create friendship in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create friendship: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO user_friends (user_id, friendship_id) VALUES ($1, $2)`, userID, friendshipID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to link friendship in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to link friendship: %w", err)
	}
	s.logger.InfoContext(ctx, "Friendship created in DB", slog.Int64("friendshipID", friendshipID), slog.String("status", status))
	return nil
}

// DeleteFriend удаляет направленную запись userID -> friendID.
// Встречная запись, если есть, понижается до UNAPPROVED.
func (s *PostgresUserStore) DeleteFriend(ctx context.Context, userID, friendID int64) error {
	direct, err := s.GetFriendship(ctx, userID, friendID)
	if errors.Is(err, ErrFriendshipNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	// Сначала строка-связка, потом сама запись: user_friends ссылается
	// на friendships по внешнему ключу без каскада.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_friends WHERE friendship_id = $1`, direct.ID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to unlink friendship in DB", slog.Int64("friendshipID", direct.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to unlink friendship: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM friendships WHERE friendship_id = $1`, direct.ID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete friendship in DB", slog.Int64("friendshipID", direct.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete friendship: %w", err)
	}

	opposite, err := s.GetFriendship(ctx, friendID, userID)
	if err != nil && !errors.Is(err, ErrFriendshipNotFound) {
		return err
	}
	if opposite != nil {
		if err := s.updateFriendshipStatus(ctx, opposite.ID, domain.FriendshipUnapproved); err != nil {
			return err
		}
	}
	s.logger.InfoContext(ctx, "Friendship deleted from DB", slog.Int64("friendshipID", direct.ID))
	return nil
}

// GetFriendship находит направленную запись дружбы по паре (userID, friendID).
func (s *PostgresUserStore) GetFriendship(ctx context.Context, userID, friendID int64) (*domain.Friendship, error) {
	query := `SELECT friendship_id, user_id, friend_id, status FROM friendships
              WHERE user_id = $1 AND friend_id = $2`
	var friendship domain.Friendship
	err := s.db.GetContext(ctx, &friendship, query, userID, friendID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFriendshipNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get friendship from DB", slog.Int64("userID", userID), slog.Int64("friendID", friendID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	return &friendship, nil
}

func (s *PostgresUserStore) updateFriendshipStatus(ctx context.Context, friendshipID int64, status string) error {
	query := `UPDATE friendships SET status = $1 WHERE friendship_id = $2`
	if _, err := s.db.ExecContext(ctx, query, status, friendshipID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update friendship status in DB", slog.Int64("friendshipID", friendshipID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update friendship status: %w", err)
	}
	return nil
}

// GetUserFriends возвращает пользователей с исходящей записью дружбы от userID.
// Статус записи не учитывается: для списка друзей достаточно исходящей записи.
func (s *PostgresUserStore) GetUserFriends(ctx context.Context, userID int64) ([]*domain.User, error) {
	query := `SELECT u.user_id, u.email, u.login, u.name, u.birthday
              FROM user_friends uf
              JOIN friendships f ON f.friendship_id = uf.friendship_id
              JOIN users u ON u.user_id = f.friend_id
              WHERE uf.user_id = $1
              ORDER BY u.user_id`
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to get user friends from DB", slog.Int64("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user friends: %w", err)
	}
	friends := make([]*domain.User, 0, len(rows))
	for i := range rows {
		friends = append(friends, rowToUser(&rows[i]))
	}
	return friends, nil
}
