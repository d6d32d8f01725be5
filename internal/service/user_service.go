// internal/service/user_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"filmorate/internal/domain"
	"filmorate/internal/store"
)

// UserService обеспечивает инварианты вокруг операций с пользователями:
// валидацию, проверки существования и каскады при удалении.
type UserService struct {
	store    store.UserStore
	films    store.FilmStore
	validate *validator.Validate
	logger   *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
// FilmStore нужен для каскадного удаления лайков при удалении пользователя.
func NewUserService(s store.UserStore, films store.FilmStore, validate *validator.Validate, logger *slog.Logger) *UserService {
	return &UserService{
		store:    s,
		films:    films,
		validate: validate,
		logger:   logger,
	}
}

func (s *UserService) validateUser(ctx context.Context, user *domain.User) error {
	if err := s.validate.StructCtx(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "User validation failed", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// CheckUserExisting возвращает store.ErrUserNotFound, если пользователя нет.
func (s *UserService) CheckUserExisting(ctx context.Context, userID int64) error {
	_, err := s.store.GetByID(ctx, userID)
	return err
}

func (s *UserService) GetAll(ctx context.Context) ([]*domain.User, error) {
	return s.store.GetAll(ctx)
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	return s.store.GetByID(ctx, userID)
}

func (s *UserService) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.validateUser(ctx, user); err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "User created", slog.Int64("userID", created.ID), slog.String("login", created.Login))
	return created, nil
}

func (s *UserService) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.CheckUserExisting(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := s.validateUser(ctx, user); err != nil {
		return nil, err
	}
	updated, err := s.store.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "User updated", slog.Int64("userID", updated.ID))
	return updated, nil
}

// Delete удаляет пользователя, все его записи дружбы и все его лайки.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	if err := s.CheckUserExisting(ctx, userID); err != nil {
		return err
	}
	if err := s.films.DeleteLikesByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "User deleted", slog.Int64("userID", userID))
	return nil
}

func (s *UserService) AddFriend(ctx context.Context, userID, friendID int64) error {
	if err := s.CheckUserExisting(ctx, userID); err != nil {
		return err
	}
	if err := s.CheckUserExisting(ctx, friendID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Adding friend", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return s.store.AddFriend(ctx, userID, friendID)
}

func (s *UserService) DeleteFriend(ctx context.Context, userID, friendID int64) error {
	if err := s.CheckUserExisting(ctx, userID); err != nil {
		return err
	}
	if err := s.CheckUserExisting(ctx, friendID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Deleting friend", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return s.store.DeleteFriend(ctx, userID, friendID)
}

func (s *UserService) GetUserFriends(ctx context.Context, userID int64) ([]*domain.User, error) {
	if err := s.CheckUserExisting(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.GetUserFriends(ctx, userID)
}

// GetCommonFriends возвращает пересечение списков друзей двух пользователей.
// Порядок — как в списке друзей первого пользователя.
func (s *UserService) GetCommonFriends(ctx context.Context, userID, otherID int64) ([]*domain.User, error) {
	if err := s.CheckUserExisting(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.CheckUserExisting(ctx, otherID); err != nil {
		return nil, err
	}

	userFriends, err := s.store.GetUserFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	otherFriends, err := s.store.GetUserFriends(ctx, otherID)
	if err != nil {
		return nil, err
	}

	otherIDs := make(map[int64]bool, len(otherFriends))
	for _, friend := range otherFriends {
		otherIDs[friend.ID] = true
	}
	common := make([]*domain.User, 0)
	for _, friend := range userFriends {
		if otherIDs[friend.ID] {
			common = append(common, friend)
		}
	}
	return common, nil
}
