// internal/service/film_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-playground/validator/v10"

	"filmorate/internal/domain"
	"filmorate/internal/store"
)

// FilmService обеспечивает инварианты вокруг операций с фильмами:
// валидацию, проверки существования и подсчет топа по лайкам.
type FilmService struct {
	store    store.FilmStore
	users    *UserService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewFilmService создает новый экземпляр FilmService.
func NewFilmService(s store.FilmStore, users *UserService, validate *validator.Validate, logger *slog.Logger) *FilmService {
	return &FilmService{
		store:    s,
		users:    users,
		validate: validate,
		logger:   logger,
	}
}

func (s *FilmService) validateFilm(ctx context.Context, film *domain.Film) error {
	if err := s.validate.StructCtx(ctx, film); err != nil {
		s.logger.WarnContext(ctx, "Film validation failed", slog.Int64("filmID", film.ID), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// CheckFilmExisting возвращает store.ErrFilmNotFound, если фильма нет.
func (s *FilmService) CheckFilmExisting(ctx context.Context, filmID int64) error {
	_, err := s.store.GetByID(ctx, filmID)
	return err
}

func (s *FilmService) GetAll(ctx context.Context) ([]*domain.Film, error) {
	return s.store.GetAll(ctx)
}

func (s *FilmService) GetByID(ctx context.Context, filmID int64) (*domain.Film, error) {
	return s.store.GetByID(ctx, filmID)
}

func (s *FilmService) Create(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	if err := s.validateFilm(ctx, film); err != nil {
		return nil, err
	}
	created, err := s.store.Create(ctx, film)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Film created", slog.Int64("filmID", created.ID), slog.String("title", created.Name))
	return created, nil
}

func (s *FilmService) Update(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	if err := s.CheckFilmExisting(ctx, film.ID); err != nil {
		return nil, err
	}
	if err := s.validateFilm(ctx, film); err != nil {
		return nil, err
	}
	updated, err := s.store.Update(ctx, film)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Film updated", slog.Int64("filmID", updated.ID))
	return updated, nil
}

// Delete удаляет фильм вместе с его лайками и связями жанров.
func (s *FilmService) Delete(ctx context.Context, filmID int64) error {
	if err := s.CheckFilmExisting(ctx, filmID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, filmID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Film deleted", slog.Int64("filmID", filmID))
	return nil
}

func (s *FilmService) AddLike(ctx context.Context, filmID, userID int64) error {
	if err := s.CheckFilmExisting(ctx, filmID); err != nil {
		return err
	}
	if err := s.users.CheckUserExisting(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Adding like", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return s.store.AddLike(ctx, filmID, userID)
}

func (s *FilmService) DeleteLike(ctx context.Context, filmID, userID int64) error {
	if err := s.CheckFilmExisting(ctx, filmID); err != nil {
		return err
	}
	if err := s.users.CheckUserExisting(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Deleting like", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return s.store.DeleteLike(ctx, filmID, userID)
}

// GetTopFilms возвращает count фильмов с наибольшим числом лайков.
// При равенстве лайков раньше идет фильм с меньшим ID. count <= 0 дает
// пустой результат; count больше числа фильмов — все фильмы.
func (s *FilmService) GetTopFilms(ctx context.Context, count int) ([]*domain.Film, error) {
	s.logger.InfoContext(ctx, "Getting top films", slog.Int("count", count))
	if count <= 0 {
		return []*domain.Film{}, nil
	}

	likes, err := s.store.GetLikes(ctx)
	if err != nil {
		return nil, err
	}

	filmIDs := make([]int64, 0, len(likes))
	for filmID := range likes {
		filmIDs = append(filmIDs, filmID)
	}
	sort.Slice(filmIDs, func(i, j int) bool {
		li, lj := len(likes[filmIDs[i]]), len(likes[filmIDs[j]])
		if li != lj {
			return li > lj
		}
		return filmIDs[i] < filmIDs[j]
	})

	if count > len(filmIDs) {
		count = len(filmIDs)
	}
	top := make([]*domain.Film, 0, count)
	for _, filmID := range filmIDs[:count] {
		film, err := s.store.GetByID(ctx, filmID)
		if err != nil {
			return nil, err
		}
		top = append(top, film)
	}
	return top, nil
}

func (s *FilmService) GetAllGenres(ctx context.Context) ([]*domain.Genre, error) {
	return s.store.GetAllGenres(ctx)
}

func (s *FilmService) GetGenreByID(ctx context.Context, genreID int64) (*domain.Genre, error) {
	return s.store.GetGenre(ctx, genreID)
}

func (s *FilmService) GetAllMpa(ctx context.Context) ([]*domain.Mpa, error) {
	return s.store.GetAllMpa(ctx)
}

func (s *FilmService) GetMpaByID(ctx context.Context, mpaID int64) (*domain.Mpa, error) {
	return s.store.GetMpa(ctx, mpaID)
}
