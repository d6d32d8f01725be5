// internal/store/postgres_film_store.go
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

// PostgresFilmStore реализует FilmStore для PostgreSQL.
type PostgresFilmStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresFilmStore создает новый экземпляр PostgresFilmStore.
// Важно: db *sqlx.DB должен быть уже подключен и передан сюда.
func NewPostgresFilmStore(db *sqlx.DB, logger *slog.Logger) (*PostgresFilmStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil for PostgresFilmStore")
	}
	return &PostgresFilmStore{db: db, logger: logger}, nil
}

// filmRow — строка выборки из films с приклеенным рейтингом.
type filmRow struct {
	ID          int64          `db:"film_id"`
	Name        string         `db:"title"`
	Description string         `db:"description"`
	ReleaseDate sql.NullTime   `db:"release_date"`
	Duration    int            `db:"duration"`
	MpaID       sql.NullInt64  `db:"rating_id"`
	MpaName     sql.NullString `db:"mpa_name"`
}

const selectFilm = `SELECT f.film_id, f.title, f.description, f.release_date, f.duration,
               f.rating_id, m.name AS mpa_name
        FROM films f
        LEFT JOIN mpa_ratings m ON m.rating_id = f.rating_id`

func (s *PostgresFilmStore) rowToFilm(ctx context.Context, row *filmRow) (*domain.Film, error) {
	film := &domain.Film{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Duration:    row.Duration,
	}
	if row.ReleaseDate.Valid {
		d := domain.Date{Time: row.ReleaseDate.Time.UTC()}
		film.ReleaseDate = &d
	}
	if row.MpaID.Valid {
		film.Mpa = domain.Mpa{ID: row.MpaID.Int64, Name: row.MpaName.String}
	}
	genres, err := s.getFilmGenres(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	film.Genres = genres
	return film, nil
}

func (s *PostgresFilmStore) getFilmGenres(ctx context.Context, filmID int64) ([]domain.Genre, error) {
	query := `SELECT g.genre_id, g.name FROM film_genre fg
              JOIN genres g ON g.genre_id = fg.genre_id
              WHERE fg.film_id = $1
              ORDER BY g.genre_id`
	genres := []domain.Genre{}
	if err := s.db.SelectContext(ctx, &genres, query, filmID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to get film genres from DB", slog.Int64("filmID", filmID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get film genres: %w", err)
	}
	return genres, nil
}

// GetAll возвращает все фильмы, упорядоченные по ID.
func (s *PostgresFilmStore) GetAll(ctx context.Context) ([]*domain.Film, error) {
	query := selectFilm + ` ORDER BY f.film_id`
	var rows []filmRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list films from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list films: %w", err)
	}
	films := make([]*domain.Film, 0, len(rows))
	for i := range rows {
		film, err := s.rowToFilm(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		films = append(films, film)
	}
	return films, nil
}

// Create создает фильм и его связи с жанрами, затем перечитывает запись,
// чтобы вернуть канонические имена справочников.
func (s *PostgresFilmStore) Create(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	query := `INSERT INTO films (title, description, release_date, duration, rating_id)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING film_id`

	s.logger.DebugContext(ctx, "Executing Create film query", slog.String("title", film.Name))
	var filmID int64
	err := s.db.QueryRowContext(ctx, query,
		film.Name, film.Description, releaseDate(film), film.Duration, mpaID(film),
	).Scan(&filmID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation: неизвестный рейтинг
			s.logger.WarnContext(ctx, "Film references unknown MPA rating", slog.Int64("ratingID", film.Mpa.ID), slog.String("constraint", pqErr.Constraint))
			return nil, ErrMpaNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to create film in DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create film: %w", err)
	}

	if err := s.insertGenres(ctx, filmID, film.Genres); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Film created successfully in DB", slog.Int64("filmID", filmID))
	return s.GetByID(ctx, filmID)
}

// Update полностью заменяет изменяемые поля фильма и набор его жанров.
func (s *PostgresFilmStore) Update(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	query := `UPDATE films SET title = $1, description = $2, release_date = $3, duration = $4, rating_id = $5
              WHERE film_id = $6`

	s.logger.DebugContext(ctx, "Executing Update film query", slog.Int64("filmID", film.ID))
	result, err := s.db.ExecContext(ctx, query,
		film.Name, film.Description, releaseDate(film), film.Duration, mpaID(film), film.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, ErrMpaNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to update film in DB", slog.Int64("filmID", film.ID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update film: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if rowsAffected == 0 {
		s.logger.WarnContext(ctx, "No film found to update in DB", slog.Int64("filmID", film.ID))
		return nil, ErrFilmNotFound
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM film_genre WHERE film_id = $1`, film.ID); err != nil {
		return nil, fmt.Errorf("failed to clear film genres: %w", err)
	}
	if err := s.insertGenres(ctx, film.ID, film.Genres); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Film updated successfully in DB", slog.Int64("filmID", film.ID))
	return s.GetByID(ctx, film.ID)
}

func (s *PostgresFilmStore) insertGenres(ctx context.Context, filmID int64, genres []domain.Genre) error {
	query := `INSERT INTO film_genre (film_id, genre_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	seen := make(map[int64]bool, len(genres))
	for _, genre := range genres {
		if seen[genre.ID] {
			continue
		}
		seen[genre.ID] = true
		if _, err := s.db.ExecContext(ctx, query, filmID, genre.ID); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				s.logger.WarnContext(ctx, "Film references unknown genre", slog.Int64("genreID", genre.ID))
				return ErrGenreNotFound
			}
			s.logger.ErrorContext(ctx, "Failed to link film genre in DB", slog.Int64("filmID", filmID), slog.Int64("genreID", genre.ID), slog.String("error", err.Error()))
			return fmt.Errorf("failed to link film genre: %w", err)
		}
	}
	return nil
}

// Delete удаляет фильм вместе со связями жанров и лайками.
func (s *PostgresFilmStore) Delete(ctx context.Context, filmID int64) error {
	s.logger.DebugContext(ctx, "Executing Delete film queries", slog.Int64("filmID", filmID))
	if _, err := s.db.ExecContext(ctx, `DELETE FROM likes WHERE film_id = $1`, filmID); err != nil {
		return fmt.Errorf("failed to delete film likes: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM film_genre WHERE film_id = $1`, filmID); err != nil {
		return fmt.Errorf("failed to delete film genres: %w", err)
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM films WHERE film_id = $1`, filmID)
	if err != nil {
		return fmt.Errorf("failed to delete film: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrFilmNotFound
	}
	s.logger.InfoContext(ctx, "Film deleted from DB", slog.Int64("filmID", filmID))
	return nil
}

// GetByID находит фильм по его ID.
func (s *PostgresFilmStore) GetByID(ctx context.Context, filmID int64) (*domain.Film, error) {
	query := selectFilm + ` WHERE f.film_id = $1`
	var row filmRow

	s.logger.DebugContext(ctx, "Executing GetFilmByID query", slog.Int64("filmID", filmID))
	err := s.db.GetContext(ctx, &row, query, filmID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Film not found by ID in DB", slog.Int64("filmID", filmID))
			return nil, ErrFilmNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get film by ID from DB", slog.Int64("filmID", filmID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get film by ID: %w", err)
	}
	return s.rowToFilm(ctx, &row)
}

// AddLike вставляет лайк; повторный лайк той же пары (film, user) — no-op.
func (s *PostgresFilmStore) AddLike(ctx context.Context, filmID, userID int64) error {
	query := `INSERT INTO likes (film_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	s.logger.DebugContext(ctx, "Executing AddLike query", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	if _, err := s.db.ExecContext(ctx, query, filmID, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to add like in DB", slog.Int64("filmID", filmID), slog.Int64("userID", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to add like: %w", err)
	}
	return nil
}

// DeleteLike удаляет лайк; отсутствующий лайк — no-op.
func (s *PostgresFilmStore) DeleteLike(ctx context.Context, filmID, userID int64) error {
	query := `DELETE FROM likes WHERE film_id = $1 AND user_id = $2`
	s.logger.DebugContext(ctx, "Executing DeleteLike query", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	if _, err := s.db.ExecContext(ctx, query, filmID, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete like in DB", slog.Int64("filmID", filmID), slog.Int64("userID", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}

func (s *PostgresFilmStore) DeleteLikesByUser(ctx context.Context, userID int64) error {
	query := `DELETE FROM likes WHERE user_id = $1`
	if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete user likes in DB", slog.Int64("userID", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete user likes: %w", err)
	}
	return nil
}

// GetLikes возвращает множество лайкнувших пользователей по каждому фильму.
// LEFT JOIN гарантирует, что фильмы без лайков тоже попадут в карту.
func (s *PostgresFilmStore) GetLikes(ctx context.Context) (map[int64][]int64, error) {
	query := `SELECT f.film_id, l.user_id FROM films f
              LEFT JOIN likes l ON l.film_id = f.film_id
              ORDER BY l.like_id`
	type likeRow struct {
		FilmID int64         `db:"film_id"`
		UserID sql.NullInt64 `db:"user_id"`
	}
	var rows []likeRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to get likes from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get likes: %w", err)
	}
	likes := make(map[int64][]int64)
	for _, row := range rows {
		if _, ok := likes[row.FilmID]; !ok {
			likes[row.FilmID] = []int64{}
		}
		if row.UserID.Valid {
			likes[row.FilmID] = append(likes[row.FilmID], row.UserID.Int64)
		}
	}
	return likes, nil
}

// GetAllGenres возвращает справочник жанров.
func (s *PostgresFilmStore) GetAllGenres(ctx context.Context) ([]*domain.Genre, error) {
	query := `SELECT genre_id, name FROM genres ORDER BY genre_id`
	var genres []*domain.Genre
	if err := s.db.SelectContext(ctx, &genres, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list genres from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

// GetGenre находит жанр по ID.
func (s *PostgresFilmStore) GetGenre(ctx context.Context, genreID int64) (*domain.Genre, error) {
	query := `SELECT genre_id, name FROM genres WHERE genre_id = $1`
	var genre domain.Genre
	if err := s.db.GetContext(ctx, &genre, query, genreID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get genre from DB", slog.Int64("genreID", genreID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get genre: %w", err)
	}
	return &genre, nil
}

// GetAllMpa возвращает справочник MPA-рейтингов.
func (s *PostgresFilmStore) GetAllMpa(ctx context.Context) ([]*domain.Mpa, error) {
	query := `SELECT rating_id, name FROM mpa_ratings ORDER BY rating_id`
	var ratings []*domain.Mpa
	if err := s.db.SelectContext(ctx, &ratings, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list mpa ratings from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list mpa ratings: %w", err)
	}
	return ratings, nil
}

// GetMpa находит MPA-рейтинг по ID.
func (s *PostgresFilmStore) GetMpa(ctx context.Context, mpaID int64) (*domain.Mpa, error) {
	query := `SELECT rating_id, name FROM mpa_ratings WHERE rating_id = $1`
	var rating domain.Mpa
	if err := s.db.GetContext(ctx, &rating, query, mpaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMpaNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get mpa rating from DB", slog.Int64("mpaID", mpaID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get mpa rating: %w", err)
	}
	return &rating, nil
}

// mpaID возвращает rating_id для вставки, NULL если рейтинг не задан.
func mpaID(film *domain.Film) sql.NullInt64 {
	if film.Mpa.ID == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: film.Mpa.ID, Valid: true}
}

// releaseDate возвращает дату релиза для вставки, NULL если дата не задана.
func releaseDate(film *domain.Film) sql.NullTime {
	if film.ReleaseDate == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: film.ReleaseDate.Time, Valid: true}
}
