// internal/store/film_store.go
package store

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"filmorate/internal/domain"
)

// Кастомные ошибки хранилища фильмов и справочников.
var (
	ErrFilmNotFound  = errors.New("film not found")
	ErrGenreNotFound = errors.New("genre not found")
	ErrMpaNotFound   = errors.New("mpa rating not found")
)

// FilmStore определяет интерфейс для операций с фильмами, лайками
// и справочными данными (жанры, MPA-рейтинги).
type FilmStore interface {
	GetAll(ctx context.Context) ([]*domain.Film, error)
	Create(ctx context.Context, film *domain.Film) (*domain.Film, error)
	Update(ctx context.Context, film *domain.Film) (*domain.Film, error)
	Delete(ctx context.Context, filmID int64) error
	GetByID(ctx context.Context, filmID int64) (*domain.Film, error)

	// AddLike и DeleteLike идемпотентны: повторное добавление или
	// удаление несуществующего лайка — no-op.
	AddLike(ctx context.Context, filmID, userID int64) error
	DeleteLike(ctx context.Context, filmID, userID int64) error
	// DeleteLikesByUser удаляет все лайки пользователя (каскад при
	// удалении пользователя, вызывается сервисным слоем).
	DeleteLikesByUser(ctx context.Context, userID int64) error
	// GetLikes возвращает для каждого фильма множество ID поставивших
	// лайк пользователей. Фильмы без лайков присутствуют с пустым списком.
	GetLikes(ctx context.Context) (map[int64][]int64, error)

	GetAllGenres(ctx context.Context) ([]*domain.Genre, error)
	GetGenre(ctx context.Context, genreID int64) (*domain.Genre, error)
	GetAllMpa(ctx context.Context) ([]*domain.Mpa, error)
	GetMpa(ctx context.Context, mpaID int64) (*domain.Mpa, error)
}

// MemoryFilmStore — хранилище фильмов в памяти на мапах.
// Используется в тестах и для локального запуска без БД.
type MemoryFilmStore struct {
	mu     sync.RWMutex
	films  map[int64]*domain.Film
	likes  map[int64][]int64
	genres map[int64]string
	mpa    map[int64]string
	nextID int64
	logger *slog.Logger
}

// NewMemoryFilmStore создает хранилище, заполненное теми же справочными
// данными, что и migrations/schema.sql.
func NewMemoryFilmStore(logger *slog.Logger) *MemoryFilmStore {
	return &MemoryFilmStore{
		films: make(map[int64]*domain.Film),
		likes: make(map[int64][]int64),
		genres: map[int64]string{
			1: "Комедия",
			2: "Драма",
			3: "Мультфильм",
			4: "Триллер",
			5: "Документальный",
			6: "Боевик",
		},
		mpa: map[int64]string{
			1: "G",
			2: "PG",
			3: "PG-13",
			4: "R",
			5: "NC-17",
		},
		logger: logger,
	}
}

// resolveReferences подставляет канонические имена жанров и рейтинга по их ID
// и убирает дубликаты жанров. Аналог повторного чтения из БД после записи.
// Неизвестный ID рейтинга или жанра — та же ошибка, что нарушение внешнего
// ключа в PostgreSQL-хранилище.
func (m *MemoryFilmStore) resolveReferences(film *domain.Film) error {
	if film.Mpa.ID != 0 {
		name, ok := m.mpa[film.Mpa.ID]
		if !ok {
			return ErrMpaNotFound
		}
		film.Mpa.Name = name
	}
	seen := make(map[int64]bool, len(film.Genres))
	genres := make([]domain.Genre, 0, len(film.Genres))
	for _, g := range film.Genres {
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		name, ok := m.genres[g.ID]
		if !ok {
			return ErrGenreNotFound
		}
		g.Name = name
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].ID < genres[j].ID })
	film.Genres = genres
	return nil
}

func copyFilm(film *domain.Film) *domain.Film {
	filmCopy := *film
	filmCopy.Genres = append([]domain.Genre(nil), film.Genres...)
	if film.ReleaseDate != nil {
		d := *film.ReleaseDate
		filmCopy.ReleaseDate = &d
	}
	return &filmCopy
}

func (m *MemoryFilmStore) GetAll(ctx context.Context) ([]*domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.films))
	for id := range m.films {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	films := make([]*domain.Film, 0, len(ids))
	for _, id := range ids {
		films = append(films, copyFilm(m.films[id]))
	}
	return films, nil
}

func (m *MemoryFilmStore) Create(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filmCopy := copyFilm(film)
	if err := m.resolveReferences(filmCopy); err != nil {
		return nil, err
	}
	m.nextID++
	filmCopy.ID = m.nextID
	m.films[filmCopy.ID] = filmCopy
	m.likes[filmCopy.ID] = []int64{}

	m.logger.DebugContext(ctx, "Film created in memory store", slog.Int64("filmID", filmCopy.ID))
	return copyFilm(filmCopy), nil
}

func (m *MemoryFilmStore) Update(ctx context.Context, film *domain.Film) (*domain.Film, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.films[film.ID]; !ok {
		return nil, ErrFilmNotFound
	}
	filmCopy := copyFilm(film)
	if err := m.resolveReferences(filmCopy); err != nil {
		return nil, err
	}
	m.films[film.ID] = filmCopy
	return copyFilm(filmCopy), nil
}

func (m *MemoryFilmStore) Delete(ctx context.Context, filmID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.films[filmID]; !ok {
		return ErrFilmNotFound
	}
	delete(m.films, filmID)
	delete(m.likes, filmID)
	return nil
}

func (m *MemoryFilmStore) GetByID(ctx context.Context, filmID int64) (*domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	film, ok := m.films[filmID]
	if !ok {
		return nil, ErrFilmNotFound
	}
	return copyFilm(film), nil
}

func (m *MemoryFilmStore) AddLike(ctx context.Context, filmID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	likes, ok := m.likes[filmID]
	if !ok {
		return nil
	}
	for _, id := range likes {
		if id == userID {
			return nil
		}
	}
	m.likes[filmID] = append(likes, userID)
	return nil
}

func (m *MemoryFilmStore) DeleteLike(ctx context.Context, filmID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	likes, ok := m.likes[filmID]
	if !ok {
		return nil
	}
	for i, id := range likes {
		if id == userID {
			m.likes[filmID] = append(likes[:i], likes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemoryFilmStore) DeleteLikesByUser(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for filmID, likes := range m.likes {
		for i, id := range likes {
			if id == userID {
				m.likes[filmID] = append(likes[:i], likes[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (m *MemoryFilmStore) GetLikes(ctx context.Context) (map[int64][]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	likes := make(map[int64][]int64, len(m.likes))
	for filmID, userIDs := range m.likes {
		likes[filmID] = append([]int64(nil), userIDs...)
	}
	return likes, nil
}

func (m *MemoryFilmStore) GetAllGenres(ctx context.Context) ([]*domain.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedReference(m.genres, func(id int64, name string) *domain.Genre {
		return &domain.Genre{ID: id, Name: name}
	}), nil
}

func (m *MemoryFilmStore) GetGenre(ctx context.Context, genreID int64) (*domain.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.genres[genreID]
	if !ok {
		return nil, ErrGenreNotFound
	}
	return &domain.Genre{ID: genreID, Name: name}, nil
}

func (m *MemoryFilmStore) GetAllMpa(ctx context.Context) ([]*domain.Mpa, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedReference(m.mpa, func(id int64, name string) *domain.Mpa {
		return &domain.Mpa{ID: id, Name: name}
	}), nil
}

func (m *MemoryFilmStore) GetMpa(ctx context.Context, mpaID int64) (*domain.Mpa, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.mpa[mpaID]
	if !ok {
		return nil, ErrMpaNotFound
	}
	return &domain.Mpa{ID: mpaID, Name: name}, nil
}

func sortedReference[T any](src map[int64]string, build func(int64, string) T) []T {
	ids := make([]int64, 0, len(src))
	for id := range src {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, build(id, src[id]))
	}
	return out
}
