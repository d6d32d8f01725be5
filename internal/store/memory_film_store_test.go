// internal/store/memory_film_store_test.go
package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmorate/internal/domain"
	"filmorate/internal/store"
)

func newFilm(name string) *domain.Film {
	release := domain.NewDate(1999, 3, 31)
	return &domain.Film{
		Name:        name,
		Description: "test film",
		ReleaseDate: &release,
		Duration:    120,
		Mpa:         domain.Mpa{ID: 1},
	}
}

func TestFilmCreateRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryFilmStore(testLogger())

	created, err := s.Create(ctx, newFilm("The Matrix"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestFilmCreateResolvesReferences(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryFilmStore(testLogger())

	film := newFilm("The Matrix")
	film.Genres = []domain.Genre{{ID: 4}, {ID: 1}, {ID: 4}}
	created, err := s.Create(ctx, film)
	require.NoError(t, err)

	// Дубликаты жанров убраны, имена подставлены из справочника.
	require.Len(t, created.Genres, 2)
	assert.Equal(t, domain.Genre{ID: 1, Name: "Комедия"}, created.Genres[0])
	assert.Equal(t, domain.Genre{ID: 4, Name: "Триллер"}, created.Genres[1])
	assert.Equal(t, "G", created.Mpa.Name)
}

func TestFilmCreateUnknownReferences(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryFilmStore(testLogger())

	// Неизвестный рейтинг или жанр — та же ошибка, что у PostgreSQL-хранилища.
	film := newFilm("The Matrix")
	film.Mpa = domain.Mpa{ID: 99}
	_, err := s.Create(ctx, film)
	assert.ErrorIs(t, err, store.ErrMpaNotFound)

	film = newFilm("The Matrix")
	film.Genres = []domain.Genre{{ID: 99}}
	_, err = s.Create(ctx, film)
	assert.ErrorIs(t, err, store.ErrGenreNotFound)

	// Неудачная вставка не сжигает ID.
	created, err := s.Create(ctx, newFilm("The Matrix"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
}

func TestLikesAreSet(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryFilmStore(testLogger())

	created, err := s.Create(ctx, newFilm("The Matrix"))
	require.NoError(t, err)

	require.NoError(t, s.AddLike(ctx, created.ID, 7))
	require.NoError(t, s.AddLike(ctx, created.ID, 7))
	require.NoError(t, s.AddLike(ctx, created.ID, 8))

	likes, err := s.GetLikes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, likes[created.ID])

	// Удаление отсутствующего лайка — no-op.
	require.NoError(t, s.DeleteLike(ctx, created.ID, 99))
	require.NoError(t, s.DeleteLike(ctx, created.ID, 7))
	likes, err = s.GetLikes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{8}, likes[created.ID])
}

func TestDeleteLikesByUser(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryFilmStore(testLogger())

	first, err := s.Create(ctx, newFilm("First"))
	require.NoError(t, err)
	second, err := s.Create(ctx, newFilm("Second"))
	require.NoError(t, err)

	require.NoError(t, s.AddLike(ctx, first.ID, 7))
	require.NoError(t, s.AddLike(ctx, second.ID, 7))
	require.NoError(t, s.AddLike(ctx, second.ID, 8))

	require.NoError(t, s.DeleteLikesByUser(ctx, 7))

	likes, err := s.GetLikes(ctx)
	require.NoError(t, err)
	assert.Empty(t, likes[first.ID])
	assert.Equal(t, []int64{8}, likes[second.ID])
}

func TestFilmDeleteCascadesLikes(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryFilmStore(testLogger())

	created, err := s.Create(ctx, newFilm("The Matrix"))
	require.NoError(t, err)
	require.NoError(t, s.AddLike(ctx, created.ID, 7))

	require.NoError(t, s.Delete(ctx, created.ID))

	_, err = s.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrFilmNotFound)
	likes, err := s.GetLikes(ctx)
	require.NoError(t, err)
	_, ok := likes[created.ID]
	assert.False(t, ok)
}

func TestReferenceLookups(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryFilmStore(testLogger())

	genres, err := s.GetAllGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 6)

	ratings, err := s.GetAllMpa(ctx)
	require.NoError(t, err)
	assert.Len(t, ratings, 5)

	genre, err := s.GetGenre(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Драма", genre.Name)

	_, err = s.GetGenre(ctx, 99)
	assert.ErrorIs(t, err, store.ErrGenreNotFound)
	_, err = s.GetMpa(ctx, 99)
	assert.ErrorIs(t, err, store.ErrMpaNotFound)
}

func TestFilmUpdateUnknownID(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryFilmStore(testLogger())

	film := newFilm("Ghost")
	film.ID = 42
	_, err := s.Update(ctx, film)
	assert.ErrorIs(t, err, store.ErrFilmNotFound)
}
