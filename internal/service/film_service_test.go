// internal/service/film_service_test.go
package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmorate/internal/domain"
	"filmorate/internal/service"
	"filmorate/internal/store"
	"filmorate/internal/validation"
)

type testEnv struct {
	films     *service.FilmService
	users     *service.UserService
	filmStore *store.MemoryFilmStore
	userStore *store.MemoryUserStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	validate := validation.New()
	filmStore := store.NewMemoryFilmStore(logger)
	userStore := store.NewMemoryUserStore(logger)
	users := service.NewUserService(userStore, filmStore, validate, logger)
	films := service.NewFilmService(filmStore, users, validate, logger)
	return &testEnv{films: films, users: users, filmStore: filmStore, userStore: userStore}
}

func validFilm() *domain.Film {
	release := domain.NewDate(1999, 3, 31)
	return &domain.Film{
		Name:        "The Matrix",
		Description: "A hacker discovers reality is a simulation",
		ReleaseDate: &release,
		Duration:    136,
		Mpa:         domain.Mpa{ID: 4},
	}
}

func (e *testEnv) createUser(t *testing.T, login string) *domain.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), &domain.User{
		Email: login + "@example.com",
		Login: login,
	})
	require.NoError(t, err)
	return user
}

func TestFilmValidation(t *testing.T) {
	ctx := context.Background()

	longDescription := make([]byte, 201)
	for i := range longDescription {
		longDescription[i] = 'x'
	}
	tooEarly := domain.NewDate(1895, 12, 27)
	boundary := domain.NewDate(1895, 12, 28)

	tests := []struct {
		name    string
		mutate  func(f *domain.Film)
		wantErr bool
	}{
		{name: "valid", mutate: func(f *domain.Film) {}, wantErr: false},
		{name: "empty name", mutate: func(f *domain.Film) { f.Name = "" }, wantErr: true},
		{name: "blank name", mutate: func(f *domain.Film) { f.Name = "   " }, wantErr: true},
		{name: "description 201 chars", mutate: func(f *domain.Film) { f.Description = string(longDescription) }, wantErr: true},
		{name: "description exactly 200 chars", mutate: func(f *domain.Film) { f.Description = string(longDescription[:200]) }, wantErr: false},
		{name: "release before film birthday", mutate: func(f *domain.Film) { f.ReleaseDate = &tooEarly }, wantErr: true},
		{name: "release on film birthday", mutate: func(f *domain.Film) { f.ReleaseDate = &boundary }, wantErr: false},
		{name: "no release date", mutate: func(f *domain.Film) { f.ReleaseDate = nil }, wantErr: false},
		{name: "zero duration", mutate: func(f *domain.Film) { f.Duration = 0 }, wantErr: true},
		{name: "negative duration", mutate: func(f *domain.Film) { f.Duration = -10 }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			film := validFilm()
			tc.mutate(film)
			_, err := env.films.Create(ctx, film)
			if tc.wantErr {
				assert.ErrorIs(t, err, service.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFilmCreateThenGet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	created, err := env.films.Create(ctx, validFilm())
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := env.films.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestFilmUpdateNotFound(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	film := validFilm()
	film.ID = 99
	_, err := env.films.Update(ctx, film)
	assert.ErrorIs(t, err, store.ErrFilmNotFound)

	// Состояние не изменилось.
	all, err := env.films.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddLikeChecksExistence(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	film, err := env.films.Create(ctx, validFilm())
	require.NoError(t, err)
	user := env.createUser(t, "alice")

	assert.ErrorIs(t, env.films.AddLike(ctx, 99, user.ID), store.ErrFilmNotFound)
	assert.ErrorIs(t, env.films.AddLike(ctx, film.ID, 99), store.ErrUserNotFound)
	assert.NoError(t, env.films.AddLike(ctx, film.ID, user.ID))
}

func TestAddLikeIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	film, err := env.films.Create(ctx, validFilm())
	require.NoError(t, err)
	user := env.createUser(t, "alice")

	require.NoError(t, env.films.AddLike(ctx, film.ID, user.ID))
	require.NoError(t, env.films.AddLike(ctx, film.ID, user.ID))

	likes, err := env.filmStore.GetLikes(ctx)
	require.NoError(t, err)
	assert.Len(t, likes[film.ID], 1)
}

func TestGetTopFilms(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// Три фильма с 5, 1 и 3 лайками соответственно.
	likeCounts := []int{5, 1, 3}
	filmIDs := make([]int64, len(likeCounts))
	for i := range likeCounts {
		film := validFilm()
		film.Name = fmt.Sprintf("Film %d", i+1)
		created, err := env.films.Create(ctx, film)
		require.NoError(t, err)
		filmIDs[i] = created.ID
	}
	for i := 0; i < 5; i++ {
		env.createUser(t, fmt.Sprintf("user%d", i+1))
	}
	for i, count := range likeCounts {
		for userID := int64(1); userID <= int64(count); userID++ {
			require.NoError(t, env.films.AddLike(ctx, filmIDs[i], userID))
		}
	}

	top, err := env.films.GetTopFilms(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, filmIDs[0], top[0].ID)
	assert.Equal(t, filmIDs[2], top[1].ID)

	// count больше числа фильмов — все фильмы.
	top, err = env.films.GetTopFilms(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, top, 3)

	// count <= 0 — пустой результат.
	top, err = env.films.GetTopFilms(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestGenreAndMpaLookups(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	genre, err := env.films.GetGenreByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Комедия", genre.Name)

	_, err = env.films.GetGenreByID(ctx, 99)
	assert.ErrorIs(t, err, store.ErrGenreNotFound)

	rating, err := env.films.GetMpaByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "NC-17", rating.Name)

	_, err = env.films.GetMpaByID(ctx, 99)
	assert.ErrorIs(t, err, store.ErrMpaNotFound)
}

func TestFilmDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	film, err := env.films.Create(ctx, validFilm())
	require.NoError(t, err)

	require.NoError(t, env.films.Delete(ctx, film.ID))
	_, err = env.films.GetByID(ctx, film.ID)
	assert.ErrorIs(t, err, store.ErrFilmNotFound)

	assert.ErrorIs(t, env.films.Delete(ctx, film.ID), store.ErrFilmNotFound)
}
