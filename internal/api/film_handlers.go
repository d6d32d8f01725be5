// internal/api/film_handlers.go
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"filmorate/internal/domain"
)

// defaultPopularCount — размер топа фильмов, если count не передан.
const defaultPopularCount = 10

// GetAllFilms обрабатывает GET /films.
func (h *HTTPHandler) GetAllFilms(w http.ResponseWriter, r *http.Request) {
	films, err := h.films.GetAll(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}

// CreateFilm обрабатывает POST /films.
func (h *HTTPHandler) CreateFilm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var film domain.Film
	if err := json.NewDecoder(r.Body).Decode(&film); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode film request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	created, err := h.films.Create(ctx, &film)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, created)
}

// UpdateFilm обрабатывает PUT /films.
func (h *HTTPHandler) UpdateFilm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var film domain.Film
	if err := json.NewDecoder(r.Body).Decode(&film); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode film request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	updated, err := h.films.Update(ctx, &film)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, updated)
}

// GetFilm обрабатывает GET /films/{id}.
func (h *HTTPHandler) GetFilm(w http.ResponseWriter, r *http.Request) {
	filmID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	film, err := h.films.GetByID(r.Context(), filmID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, film)
}

// DeleteFilm обрабатывает DELETE /films/{id}.
func (h *HTTPHandler) DeleteFilm(w http.ResponseWriter, r *http.Request) {
	filmID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.films.Delete(r.Context(), filmID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

// AddLike обрабатывает PUT /films/{id}/like/{userId}.
func (h *HTTPHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	filmID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.films.AddLike(r.Context(), filmID, userID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

// DeleteLike обрабатывает DELETE /films/{id}/like/{userId}.
func (h *HTTPHandler) DeleteLike(w http.ResponseWriter, r *http.Request) {
	filmID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.films.DeleteLike(r.Context(), filmID, userID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

// GetPopularFilms обрабатывает GET /films/popular?count=N.
func (h *HTTPHandler) GetPopularFilms(w http.ResponseWriter, r *http.Request) {
	count := defaultPopularCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, "invalid query parameter count")
			return
		}
		count = parsed
	}
	films, err := h.films.GetTopFilms(r.Context(), count)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}

// GetAllGenres обрабатывает GET /genres.
func (h *HTTPHandler) GetAllGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.films.GetAllGenres(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, genres)
}

// GetGenre обрабатывает GET /genres/{id}.
func (h *HTTPHandler) GetGenre(w http.ResponseWriter, r *http.Request) {
	genreID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	genre, err := h.films.GetGenreByID(r.Context(), genreID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, genre)
}

// GetAllMpa обрабатывает GET /mpa.
func (h *HTTPHandler) GetAllMpa(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.films.GetAllMpa(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, ratings)
}

// GetMpa обрабатывает GET /mpa/{id}.
func (h *HTTPHandler) GetMpa(w http.ResponseWriter, r *http.Request) {
	mpaID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	rating, err := h.films.GetMpaByID(r.Context(), mpaID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, rating)
}
