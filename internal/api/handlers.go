// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"filmorate/internal/service"
	"filmorate/internal/store"
)

// HTTPHandler держит зависимости всех HTTP эндпоинтов.
type HTTPHandler struct {
	films  *service.FilmService
	users  *service.UserService
	logger *slog.Logger
}

// NewHTTPHandler создает новый экземпляр HTTPHandler.
func NewHTTPHandler(films *service.FilmService, users *service.UserService, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		films:  films,
		users:  users,
		logger: logger,
	}
}

// --- Вспомогательные функции ---

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"error": message})
}

// respondServiceError транслирует ошибки сервисного слоя в HTTP статусы:
// валидация -> 400, отсутствие сущности -> 404, остальное -> 500.
func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		h.respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrFilmNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrGenreNotFound),
		errors.Is(err, store.ErrMpaNotFound):
		h.respondError(w, r, http.StatusNotFound, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Unhandled service error", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		h.respondError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

// pathID извлекает числовой параметр пути.
func pathID(r *http.Request, name string) (int64, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, errors.New("missing path parameter " + name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("invalid path parameter " + name)
	}
	return id, nil
}
