// internal/api/user_handlers.go
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"filmorate/internal/domain"
)

// GetAllUsers обрабатывает GET /users.
func (h *HTTPHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetAll(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, users)
}

// CreateUser обрабатывает POST /users.
func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode user request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	created, err := h.users.Create(ctx, &user)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, created)
}

// UpdateUser обрабатывает PUT /users.
func (h *HTTPHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode user request body", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	updated, err := h.users.Update(ctx, &user)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, updated)
}

// GetUser обрабатывает GET /users/{id}.
func (h *HTTPHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

// DeleteUser обрабатывает DELETE /users/{id}.
func (h *HTTPHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.users.Delete(r.Context(), userID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusNoContent, nil)
}

// GetUserFriends обрабатывает GET /users/{id}/friends.
func (h *HTTPHandler) GetUserFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	friends, err := h.users.GetUserFriends(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, friends)
}

// AddFriend обрабатывает PUT /users/{id}/friends/{friendId}.
func (h *HTTPHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	friendID, err := pathID(r, "friendId")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.users.AddFriend(r.Context(), userID, friendID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

// DeleteFriend обрабатывает DELETE /users/{id}/friends/{friendId}.
func (h *HTTPHandler) DeleteFriend(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	friendID, err := pathID(r, "friendId")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.users.DeleteFriend(r.Context(), userID, friendID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

// GetCommonFriends обрабатывает GET /users/{id}/friends/common/{otherId}.
func (h *HTTPHandler) GetCommonFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	otherID, err := pathID(r, "otherId")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	common, err := h.users.GetCommonFriends(r.Context(), userID, otherID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, common)
}
