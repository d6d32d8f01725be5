// internal/api/router.go
package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewHTTPRouter создает и настраивает HTTP маршрутизатор Filmorate.
func NewHTTPRouter(h *HTTPHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(h.RequestLogMiddleware)

	films := router.PathPrefix("/films").Subrouter()
	films.HandleFunc("", h.GetAllFilms).Methods(http.MethodGet)
	films.HandleFunc("", h.CreateFilm).Methods(http.MethodPost)
	films.HandleFunc("", h.UpdateFilm).Methods(http.MethodPut)
	films.HandleFunc("/popular", h.GetPopularFilms).Methods(http.MethodGet)
	films.HandleFunc("/{id:[0-9]+}", h.GetFilm).Methods(http.MethodGet)
	films.HandleFunc("/{id:[0-9]+}", h.DeleteFilm).Methods(http.MethodDelete)
	films.HandleFunc("/{id:[0-9]+}/like/{userId:[0-9]+}", h.AddLike).Methods(http.MethodPut)
	films.HandleFunc("/{id:[0-9]+}/like/{userId:[0-9]+}", h.DeleteLike).Methods(http.MethodDelete)

	users := router.PathPrefix("/users").Subrouter()
	users.HandleFunc("", h.GetAllUsers).Methods(http.MethodGet)
	users.HandleFunc("", h.CreateUser).Methods(http.MethodPost)
	users.HandleFunc("", h.UpdateUser).Methods(http.MethodPut)
	users.HandleFunc("/{id:[0-9]+}", h.GetUser).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}", h.DeleteUser).Methods(http.MethodDelete)
	users.HandleFunc("/{id:[0-9]+}/friends", h.GetUserFriends).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}/friends/common/{otherId:[0-9]+}", h.GetCommonFriends).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}/friends/{friendId:[0-9]+}", h.AddFriend).Methods(http.MethodPut)
	users.HandleFunc("/{id:[0-9]+}/friends/{friendId:[0-9]+}", h.DeleteFriend).Methods(http.MethodDelete)

	genres := router.PathPrefix("/genres").Subrouter()
	genres.HandleFunc("", h.GetAllGenres).Methods(http.MethodGet)
	genres.HandleFunc("/{id:[0-9]+}", h.GetGenre).Methods(http.MethodGet)

	mpa := router.PathPrefix("/mpa").Subrouter()
	mpa.HandleFunc("", h.GetAllMpa).Methods(http.MethodGet)
	mpa.HandleFunc("/{id:[0-9]+}", h.GetMpa).Methods(http.MethodGet)

	return router
}
