// internal/domain/film.go
package domain

// Mpa — возрастной рейтинг фильма (справочные данные, только чтение).
type Mpa struct {
	ID   int64  `json:"id" db:"rating_id"`
	Name string `json:"name" db:"name"`
}

// Genre — жанр фильма (справочные данные, связь многие-ко-многим).
type Genre struct {
	ID   int64  `json:"id" db:"genre_id"`
	Name string `json:"name" db:"name"`
}

// Film представляет основную доменную модель фильма.
// ID присваивается хранилищем при создании и больше не меняется.
type Film struct {
	ID          int64   `json:"id" db:"film_id"`
	Name        string  `json:"name" db:"title" validate:"required,notblank"`
	Description string  `json:"description" db:"description" validate:"max=200"`
	ReleaseDate *Date   `json:"releaseDate,omitempty" db:"release_date" validate:"omitempty,filmrelease"`
	Duration    int     `json:"duration" db:"duration" validate:"gt=0"`
	Mpa         Mpa     `json:"mpa"`
	Genres      []Genre `json:"genres"`
}
