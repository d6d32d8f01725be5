// internal/domain/user.go
package domain

// User представляет доменную модель пользователя.
// Пустое имя при сохранении заменяется логином (см. хранилище).
type User struct {
	ID       int64  `json:"id" db:"user_id"`
	Email    string `json:"email" db:"email" validate:"required,contains=@"`
	Login    string `json:"login" db:"login" validate:"required,notblank,nospaces"`
	Name     string `json:"name" db:"name"`
	Birthday *Date  `json:"birthday,omitempty" db:"birthday" validate:"omitempty,nofuture"`
}

// Статусы дружбы. APPROVED выставляется только когда существуют обе
// встречные записи; напрямую от клиента статус не принимается.
const (
	FriendshipUnapproved = "UNAPPROVED"
	FriendshipApproved   = "APPROVED"
)

// Friendship — направленная запись дружбы (заявитель -> адресат).
type Friendship struct {
	ID       int64  `json:"id" db:"friendship_id"`
	UserID   int64  `json:"userId" db:"user_id"`
	FriendID int64  `json:"friendId" db:"friend_id"`
	Status   string `json:"status" db:"status"`
}
