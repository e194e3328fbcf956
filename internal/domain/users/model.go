package users

import (
	"strconv"
	"time"
)

type Role string

const (
	RoleMonteur Role = "monteur"
	RoleOffice  Role = "office"
)

type User struct {
	ID         int64
	TelegramID int64
	Name       string
	Role       Role
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Ref: идентификатор пользователя для отметок в completed_items.
func (u User) Ref() string {
	return "tg:" + strconv.FormatInt(u.TelegramID, 10)
}

type Telegram struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// DisplayName собирает имя из профиля Telegram.
func (t Telegram) DisplayName() string {
	name := t.FirstName
	if t.LastName != "" {
		if name != "" {
			name += " "
		}
		name += t.LastName
	}
	if name == "" {
		name = t.Username
	}
	return name
}
