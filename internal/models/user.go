// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Address      string   `json:"address" gorm:"uniqueIndex;size:42;not null"`
	Username     string   `json:"username" gorm:"uniqueIndex;size:50;not null"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"`
	Phone        string   `json:"phone" gorm:"size:20"`
	Email        string   `json:"email" gorm:"size:255"`
	UserType     UserType `json:"user_type" gorm:"type:varchar(20);not null"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
