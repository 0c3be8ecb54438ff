package models

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// UsernameMaxLength is the maximum number of characters in a username
	UsernameMaxLength = 150
	// PasswordMinLength is the minimum number of characters in a password
	PasswordMinLength = 8
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var (
	usernameRules = fmt.Sprintf("required,max=%d,username", UsernameMaxLength)
	passwordRules = fmt.Sprintf("min=%d,notnumeric", PasswordMinLength)
)

var (
	ErrRequired         = errors.New("This field is required.")
	ErrUsernameInvalid  = errors.New("Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	ErrPasswordNumeric  = errors.New("This password is entirely numeric.")
	ErrPasswordMismatch = errors.New("The two password fields didn't match.")
)

// User is an account that can log in and author posts
type User struct {
	ID           uint      `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"column:username;type:varchar(150);not null;uniqueIndex:idx_users_username"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:varchar(128);not null"`
	DateJoined   time.Time `json:"date_joined" gorm:"column:date_joined;not null;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// SetPassword hashes password with bcrypt and stores the hash
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ValidateUsername checks length and the allowed characters
func ValidateUsername(username string) error {
	return validateVar(username, usernameRules)
}

// ValidatePassword enforces the minimum length and rejects all-digit passwords
func ValidatePassword(password string) error {
	return validateVar(password, passwordRules)
}
