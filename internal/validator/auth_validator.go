package validator

import (
	"errors"
	"regexp"

	auth "storefront/internal/usecase/auth_usecase"
)

// 入力が不正（handlerで400にする）
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

const minPasswordLen = 8

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() auth.InputValidator {
	return authValidator{}
}

// 会員登録（emailは小文字化済みで来る）
func (authValidator) ValidateRegister(name string, email string, password string) error {
	if name == "" || email == "" || password == "" {
		return invalid("name, email, password required")
	}
	if len(name) > 255 || len(email) > 255 {
		return invalid("name or email too long")
	}
	if !isEmailLike(email) {
		return invalid("invalid email format")
	}
	if len(password) < minPasswordLen {
		return invalid("password must be at least 8 characters")
	}
	// bcryptは72バイトまでしか見ない
	if len(password) > 72 {
		return invalid("password too long")
	}
	return nil
}

func (authValidator) ValidateLogin(email string, password string) error {
	if email == "" || password == "" {
		return invalid("email and password required")
	}
	return nil
}

func (authValidator) ValidateResetPassword(email string, newPassword string) error {
	if email == "" || newPassword == "" {
		return invalid("email and new_password required")
	}
	if len(newPassword) < minPasswordLen {
		return invalid("password must be at least 8 characters")
	}
	if len(newPassword) > 72 {
		return invalid("password too long")
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailRe.MatchString(s)
}
