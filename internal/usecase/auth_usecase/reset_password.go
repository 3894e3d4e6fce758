package auth

import (
	"context"
	"errors"

	"storefront/internal/repository"
)

var ErrEmailNotFound = errors.New("email not found")

type ResetPasswordInput struct {
	Email       string
	NewPassword string
}

// パスワード再設定。token_versionも上げるので、発行済みのJWTは使えなくなる
type ResetPasswordUsecase struct {
	userRepo  repository.UserRepository
	validator InputValidator
	hasher    PasswordHasher
}

func NewResetPasswordUsecase(
	userRepo repository.UserRepository,
	validator InputValidator,
	hasher PasswordHasher,
) *ResetPasswordUsecase {
	return &ResetPasswordUsecase{
		userRepo:  userRepo,
		validator: validator,
		hasher:    hasher,
	}
}

func (u *ResetPasswordUsecase) Execute(ctx context.Context, in ResetPasswordInput) error {
	email := normalizeEmail(in.Email)
	if err := u.validator.ValidateResetPassword(email, in.NewPassword); err != nil {
		return err
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmailNotFound
		}
		return err
	}

	hashed, err := u.hasher.Hash(in.NewPassword)
	if err != nil {
		return err
	}

	if err := u.userRepo.ResetPassword(ctx, user.ID, hashed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmailNotFound
		}
		return err
	}
	return nil
}
