package auth

import (
	"context"
	"errors"

	"storefront/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

type MeUsecase struct {
	userRepo repository.UserRepository
}

func NewMeUsecase(userRepo repository.UserRepository) *MeUsecase {
	return &MeUsecase{userRepo: userRepo}
}

func (u *MeUsecase) Execute(ctx context.Context, userID int64) (UserDTO, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return UserDTO{}, ErrUserNotFound
		}
		return UserDTO{}, err
	}
	return toUserDTO(user), nil
}
