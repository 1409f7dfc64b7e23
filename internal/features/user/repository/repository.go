package repository

import (
	"context"
	"errors"
	"time"

	"nft-marketplace-backend/internal/features/user/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	// RegisterOrTouch creates the user with createdAt = lastLogin = now, or sets
	// lastLogin = now on an existing record. created reports which happened.
	RegisterOrTouch(ctx context.Context, address string, now time.Time) (user *models.User, created bool, err error)
	GetByAddress(ctx context.Context, address string) (*models.User, error)
	// SetAvatar stores avatarURL on an existing user.
	SetAvatar(ctx context.Context, address, avatarURL string) (*models.User, error)
}
