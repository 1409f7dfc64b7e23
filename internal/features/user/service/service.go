package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	apperrors "nft-marketplace-backend/internal/common/errors"
	"nft-marketplace-backend/internal/common/logger"
	"nft-marketplace-backend/internal/common/validation"
	"nft-marketplace-backend/internal/features/user/models"
	"nft-marketplace-backend/internal/features/user/repository"
)

type UserService interface {
	// ConnectWallet registers a wallet on first sight and refreshes lastLogin afterwards.
	ConnectWallet(ctx context.Context, walletAddress string) (*models.User, error)
	GetUser(ctx context.Context, walletAddress string) (*models.User, error)
	// UploadAvatar stores image as the avatar of an already registered wallet.
	UploadAvatar(ctx context.Context, walletAddress string, image []byte) (*models.User, error)
}

// AvatarStore persists avatar images.
type AvatarStore interface {
	Save(name string, data []byte) (string, error)
	Remove(url string) error
}

type userService struct {
	repo    repository.UserRepository
	avatars AvatarStore
	now     func() time.Time
	log     zerolog.Logger
}

func NewUserService(repo repository.UserRepository, avatars AvatarStore) UserService {
	return &userService{
		repo:    repo,
		avatars: avatars,
		now:     func() time.Time { return time.Now().UTC() },
		log:     logger.Component("user-service"),
	}
}

func (s *userService) ConnectWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	address, err := validation.NormalizeAddress(walletAddress)
	if err != nil {
		return nil, apperrors.NewValidationError("walletAddress", err.Error())
	}

	user, created, err := s.repo.RegisterOrTouch(ctx, address, s.now())
	if err != nil {
		return nil, apperrors.NewDatabaseError("register or touch user", err)
	}

	s.log.Info().Str("wallet", address).Bool("created", created).Msg("Wallet connected")
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, walletAddress string) (*models.User, error) {
	address, err := validation.NormalizeAddress(walletAddress)
	if err != nil {
		return nil, apperrors.NewValidationError("address", err.Error())
	}

	user, err := s.repo.GetByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", address)
		}
		return nil, apperrors.NewDatabaseError("get user", err)
	}
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, walletAddress string, image []byte) (*models.User, error) {
	address, err := validation.NormalizeAddress(walletAddress)
	if err != nil {
		return nil, apperrors.NewValidationError("walletAddress", err.Error())
	}
	if len(image) == 0 {
		return nil, apperrors.NewValidationError("avatar", "avatar is required")
	}

	previous, err := s.GetUser(ctx, address)
	if err != nil {
		return nil, err
	}

	avatarURL, err := s.avatars.Save(fmt.Sprintf("%s_%d", address, s.now().UnixMilli()), image)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid avatar").
			WithDetail("field", "avatar")
	}

	user, err := s.repo.SetAvatar(ctx, address, avatarURL)
	if err != nil {
		if rmErr := s.avatars.Remove(avatarURL); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("avatar", avatarURL).Msg("Failed to remove orphaned avatar")
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", address)
		}
		return nil, apperrors.NewDatabaseError("set avatar", err)
	}

	if previous.AvatarURL != "" && previous.AvatarURL != avatarURL {
		if err := s.avatars.Remove(previous.AvatarURL); err != nil {
			s.log.Warn().Err(err).Str("avatar", previous.AvatarURL).Msg("Failed to remove replaced avatar")
		}
	}

	s.log.Info().Str("wallet", address).Str("avatar", avatarURL).Msg("Avatar updated")
	return user, nil
}
