package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nft-marketplace-backend/internal/features/user/models"
	"nft-marketplace-backend/internal/features/user/repository"
)

const maxUpdateRetries = 5

type userRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) repository.UserRepository {
	return &userRepository{
		client: client,
	}
}

func userKey(address string) string {
	return fmt.Sprintf("user:%s", address)
}

func (r *userRepository) RegisterOrTouch(ctx context.Context, address string, now time.Time) (*models.User, bool, error) {
	key := userKey(address)

	fresh := &models.User{
		WalletAddress: address,
		CreatedAt:     now,
		LastLogin:     now,
	}
	userJSON, err := json.Marshal(fresh)
	if err != nil {
		return nil, false, err
	}

	created, err := r.client.SetNX(ctx, key, userJSON, 0).Result()
	if err != nil {
		return nil, false, err
	}
	if created {
		return fresh, true, nil
	}

	var touched *models.User
	touch := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			return err
		}
		var user models.User
		if err := json.Unmarshal(current, &user); err != nil {
			return err
		}
		user.LastLogin = now

		updated, err := json.Marshal(&user)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		if err == nil {
			touched = &user
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err = r.client.Watch(ctx, touch, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		return touched, false, nil
	}
	return nil, false, fmt.Errorf("touch user %s: %w", address, err)
}

func (r *userRepository) GetByAddress(ctx context.Context, address string) (*models.User, error) {
	userJSON, err := r.client.Get(ctx, userKey(address)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) SetAvatar(ctx context.Context, address, avatarURL string) (*models.User, error) {
	key := userKey(address)

	var updated *models.User
	setAvatar := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return repository.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		var user models.User
		if err := json.Unmarshal(current, &user); err != nil {
			return err
		}
		user.AvatarURL = avatarURL

		raw, err := json.Marshal(&user)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			return nil
		})
		if err == nil {
			updated = &user
		}
		return err
	}

	var err error
	for i := 0; i < maxUpdateRetries; i++ {
		err = r.client.Watch(ctx, setAvatar, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("set avatar for %s: %w", address, err)
}
