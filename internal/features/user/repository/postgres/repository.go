package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nft-marketplace-backend/internal/features/user/models"
	"nft-marketplace-backend/internal/features/user/repository"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) RegisterOrTouch(ctx context.Context, address string, now time.Time) (*models.User, bool, error) {
	// xmax is 0 only for freshly inserted rows
	const query = `
		INSERT INTO users (wallet_address, created_at, last_login)
		VALUES ($1, $2, $2)
		ON CONFLICT (wallet_address) DO UPDATE SET last_login = EXCLUDED.last_login
		RETURNING wallet_address, created_at, last_login, avatar_url, (xmax = 0) AS inserted
	`

	var (
		user    models.User
		created bool
	)
	err := r.pool.QueryRow(ctx, query, address, now).Scan(
		&user.WalletAddress, &user.CreatedAt, &user.LastLogin, &user.AvatarURL, &created)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &user, created, nil
}

func (r *postgresRepository) GetByAddress(ctx context.Context, address string) (*models.User, error) {
	const query = `
		SELECT wallet_address, created_at, last_login, avatar_url
		FROM users
		WHERE wallet_address = $1
	`

	var user models.User
	err := r.pool.QueryRow(ctx, query, address).Scan(&user.WalletAddress, &user.CreatedAt, &user.LastLogin, &user.AvatarURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *postgresRepository) SetAvatar(ctx context.Context, address, avatarURL string) (*models.User, error) {
	const query = `
		UPDATE users SET avatar_url = $2
		WHERE wallet_address = $1
		RETURNING wallet_address, created_at, last_login, avatar_url
	`

	var user models.User
	err := r.pool.QueryRow(ctx, query, address, avatarURL).Scan(
		&user.WalletAddress, &user.CreatedAt, &user.LastLogin, &user.AvatarURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to set avatar: %w", err)
	}
	return &user, nil
}
