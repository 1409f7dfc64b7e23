package cached

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"nft-marketplace-backend/internal/common/cache"
	"nft-marketplace-backend/internal/common/logger"
	"nft-marketplace-backend/internal/features/nft/models"
	"nft-marketplace-backend/internal/features/nft/repository"
)

const keyPrefixNFT = "nft_cache:"

// cachedRepository keeps GetByID results in Redis in front of another store.
type cachedRepository struct {
	next  repository.NFTRepository
	cache *cache.CacheService
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCachedRepository(next repository.NFTRepository, cache *cache.CacheService, ttl time.Duration) repository.NFTRepository {
	return &cachedRepository{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   logger.Component("nft-cache"),
	}
}

func makeKey(id string) string {
	return keyPrefixNFT + id
}

func (r *cachedRepository) Create(ctx context.Context, nft *models.NFT) error {
	return r.next.Create(ctx, nft)
}

func (r *cachedRepository) GetByID(ctx context.Context, id string) (*models.NFT, error) {
	var nft models.NFT
	err := r.cache.Get(ctx, makeKey(id), &nft)
	if err == nil {
		return &nft, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		r.log.Warn().Err(err).Str("nft_id", id).Msg("Cache read failed")
	}

	found, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, makeKey(id), found, r.ttl); err != nil {
		r.log.Warn().Err(err).Str("nft_id", id).Msg("Cache write failed")
	}
	return found, nil
}

func (r *cachedRepository) ListByAddress(ctx context.Context, address string) ([]*models.NFT, error) {
	return r.next.ListByAddress(ctx, address)
}

func (r *cachedRepository) TransferOwnership(ctx context.Context, id, newOwner, txHash string, at time.Time) (*models.NFT, error) {
	nft, err := r.next.TransferOwnership(ctx, id, newOwner, txHash, at)
	// drop the entry even on failure; the store is authoritative
	if delErr := r.cache.Delete(ctx, makeKey(id)); delErr != nil {
		r.log.Warn().Err(delErr).Str("nft_id", id).Msg("Cache invalidation failed")
	}
	return nft, err
}
