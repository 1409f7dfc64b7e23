package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"nft-marketplace-backend/internal/features/nft/models"
	"nft-marketplace-backend/internal/features/nft/repository"
)

const (
	keyPrefixNFT     = "nft:"
	keyPrefixCreated = "nfts:created:"
	keyPrefixOwned   = "nfts:owned:"
	keyPrefixTx      = "nft:tx:"
	maxTxRetries     = 5
)

type redisRepository struct {
	client *redis.Client
}

func NewRedisNFTRepository(client *redis.Client) repository.NFTRepository {
	return &redisRepository{client: client}
}

func makeNFTKey(id string) string {
	return keyPrefixNFT + id
}

func makeCreatedKey(address string) string {
	return keyPrefixCreated + address
}

func makeOwnedKey(address string) string {
	return keyPrefixOwned + address
}

func makeTxKey(txHash string) string {
	return keyPrefixTx + txHash
}

func (r *redisRepository) Create(ctx context.Context, nft *models.NFT) error {
	data, err := json.Marshal(nft)
	if err != nil {
		return fmt.Errorf("failed to marshal nft: %w", err)
	}

	ok, err := r.client.SetNX(ctx, makeNFTKey(nft.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("nft %s already exists", nft.ID)
	}

	pipe := r.client.Pipeline()
	pipe.SAdd(ctx, makeCreatedKey(nft.Creator), nft.ID)
	pipe.SAdd(ctx, makeOwnedKey(nft.Owner), nft.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRepository) GetByID(ctx context.Context, id string) (*models.NFT, error) {
	data, err := r.client.Get(ctx, makeNFTKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNFTNotFound
	}
	if err != nil {
		return nil, err
	}

	var nft models.NFT
	if err := json.Unmarshal(data, &nft); err != nil {
		return nil, err
	}
	return &nft, nil
}

func (r *redisRepository) ListByAddress(ctx context.Context, address string) ([]*models.NFT, error) {
	ids, err := r.client.SUnion(ctx, makeCreatedKey(address), makeOwnedKey(address)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.NFT{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = makeNFTKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	nfts := make([]*models.NFT, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var nft models.NFT
		if err := json.Unmarshal([]byte(s), &nft); err != nil {
			continue
		}
		nfts = append(nfts, &nft)
	}

	sort.Slice(nfts, func(i, j int) bool {
		return nfts[i].CreatedAt.After(nfts[j].CreatedAt)
	})
	return nfts, nil
}

func (r *redisRepository) TransferOwnership(ctx context.Context, id, newOwner, txHash string, at time.Time) (*models.NFT, error) {
	key := makeNFTKey(id)
	watched := []string{key}
	if txHash != "" {
		watched = append(watched, makeTxKey(txHash))
	}

	var updated *models.NFT
	transfer := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return repository.ErrNFTNotFound
		}
		if err != nil {
			return err
		}

		var nft models.NFT
		if err := json.Unmarshal(data, &nft); err != nil {
			return err
		}
		if nft.Owner == newOwner {
			return repository.ErrAlreadyOwner
		}
		if txHash != "" {
			used, err := tx.Exists(ctx, makeTxKey(txHash)).Result()
			if err != nil {
				return err
			}
			if used > 0 {
				return repository.ErrTxHashUsed
			}
		}

		previous := nft.Owner
		nft.Owner = newOwner
		nft.UpdatedAt = at
		raw, err := json.Marshal(&nft)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			pipe.SRem(ctx, makeOwnedKey(previous), id)
			pipe.SAdd(ctx, makeOwnedKey(newOwner), id)
			if txHash != "" {
				pipe.Set(ctx, makeTxKey(txHash), id, 0)
			}
			return nil
		})
		if err == nil {
			updated = &nft
		}
		return err
	}

	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = r.client.Watch(ctx, transfer, watched...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("transfer nft %s: %w", id, err)
}
