package repository

import (
	"context"
	"errors"
	"time"

	"nft-marketplace-backend/internal/features/nft/models"
)

var (
	ErrNFTNotFound  = errors.New("nft not found")
	ErrAlreadyOwner = errors.New("buyer already owns this nft")
	ErrTxHashUsed   = errors.New("transaction hash already paid for a purchase")
)

type NFTRepository interface {
	Create(ctx context.Context, nft *models.NFT) error
	GetByID(ctx context.Context, id string) (*models.NFT, error)
	// ListByAddress returns NFTs created or owned by address, newest first.
	ListByAddress(ctx context.Context, address string) ([]*models.NFT, error)
	// TransferOwnership sets owner to newOwner unless it already is. A non-empty
	// txHash is recorded in the same write and may back only one transfer.
	TransferOwnership(ctx context.Context, id, newOwner, txHash string, at time.Time) (*models.NFT, error)
}
