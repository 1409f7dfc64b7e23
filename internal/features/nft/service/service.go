package service

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "nft-marketplace-backend/internal/common/errors"
	"nft-marketplace-backend/internal/common/logger"
	"nft-marketplace-backend/internal/common/units"
	"nft-marketplace-backend/internal/common/validation"
	"nft-marketplace-backend/internal/features/nft/models"
	"nft-marketplace-backend/internal/features/nft/repository"
)

type NFTService interface {
	Create(ctx context.Context, input models.CreateInput) (*models.NFT, error)
	GetByID(ctx context.Context, id string) (*models.NFT, error)
	ListByAddress(ctx context.Context, address string) ([]*models.NFT, error)
	// Purchase moves ownership to buyer. txHash is checked on chain when a verifier is configured.
	Purchase(ctx context.Context, id, buyer, txHash string) (*models.NFT, error)
}

// ImageStore persists uploaded images.
type ImageStore interface {
	Save(name string, data []byte) (string, error)
	Remove(url string) error
}

// TransferVerifier confirms that txHash moved at least minWei from one address to another.
type TransferVerifier interface {
	VerifyTransfer(ctx context.Context, txHash, from, to string, minWei *big.Int) error
}

type nftService struct {
	repo     repository.NFTRepository
	images   ImageStore
	verifier TransferVerifier
	now      func() time.Time
	log      zerolog.Logger
}

// NewNFTService builds the service. verifier may be nil, in which case purchases are recorded without on-chain checks.
func NewNFTService(repo repository.NFTRepository, images ImageStore, verifier TransferVerifier) NFTService {
	return &nftService{
		repo:     repo,
		images:   images,
		verifier: verifier,
		now:      func() time.Time { return time.Now().UTC() },
		log:      logger.Component("nft-service"),
	}
}

func (s *nftService) Create(ctx context.Context, input models.CreateInput) (*models.NFT, error) {
	if err := validation.ValidateName(input.Name); err != nil {
		return nil, apperrors.NewValidationError("name", err.Error())
	}
	if err := validation.ValidateDescription(input.Description); err != nil {
		return nil, apperrors.NewValidationError("description", err.Error())
	}
	price, err := validation.ParsePrice(input.Price)
	if err != nil {
		return nil, apperrors.NewValidationError("price", err.Error())
	}
	creator, err := validation.NormalizeAddress(input.Creator)
	if err != nil {
		return nil, apperrors.NewValidationError("creator", err.Error())
	}
	if len(input.Image) == 0 {
		return nil, apperrors.NewValidationError("image", "image is required")
	}

	id := uuid.NewString()
	imageURL, err := s.images.Save(id, input.Image)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid image").
			WithDetail("field", "image")
	}

	now := s.now()
	nft := &models.NFT{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       price.String(),
		ImageURL:    imageURL,
		Creator:     creator,
		Owner:       creator,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, nft); err != nil {
		if rmErr := s.images.Remove(imageURL); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("image", imageURL).Msg("Failed to remove orphaned image")
		}
		return nil, apperrors.NewDatabaseError("create nft", err)
	}

	s.log.Info().Str("nft_id", id).Str("creator", creator).Str("price", nft.Price).Msg("NFT created")
	return nft, nil
}

func (s *nftService) GetByID(ctx context.Context, id string) (*models.NFT, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFoundError("NFT", id)
	}

	nft, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNFTNotFound) {
			return nil, apperrors.NewNotFoundError("NFT", id)
		}
		return nil, apperrors.NewDatabaseError("get nft", err)
	}
	return nft, nil
}

func (s *nftService) ListByAddress(ctx context.Context, address string) ([]*models.NFT, error) {
	normalized, err := validation.NormalizeAddress(address)
	if err != nil {
		return nil, apperrors.NewValidationError("address", err.Error())
	}

	nfts, err := s.repo.ListByAddress(ctx, normalized)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list nfts", err)
	}
	return nfts, nil
}

func (s *nftService) Purchase(ctx context.Context, id, buyer, txHash string) (*models.NFT, error) {
	normalized, err := validation.NormalizeAddress(buyer)
	if err != nil {
		return nil, apperrors.NewValidationError("buyer", err.Error())
	}

	nft, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if nft.Owner == normalized {
		return nil, apperrors.NewConflictError("NFT", "buyer already owns this NFT")
	}
	if nft.Creator == normalized {
		return nil, apperrors.New(apperrors.ErrCodeSelfPurchase, "Creator cannot purchase their own NFT")
	}

	txHash = strings.ToLower(strings.TrimSpace(txHash))
	if s.verifier != nil {
		if txHash == "" {
			return nil, apperrors.NewValidationError("txHash", "transaction hash is required")
		}
		priceWei, err := units.EthToWei(nft.Price)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Stored price is invalid")
		}
		if err := s.verifier.VerifyTransfer(ctx, txHash, normalized, nft.Creator, priceWei); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.TransferOwnership(ctx, nft.ID, normalized, txHash, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNFTNotFound):
			return nil, apperrors.NewNotFoundError("NFT", id)
		case errors.Is(err, repository.ErrAlreadyOwner):
			return nil, apperrors.NewConflictError("NFT", "buyer already owns this NFT")
		case errors.Is(err, repository.ErrTxHashUsed):
			return nil, apperrors.NewConflictError("transaction", "transaction hash was already used for a purchase").
				WithDetail("txHash", txHash)
		}
		return nil, apperrors.NewDatabaseError("transfer ownership", err)
	}

	s.log.Info().
		Str("nft_id", nft.ID).
		Str("buyer", normalized).
		Str("seller", nft.Owner).
		Str("tx_hash", txHash).
		Msg("NFT ownership transferred")
	return updated, nil
}
