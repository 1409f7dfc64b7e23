package service

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	apperrors "nft-marketplace-backend/internal/common/errors"
	"nft-marketplace-backend/internal/common/logger"
	"nft-marketplace-backend/internal/common/units"
	"nft-marketplace-backend/internal/common/validation"
	nftmodels "nft-marketplace-backend/internal/features/nft/models"
	"nft-marketplace-backend/internal/platform/wallet"
)

// Catalog is the marketplace backend as seen by a buyer.
type Catalog interface {
	GetNFT(ctx context.Context, id string) (*nftmodels.NFT, error)
	ConfirmPurchase(ctx context.Context, id, buyer, txHash string) error
}

// Payer moves funds and waits for confirmation.
type Payer interface {
	SubmitPurchase(ctx context.Context, from, to common.Address, priceEth string) (*wallet.Receipt, error)
}

type PurchaseResult struct {
	NFTID    string          `json:"nftId"`
	Buyer    string          `json:"buyer"`
	Seller   string          `json:"seller"`
	ValueWei *big.Int        `json:"valueWei"`
	Receipt  *wallet.Receipt `json:"receipt"`
}

type Orchestrator struct {
	catalog Catalog
	payer   Payer
	log     zerolog.Logger
}

func NewOrchestrator(catalog Catalog, payer Payer) *Orchestrator {
	return &Orchestrator{
		catalog: catalog,
		payer:   payer,
		log:     logger.Component("purchase"),
	}
}

// Purchase looks the NFT up, pays its creator and then records the new owner.
// A failure after payment is reported as OWNERSHIP_SYNC_FAILED with the
// transaction hash, since the funds have already moved.
func (o *Orchestrator) Purchase(ctx context.Context, nftID string, buyer common.Address) (*PurchaseResult, error) {
	nft, err := o.catalog.GetNFT(ctx, nftID)
	if err != nil {
		return nil, err
	}

	buyerHex := strings.ToLower(buyer.Hex())
	if validation.SameAddress(buyerHex, nft.Creator) || validation.SameAddress(buyerHex, nft.Owner) {
		return nil, apperrors.New(apperrors.ErrCodeSelfPurchase, "Buyer already owns or created this NFT").
			WithDetail("nftId", nft.ID)
	}
	if !common.IsHexAddress(nft.Creator) {
		return nil, apperrors.New(apperrors.ErrCodeServer, "NFT has an invalid creator address").
			WithDetail("nftId", nft.ID)
	}
	value, err := units.EthToWei(nft.Price)
	if err != nil {
		return nil, apperrors.NewValidationError("price", err.Error())
	}

	seller := common.HexToAddress(nft.Creator)
	receipt, err := o.payer.SubmitPurchase(ctx, buyer, seller, nft.Price)
	if err != nil {
		return nil, err
	}

	txHash := receipt.TxHash.Hex()
	if err := o.catalog.ConfirmPurchase(ctx, nft.ID, buyerHex, txHash); err != nil {
		o.log.Error().
			Err(err).
			Str("nft_id", nft.ID).
			Str("buyer", buyerHex).
			Str("tx_hash", txHash).
			Msg("Payment confirmed but ownership update failed")
		return nil, apperrors.Wrap(err, apperrors.ErrCodeOwnershipSyncFailed, "Payment succeeded but ownership was not updated").
			WithDetail("nftId", nft.ID).
			WithDetail("txHash", txHash)
	}

	o.log.Info().
		Str("nft_id", nft.ID).
		Str("buyer", buyerHex).
		Str("seller", nft.Creator).
		Str("tx_hash", txHash).
		Msg("Purchase completed")

	return &PurchaseResult{
		NFTID:    nft.ID,
		Buyer:    buyerHex,
		Seller:   strings.ToLower(nft.Creator),
		ValueWei: value,
		Receipt:  receipt,
	}, nil
}
