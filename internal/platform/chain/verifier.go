package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	apperrors "nft-marketplace-backend/internal/common/errors"
	"nft-marketplace-backend/internal/common/logger"
)

// Reader is the subset of ethclient.Client the verifier needs.
type Reader interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
}

// Verifier checks purchase payments against a chain node.
type Verifier struct {
	reader Reader
	closer func()
	log    zerolog.Logger
}

func Dial(ctx context.Context, rpcURL string) (*Verifier, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial chain rpc: %w", err)
	}
	v := NewVerifier(client)
	v.closer = client.Close
	return v, nil
}

func NewVerifier(reader Reader) *Verifier {
	return &Verifier{
		reader: reader,
		log:    logger.Component("chain-verifier"),
	}
}

func (v *Verifier) Close() {
	if v.closer != nil {
		v.closer()
	}
}

// VerifyTransfer requires a successful receipt for txHash whose transaction
// was sent by from to to with a value of at least minWei.
func (v *Verifier) VerifyTransfer(ctx context.Context, txHash, from, to string, minWei *big.Int) error {
	raw := strings.TrimSpace(txHash)
	if len(raw) != 66 || !strings.HasPrefix(raw, "0x") {
		return apperrors.NewValidationError("txHash", "transaction hash must be 32 bytes hex")
	}
	hash := common.HexToHash(raw)

	receipt, err := v.reader.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return unverified(hash, "transaction receipt not found")
		}
		return apperrors.NewNetworkError("get transaction receipt", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return apperrors.New(apperrors.ErrCodeTransactionReverted, "Payment transaction reverted").
			WithDetail("txHash", hash.Hex())
	}

	tx, _, err := v.reader.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return unverified(hash, "transaction not found")
		}
		return apperrors.NewNetworkError("get transaction", err)
	}

	sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return unverified(hash, "cannot recover sender")
	}
	if sender != common.HexToAddress(from) {
		return unverified(hash, "sender does not match buyer")
	}
	if tx.To() == nil || *tx.To() != common.HexToAddress(to) {
		return unverified(hash, "recipient does not match seller")
	}
	if minWei != nil && tx.Value().Cmp(minWei) < 0 {
		return unverified(hash, "value is below the listed price").
			WithDetail("valueWei", tx.Value().String()).
			WithDetail("priceWei", minWei.String())
	}

	ev := v.log.Debug().Str("tx_hash", hash.Hex())
	if receipt.BlockNumber != nil {
		ev = ev.Uint64("block", receipt.BlockNumber.Uint64())
	}
	ev.Msg("Payment verified")
	return nil
}

func unverified(hash common.Hash, reason string) *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeTransactionUnverified, "Payment could not be verified: "+reason).
		WithDetail("txHash", hash.Hex())
}
