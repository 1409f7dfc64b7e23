package service

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	apperrors "nft-marketplace-backend/internal/common/errors"
	"nft-marketplace-backend/internal/common/logger"
	"nft-marketplace-backend/internal/common/units"
	"nft-marketplace-backend/internal/platform/wallet"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultPollAttempts = 30
)

// Submitter sends transfers and reports their receipts.
type Submitter interface {
	SendValueTransfer(ctx context.Context, req wallet.TransactionRequest) (common.Hash, error)
	GetReceipt(ctx context.Context, hash common.Hash) (*wallet.Receipt, error)
}

type Workflow struct {
	submitter    Submitter
	pollInterval time.Duration
	pollAttempts int
	log          zerolog.Logger
}

func NewWorkflow(submitter Submitter, pollInterval time.Duration, pollAttempts int) *Workflow {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if pollAttempts <= 0 {
		pollAttempts = DefaultPollAttempts
	}
	return &Workflow{
		submitter:    submitter,
		pollInterval: pollInterval,
		pollAttempts: pollAttempts,
		log:          logger.Component("transaction-workflow"),
	}
}

// SubmitPurchase pays priceEth from one address to another and waits for the
// receipt. Submission is never retried. If ctx ends while waiting, the
// transaction stays on chain; only its outcome goes unobserved.
func (w *Workflow) SubmitPurchase(ctx context.Context, from, to common.Address, priceEth string) (*wallet.Receipt, error) {
	value, err := units.EthToWei(priceEth)
	if err != nil {
		return nil, apperrors.NewValidationError("price", err.Error())
	}

	hash, err := w.submitter.SendValueTransfer(ctx, wallet.TransactionRequest{
		From:  from,
		To:    to,
		Value: value,
	})
	if err != nil {
		switch apperrors.CodeOf(err) {
		case apperrors.ErrCodeUserRejected, apperrors.ErrCodeTransactionSubmitFailed:
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTransactionSubmitFailed, "Failed to submit transaction")
	}

	log := w.log.With().Str("tx_hash", hash.Hex()).Logger()
	log.Info().
		Str("from", from.Hex()).
		Str("to", to.Hex()).
		Str("value_wei", value.String()).
		Msg("Transaction submitted")

	return w.waitForReceipt(ctx, hash, log)
}

// waitForReceipt polls right away and then every pollInterval, so the wait is
// bounded by (pollAttempts-1)*pollInterval plus the poll calls themselves.
func (w *Workflow) waitForReceipt(ctx context.Context, hash common.Hash, log zerolog.Logger) (*wallet.Receipt, error) {
	timer := time.NewTimer(w.pollInterval)
	defer timer.Stop()

	for attempt := 1; attempt <= w.pollAttempts; attempt++ {
		receipt, err := w.submitter.GetReceipt(ctx, hash)
		switch {
		case err != nil:
			log.Warn().Err(err).Int("attempt", attempt).Msg("Receipt poll failed")
		case receipt == nil:
			log.Debug().Int("attempt", attempt).Msg("Transaction not mined yet")
		case receipt.Succeeded():
			log.Info().Uint64("block", receipt.BlockNumber).Int("attempt", attempt).Msg("Transaction confirmed")
			return receipt, nil
		default:
			log.Warn().Uint64("block", receipt.BlockNumber).Msg("Transaction reverted")
			return nil, apperrors.New(apperrors.ErrCodeTransactionReverted, "Transaction failed on chain").
				WithDetail("txHash", hash.Hex()).
				WithDetail("blockNumber", receipt.BlockNumber)
		}

		if attempt == w.pollAttempts {
			break
		}

		timer.Reset(w.pollInterval)
		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(ctx.Err(), apperrors.ErrCodeTransactionTimeout, "Stopped waiting for transaction confirmation").
				WithDetail("txHash", hash.Hex()).
				WithDetail("attempts", attempt)
		case <-timer.C:
		}
	}

	return nil, apperrors.Newf(apperrors.ErrCodeTransactionTimeout,
		"Transaction not confirmed after %d attempts", w.pollAttempts).
		WithDetail("txHash", hash.Hex()).
		WithDetail("attempts", w.pollAttempts)
}
