package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"

	apperrors "nft-marketplace-backend/internal/common/errors"
	"nft-marketplace-backend/internal/common/logger"
)

const defaultAccountsPollInterval = time.Second

// AccountsHandler receives the new account list when the wallet switches or drops accounts.
type AccountsHandler func(accounts []common.Address)

// Subscription is a live accounts-changed registration.
type Subscription interface {
	Unsubscribe()
}

// Adapter exposes the wallet operations the marketplace needs on top of a Provider.
type Adapter struct {
	provider     Provider
	pollInterval time.Duration
	log          zerolog.Logger

	mu  sync.Mutex
	sub *accountsSubscription
}

// NewAdapter wraps p. A nil provider yields an adapter whose calls fail with
// PROVIDER_UNAVAILABLE, mirroring a browser without a wallet extension.
func NewAdapter(p Provider, accountsPollInterval time.Duration) *Adapter {
	if accountsPollInterval <= 0 {
		accountsPollInterval = defaultAccountsPollInterval
	}
	return &Adapter{
		provider:     p,
		pollInterval: accountsPollInterval,
		log:          logger.Component("wallet"),
	}
}

// GetAccounts returns the accounts the wallet has already authorised, without prompting.
func (a *Adapter) GetAccounts(ctx context.Context) ([]common.Address, error) {
	if a.provider == nil {
		return nil, errProviderUnavailable("eth_accounts")
	}
	var accounts []common.Address
	if err := a.provider.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, mapProviderError(err, "eth_accounts", apperrors.ErrCodeProviderInternalError)
	}
	return accounts, nil
}

// RequestAccess asks the wallet for permission to use its accounts.
// Providers without eth_requestAccounts (plain nodes) fall back to eth_accounts.
func (a *Adapter) RequestAccess(ctx context.Context) ([]common.Address, error) {
	if a.provider == nil {
		return nil, errProviderUnavailable("eth_requestAccounts")
	}
	var accounts []common.Address
	err := a.provider.CallContext(ctx, &accounts, "eth_requestAccounts")
	if err != nil {
		if isMethodNotFound(err) {
			a.log.Debug().Msg("eth_requestAccounts not supported, using eth_accounts")
			return a.GetAccounts(ctx)
		}
		return nil, mapProviderError(err, "eth_requestAccounts", apperrors.ErrCodeProviderInternalError)
	}
	return accounts, nil
}

type sendTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value"`
	Gas   hexutil.Uint64  `json:"gas"`
}

// SendValueTransfer submits req for signing and broadcast and returns the transaction hash.
func (a *Adapter) SendValueTransfer(ctx context.Context, req TransactionRequest) (common.Hash, error) {
	if a.provider == nil {
		return common.Hash{}, errProviderUnavailable("eth_sendTransaction")
	}
	if req.Value == nil || req.Value.Sign() < 0 {
		return common.Hash{}, apperrors.NewValidationError("value", "must be a non-negative amount")
	}
	to := req.To
	args := sendTxArgs{
		From:  req.From,
		To:    &to,
		Value: (*hexutil.Big)(req.Value),
		Gas:   hexutil.Uint64(TransferGas),
	}

	var hash common.Hash
	if err := a.provider.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		if code, ok := providerCode(err); ok && code == codeUserRejected {
			return common.Hash{}, mapProviderError(err, "eth_sendTransaction", apperrors.ErrCodeTransactionSubmitFailed)
		}
		return common.Hash{}, apperrors.Wrap(err, apperrors.ErrCodeTransactionSubmitFailed, "transaction submission failed").
			WithDetail("from", req.From.Hex()).
			WithDetail("to", req.To.Hex())
	}
	a.log.Info().Str("tx", hash.Hex()).Str("from", req.From.Hex()).Str("to", req.To.Hex()).
		Str("value_wei", req.Value.String()).Msg("Transaction submitted")
	return hash, nil
}

type rpcReceipt struct {
	Status          hexutil.Uint64 `json:"status"`
	TransactionHash common.Hash    `json:"transactionHash"`
	BlockNumber     *hexutil.Big   `json:"blockNumber"`
}

// GetReceipt polls once for the receipt of hash. A nil receipt means not mined yet.
func (a *Adapter) GetReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	if a.provider == nil {
		return nil, errProviderUnavailable("eth_getTransactionReceipt")
	}
	var r *rpcReceipt
	if err := a.provider.CallContext(ctx, &r, "eth_getTransactionReceipt", hash); err != nil {
		return nil, mapProviderError(err, "eth_getTransactionReceipt", apperrors.ErrCodeProviderInternalError)
	}
	if r == nil {
		return nil, nil
	}
	receipt := &Receipt{
		Status: ReceiptStatus(r.Status),
		TxHash: r.TransactionHash,
	}
	if receipt.TxHash == (common.Hash{}) {
		receipt.TxHash = hash
	}
	if r.BlockNumber != nil {
		receipt.BlockNumber = r.BlockNumber.ToInt().Uint64()
	}
	return receipt, nil
}

// SubscribeAccountsChanged registers handler for account switches. Only one
// subscription is active per adapter; a new one replaces the previous.
// JSON-RPC endpoints have no push notification for this, so the adapter polls
// eth_accounts and reports differences.
func (a *Adapter) SubscribeAccountsChanged(handler AccountsHandler) Subscription {
	sub := &accountsSubscription{
		adapter: a,
		handler: handler,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	a.mu.Lock()
	prev := a.sub
	a.sub = sub
	a.mu.Unlock()
	if prev != nil {
		prev.Unsubscribe()
	}

	go sub.run()
	return sub
}

// Close drops the active subscription and the provider connection.
func (a *Adapter) Close() {
	a.mu.Lock()
	sub := a.sub
	a.sub = nil
	a.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
	if a.provider != nil {
		a.provider.Close()
	}
}

type accountsSubscription struct {
	adapter *Adapter
	handler AccountsHandler
	once    sync.Once
	stop    chan struct{}
	done    chan struct{}
}

func (s *accountsSubscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.stop)
		s.adapter.mu.Lock()
		if s.adapter.sub == s {
			s.adapter.sub = nil
		}
		s.adapter.mu.Unlock()
	})
}

func (s *accountsSubscription) run() {
	defer close(s.done)

	last, err := s.poll()
	if err != nil {
		s.adapter.log.Debug().Err(err).Msg("Initial accounts poll failed")
	}

	ticker := time.NewTicker(s.adapter.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		accounts, err := s.poll()
		if err != nil {
			s.adapter.log.Debug().Err(err).Msg("Accounts poll failed")
			continue
		}
		if sameAccounts(last, accounts) {
			continue
		}
		last = accounts

		select {
		case <-s.stop:
			return
		default:
		}
		s.handler(accounts)
	}
}

func (s *accountsSubscription) poll() ([]common.Address, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.adapter.pollInterval+5*time.Second)
	defer cancel()
	return s.adapter.GetAccounts(ctx)
}

func sameAccounts(a, b []common.Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
