package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

// TransferGas is the gas limit of a plain value transfer.
const TransferGas = 21000

// Provider is the request surface of a wallet: a JSON-RPC endpoint that holds the
// user's accounts and signs on their behalf. *rpc.Client satisfies it.
type Provider interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
	Close()
}

// Dial opens a provider connection. url may be http(s), ws(s) or an IPC path.
func Dial(ctx context.Context, url string) (*rpc.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("empty wallet provider url")
	}
	return rpc.DialContext(ctx, url)
}

// TransactionRequest is a value transfer to be signed by the provider.
type TransactionRequest struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

type ReceiptStatus uint64

const (
	ReceiptFailure ReceiptStatus = 0
	ReceiptSuccess ReceiptStatus = 1
)

func (s ReceiptStatus) String() string {
	if s == ReceiptSuccess {
		return "success"
	}
	return "failure"
}

// Receipt is the confirmation of a mined transaction.
type Receipt struct {
	Status      ReceiptStatus
	TxHash      common.Hash
	BlockNumber uint64
}

func (r *Receipt) Succeeded() bool {
	return r != nil && r.Status == ReceiptSuccess
}
