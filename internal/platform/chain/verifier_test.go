package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nft-marketplace-backend/internal/common/errors"
)

var chainID = big.NewInt(1337)

type fakeReader struct {
	receipts map[common.Hash]*types.Receipt
	txs      map[common.Hash]*types.Transaction
	err      error
}

func (f *fakeReader) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (f *fakeReader) TransactionByHash(_ context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	tx, ok := f.txs[hash]
	if !ok {
		return nil, false, ethereum.NotFound
	}
	return tx, false, nil
}

func signedTransfer(t *testing.T, key *ecdsa.PrivateKey, to common.Address, value *big.Int) *types.Transaction {
	t.Helper()
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     0,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(1_000_000_000),
		Gas:       21000,
		To:        &to,
		Value:     value,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	require.NoError(t, err)
	return signed
}

func setup(t *testing.T, value *big.Int, status uint64) (*Verifier, *fakeReader, common.Hash, common.Address, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)
	to := common.HexToAddress("0x00000000000000000000000000000000000a11ce")

	tx := signedTransfer(t, key, to, value)
	reader := &fakeReader{
		receipts: map[common.Hash]*types.Receipt{tx.Hash(): {Status: status, TxHash: tx.Hash(), BlockNumber: big.NewInt(7)}},
		txs:      map[common.Hash]*types.Transaction{tx.Hash(): tx},
	}
	return NewVerifier(reader), reader, tx.Hash(), from, to
}

func lower(a common.Address) string {
	return common.Bytes2Hex(a.Bytes())
}

func TestVerifyTransferSuccess(t *testing.T) {
	price := big.NewInt(500)
	v, _, hash, from, to := setup(t, price, types.ReceiptStatusSuccessful)

	err := v.VerifyTransfer(context.Background(), hash.Hex(), "0x"+lower(from), "0x"+lower(to), price)
	assert.NoError(t, err)
}

func TestVerifyTransferMismatches(t *testing.T) {
	price := big.NewInt(500)
	v, _, hash, from, to := setup(t, price, types.ReceiptStatusSuccessful)
	other := "0x0000000000000000000000000000000000000b0b"

	err := v.VerifyTransfer(context.Background(), hash.Hex(), other, to.Hex(), price)
	assert.Equal(t, apperrors.ErrCodeTransactionUnverified, apperrors.CodeOf(err))

	err = v.VerifyTransfer(context.Background(), hash.Hex(), from.Hex(), other, price)
	assert.Equal(t, apperrors.ErrCodeTransactionUnverified, apperrors.CodeOf(err))

	err = v.VerifyTransfer(context.Background(), hash.Hex(), from.Hex(), to.Hex(), big.NewInt(501))
	assert.Equal(t, apperrors.ErrCodeTransactionUnverified, apperrors.CodeOf(err))
}

func TestVerifyTransferReceiptStates(t *testing.T) {
	price := big.NewInt(1)
	v, reader, hash, from, to := setup(t, price, types.ReceiptStatusFailed)

	err := v.VerifyTransfer(context.Background(), hash.Hex(), from.Hex(), to.Hex(), price)
	assert.Equal(t, apperrors.ErrCodeTransactionReverted, apperrors.CodeOf(err))

	unknown := common.HexToHash("0x01").Hex()
	err = v.VerifyTransfer(context.Background(), unknown, from.Hex(), to.Hex(), price)
	assert.Equal(t, apperrors.ErrCodeTransactionUnverified, apperrors.CodeOf(err))

	err = v.VerifyTransfer(context.Background(), "0xdeadbeef", from.Hex(), to.Hex(), price)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))

	reader.err = errors.New("connection refused")
	err = v.VerifyTransfer(context.Background(), hash.Hex(), from.Hex(), to.Hex(), price)
	assert.Equal(t, apperrors.ErrCodeNetwork, apperrors.CodeOf(err))
}
