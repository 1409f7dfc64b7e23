package wallet

import (
	"errors"
	"net"

	"github.com/ethereum/go-ethereum/rpc"

	apperrors "nft-marketplace-backend/internal/common/errors"
)

// Error codes reported by browser-style wallet providers (EIP-1193) and JSON-RPC.
const (
	codeUserRejected   = 4001
	codeRequestPending = -32002
	codeInternal       = -32603
	codeMethodNotFound = -32601
)

func providerCode(err error) (int, bool) {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode(), true
	}
	return 0, false
}

func isMethodNotFound(err error) bool {
	code, ok := providerCode(err)
	return ok && code == codeMethodNotFound
}

func errProviderUnavailable(method string) *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeProviderUnavailable, "wallet provider is not available").
		WithDetail("method", method)
}

// mapProviderError converts a provider failure into the typed taxonomy.
// Codes without a dedicated class fall back to the given code.
func mapProviderError(err error, method string, fallback apperrors.ErrorCode) *apperrors.AppError {
	if code, ok := providerCode(err); ok {
		switch code {
		case codeUserRejected:
			return apperrors.Wrap(err, apperrors.ErrCodeUserRejected, "request rejected by the user").
				WithDetail("method", method)
		case codeRequestPending:
			return apperrors.Wrap(err, apperrors.ErrCodeRequestPending, "wallet is already processing a request").
				WithDetail("method", method)
		case codeInternal:
			return apperrors.Wrap(err, apperrors.ErrCodeProviderInternalError, "wallet provider internal error").
				WithDetail("method", method)
		}
		return apperrors.Wrap(err, fallback, "wallet provider request failed").
			WithDetail("method", method).
			WithDetail("provider_code", code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, rpc.ErrClientQuit) {
		return apperrors.Wrap(err, apperrors.ErrCodeProviderUnavailable, "wallet provider is not reachable").
			WithDetail("method", method)
	}
	return apperrors.Wrap(err, fallback, "wallet provider request failed").
		WithDetail("method", method)
}
