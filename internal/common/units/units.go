package units

import (
	"math/big"

	"github.com/shopspring/decimal"

	"nft-marketplace-backend/internal/common/validation"
)

// WeiDecimals is the exponent between one ether and its base unit.
const WeiDecimals = 18

// EthToWei converts a decimal ETH amount to wei.
//
// The product price*10^18 is computed exactly and rounded to the nearest integer,
// halves away from zero (half-up for the non-negative amounts accepted here).
// Digits beyond the 18th decimal are therefore rounded, not floored.
func EthToWei(price string) (*big.Int, error) {
	d, err := validation.ParsePrice(price)
	if err != nil {
		return nil, err
	}
	return d.Shift(WeiDecimals).Round(0).BigInt(), nil
}

// WeiToEth renders a wei amount as a decimal ETH string.
func WeiToEth(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -WeiDecimals).String()
}
