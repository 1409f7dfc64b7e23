package validation

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	MaxNameLength        = 200
	MaxDescriptionLength = 1000

	MinNameLength        = 1
	MinDescriptionLength = 1

	// MaxPriceDecimals is the precision of the chain's base unit.
	MaxPriceDecimals = 18

	// Bounds on a parsed price. Scientific notation lets a short string carry a
	// huge exponent, so the digit counts are checked on the parsed value.
	MaxPriceLength         = 64
	MaxPriceIntegerDigits  = 20
	MaxPriceFractionDigits = 2 * MaxPriceDecimals
)

// NormalizeAddress checks that s is a 20-byte hex address and returns it lowercased.
// Records are keyed by the lowercased form.
func NormalizeAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("address cannot be empty")
	}
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("invalid wallet address: %s", s)
	}
	return strings.ToLower(common.HexToAddress(s).Hex()), nil
}

// SameAddress compares two addresses case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ValidateName checks an NFT name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) < MinNameLength {
		return fmt.Errorf("name must be at least %d characters long", MinNameLength)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name cannot exceed %d characters", MaxNameLength)
	}
	return nil
}

// ValidateDescription checks an NFT description.
func ValidateDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("description cannot be empty")
	}
	if len(description) < MinDescriptionLength {
		return fmt.Errorf("description must be at least %d characters long", MinDescriptionLength)
	}
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("description cannot exceed %d characters", MaxDescriptionLength)
	}
	return nil
}

// ParsePrice parses a decimal ETH amount. Negative values are rejected, as are
// amounts with more than MaxPriceIntegerDigits whole digits or more than
// MaxPriceFractionDigits decimal places.
func ParsePrice(price string) (decimal.Decimal, error) {
	price = strings.TrimSpace(price)
	if price == "" {
		return decimal.Zero, fmt.Errorf("price cannot be empty")
	}
	if len(price) > MaxPriceLength {
		return decimal.Zero, fmt.Errorf("price cannot exceed %d characters", MaxPriceLength)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", price, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("price cannot be negative")
	}

	exp := int64(d.Exponent())
	if exp < -MaxPriceFractionDigits {
		return decimal.Zero, fmt.Errorf("price cannot have more than %d decimal places", MaxPriceFractionDigits)
	}
	if exp > 0 && int64(len(d.Coefficient().String()))+exp > MaxPriceIntegerDigits {
		return decimal.Zero, fmt.Errorf("price cannot exceed %d whole digits", MaxPriceIntegerDigits)
	}
	return d, nil
}
