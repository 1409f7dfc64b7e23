package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress("  0x52908400098527886E0F7030069857D2E4169EE7 ")
	require.NoError(t, err)
	assert.Equal(t, "0x52908400098527886e0f7030069857d2e4169ee7", got)

	for _, bad := range []string{"", "0x1234...5678", "0x123", "not-an-address"} {
		_, err := NormalizeAddress(bad)
		assert.Error(t, err, bad)
	}
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress("0xABCDEF0000000000000000000000000000000001", "0xabcdef0000000000000000000000000000000001"))
	assert.False(t, SameAddress("0xabcdef0000000000000000000000000000000001", "0xabcdef0000000000000000000000000000000002"))
}

func TestParsePrice(t *testing.T) {
	d, err := ParsePrice("0.1")
	require.NoError(t, err)
	assert.Equal(t, "0.1", d.String())

	_, err = ParsePrice("-1")
	assert.Error(t, err)
	_, err = ParsePrice("abc")
	assert.Error(t, err)
	_, err = ParsePrice(" ")
	assert.Error(t, err)
}

func TestParsePriceBoundsMagnitude(t *testing.T) {
	d, err := ParsePrice("1.5e3")
	require.NoError(t, err)
	assert.Equal(t, "1500", d.String())

	_, err = ParsePrice(strings.Repeat("9", MaxPriceIntegerDigits))
	assert.NoError(t, err)
	_, err = ParsePrice("0." + strings.Repeat("0", MaxPriceFractionDigits-1) + "1")
	assert.NoError(t, err)

	for _, bad := range []string{
		"1e20000000",
		"1e-20000000",
		"1e30",
		strings.Repeat("9", MaxPriceIntegerDigits) + "e1",
		"0." + strings.Repeat("0", MaxPriceFractionDigits) + "1",
		strings.Repeat("1", MaxPriceLength+1),
	} {
		_, err := ParsePrice(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateNameAndDescription(t *testing.T) {
	assert.NoError(t, ValidateName("Sunset #1"))
	assert.Error(t, ValidateName("   "))
	assert.Error(t, ValidateName(strings.Repeat("a", MaxNameLength+1)))

	assert.NoError(t, ValidateDescription("a picture"))
	assert.Error(t, ValidateDescription(""))
	assert.Error(t, ValidateDescription(strings.Repeat("a", MaxDescriptionLength+1)))
}
