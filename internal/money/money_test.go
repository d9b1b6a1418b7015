package money_test

import (
	"testing"

	"feeconsole-service/internal/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat_TwoDecimals(t *testing.T) {
	out := money.Format(decimal.RequireFromString("25.5"), "ZMW")
	assert.Equal(t, "ZMW 25.50", out)
}

func TestFormat_DefaultsToZMW(t *testing.T) {
	out := money.Format(decimal.NewFromInt(500), "")
	assert.Contains(t, out, "ZMW")
}

func TestFormat_UnknownCurrencyFallsBack(t *testing.T) {
	out := money.Format(decimal.NewFromInt(10), "NOPE")
	assert.Contains(t, out, "ZMW")
}

func TestFormat_RoundsToCurrencyPrecision(t *testing.T) {
	out := money.Format(decimal.RequireFromString("10.005"), "ZMW")
	assert.Equal(t, "ZMW 10.01", out)
}

func TestFormat_GroupsThousands(t *testing.T) {
	out := money.Format(decimal.RequireFromString("1025"), "ZMW")
	assert.Equal(t, "ZMW 1,025.00", out)
}

func TestFormat_ExactForLargeAmounts(t *testing.T) {
	// well beyond float64's 2^53 integer precision
	out := money.Format(decimal.RequireFromString("9007199254740993.25"), "ZMW")
	assert.Equal(t, "ZMW 9,007,199,254,740,993.25", out)
}

func TestFormat_NegativeAmounts(t *testing.T) {
	out := money.Format(decimal.RequireFromString("-1234.5"), "ZMW")
	assert.Equal(t, "ZMW -1,234.50", out)
}
