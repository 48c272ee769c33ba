package command

import (
	"io"
	"strings"
	"testing"

	"outcry/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_NewOrder(t *testing.T) {
	intent, err := Parse("BUY GFD 1000 40 order1")
	require.NoError(t, err)

	order, ok := intent.(NewOrder)
	require.True(t, ok)
	assert.Equal(t, KindNewOrder, intent.Kind())
	assert.Equal(t, common.Buy, order.Side)
	assert.Equal(t, common.GFD, order.TimeInForce)
	assert.Equal(t, uint64(1000), order.Price)
	assert.Equal(t, "40", order.Quantity.String())
	assert.Equal(t, "order1", order.ID)

	intent, err = Parse("  sell   ioc 900 2.5 order2 ")
	require.NoError(t, err)
	order = intent.(NewOrder)
	assert.Equal(t, common.Sell, order.Side)
	assert.Equal(t, common.IOC, order.TimeInForce)
	assert.Equal(t, "2.5", order.Quantity.String())

	converted := order.Order()
	assert.Equal(t, "order2", converted.ID)
	assert.Equal(t, uint64(900), converted.Price)
}

func TestParse_OtherCommands(t *testing.T) {
	intent, err := Parse("CANCEL order1")
	require.NoError(t, err)
	assert.Equal(t, Cancel{ID: "order1"}, intent)

	intent, err = Parse("PRINT")
	require.NoError(t, err)
	assert.Equal(t, Print{}, intent)

	intent, err = Parse("MODIFY order1 SELL 100 5")
	require.NoError(t, err)
	modify, ok := intent.(Modify)
	require.True(t, ok)
	assert.Equal(t, "order1", modify.ID)
	assert.Equal(t, common.Sell, modify.Side)
	assert.Equal(t, uint64(100), modify.Price)
	assert.Equal(t, "5", modify.Quantity.String())
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"unknown operation":   "HOLD GFD 100 1 a",
		"short order":         "BUY GFD 100 1",
		"long order":          "SELL GFD 100 1 a b",
		"bad tif":             "BUY GTC 100 1 a",
		"negative price":      "BUY GFD -100 1 a",
		"fractional price":    "BUY GFD 10.5 1 a",
		"non numeric qty":     "BUY GFD 100 ten a",
		"zero qty":            "BUY GFD 100 0 a",
		"negative qty":        "SELL IOC 100 -3 a",
		"signed qty":          "SELL IOC 100 +5 a",
		"exponent qty":        "BUY GFD 100 1e3 a",
		"negative exponent":   "BUY GFD 100 1E-2 a",
		"huge exponent":       "SELL GFD 100 1e30000000 a",
		"trailing dot qty":    "BUY GFD 100 5. a",
		"over long qty":       "BUY GFD 100 123456789012345678901234567890123 a",
		"modify exponent qty": "MODIFY a BUY 100 1e3",
		"cancel without id":   "CANCEL",
		"cancel extra tokens": "CANCEL a b",
		"modify bad side":     "MODIFY a HOLD 100 1",
		"modify short":        "MODIFY a BUY 100",
		"modify bad price":    "MODIFY a BUY x 1",
		"modify zero qty":     "MODIFY a BUY 100 0",
		"print with args":     "PRINT now",
	}

	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			intent, err := Parse(line)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Nil(t, intent)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("   \t ")
	assert.ErrorIs(t, err, ErrEmpty)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestSource_SkipsBadLines(t *testing.T) {
	input := strings.Join([]string{
		"BUY GFD 1000 40 order1",
		"",
		"garbage",
		"SELL IOC 900 x order2",
		"CANCEL order1",
		"PRINT",
	}, "\n")
	src := NewSource(strings.NewReader(input))

	var kinds []Kind
	for {
		intent, err := src.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		kinds = append(kinds, intent.Kind())
	}

	assert.Equal(t, []Kind{KindNewOrder, KindCancel, KindPrint}, kinds)
}

func TestSource_SkipsOverLongLines(t *testing.T) {
	input := strings.Repeat("x", 70000) + "\n" +
		"BUY GFD 100 " + strings.Repeat("1", MaxLineSize) + " a\n" +
		"PRINT\n" +
		"CANCEL last"
	src := NewSource(strings.NewReader(input))

	intent, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, Print{}, intent)

	// The final line has no terminator and is still read.
	intent, err = src.Next()
	require.NoError(t, err)
	assert.Equal(t, Cancel{ID: "last"}, intent)

	_, err = src.Next()
	assert.Equal(t, io.EOF, err)
}
