package command

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"outcry/internal/common"

	"github.com/shopspring/decimal"
)

var (
	ErrMalformed = errors.New("malformed command")
	ErrEmpty     = errors.New("empty command")
)

// Quantities are plain base-10 numbers: no sign, no exponent.
var quantityPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

const maxQuantityLen = 32

// Token counts per command.
const (
	orderTokens  = 5
	cancelTokens = 2
	modifyTokens = 5
	printTokens  = 1
)

// Parse reads a single protocol line:
//
//	BUY|SELL <IOC|GFD> <price> <qty> <id>
//	CANCEL <id>
//	MODIFY <id> <BUY|SELL> <price> <qty>
//	PRINT
//
// Keywords are case-insensitive. Any error wraps ErrMalformed, except for a
// blank line which returns ErrEmpty.
func Parse(line string) (Intent, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, ErrEmpty
	}

	switch op := strings.ToUpper(tokens[0]); op {
	case "BUY", "SELL":
		return parseNewOrder(tokens)
	case "CANCEL":
		if len(tokens) != cancelTokens {
			return nil, tokenCountError(op, cancelTokens, len(tokens))
		}
		return Cancel{ID: tokens[1]}, nil
	case "MODIFY":
		return parseModify(tokens)
	case "PRINT":
		if len(tokens) != printTokens {
			return nil, tokenCountError(op, printTokens, len(tokens))
		}
		return Print{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", ErrMalformed, tokens[0])
	}
}

func parseNewOrder(tokens []string) (Intent, error) {
	if len(tokens) != orderTokens {
		return nil, tokenCountError(tokens[0], orderTokens, len(tokens))
	}

	side, _ := common.ParseSide(tokens[0])
	tif, ok := common.ParseTimeInForce(tokens[1])
	if !ok {
		return nil, fmt.Errorf("%w: unknown time in force %q", ErrMalformed, tokens[1])
	}
	price, err := parsePrice(tokens[2])
	if err != nil {
		return nil, err
	}
	qty, err := parseQuantity(tokens[3])
	if err != nil {
		return nil, err
	}

	return NewOrder{
		Side:        side,
		TimeInForce: tif,
		Price:       price,
		Quantity:    qty,
		ID:          tokens[4],
	}, nil
}

func parseModify(tokens []string) (Intent, error) {
	if len(tokens) != modifyTokens {
		return nil, tokenCountError(tokens[0], modifyTokens, len(tokens))
	}

	side, ok := common.ParseSide(tokens[2])
	if !ok {
		return nil, fmt.Errorf("%w: unknown side %q", ErrMalformed, tokens[2])
	}
	price, err := parsePrice(tokens[3])
	if err != nil {
		return nil, err
	}
	qty, err := parseQuantity(tokens[4])
	if err != nil {
		return nil, err
	}

	return Modify{
		ID:       tokens[1],
		Side:     side,
		Price:    price,
		Quantity: qty,
	}, nil
}

func parsePrice(token string) (uint64, error) {
	price, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid price %q", ErrMalformed, token)
	}
	return price, nil
}

func parseQuantity(token string) (decimal.Decimal, error) {
	if len(token) > maxQuantityLen || !quantityPattern.MatchString(token) {
		return decimal.Zero, fmt.Errorf("%w: invalid quantity %q", ErrMalformed, token)
	}
	qty, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid quantity %q", ErrMalformed, token)
	}
	if !qty.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: quantity %q must be positive", ErrMalformed, token)
	}
	return qty, nil
}

func tokenCountError(op string, want, got int) error {
	return fmt.Errorf("%w: %s takes %d tokens, got %d", ErrMalformed, strings.ToUpper(op), want, got)
}
