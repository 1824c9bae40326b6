package chain

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// Coin is an amount of a single denom. Amount is kept as a decimal string, which is how
// the chain reports it.
type Coin struct {
	Denom  string
	Amount string
}

func (c Coin) String() string {
	return c.Amount + c.Denom
}

// Printable formats micro denoms ("unois") as whole units with 6 decimals ("1.5 NOIS").
// Other denoms are returned as amount+denom.
func (c Coin) Printable() string {
	amount, ok := c.units()
	if !ok {
		return c.String()
	}
	ticker := strings.ToUpper(c.Denom[1:])
	return trimDecimal(amount.FloatString(6)) + " " + ticker
}

// Units returns the amount in whole units, dividing micro denoms by 10^6. The second return
// value is false if the amount is not a number.
func (c Coin) Units() (float64, bool) {
	if amount, ok := c.units(); ok {
		f, _ := amount.Float64()
		return f, true
	}
	amount, ok := new(big.Rat).SetString(orZero(c.Amount))
	if !ok {
		return 0, false
	}
	f, _ := amount.Float64()
	return f, true
}

func (c Coin) units() (*big.Rat, bool) {
	if !strings.HasPrefix(c.Denom, "u") || len(c.Denom) < 2 {
		return nil, false
	}
	amount, ok := new(big.Rat).SetString(orZero(c.Amount))
	if !ok {
		return nil, false
	}
	return amount.Quo(amount, big.NewRat(1_000_000, 1)), true
}

// Fee is the fee attached to a transaction.
type Fee struct {
	Amount   []Coin
	GasLimit uint64
}

// GasPrice is a price per unit of gas in a single denom.
type GasPrice struct {
	Amount *big.Rat
	Denom  string
}

var gasPriceRegexp = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)([a-zA-Z][a-zA-Z0-9/:._-]{2,127})$`)

// ParseGasPrice parses strings such as "0.025unois".
func ParseGasPrice(s string) (GasPrice, error) {
	m := gasPriceRegexp.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return GasPrice{}, fmt.Errorf("invalid gas price %q, expected <amount><denom> e.g. 0.025unois", s)
	}
	amount, ok := new(big.Rat).SetString(m[1])
	if !ok {
		return GasPrice{}, fmt.Errorf("invalid gas price amount %q", m[1])
	}
	return GasPrice{Amount: amount, Denom: m[2]}, nil
}

func (g GasPrice) String() string {
	return trimDecimal(g.Amount.FloatString(18)) + g.Denom
}

// CalculateFee returns the fee for the given gas limit, rounding the amount up.
func CalculateFee(gasLimit uint64, price GasPrice) Fee {
	total := new(big.Rat).Mul(new(big.Rat).SetInt(new(big.Int).SetUint64(gasLimit)), price.Amount)
	// ceil(num/denom)
	quo, rem := new(big.Int).QuoRem(total.Num(), total.Denom(), new(big.Int))
	if rem.Sign() > 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return Fee{
		Amount:   []Coin{{Denom: price.Denom, Amount: quo.String()}},
		GasLimit: gasLimit,
	}
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func trimDecimal(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
