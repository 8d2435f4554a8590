package broker

import (
	"fmt"
	"strings"
)

// Side is the side of an order and of the executions it produces.
type Side int

const (
	Buy Side = iota
	BuyMinus
	Sell
	SellPlus
	SellShort
	SellShortExempt
)

var sideNames = map[Side]string{
	Buy:             "buy",
	BuyMinus:        "buy_minus",
	Sell:            "sell",
	SellPlus:        "sell_plus",
	SellShort:       "sell_short",
	SellShortExempt: "sell_short_exempt",
}

func (s Side) String() string {
	if n, ok := sideNames[s]; ok {
		return n
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// ParseSide parses the lower-case side name, e.g. "sell_short".
func ParseSide(name string) (Side, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for s, v := range sideNames {
		if v == n {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown order side %q", name)
}

func (s Side) IsBuy() bool { return s == Buy || s == BuyMinus }

// IsSell reports whether s belongs to the sell family.
func (s Side) IsSell() bool {
	return s == Sell || s == SellPlus || s == SellShort || s == SellShortExempt
}

func (s Side) IsShort() bool {
	return s == SellShort || s == SellShortExempt
}

// Sign is +1 for the buy family and -1 for the sell family.
func (s Side) Sign() float64 {
	if s.IsSell() {
		return -1
	}
	return 1
}
