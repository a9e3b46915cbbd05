package sink

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// USDCDecimals is the number of decimal places in one USDC token.
const USDCDecimals = 6

// DisbursementSink submits a payout to the vault. Implementations must
// be safe for concurrent use. A non-empty transaction ID is returned
// only when the vault accepted the disbursement.
type DisbursementSink interface {
	// Name returns the sink name for logging
	Name() string

	// Disburse moves amountUnits (smallest USDC unit) to the address
	Disburse(ctx context.Context, toAddress string, amountUnits int64, reason string) (string, error)
}

// ToUnits converts a whole-token USDC amount string (e.g. "8200" or
// "8200.50") to the smallest on-chain unit.
func ToUnits(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	if strings.HasPrefix(amount, "-") {
		return 0, fmt.Errorf("amount cannot be negative: %s", amount)
	}

	whole := amount
	frac := ""
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		whole, frac = amount[:i], amount[i+1:]
	}
	if len(frac) > USDCDecimals {
		return 0, fmt.Errorf("amount has more than %d decimal places: %s", USDCDecimals, amount)
	}
	frac = frac + strings.Repeat("0", USDCDecimals-len(frac))

	if whole == "" {
		whole = "0"
	}
	wholeUnits, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if wholeUnits > math.MaxInt64/1_000_000 {
		return 0, fmt.Errorf("amount too large: %s", amount)
	}
	fracUnits, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return wholeUnits*1_000_000 + fracUnits, nil
}
