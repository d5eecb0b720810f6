package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/tx-engine/internal/engine"
)

// decimalPrecision is the number of fractional digits in reported balances.
const decimalPrecision = 4

// Write renders one row per account to w, preceded by the header. Balances
// are truncated, never rounded, and rendering the same accounts twice yields
// identical bytes.
func Write(w io.Writer, accounts []*engine.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, account := range accounts {
		record := []string{
			strconv.FormatUint(uint64(account.Client), 10),
			FormatBalance(account.Available),
			FormatBalance(account.Held),
			FormatBalance(account.Total),
			strconv.FormatBool(account.Locked),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write account %d: %w", account.Client, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatBalance truncates toward zero to four fractional digits, rendering
// minimal digits but always at least one: 1.5 not 1.50, 0.0 not 0.
func FormatBalance(value float64) string {
	s := decimal.NewFromFloat(value).Truncate(decimalPrecision).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
