package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidPrice is returned when a price string does not hold a usable amount.
var ErrInvalidPrice = errors.New("invalid price")

const freeToken = "FREE"

// PriceToFloat converts a display price like "S$1,234.50" or "FREE" into a number.
func PriceToFloat(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	if strings.EqualFold(raw, freeToken) {
		return 0, nil
	}

	// Drop the currency prefix: everything before the first digit or dot.
	cleaned := strings.TrimLeftFunc(raw, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != '-'
	})
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidPrice, s, err)
	}

	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidPrice, s)
	}

	return price, nil
}
