package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Houeta/deal-watch/internal/lib/normalize"
	"github.com/Houeta/deal-watch/internal/models"
)

const (
	defaultListCount = 1
	maxListCount     = 20
)

var (
	errNoTerm       = errors.New("search term is missing")
	errUnknownOpt   = errors.New("unknown option")
	errBadCount     = errors.New("count must be a positive integer")
	errBadRangeArgs = errors.New("expected a term followed by two prices")
)

// parseAddArgs reads "<term> [min=N] [max=N] [exclude=a,b]". Options may appear anywhere;
// every other word belongs to the term.
func parseAddArgs(payload string) (models.MonitoredSearch, error) {
	var (
		search models.MonitoredSearch
		words  []string
	)

	for _, field := range strings.Fields(payload) {
		key, value, isOpt := strings.Cut(field, "=")
		if !isOpt {
			words = append(words, field)
			continue
		}

		switch strings.ToLower(key) {
		case "min":
			v, err := normalize.PriceToFloat(value)
			if err != nil {
				return models.MonitoredSearch{}, fmt.Errorf("min: %w", err)
			}
			search.MinPrice = &v
		case "max":
			v, err := normalize.PriceToFloat(value)
			if err != nil {
				return models.MonitoredSearch{}, fmt.Errorf("max: %w", err)
			}
			search.MaxPrice = &v
		case "exclude":
			for _, w := range strings.Split(value, ",") {
				if w = strings.TrimSpace(w); w != "" {
					search.Exclude = append(search.Exclude, w)
				}
			}
		default:
			return models.MonitoredSearch{}, fmt.Errorf("%w %q", errUnknownOpt, key)
		}
	}

	if len(words) == 0 {
		return models.MonitoredSearch{}, errNoTerm
	}
	search.SearchTerm = strings.Join(words, " ")

	return search, nil
}

// parseTermCount reads "<term> [n]". A trailing integer is the count.
func parseTermCount(payload string) (string, int, error) {
	fields := strings.Fields(payload)
	count := defaultListCount

	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
			if n < 1 {
				return "", 0, errBadCount
			}
			count = min(n, maxListCount)
			fields = fields[:len(fields)-1]
		}
	}

	if len(fields) == 0 {
		return "", 0, errNoTerm
	}

	return strings.Join(fields, " "), count, nil
}

// parseRangeArgs reads "<term> <low> <high>".
func parseRangeArgs(payload string) (string, float64, float64, error) {
	fields := strings.Fields(payload)
	if len(fields) < 3 { //nolint:mnd // term + two bounds
		return "", 0, 0, errBadRangeArgs
	}

	low, err := normalize.PriceToFloat(fields[len(fields)-2])
	if err != nil {
		return "", 0, 0, errBadRangeArgs
	}
	high, err := normalize.PriceToFloat(fields[len(fields)-1])
	if err != nil {
		return "", 0, 0, errBadRangeArgs
	}
	if low > high {
		low, high = high, low
	}

	return strings.Join(fields[:len(fields)-2], " "), low, high, nil
}
