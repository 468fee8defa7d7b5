package bot

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/Houeta/deal-watch/internal/models"
)

const (
	maxMessageLen     = 4096
	moreFooterReserve = 32
)

func formatPrice(v float64) string {
	if v == 0 {
		return "FREE"
	}

	return "S$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func formatBounds(s models.MonitoredSearch) string {
	var parts []string
	if s.MinPrice != nil {
		parts = append(parts, "min "+formatPrice(*s.MinPrice))
	}
	if s.MaxPrice != nil {
		parts = append(parts, "max "+formatPrice(*s.MaxPrice))
	}
	if len(s.Exclude) > 0 {
		parts = append(parts, "excluding "+strings.Join(s.Exclude, ", "))
	}
	if len(parts) == 0 {
		return "any price"
	}

	return strings.Join(parts, ", ")
}

func absoluteURL(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil || base == nil {
		return ref
	}

	return base.ResolveReference(u).String()
}

// formatAlert renders a pushed listing.
func formatAlert(ob models.Obligation, base *url.URL) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "New listing for %q\n", ob.SearchTerm)
	sb.WriteString(formatListing(ob.Listing))
	sb.WriteString("\n")
	sb.WriteString(absoluteURL(base, ob.Listing.ListingURL))

	return sb.String()
}

// formatListing renders one listing as "title\nprice (was X) · age ago".
func formatListing(l models.Listing) string {
	var sb strings.Builder

	sb.WriteString(l.Title)
	sb.WriteString("\n")
	sb.WriteString(formatPrice(l.Price))
	if l.StrickenPrice != nil {
		fmt.Fprintf(&sb, " (was %s)", formatPrice(*l.StrickenPrice))
	}
	if l.Age != "" {
		fmt.Fprintf(&sb, " · %s ago", l.Age)
	}
	if l.IsBumped {
		sb.WriteString(" · bumped")
	}

	return sb.String()
}

// formatListings renders a numbered list. Entries that would push the message past
// Telegram's length limit are dropped and counted in the "and N more" line, together
// with the omitted listings the caller already cut.
func formatListings(header string, listings []models.Listing, omitted int, base *url.URL) string {
	if len(listings) == 0 && omitted == 0 {
		return header + "\nNo listings."
	}

	var sb strings.Builder
	sb.WriteString(header)
	size := messageLen(header)
	for i, l := range listings {
		entry := fmt.Sprintf("\n\n%d. %s\n%s", i+1, formatListing(l), absoluteURL(base, l.ListingURL))
		if size+messageLen(entry) > maxMessageLen-moreFooterReserve {
			omitted += len(listings) - i
			break
		}
		sb.WriteString(entry)
		size += messageLen(entry)
	}

	if omitted > 0 {
		fmt.Fprintf(&sb, "\n\n...and %d more.", omitted)
	}

	return sb.String()
}

// messageLen counts text the way Telegram does, in UTF-16 code units.
func messageLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}

	return n
}
