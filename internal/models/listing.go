package models

import "sort"

// Listing is one marketplace item parsed from a search results page.
type Listing struct {
	ListingURL    string
	Title         string
	Price         float64
	StrickenPrice *float64 // StrickenPrice is the crossed-out original price, nil when not shown.
	SellerURL     string
	Age           string // Age is the caption as shown, without the trailing " ago".
	AgeHours      float64
	IsBumped      bool
}

// SortByAge orders listings most recent first. Equal ages keep their original order.
func SortByAge(listings []Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].AgeHours < listings[j].AgeHours
	})
}
