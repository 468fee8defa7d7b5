package models

import "time"

// Snapshot - the listings observed for one search term during the latest cycle.
type Snapshot struct {
	Term      string
	PageHash  string
	Listings  []Listing
	UpdatedAt time.Time
}
