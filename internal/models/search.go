package models

// MonitoredSearch is one owner's subscription to a search term.
type MonitoredSearch struct {
	OwnerID    string
	SearchTerm string
	MaxPrice   *float64 // nil means unbounded above.
	MinPrice   *float64 // nil means 0.
	Exclude    []string
}

// Obligation - a listing that has to be pushed to an owner in the current cycle.
type Obligation struct {
	OwnerID    string
	SearchTerm string
	Listing    Listing
}

// CycleReport summarizes one scrape-and-notify pass.
type CycleReport struct {
	Terms       int
	Refreshed   int
	Unchanged   int
	Failed      int
	Obligations int
	Pushed      int
}
