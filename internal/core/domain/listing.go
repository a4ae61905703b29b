package domain

import "github.com/shopspring/decimal"

// ListingKind distinguishes workers offering services from jobs seeking them.
type ListingKind string

const (
	ListingKindWorker ListingKind = "WORKER"
	ListingKindJob    ListingKind = "JOB"
)

// Valid reports whether k is a known kind.
func (k ListingKind) Valid() bool {
	return k == ListingKindWorker || k == ListingKindJob
}

// Listing is a worker or a job in the read-only catalog.
type Listing struct {
	ID       string          `json:"id"`
	Kind     ListingKind     `json:"kind"`
	Title    string          `json:"title"` // worker name or job title
	Location GeoPoint        `json:"location"`
	Price    decimal.Decimal `json:"price"` // hourly rate for workers, fixed price for jobs

	// Worker attributes
	Profession string  `json:"profession,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	Experience string  `json:"experience,omitempty"`
	AvatarURL  string  `json:"avatar_url,omitempty"`

	// Job attributes
	Area        string `json:"area,omitempty"`
	Description string `json:"description,omitempty"`
	Duration    string `json:"duration,omitempty"`
}

// IsWorker returns true if the listing is a worker profile.
func (l *Listing) IsWorker() bool {
	return l.Kind == ListingKindWorker
}
