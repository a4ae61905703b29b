package memory

import (
	"context"
	"fmt"
	"strings"

	"gig-marketplace/internal/core/domain"
	"gig-marketplace/pkg/apperror"
)

// Catalog is an immutable in-memory ports.ListingCatalog.
type Catalog struct {
	listings []domain.Listing
	byID     map[string]int
}

// NewCatalog validates listings and indexes them by id. Catalog order is input order.
func NewCatalog(listings []domain.Listing) (*Catalog, error) {
	c := &Catalog{
		listings: make([]domain.Listing, 0, len(listings)),
		byID:     make(map[string]int, len(listings)),
	}
	for i, l := range listings {
		if strings.TrimSpace(l.ID) == "" {
			return nil, fmt.Errorf("listing %d: missing id", i)
		}
		if _, dup := c.byID[l.ID]; dup {
			return nil, fmt.Errorf("listing %s: duplicate id", l.ID)
		}
		if !l.Kind.Valid() {
			return nil, fmt.Errorf("listing %s: unknown kind %q", l.ID, l.Kind)
		}
		if !l.Location.Valid() {
			return nil, fmt.Errorf("listing %s: location out of range", l.ID)
		}
		if l.Price.IsNegative() {
			return nil, fmt.Errorf("listing %s: negative price", l.ID)
		}
		c.byID[l.ID] = len(c.listings)
		c.listings = append(c.listings, l)
	}
	return c, nil
}

// List returns a copy of the listings of kind, or all listings when kind is empty.
func (c *Catalog) List(ctx context.Context, kind domain.ListingKind) ([]domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(c.listings))
	for _, l := range c.listings {
		if kind == "" || l.Kind == kind {
			out = append(out, l)
		}
	}
	return out, nil
}

// GetByID returns the listing with id or a CAT_001 error.
func (c *Catalog) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i, ok := c.byID[id]
	if !ok {
		return nil, apperror.ErrNotFound("Listing")
	}
	l := c.listings[i]
	return &l, nil
}

// Len returns the number of listings.
func (c *Catalog) Len() int {
	return len(c.listings)
}
