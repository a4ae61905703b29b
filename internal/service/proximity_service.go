package service

import (
	"context"
	"fmt"
	"math"

	"gig-marketplace/internal/core/domain"
	"gig-marketplace/internal/core/ports"
	"gig-marketplace/pkg/apperror"

	"github.com/rs/zerolog"
)

// Filter annotates listings with their distance from center and keeps those
// within radiusMiles (inclusive). Input order is preserved.
func Filter(center domain.GeoPoint, radiusMiles float64, listings []domain.Listing) []domain.ProximityResult {
	results := make([]domain.ProximityResult, 0, len(listings))
	for _, l := range listings {
		d := domain.Distance(center, l.Location)
		if d <= radiusMiles {
			results = append(results, domain.ProximityResult{Listing: l, DistanceMiles: d})
		}
	}
	return results
}

// ProximityService searches the catalog around a point.
// It holds no per-search state; every call recomputes from the catalog.
type ProximityService struct {
	catalog ports.ListingCatalog
	log     zerolog.Logger
}

// NewProximityService creates a new ProximityService.
func NewProximityService(catalog ports.ListingCatalog, log zerolog.Logger) *ProximityService {
	return &ProximityService{catalog: catalog, log: log}
}

// Search validates q and returns the matching listings in catalog order.
func (s *ProximityService) Search(ctx context.Context, q ports.SearchQuery) ([]domain.ProximityResult, error) {
	if math.IsNaN(q.RadiusMiles) || math.IsInf(q.RadiusMiles, 0) || q.RadiusMiles <= 0 {
		return nil, apperror.ErrInvalidRadius()
	}
	if !q.Center.Valid() {
		return nil, apperror.ErrInvalidCoordinates()
	}
	if q.Kind != "" && !q.Kind.Valid() {
		return nil, apperror.ErrInvalidKind(string(q.Kind))
	}

	listings, err := s.catalog.List(ctx, q.Kind)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list catalog: %w", err))
	}

	results := Filter(q.Center, q.RadiusMiles, listings)

	s.log.Debug().
		Float64("lat", q.Center.Latitude).
		Float64("lon", q.Center.Longitude).
		Float64("radius_miles", q.RadiusMiles).
		Str("kind", string(q.Kind)).
		Int("candidates", len(listings)).
		Int("matches", len(results)).
		Msg("proximity search")

	return results, nil
}
