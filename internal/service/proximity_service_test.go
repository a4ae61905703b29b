package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"gig-marketplace/internal/core/domain"
	"gig-marketplace/internal/core/ports"
	"gig-marketplace/internal/core/ports/mocks"
	"gig-marketplace/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var searchCenter = domain.GeoPoint{Latitude: 34.0622, Longitude: -118.2537}

func testListings() []domain.Listing {
	return []domain.Listing{
		{ID: "w1", Kind: domain.ListingKindWorker, Title: "Nearby Plumber", Location: domain.GeoPoint{Latitude: 34.0522, Longitude: -118.2437}},
		{ID: "w2", Kind: domain.ListingKindWorker, Title: "Far Electrician", Location: domain.GeoPoint{Latitude: 34.4522, Longitude: -118.7437}},
		{ID: "j1", Kind: domain.ListingKindJob, Title: "Fix Leaking Faucet", Location: domain.GeoPoint{Latitude: 34.0407, Longitude: -118.2468}},
		{ID: "j2", Kind: domain.ListingKindJob, Title: "Paint Bedroom", Location: domain.GeoPoint{Latitude: 34.1478, Longitude: -118.1445}},
		{ID: "w3", Kind: domain.ListingKindWorker, Title: "Same Spot", Location: searchCenter},
	}
}

func ids(results []domain.ProximityResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Listing.ID)
	}
	return out
}

// ==================== Filter Tests ====================

func TestFilter_IncludesNearExcludesFar(t *testing.T) {
	results := Filter(searchCenter, 15, testListings())

	assert.Equal(t, []string{"w1", "j1", "j2", "w3"}, ids(results))
	assert.InDelta(t, 0.89, results[0].DistanceMiles, 0.05)
	assert.Equal(t, 0.0, results[3].DistanceMiles)
}

func TestFilter_HalfCircumferenceRadiusIncludesAll(t *testing.T) {
	listings := append(testListings(),
		domain.Listing{
			ID:       "antipode",
			Kind:     domain.ListingKindJob,
			Location: domain.GeoPoint{Latitude: -searchCenter.Latitude, Longitude: searchCenter.Longitude + 180},
		},
		domain.Listing{
			ID:       "near-antipode",
			Kind:     domain.ListingKindJob,
			Location: domain.GeoPoint{Latitude: 88.5, Longitude: 0.5},
		},
	)
	radius := math.Ceil(math.Pi * domain.EarthRadiusMiles)

	for _, center := range []domain.GeoPoint{searchCenter, {Latitude: -88.5, Longitude: -179.5}} {
		results := Filter(center, radius, listings)
		require.Len(t, results, len(listings))
		for _, r := range results {
			assert.False(t, math.IsNaN(r.DistanceMiles), r.Listing.ID)
			assert.LessOrEqual(t, r.DistanceMiles, radius)
		}
	}
}

func TestFilter_PreservesInputOrder(t *testing.T) {
	listings := testListings()
	listings[0], listings[2] = listings[2], listings[0]

	results := Filter(searchCenter, 15, listings)
	assert.Equal(t, []string{"j1", "w1", "j2", "w3"}, ids(results))
}

func TestFilter_InclusiveBoundary(t *testing.T) {
	listings := testListings()
	exact := domain.Distance(searchCenter, listings[0].Location)

	results := Filter(searchCenter, exact, listings[:1])
	assert.Len(t, results, 1)

	results = Filter(searchCenter, math.Nextafter(exact, 0), listings[:1])
	assert.Empty(t, results)
}

func TestFilter_Monotonic(t *testing.T) {
	listings := testListings()
	radii := []float64{0.5, 1, 5, 10, 15, 40, 100}

	for i := 0; i < len(radii)-1; i++ {
		small := ids(Filter(searchCenter, radii[i], listings))
		large := ids(Filter(searchCenter, radii[i+1], listings))
		assert.Subset(t, large, small, "radius %v vs %v", radii[i], radii[i+1])
	}
}

func TestFilter_Idempotent(t *testing.T) {
	listings := testListings()
	assert.Equal(t, Filter(searchCenter, 15, listings), Filter(searchCenter, 15, listings))
}

func TestFilter_Empty(t *testing.T) {
	results := Filter(searchCenter, 15, nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

// ==================== Search Tests ====================

func TestProximityService_Search_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	catalog := mocks.NewMockListingCatalog(ctrl)
	svc := NewProximityService(catalog, zerolog.Nop())
	ctx := context.Background()

	var workers []domain.Listing
	for _, l := range testListings() {
		if l.IsWorker() {
			workers = append(workers, l)
		}
	}
	catalog.EXPECT().List(ctx, domain.ListingKindWorker).Return(workers, nil)

	results, err := svc.Search(ctx, ports.SearchQuery{
		Center:      searchCenter,
		RadiusMiles: 15,
		Kind:        domain.ListingKindWorker,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"w1", "w3"}, ids(results))
}

func TestProximityService_Search_InvalidQuery(t *testing.T) {
	tests := []struct {
		name string
		q    ports.SearchQuery
		code string
	}{
		{"zero radius", ports.SearchQuery{Center: searchCenter, RadiusMiles: 0}, apperror.CodeInvalidRadius},
		{"negative radius", ports.SearchQuery{Center: searchCenter, RadiusMiles: -5}, apperror.CodeInvalidRadius},
		{"nan radius", ports.SearchQuery{Center: searchCenter, RadiusMiles: math.NaN()}, apperror.CodeInvalidRadius},
		{"infinite radius", ports.SearchQuery{Center: searchCenter, RadiusMiles: math.Inf(1)}, apperror.CodeInvalidRadius},
		{"bad latitude", ports.SearchQuery{Center: domain.GeoPoint{Latitude: 91}, RadiusMiles: 5}, apperror.CodeInvalidCoordinates},
		{"bad kind", ports.SearchQuery{Center: searchCenter, RadiusMiles: 5, Kind: "EMPLOYER"}, apperror.CodeInvalidKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			// Catalog must not be consulted for an invalid query.
			svc := NewProximityService(mocks.NewMockListingCatalog(ctrl), zerolog.Nop())

			results, err := svc.Search(context.Background(), tt.q)
			assert.Nil(t, results)
			assert.True(t, apperror.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestProximityService_Search_CatalogError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	catalog := mocks.NewMockListingCatalog(ctrl)
	svc := NewProximityService(catalog, zerolog.Nop())
	catalog.EXPECT().List(gomock.Any(), domain.ListingKind("")).Return(nil, errors.New("seed unreadable"))

	_, err := svc.Search(context.Background(), ports.SearchQuery{Center: searchCenter, RadiusMiles: 15})
	assert.True(t, apperror.Is(err, apperror.CodeInternal))
}
