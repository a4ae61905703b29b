package memory

import (
	"context"
	"strings"
	"testing"

	"gig-marketplace/internal/core/domain"
	"gig-marketplace/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeed(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)

	assert.Len(t, seed.Workers, 4)
	assert.Len(t, seed.Jobs, 3)
	assert.Len(t, seed.Conversations, 2)

	sarah := seed.Workers[0]
	assert.Equal(t, "sarah-johnson", sarah.ID)
	assert.Equal(t, "Professional Cleaner", sarah.Profession)
	assert.True(t, sarah.Rate.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, domain.GeoPoint{Latitude: 34.0522, Longitude: -118.2437}, sarah.Location)

	msgs, err := seed.Conversations[0].ChatMessages()
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	first := msgs[0].(domain.TextMessage)
	assert.Equal(t, domain.SenderThem, first.Sender)
	assert.Equal(t, "Hello! I'm interested in your cleaning service.", first.Body)
	assert.Equal(t, 10, first.Time.Hour())
}

func TestLoadSeed_Errors(t *testing.T) {
	_, err := LoadSeed(strings.NewReader("workers:\n  - id: a\n    salary: 5\n"))
	assert.Error(t, err, "unknown fields are rejected")

	_, err = LoadSeed(strings.NewReader("workers: [\n"))
	assert.Error(t, err)

	seed, err := LoadSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, seed.Listings())
}

func TestLoadSeedFile(t *testing.T) {
	seed, err := LoadSeedFile("")
	require.NoError(t, err)
	assert.Len(t, seed.Workers, 4)

	_, err = LoadSeedFile("does/not/exist.yaml")
	assert.Error(t, err)
}

func TestConversationRecord_UnknownSender(t *testing.T) {
	rec := ConversationRecord{ID: "x", Messages: []MessageRecord{{From: "bot", Text: "hi"}}}
	_, err := rec.ChatMessages()
	assert.Error(t, err)
}

func TestSeed_Listings(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)

	listings := seed.Listings()
	require.Len(t, listings, 7)
	assert.Equal(t, domain.ListingKindWorker, listings[0].Kind)
	assert.Equal(t, "Sarah Johnson", listings[0].Title)
	assert.Equal(t, domain.ListingKindJob, listings[4].Kind)
	assert.Equal(t, "House Cleaning Service", listings[4].Title)
	assert.Equal(t, "Downtown", listings[4].Area)
	assert.True(t, listings[4].Price.Equal(decimal.NewFromInt(120)))
}

func newSeedCatalog(t *testing.T) *Catalog {
	t.Helper()
	seed, err := DefaultSeed()
	require.NoError(t, err)
	c, err := NewCatalog(seed.Listings())
	require.NoError(t, err)
	return c
}

func TestCatalog_List(t *testing.T) {
	c := newSeedCatalog(t)
	ctx := context.Background()

	all, err := c.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 7)
	assert.Equal(t, 7, c.Len())

	workers, err := c.List(ctx, domain.ListingKindWorker)
	require.NoError(t, err)
	assert.Len(t, workers, 4)

	jobs, err := c.List(ctx, domain.ListingKindJob)
	require.NoError(t, err)
	assert.Len(t, jobs, 3)
	for _, j := range jobs {
		assert.Equal(t, domain.ListingKindJob, j.Kind)
	}
}

func TestCatalog_ListReturnsCopy(t *testing.T) {
	c := newSeedCatalog(t)
	ctx := context.Background()

	all, _ := c.List(ctx, "")
	all[0].Title = "changed"

	again, _ := c.List(ctx, "")
	assert.Equal(t, "Sarah Johnson", again[0].Title)
}

func TestCatalog_GetByID(t *testing.T) {
	c := newSeedCatalog(t)
	ctx := context.Background()

	l, err := c.GetByID(ctx, "moving-help")
	require.NoError(t, err)
	assert.Equal(t, "Moving Help Required", l.Title)

	_, err = c.GetByID(ctx, "nobody")
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestCatalog_CancelledContext(t *testing.T) {
	c := newSeedCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = c.GetByID(ctx, "moving-help")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewCatalog_Invalid(t *testing.T) {
	ok := domain.Listing{ID: "a", Kind: domain.ListingKindWorker, Location: domain.GeoPoint{Latitude: 1, Longitude: 1}}

	tests := []struct {
		name     string
		listings []domain.Listing
	}{
		{"missing id", []domain.Listing{{Kind: domain.ListingKindJob}}},
		{"duplicate id", []domain.Listing{ok, ok}},
		{"bad kind", []domain.Listing{{ID: "b", Kind: "EMPLOYER"}}},
		{"bad location", []domain.Listing{{ID: "c", Kind: domain.ListingKindJob, Location: domain.GeoPoint{Latitude: 100}}}},
		{"negative price", []domain.Listing{{ID: "d", Kind: domain.ListingKindJob, Price: decimal.NewFromInt(-1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.listings)
			assert.Error(t, err)
		})
	}
}
