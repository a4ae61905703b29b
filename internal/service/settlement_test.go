package service

import (
	"context"
	"testing"

	"gig-marketplace/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSimulatedSettler_Settle(t *testing.T) {
	s := NewSimulatedSettler(zerolog.Nop())
	req := ports.SettlementRequest{
		Attempt:      uuid.New(),
		Counterparty: "Alex",
		Amount:       dec("50"),
		Provider:     "GPay",
		Try:          1,
	}

	assert.NoError(t, s.Settle(context.Background(), req))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Settle(ctx, req), context.Canceled)
}
