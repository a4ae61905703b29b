package metrics

import (
	"testing"
	"time"

	"gig-marketplace/internal/core/domain"
	"gig-marketplace/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.PaymentMetrics = (*PaymentCollector)(nil)

func TestPaymentCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewPaymentCollector(reg)
	require.NoError(t, err)

	c.Started()
	c.Started()
	c.Rejected("insufficient_funds")
	c.Cancelled(domain.FlowStageAppSelection)
	c.Settled("GPay", 2*time.Second)
	c.Failed("Paytm")
	c.Completed(decimal.RequireFromString("50.25"))
	c.Completed(decimal.RequireFromString("24.75"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.started))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rejected.WithLabelValues("insufficient_funds")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cancelled.WithLabelValues("APP_SELECTION")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failed.WithLabelValues("Paytm")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.completed))
	assert.InDelta(t, 75.0, testutil.ToFloat64(c.volume), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(c.settled, "gigmarket_payment_settlement_seconds"))
}

func TestPaymentCollector_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPaymentCollector(reg)
	require.NoError(t, err)

	_, err = NewPaymentCollector(reg)
	assert.Error(t, err)
}
