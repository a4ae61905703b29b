package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gig-marketplace/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
wallet:
  initial_balance: "200"
payment:
  processing_delay: 10ms
log:
  level: disabled
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runWith(t, context.Background(), testConfig, args...)
}

func runWith(t *testing.T, ctx context.Context, config string, args ...string) (string, string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0o600))

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", path}, args...))
	err := root.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestNearby(t *testing.T) {
	out, _, err := run(t, "nearby", "--kind", "worker")
	require.NoError(t, err)

	assert.Contains(t, out, "sarah-johnson")
	assert.Contains(t, out, "0.9 mi")
	assert.NotContains(t, out, "lisa-chen")
	assert.NotContains(t, out, "house-cleaning")
}

func TestNearby_MovedCenter(t *testing.T) {
	out, _, err := run(t, "nearby", "--lat", "34.4522", "--lon", "-118.7437", "--radius", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "lisa-chen")
	assert.NotContains(t, out, "sarah-johnson")

	_, _, err = run(t, "nearby", "--kind", "robot")
	assert.Error(t, err)
}

func TestWallet_Empty(t *testing.T) {
	out, _, err := run(t, "wallet")
	require.NoError(t, err)
	assert.Contains(t, out, "Balance: $200.00")
	assert.Contains(t, out, "No transactions yet")
}

func TestPay(t *testing.T) {
	out, stderr, err := run(t, "--metrics", "pay", "sarah-johnson", "50", "--provider", "PhonePe")
	require.NoError(t, err)

	assert.Contains(t, out, "Processing $50.00 to sarah-johnson via PhonePe")
	assert.Contains(t, out, "Paid $50.00 to sarah-johnson (transaction #1)")
	assert.Contains(t, out, "Balance: $150.00")
	assert.Contains(t, out, "Chat: You sent $50.00")
	assert.Contains(t, stderr, "gigmarket_payment_completed_total 1")
}

func TestPay_InterruptedDisposesFlow(t *testing.T) {
	slow := `
wallet:
  initial_balance: "200"
payment:
  processing_delay: 1h
log:
  level: disabled
`
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	out, _, err := runWith(t, ctx, slow, "pay", "sarah-johnson", "50")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, out, "Processing $50.00")
	assert.NotContains(t, out, "Paid")

	assert.Equal(t, domain.FlowStageIdle, sess.Payments.State().Stage)
	assert.True(t, sess.Wallet().Balance.Equal(decimal.NewFromInt(200)))
	assert.Empty(t, sess.Wallet().Transactions)
}

func TestPay_Rejected(t *testing.T) {
	_, _, err := run(t, "pay", "sarah-johnson", "500")
	assert.Error(t, err)

	_, _, err = run(t, "pay", "sarah-johnson", "ten")
	assert.Error(t, err)

	_, _, err = run(t, "pay", "nobody", "5")
	assert.Error(t, err)

	_, _, err = run(t, "pay", "sarah-johnson", "5", "--provider", "Cash")
	assert.Error(t, err)
}

func TestChat(t *testing.T) {
	out, _, err := run(t, "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "sarah-johnson")
	assert.Contains(t, out, "james-wilson")

	out, _, err = run(t, "chat", "lisa-chen")
	require.NoError(t, err)
	assert.Contains(t, out, "No messages yet")

	out, _, err = run(t, "chat", "lisa-chen", "Are", "you", "free", "today?")
	require.NoError(t, err)
	assert.Contains(t, out, "me: Are you free today?")

	_, _, err = run(t, "chat", "lisa-chen", "   ")
	assert.Error(t, err)
}
