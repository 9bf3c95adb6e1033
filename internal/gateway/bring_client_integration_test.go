//go:build integration

package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aasan/postgang/internal/config"
)

func TestBringClient_Integration(t *testing.T) {
	config.LoadDotEnv()
	cfg, err := config.Load(context.Background())
	require.NoError(t, err)

	creds := cfg.Credentials()
	if err := creds.Validate(); err != nil {
		t.Fatalf("integration tests need POSTGANG_API_UID and POSTGANG_API_KEY (env or .env): %v", err)
	}

	client := NewBringClient(creds)

	t.Run("fetches delivery dates for Oslo", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// the response depends on the day the test runs; only the call itself is checked
		_, err := client.DeliveryDates(ctx, "0357")
		assert.NoError(t, err)
	})
}
