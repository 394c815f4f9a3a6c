package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitpay/settlement/internal/infrastructure/persistence/models"
)

func TestGormProcessedEventRepository_MarkProcessed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProcessedEventRepository(db)
	ctx := context.Background()

	first, err := repo.MarkProcessed(ctx, "evt_1", "payment_intent.succeeded")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.MarkProcessed(ctx, "evt_1", "payment_intent.succeeded")
	require.NoError(t, err)
	assert.False(t, again, "redelivery is reported as already processed")

	other, err := repo.MarkProcessed(ctx, "evt_2", "charge.refunded")
	require.NoError(t, err)
	assert.True(t, other)
}

func TestGormProcessedEventRepository_DeleteOlderThan(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProcessedEventRepository(db)
	ctx := context.Background()

	old := models.ProcessedWebhookEventModel{ExternalEventID: "evt_old", EventType: "x", ProcessedAt: time.Now().UTC().AddDate(0, 0, -40)}
	require.NoError(t, db.Create(&old).Error)
	_, err := repo.MarkProcessed(ctx, "evt_new", "x")
	require.NoError(t, err)

	n, err := repo.DeleteOlderThan(ctx, time.Now().UTC().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	again, err := repo.MarkProcessed(ctx, "evt_new", "x")
	require.NoError(t, err)
	assert.False(t, again)
}
