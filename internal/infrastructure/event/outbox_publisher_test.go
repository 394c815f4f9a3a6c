package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

func TestOutboxPublisher_PublishWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits with the transaction", func(t *testing.T) {
		db := setupSQLite(t)
		pub := NewOutboxPublisher(NewEventSerializer())

		err := db.Transaction(func(tx *gorm.DB) error {
			return pub.PublishWithTx(ctx, tx, newTestEvent("a"), newTestEvent("b"))
		})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&models.OutboxEntryModel{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)

		var row models.OutboxEntryModel
		require.NoError(t, db.First(&row).Error)
		assert.Equal(t, shared.OutboxStatusPending, row.Status)
		assert.Contains(t, string(row.Payload), `"data":"test data"`)
	})

	t.Run("rolls back with the transaction", func(t *testing.T) {
		db := setupSQLite(t)
		pub := NewOutboxPublisher(NewEventSerializer())

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := pub.PublishWithTx(ctx, tx, newTestEvent("a")); err != nil {
				return err
			}
			return errors.New("ledger write failed")
		})
		require.Error(t, err)

		var count int64
		require.NoError(t, db.Model(&models.OutboxEntryModel{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("no events is a no-op", func(t *testing.T) {
		db := setupSQLite(t)
		pub := NewOutboxPublisher(NewEventSerializer())
		assert.NoError(t, pub.PublishWithTx(ctx, db))
	})
}

func TestOutboxPublisher_Entries(t *testing.T) {
	pub := NewOutboxPublisher(NewEventSerializer())
	ev := newTestEvent("TestEvent")

	entries, err := pub.Entries(ev)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ev.EventID(), entries[0].EventID)
	assert.Equal(t, shared.OutboxStatusPending, entries[0].Status)
	assert.Contains(t, string(entries[0].Payload), `"data":"test data"`)
	assert.Equal(t, shared.DefaultMaxRetries, entries[0].MaxRetries)

	entries, err = pub.WithMaxRetries(9).Entries(ev)
	require.NoError(t, err)
	assert.Equal(t, 9, entries[0].MaxRetries)
}
