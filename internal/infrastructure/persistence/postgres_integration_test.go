//go:build integration

package persistence_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinvoice "github.com/transitpay/settlement/internal/application/invoice"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/shared"
	"github.com/transitpay/settlement/internal/infrastructure/migration"
	"github.com/transitpay/settlement/internal/infrastructure/persistence"
	"github.com/transitpay/settlement/internal/infrastructure/persistence/models"
	"github.com/transitpay/settlement/internal/testutil"
)

func TestPostgres_InvoiceLedger(t *testing.T) {
	pg := testutil.NewPostgresDB(t)
	st := testutil.NewSettlementOn(t, pg.DB)
	ledger := appinvoice.NewLedgerService(appinvoice.LedgerServiceConfig{Scope: st.Scope, Reads: st.Repos})
	ctx := testutil.ContextWithTimeout(t, 2*time.Minute)

	create := func(t *testing.T, number string, total int64) *appinvoice.InvoiceResponse {
		t.Helper()
		inv, err := ledger.CreateInvoice(ctx, appinvoice.CreateInvoiceRequest{
			InvoiceNumber: number,
			FacilityRef:   "fac_pg",
			BillingEmail:  "ap@pg.example",
			Currency:      "usd",
			TotalAmount:   total,
			DueDate:       time.Now().AddDate(0, 1, 0),
		})
		require.NoError(t, err)
		return inv
	}

	t.Run("duplicate invoice number", func(t *testing.T) {
		create(t, "PG-DUP", 5000)
		_, err := ledger.CreateInvoice(ctx, appinvoice.CreateInvoiceRequest{
			InvoiceNumber: "PG-DUP",
			FacilityRef:   "fac_pg",
			Currency:      "usd",
			TotalAmount:   5000,
			DueDate:       time.Now().AddDate(0, 1, 0),
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("concurrent payments serialize on the invoice row", func(t *testing.T) {
		inv := create(t, "PG-CONC", 10000)

		const workers = 4
		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = ledger.RecordPayment(ctx, inv.ID, appinvoice.RecordPaymentRequest{
					Amount:    2500,
					Method:    "ach",
					Reference: fmt.Sprintf("ACH-%d", i),
				})
			}(i)
		}
		wg.Wait()
		for _, err := range errs {
			require.NoError(t, err)
		}

		got, err := ledger.GetInvoice(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), got.AmountPaid)
		assert.Zero(t, got.AmountDue)
		assert.Equal(t, string(invoice.StatusPaid), got.Status)

		entries, err := ledger.ListPayments(ctx, inv.ID)
		require.NoError(t, err)
		assert.Len(t, entries, workers)

		_, err = ledger.RecordPayment(ctx, inv.ID, appinvoice.RecordPaymentRequest{Amount: 1, Method: "check"})
		require.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("reversal restores the balance", func(t *testing.T) {
		inv := create(t, "PG-REV", 8000)
		paid, err := ledger.RecordPayment(ctx, inv.ID, appinvoice.RecordPaymentRequest{Amount: 8000, Method: "wire", Reference: "W-1"})
		require.NoError(t, err)

		reversal, err := ledger.RemovePayment(ctx, paid.ID, "bounced")
		require.NoError(t, err)
		assert.Equal(t, int64(-8000), reversal.Amount)

		got, err := ledger.GetInvoice(ctx, inv.ID)
		require.NoError(t, err)
		assert.Zero(t, got.AmountPaid)
		assert.Equal(t, int64(8000), got.AmountDue)
		assert.Equal(t, 3, got.Version)
	})

	t.Run("outbox rows commit with the ledger", func(t *testing.T) {
		var count int64
		require.NoError(t, pg.DB.Model(&models.OutboxEntryModel{}).
			Where("event_type = ?", invoice.EventTypePaymentReceived).
			Count(&count).Error)
		// Four concurrent payments plus the wire payment.
		assert.Equal(t, int64(5), count)
	})
}

func TestPostgres_ProcessedWebhookEvents(t *testing.T) {
	pg := testutil.NewPostgresDB(t)
	repo := persistence.NewGormProcessedEventRepository(pg.DB)
	ctx := context.Background()

	first, err := repo.MarkProcessed(ctx, "evt_pg_1", "payment_intent.succeeded")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.MarkProcessed(ctx, "evt_pg_1", "payment_intent.succeeded")
	require.NoError(t, err)
	assert.False(t, again, "a redelivered event id is not applied twice")

	kept, err := repo.DeleteOlderThan(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, kept)

	pruned, err := repo.DeleteOlderThan(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)
}

func TestPostgres_MigrationsRoundTrip(t *testing.T) {
	pg := testutil.NewPostgresDB(t)

	m, err := migration.New(pg.SqlDB, "", zap.NewNop())
	require.NoError(t, err)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.NotZero(t, version)
	assert.False(t, dirty)

	require.NoError(t, m.Down())
	assert.False(t, pg.DB.Migrator().HasTable("invoices"))

	require.NoError(t, m.Up())
	for _, table := range []string{"payment_intents", "refunds", "payment_methods", "invoices", "invoice_payments", "processed_webhook_events", "notification_logs", "outbox_events"} {
		assert.True(t, pg.DB.Migrator().HasTable(table), table)
	}
}
