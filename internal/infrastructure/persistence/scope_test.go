package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitpay/settlement/internal/application/uow"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/infrastructure/event"
	"github.com/transitpay/settlement/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

func newTestScope(t *testing.T) (*gorm.DB, *GormTransactionScope) {
	t.Helper()
	db := setupTestDB(t)
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	return db, NewGormTransactionScope(db, event.NewOutboxPublisher(serializer))
}

func recordInScope(ctx context.Context, repos uow.Repositories, inv *invoice.Invoice, amount int64) error {
	locked, err := repos.Invoices().FindByIDForUpdate(ctx, inv.ID)
	if err != nil {
		return err
	}
	entries, err := repos.Payments().FindByInvoice(ctx, inv.ID)
	if err != nil {
		return err
	}
	p, _, err := locked.AddPayment(invoice.NewPaymentInput{Amount: amount, Method: invoice.MethodCheck}, entries, time.Now())
	if err != nil {
		return err
	}
	if err := repos.Payments().Create(ctx, p); err != nil {
		return err
	}
	if err := repos.Invoices().Save(ctx, locked); err != nil {
		return err
	}
	return uow.RecordEvents(ctx, repos, locked)
}

func TestGormTransactionScope_Commit(t *testing.T) {
	db, scope := newTestScope(t)
	ctx := context.Background()

	inv := newTestInvoice(t, "INV-TX1", time.Now().AddDate(0, 0, 30))
	require.NoError(t, NewGormInvoiceRepository(db).Create(ctx, inv))

	err := scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		return recordInScope(ctx, repos, inv, 4000)
	})
	require.NoError(t, err)

	got, err := NewGormInvoiceRepository(db).FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), got.AmountPaid)
	assert.Equal(t, int64(6000), got.AmountDue)
	assert.Equal(t, invoice.StatusPartiallyPaid, got.Status)

	var outbox []models.OutboxEntryModel
	require.NoError(t, db.Find(&outbox).Error)
	require.Len(t, outbox, 1)
	assert.Equal(t, invoice.EventTypePaymentReceived, outbox[0].EventType)
	assert.Equal(t, inv.ID, outbox[0].AggregateID)
}

func TestGormTransactionScope_Rollback(t *testing.T) {
	db, scope := newTestScope(t)
	ctx := context.Background()

	inv := newTestInvoice(t, "INV-TX2", time.Now().AddDate(0, 0, 30))
	require.NoError(t, NewGormInvoiceRepository(db).Create(ctx, inv))

	boom := errors.New("boom")
	err := scope.Execute(ctx, func(ctx context.Context, repos uow.Repositories) error {
		if err := recordInScope(ctx, repos, inv, 4000); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := NewGormInvoiceRepository(db).FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.AmountPaid)
	assert.Equal(t, 1, got.Version)

	var ledger, outbox int64
	require.NoError(t, db.Model(&models.InvoicePaymentModel{}).Count(&ledger).Error)
	require.NoError(t, db.Model(&models.OutboxEntryModel{}).Count(&outbox).Error)
	assert.Zero(t, ledger, "ledger row rolled back")
	assert.Zero(t, outbox, "outbox row rolled back")
}

func TestExecuteWithRetry_ReappliesAfterConflict(t *testing.T) {
	db, scope := newTestScope(t)
	ctx := context.Background()

	inv := newTestInvoice(t, "INV-TX3", time.Now().AddDate(0, 0, 30))
	repo := NewGormInvoiceRepository(db)
	require.NoError(t, repo.Create(ctx, inv))

	attempts := 0
	err := uow.ExecuteWithRetry(ctx, scope, uow.DefaultConflictRetries, func(ctx context.Context, repos uow.Repositories) error {
		attempts++
		if attempts == 1 {
			// Two copies read at the same version; the second save loses.
			concurrent, err := repos.Invoices().FindByID(ctx, inv.ID)
			if err != nil {
				return err
			}
			stale, err := repos.Invoices().FindByID(ctx, inv.ID)
			if err != nil {
				return err
			}
			if err := repos.Invoices().Save(ctx, concurrent); err != nil {
				return err
			}
			return repos.Invoices().Save(ctx, stale)
		}
		return recordInScope(ctx, repos, inv, 1000)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	got, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.AmountPaid)
}
