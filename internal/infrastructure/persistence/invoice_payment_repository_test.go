package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/shared"
)

func TestGormInvoicePaymentRepository_Ledger(t *testing.T) {
	db := setupTestDB(t)
	invoices := NewGormInvoiceRepository(db)
	repo := NewGormInvoicePaymentRepository(db)
	ctx := context.Background()
	now := time.Now()

	inv := newTestInvoice(t, "INV-L1", now.AddDate(0, 0, 30))
	require.NoError(t, invoices.Create(ctx, inv))

	first, entries, err := inv.AddPayment(invoice.NewPaymentInput{Amount: 4000, Method: invoice.MethodCheck, Reference: "chk_1"}, nil, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, _, err := inv.AddPayment(invoice.NewPaymentInput{Amount: 1000, Method: invoice.MethodACH}, entries, now.Add(time.Second))
	require.NoError(t, err)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, second))

	got, err := repo.FindByInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, int64(4000), got[0].Amount)
	assert.Equal(t, invoice.MethodCheck, got[0].Method)
	assert.Equal(t, "chk_1", got[0].ExternalReference)

	found, err := repo.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.MethodACH, found.Method)
	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	others, err := repo.FindByInvoice(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestGormInvoicePaymentRepository_MarkReversed(t *testing.T) {
	db := setupTestDB(t)
	invoices := NewGormInvoiceRepository(db)
	repo := NewGormInvoicePaymentRepository(db)
	ctx := context.Background()
	now := time.Now()

	inv := newTestInvoice(t, "INV-R1", now.AddDate(0, 0, 30))
	require.NoError(t, invoices.Create(ctx, inv))
	p, _, err := inv.AddPayment(invoice.NewPaymentInput{Amount: 2500, Method: invoice.MethodWire}, nil, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.MarkReversed(ctx, p.ID, now))
	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsReversed())

	err = repo.MarkReversed(ctx, p.ID, now)
	require.Error(t, err)
	assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
}

func TestGormInvoicePaymentRepository_ExistsByExternalReference(t *testing.T) {
	db := setupTestDB(t)
	invoices := NewGormInvoiceRepository(db)
	repo := NewGormInvoicePaymentRepository(db)
	ctx := context.Background()
	now := time.Now()

	inv := newTestInvoice(t, "INV-X1", now.AddDate(0, 0, 30))
	require.NoError(t, invoices.Create(ctx, inv))
	p, entries, err := inv.AddPayment(invoice.NewPaymentInput{Amount: 8550, Method: invoice.MethodCard, Reference: "pi_abc"}, nil, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p))

	refund, _, err := inv.AddRefundReversal(8550, "re_abc", "customer request", entries, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, refund))

	tests := []struct {
		name      string
		invoiceID uuid.UUID
		ref       string
		want      bool
	}{
		{"positive entry matches", inv.ID, "pi_abc", true},
		{"refund entries are ignored", inv.ID, "re_abc", false},
		{"other invoice", uuid.New(), "pi_abc", false},
		{"unknown reference", inv.ID, "pi_zzz", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := repo.ExistsByExternalReference(ctx, tt.invoiceID, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}
