package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/infrastructure/persistence/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory SQLite database with every table.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestIntent(t *testing.T) *payment.PaymentIntent {
	t.Helper()
	p, err := payment.NewPaymentIntent(payment.NewIntentInput{
		Amount:      2500,
		Currency:    "usd",
		TripRef:     "trip_" + uuid.NewString()[:8],
		CustomerRef: "cus_123",
		Metadata:    map[string]string{"route": "42"},
	})
	require.NoError(t, err)
	p.AttachExternal("pi_"+uuid.NewString(), "secret")
	return p
}

func newTestInvoice(t *testing.T, number string, due time.Time) *invoice.Invoice {
	t.Helper()
	inv, err := invoice.NewInvoice(invoice.NewInvoiceInput{
		InvoiceNumber: number,
		FacilityRef:   "fac_1",
		FacilityName:  "North Depot",
		BillingEmail:  "ap@depot.example",
		Currency:      "usd",
		TotalAmount:   10000,
		DueDate:       due,
	})
	require.NoError(t, err)
	return inv
}
