package printing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/transitpay/settlement/internal/domain/invoice"
	"go.uber.org/zap"
)

var docNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*RenderResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRenderer) Close() error { return nil }

type mockArchiver struct{ mock.Mock }

func (m *mockArchiver) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func partiallyPaidInvoice(t *testing.T) (*invoice.Invoice, []*invoice.Payment) {
	t.Helper()
	inv, err := invoice.NewInvoice(invoice.NewInvoiceInput{
		InvoiceNumber: "INV-1001",
		FacilityRef:   "fac-1",
		FacilityName:  "Lakeside Clinic",
		BillingEmail:  "ap@lakeside.example",
		Currency:      "usd",
		TotalAmount:   1000000,
		DueDate:       docNow.AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	require.True(t, inv.MarkSent(nil, docNow))
	_, entries, err := inv.AddPayment(invoice.NewPaymentInput{
		Amount:      405000,
		Method:      invoice.MethodACH,
		Reference:   "ACH-77",
		PaymentDate: docNow,
	}, nil, docNow)
	require.NoError(t, err)
	return inv, entries
}

func TestRenderHTML(t *testing.T) {
	inv, entries := partiallyPaidInvoice(t)

	html, err := RenderHTML(inv, entries)
	require.NoError(t, err)

	for _, want := range []string{
		"Invoice INV-1001",
		"Lakeside Clinic",
		"Partially Paid",
		"Ach",
		"ACH-77",
		"$4,050.00",
		"$10,000.00",
		"$5,950.00",
		"Apr 1, 2026",
	} {
		assert.Contains(t, html, want)
	}
	assert.NotContains(t, html, "No payments recorded.")
}

func TestRenderHTML_EscapesFacilityName(t *testing.T) {
	inv, _ := partiallyPaidInvoice(t)
	inv.FacilityName = "<script>alert(1)</script>"

	html, err := RenderHTML(inv, nil)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "No payments recorded.")
}

func TestInvoiceDocuments_Render(t *testing.T) {
	ctx := context.Background()
	inv, entries := partiallyPaidInvoice(t)
	pdf := []byte("%PDF-1.4 /Type /Page")

	t.Run("renders and archives", func(t *testing.T) {
		r := new(mockRenderer)
		a := new(mockArchiver)
		r.On("Render", ctx, mock.MatchedBy(func(req *RenderRequest) bool {
			return req.Title == "Invoice INV-1001" && strings.Contains(req.HTML, "INV-1001")
		})).Return(&RenderResult{PDFData: pdf, PageCount: 1}, nil)
		a.On("Upload", ctx, "invoices/INV-1001.pdf", pdf, "application/pdf").Return(nil)

		doc, err := NewInvoiceDocuments(r, a, zap.NewNop()).Render(ctx, inv, entries)
		require.NoError(t, err)
		assert.Equal(t, "INV-1001.pdf", doc.Filename)
		assert.Equal(t, "application/pdf", doc.ContentType)
		assert.Equal(t, pdf, doc.Data)
		r.AssertExpectations(t)
		a.AssertExpectations(t)
	})

	t.Run("archive failure does not fail render", func(t *testing.T) {
		r := new(mockRenderer)
		a := new(mockArchiver)
		r.On("Render", ctx, mock.Anything).Return(&RenderResult{PDFData: pdf}, nil)
		a.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket gone"))

		doc, err := NewInvoiceDocuments(r, a, zap.NewNop()).Render(ctx, inv, entries)
		require.NoError(t, err)
		assert.Equal(t, pdf, doc.Data)
	})

	t.Run("renderer failure", func(t *testing.T) {
		r := new(mockRenderer)
		r.On("Render", ctx, mock.Anything).Return(nil, NewRenderError(ErrCodeRenderTimeout, "timed out", nil))

		_, err := NewInvoiceDocuments(r, nil, zap.NewNop()).Render(ctx, inv, entries)
		var re *RenderError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, ErrCodeRenderTimeout, re.Code)
	})
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"PARTIALLY_PAID": "Partially Paid",
		"OVERDUE":        "Overdue",
		"wire":           "Wire",
		"":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, titleCase(in), in)
	}
}
