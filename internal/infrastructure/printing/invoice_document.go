package printing

import (
	"bytes"
	"context"
	"html/template"

	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

// Archiver stores rendered documents. storage.S3Storage implements it.
type Archiver interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// Document is a rendered invoice.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// InvoiceDocuments renders invoices with the built-in layout and archives the
// resulting PDFs.
type InvoiceDocuments struct {
	renderer PDFRenderer
	archive  Archiver
	logger   *zap.Logger
}

// NewInvoiceDocuments creates the document service. archive may be nil.
func NewInvoiceDocuments(renderer PDFRenderer, archive Archiver, log *zap.Logger) *InvoiceDocuments {
	return &InvoiceDocuments{renderer: renderer, archive: archive, logger: log.Named("documents")}
}

// RenderHTML executes the invoice layout.
func RenderHTML(inv *invoice.Invoice, entries []*invoice.Payment) (string, error) {
	tmpl, err := template.New("invoice").Funcs(templateFuncs(inv.Currency)).Parse(invoiceLayout)
	if err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "parse invoice layout", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDocumentData(inv, entries)); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "execute invoice layout", err)
	}
	return buf.String(), nil
}

// Render produces the invoice PDF. A failed archive upload is logged and
// does not fail the render.
func (d *InvoiceDocuments) Render(ctx context.Context, inv *invoice.Invoice, entries []*invoice.Payment) (*Document, error) {
	html, err := RenderHTML(inv, entries)
	if err != nil {
		return nil, err
	}
	result, err := d.renderer.Render(ctx, &RenderRequest{HTML: html, Title: "Invoice " + inv.InvoiceNumber})
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Filename:    inv.InvoiceNumber + ".pdf",
		ContentType: pdfContentType,
		Data:        result.PDFData,
	}
	if d.archive != nil {
		key := ArchiveKey(inv.InvoiceNumber)
		if err := d.archive.Upload(ctx, key, doc.Data, pdfContentType); err != nil {
			logger.Enrich(ctx, d.logger).Warn("Failed to archive invoice document",
				zap.String("key", key), zap.Error(err))
		}
	}
	return doc, nil
}

// ArchiveKey is the object key of an invoice PDF.
func ArchiveKey(invoiceNumber string) string {
	return "invoices/" + invoiceNumber + ".pdf"
}
