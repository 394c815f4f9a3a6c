package notification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"sort"
	"strings"
	texttemplate "text/template"

	"github.com/transitpay/settlement/internal/domain/shared"
)

// TemplateKey identifies a message template.
type TemplateKey string

const (
	TemplateInvoiceSent     TemplateKey = "INVOICE_SENT"
	TemplateInvoiceReminder TemplateKey = "INVOICE_REMINDER"
	TemplateInvoiceOverdue  TemplateKey = "INVOICE_OVERDUE"
	TemplatePaymentReceived TemplateKey = "PAYMENT_RECEIVED"
	TemplatePaymentRefunded TemplateKey = "PAYMENT_REFUNDED"
)

// Vars are the values substituted into a template.
type Vars map[string]string

// Definition declares a template and the variables it requires. Every
// placeholder used in Subject or Body must be listed in Required.
type Definition struct {
	Key      TemplateKey
	Subject  string
	Body     string
	Required []string
}

// Rendered is a template filled with variables.
type Rendered struct {
	Subject string
	HTML    string
}

const layout = `<!DOCTYPE html><html><body style="font-family:Helvetica,Arial,sans-serif;color:#1f2933">{{template "content" .}}<p style="color:#7b8794;font-size:12px">This is an automated message about your transportation account.</p></body></html>`

var definitions = map[TemplateKey]Definition{
	TemplateInvoiceSent: {
		Key:      TemplateInvoiceSent,
		Subject:  "Invoice {{.InvoiceNumber}} from your transportation provider",
		Body:     `<p>Hello {{.FacilityName}},</p><p>Invoice <strong>{{.InvoiceNumber}}</strong> for <strong>{{.AmountDue}}</strong> is ready and due on {{.DueDate}}.</p>`,
		Required: []string{"InvoiceNumber", "FacilityName", "AmountDue", "DueDate"},
	},
	TemplateInvoiceReminder: {
		Key:      TemplateInvoiceReminder,
		Subject:  "Reminder: invoice {{.InvoiceNumber}} is due in {{.DaysUntilDue}} days",
		Body:     `<p>Invoice <strong>{{.InvoiceNumber}}</strong> has <strong>{{.AmountDue}}</strong> outstanding and is due on {{.DueDate}} ({{.DaysUntilDue}} days).</p>`,
		Required: []string{"InvoiceNumber", "AmountDue", "DueDate", "DaysUntilDue"},
	},
	TemplateInvoiceOverdue: {
		Key:      TemplateInvoiceOverdue,
		Subject:  "Invoice {{.InvoiceNumber}} is overdue",
		Body:     `<p>Invoice <strong>{{.InvoiceNumber}}</strong> was due on {{.DueDate}} and is {{.DaysOverdue}} days overdue. <strong>{{.AmountDue}}</strong> remains outstanding.</p>`,
		Required: []string{"InvoiceNumber", "AmountDue", "DueDate", "DaysOverdue"},
	},
	TemplatePaymentReceived: {
		Key:      TemplatePaymentReceived,
		Subject:  "Payment received for invoice {{.InvoiceNumber}}",
		Body:     `<p>We received <strong>{{.AmountPaid}}</strong> on {{.PaymentDate}} for invoice <strong>{{.InvoiceNumber}}</strong>.</p><p>Remaining balance: <strong>{{.RemainingBalance}}</strong>.</p>`,
		Required: []string{"InvoiceNumber", "AmountPaid", "RemainingBalance", "PaymentDate"},
	},
	TemplatePaymentRefunded: {
		Key:      TemplatePaymentRefunded,
		Subject:  "Refund issued: {{.AmountRefunded}}",
		Body:     `<p>A refund of <strong>{{.AmountRefunded}}</strong> has been issued.</p><p>Reason: {{.Reason}}</p>`,
		Required: []string{"AmountRefunded", "Reason"},
	},
}

// Lookup returns the definition for key.
func Lookup(key TemplateKey) (Definition, bool) {
	d, ok := definitions[key]
	return d, ok
}

// Keys returns every registered template key in a stable order.
func Keys() []TemplateKey {
	keys := make([]TemplateKey, 0, len(definitions))
	for k := range definitions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Validate reports the required variables missing from vars.
func (d Definition) Validate(vars Vars) error {
	var missing []string
	for _, name := range d.Required {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return shared.NewValidationError(fmt.Sprintf("template %s missing variables: %s", d.Key, strings.Join(missing, ", ")))
	}
	return nil
}

// Render validates vars and executes the template. A placeholder with no
// value fails instead of producing literal braces in a sent message.
func (d Definition) Render(vars Vars) (Rendered, error) {
	if err := d.Validate(vars); err != nil {
		return Rendered{}, err
	}
	subject, err := texttemplate.New(string(d.Key) + ":subject").Option("missingkey=error").Parse(d.Subject)
	if err != nil {
		return Rendered{}, fmt.Errorf("parse subject: %w", err)
	}
	var sb bytes.Buffer
	if err := subject.Execute(&sb, map[string]string(vars)); err != nil {
		return Rendered{}, fmt.Errorf("render subject: %w", err)
	}

	page, err := htmltemplate.New("layout").Option("missingkey=error").Parse(layout)
	if err != nil {
		return Rendered{}, fmt.Errorf("parse layout: %w", err)
	}
	if _, err := page.New("content").Parse(d.Body); err != nil {
		return Rendered{}, fmt.Errorf("parse body: %w", err)
	}
	var hb bytes.Buffer
	if err := page.Execute(&hb, map[string]string(vars)); err != nil {
		return Rendered{}, fmt.Errorf("render body: %w", err)
	}
	return Rendered{Subject: sb.String(), HTML: hb.String()}, nil
}

// Render looks up key and renders it.
func Render(key TemplateKey, vars Vars) (Rendered, error) {
	d, ok := Lookup(key)
	if !ok {
		return Rendered{}, shared.NewValidationError(fmt.Sprintf("unknown template %s", key))
	}
	return d.Render(vars)
}
