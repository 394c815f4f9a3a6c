package printing

import (
	"html/template"
	"strings"
	"time"

	"github.com/transitpay/settlement/internal/domain/invoice"
	"github.com/transitpay/settlement/internal/domain/shared/valueobject"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// templateFuncs are available to the invoice layout.
func templateFuncs(cur valueobject.Currency) template.FuncMap {
	return template.FuncMap{
		"money": func(minor int64) string { return valueobject.NewMoney(minor, cur).Display() },
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"title": titleCase,
	}
}

// titleCase turns identifiers like PARTIALLY_PAID or ach into display labels.
func titleCase(s string) string {
	return titleCaser.String(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}

type documentLine struct {
	Date     time.Time
	Method   string
	Ref      string
	Amount   int64
	Reversed bool
	Notes    string
}

type documentData struct {
	Invoice  *invoice.Invoice
	Status   string
	Lines    []documentLine
	IssuedAt time.Time
}

func newDocumentData(inv *invoice.Invoice, entries []*invoice.Payment) documentData {
	data := documentData{Invoice: inv, Status: string(inv.Status), IssuedAt: inv.CreatedAt}
	if inv.SentAt != nil {
		data.IssuedAt = *inv.SentAt
	}
	for _, e := range entries {
		data.Lines = append(data.Lines, documentLine{
			Date:     e.PaymentDate,
			Method:   string(e.Method),
			Ref:      e.ExternalReference,
			Amount:   e.Amount,
			Reversed: e.IsReversed(),
			Notes:    e.Notes,
		})
	}
	return data
}

const invoiceLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Invoice.InvoiceNumber}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; }
h1 { font-size: 22px; margin: 0 0 4px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { text-align: left; padding: 6px 4px; border-bottom: 1px solid #ddd; }
td.amount, th.amount { text-align: right; }
.reversed { color: #999; text-decoration: line-through; }
.summary td { border: none; }
.status { display: inline-block; padding: 2px 8px; border: 1px solid #222; border-radius: 3px; }
</style>
</head>
<body>
<h1>Invoice {{.Invoice.InvoiceNumber}}</h1>
<p>
  <strong>{{.Invoice.FacilityName}}</strong><br>
  {{.Invoice.BillingEmail}}
</p>
<p>
  Issued: {{date .IssuedAt}}<br>
  Due: {{date .Invoice.DueDate}}<br>
  <span class="status">{{title .Status}}</span>
</p>
<table>
  <thead>
    <tr><th>Date</th><th>Method</th><th>Reference</th><th>Notes</th><th class="amount">Amount</th></tr>
  </thead>
  <tbody>
  {{- range .Lines}}
    <tr{{if .Reversed}} class="reversed"{{end}}>
      <td>{{date .Date}}</td><td>{{title .Method}}</td><td>{{.Ref}}</td><td>{{.Notes}}</td><td class="amount">{{money .Amount}}</td>
    </tr>
  {{- else}}
    <tr><td colspan="5">No payments recorded.</td></tr>
  {{- end}}
  </tbody>
</table>
<table class="summary">
  <tr><td class="amount">Total</td><td class="amount">{{money .Invoice.TotalAmount}}</td></tr>
  <tr><td class="amount">Paid</td><td class="amount">{{money .Invoice.AmountPaid}}</td></tr>
  <tr><td class="amount"><strong>Amount due</strong></td><td class="amount"><strong>{{money .Invoice.AmountDue}}</strong></td></tr>
</table>
</body>
</html>
`
