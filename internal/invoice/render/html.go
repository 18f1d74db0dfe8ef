package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Invoice.Number}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .invoice { max-width: 820px; margin: 0 auto; }
    .header {
      display: flex;
      justify-content: space-between;
      align-items: flex-start;
      border-bottom: 2px solid #111827;
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .meta { text-align: right; font-size: 14px; }
    .meta .label {
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.04em;
      font-size: 11px;
    }
    .section { margin-bottom: 24px; }
    .label {
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.04em;
      font-size: 11px;
    }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    th, td { padding: 10px; border-bottom: 1px solid #e5e7eb; text-align: left; }
    th {
      text-transform: uppercase;
      font-size: 11px;
      letter-spacing: 0.04em;
      color: #6b7280;
    }
    .totals {
      margin-top: 12px;
      display: flex;
      justify-content: flex-end;
      font-size: 16px;
    }
    .totals strong { margin-left: 12px; }
    .footer {
      border-top: 1px solid #e5e7eb;
      padding-top: 16px;
      font-size: 12px;
      color: #6b7280;
    }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <div>
        <div><strong>{{.Company.Name}}</strong></div>
        {{if .Company.Address}}<div>{{.Company.Address}}</div>{{end}}
        {{if .Company.Phone}}<div>{{.Company.Phone}}</div>{{end}}
        {{if .Company.Email}}<div>{{.Company.Email}}</div>{{end}}
      </div>
      <div class="meta">
        <div class="label">{{if eq .Invoice.Type "deposit"}}Deposit Invoice{{else}}Invoice{{end}}</div>
        <div><strong>{{.Invoice.Number}}</strong></div>
        <div>Status: {{.Invoice.Status}}</div>
        <div>Billing date: {{formatDate .Invoice.BillingDate}}</div>
        <div>Due: {{formatDate .Invoice.DueDate}}</div>
      </div>
    </div>

    <div class="section">
      <div class="label">Billed To</div>
      <div><strong>{{.Invoice.CustomerName}}</strong></div>
      {{if .Invoice.CustomerAddress}}<div>{{.Invoice.CustomerAddress}}</div>{{end}}
      {{if .Invoice.CustomerEmail}}<div>{{.Invoice.CustomerEmail}}</div>{{end}}
      {{if .Invoice.CustomerPhone}}<div>{{.Invoice.CustomerPhone}}</div>{{end}}
    </div>

    <div class="section">
      <table>
        <thead>
          <tr>
            <th>Description</th>
            <th>Service</th>
            <th>Package</th>
            <th>Amount</th>
          </tr>
        </thead>
        <tbody>
          <tr>
            <td>{{.Invoice.Description}}</td>
            <td>{{.Invoice.ServiceType}}</td>
            <td>{{.Invoice.Package}}</td>
            <td>{{formatMoney .Invoice.Amount .Company.CurrencySymbol}}</td>
          </tr>
        </tbody>
      </table>
      <div class="totals">
        <span>Total due</span>
        <strong>{{formatMoney .Invoice.Amount .Company.CurrencySymbol}}</strong>
      </div>
    </div>

    {{if .Company.BankName}}
    <div class="section">
      <div class="label">Banking Details</div>
      <div>{{.Company.BankName}}</div>
      {{if .Company.BankAccount}}<div>Account: {{.Company.BankAccount}}</div>{{end}}
      {{if .Company.BankBranch}}<div>Branch: {{.Company.BankBranch}}</div>{{end}}
      <div>Reference: {{.Invoice.Number}}</div>
    </div>
    {{end}}

    <div class="footer">
      <div>{{.Company.PaymentTerms}}</div>
      {{if .Invoice.Notes}}<div>{{.Invoice.Notes}}</div>{{end}}
      {{if .Company.Footer}}<div>{{.Company.Footer}}</div>{{end}}
    </div>
  </div>
</body>
</html>
`

type htmlRenderer struct {
	tpl *template.Template
}

func newHTMLRenderer() *htmlRenderer {
	funcs := template.FuncMap{
		"formatMoney": formatMoney,
		"formatDate":  formatDate,
	}
	return &htmlRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *htmlRenderer) render(view View) (string, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatMoney(amount decimal.Decimal, symbol string) string {
	if symbol == "" {
		symbol = "R"
	}
	return fmt.Sprintf("%s %s", symbol, amount.StringFixed(2))
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02")
}
