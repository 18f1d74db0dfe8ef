package render

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotoconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

func renderPDF(view View) ([]byte, error) {
	cfg := marotoconfig.NewBuilder().
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(6, view.Company.Name, props.Text{Style: fontstyle.Bold, Size: 16}),
		text.NewCol(6, invoiceTitle(view), props.Text{Style: fontstyle.Bold, Size: 16, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(6, view.Company.Address, props.Text{Size: 9}),
		text.NewCol(6, view.Invoice.Number, props.Text{Size: 11, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(6, view.Company.Email, props.Text{Size: 9}),
		text.NewCol(6, fmt.Sprintf("Billing date: %s", formatDate(view.Invoice.BillingDate)), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(6,
		text.NewCol(6, view.Company.Phone, props.Text{Size: 9}),
		text.NewCol(6, fmt.Sprintf("Due date: %s", formatDate(view.Invoice.DueDate)), props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(8, line.NewCol(12))

	m.AddRow(6, text.NewCol(12, "BILLED TO", props.Text{Style: fontstyle.Bold, Size: 9}))
	m.AddRow(6, text.NewCol(12, view.Invoice.CustomerName, props.Text{Size: 10}))
	if view.Invoice.CustomerAddress != "" {
		m.AddRow(5, text.NewCol(12, view.Invoice.CustomerAddress, props.Text{Size: 9}))
	}
	if view.Invoice.CustomerEmail != "" {
		m.AddRow(5, text.NewCol(12, view.Invoice.CustomerEmail, props.Text{Size: 9}))
	}

	m.AddRow(10, col.New(12))
	m.AddRow(7,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Package", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(6, view.Invoice.Description, props.Text{Size: 9}),
		text.NewCol(3, fmt.Sprintf("%s (%s)", view.Invoice.ServiceType, view.Invoice.Package), props.Text{Size: 9}),
		text.NewCol(3, formatMoney(view.Invoice.Amount, view.Company.CurrencySymbol), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(4, line.NewCol(12))
	m.AddRow(8,
		text.NewCol(9, "Total due", props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right}),
		text.NewCol(3, formatMoney(view.Invoice.Amount, view.Company.CurrencySymbol), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right}),
	)

	if view.Company.BankName != "" {
		m.AddRow(10, col.New(12))
		m.AddRow(6, text.NewCol(12, "BANKING DETAILS", props.Text{Style: fontstyle.Bold, Size: 9}))
		m.AddRow(5, text.NewCol(12, view.Company.BankName, props.Text{Size: 9}))
		if view.Company.BankAccount != "" {
			m.AddRow(5, text.NewCol(12, fmt.Sprintf("Account: %s", view.Company.BankAccount), props.Text{Size: 9}))
		}
		if view.Company.BankBranch != "" {
			m.AddRow(5, text.NewCol(12, fmt.Sprintf("Branch: %s", view.Company.BankBranch), props.Text{Size: 9}))
		}
		m.AddRow(5, text.NewCol(12, fmt.Sprintf("Reference: %s", view.Invoice.Number), props.Text{Size: 9}))
	}

	m.AddRow(10, col.New(12))
	m.AddRow(5, text.NewCol(12, view.Company.PaymentTerms, props.Text{Size: 8}))
	if view.Company.Footer != "" {
		m.AddRow(5, text.NewCol(12, view.Company.Footer, props.Text{Size: 8}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func invoiceTitle(view View) string {
	if view.Invoice.Type == "deposit" {
		return "DEPOSIT INVOICE"
	}
	return "INVOICE"
}
