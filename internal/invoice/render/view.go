package render

import (
	"time"

	"github.com/fibrewavelabs/fibrewave/internal/invoice/domain"
	settingsdomain "github.com/fibrewavelabs/fibrewave/internal/settings/domain"
	"github.com/shopspring/decimal"
)

// InvoiceView is the deterministic input to both the HTML and PDF renditions.
type InvoiceView struct {
	Number        string
	Type          string
	Status        string
	Description   string
	Amount        decimal.Decimal
	PaymentPeriod string
	BillingDate   time.Time
	DueDate       time.Time
	Notes         string

	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string

	ServiceType string
	Package     string
}

// CompanyView carries the company settings shown on every invoice.
type CompanyView struct {
	Name           string
	Address        string
	Phone          string
	Email          string
	BankName       string
	BankAccount    string
	BankBranch     string
	PaymentTerms   string
	Footer         string
	CurrencySymbol string
}

type View struct {
	Invoice InvoiceView
	Company CompanyView
}

func BuildView(inv *domain.Invoice, settings map[string]string) View {
	get := func(key, fallback string) string {
		if v, ok := settings[key]; ok && v != "" {
			return v
		}
		return fallback
	}
	return View{
		Invoice: InvoiceView{
			Number:          inv.InvoiceNumber,
			Type:            string(inv.InvoiceType),
			Status:          string(inv.Status),
			Description:     inv.Description,
			Amount:          inv.Amount,
			PaymentPeriod:   inv.PaymentPeriod,
			BillingDate:     inv.BillingDate,
			DueDate:         inv.DueDate,
			Notes:           inv.Notes,
			CustomerName:    inv.CustomerName,
			CustomerEmail:   inv.CustomerEmail,
			CustomerPhone:   inv.CustomerPhone,
			CustomerAddress: inv.CustomerAddress,
			ServiceType:     inv.ServiceType,
			Package:         inv.Package,
		},
		Company: CompanyView{
			Name:           get(settingsdomain.KeyCompanyName, "FibreWave"),
			Address:        get(settingsdomain.KeyCompanyAddress, ""),
			Phone:          get(settingsdomain.KeyCompanyPhone, ""),
			Email:          get(settingsdomain.KeyCompanyEmail, ""),
			BankName:       get(settingsdomain.KeyBankName, ""),
			BankAccount:    get(settingsdomain.KeyBankAccount, ""),
			BankBranch:     get(settingsdomain.KeyBankBranch, ""),
			PaymentTerms:   get(settingsdomain.KeyPaymentTerms, "Payment due by the due date shown."),
			Footer:         get(settingsdomain.KeyInvoiceFooter, ""),
			CurrencySymbol: get(settingsdomain.KeyCurrencySymbol, "R"),
		},
	}
}
