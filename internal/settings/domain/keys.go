package domain

// Well-known setting keys consumed by the invoice renderer and seeded at
// migration time.
const (
	KeyCompanyName    = "company_name"
	KeyCompanyAddress = "company_address"
	KeyCompanyPhone   = "company_phone"
	KeyCompanyEmail   = "company_email"
	KeyBankName       = "bank_name"
	KeyBankAccount    = "bank_account_number"
	KeyBankBranch     = "bank_branch_code"
	KeyPaymentTerms   = "payment_terms"
	KeyInvoiceFooter  = "invoice_footer"
	KeyCurrencySymbol = "currency_symbol"
)
