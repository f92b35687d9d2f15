package draft

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// SummaryView pairs the raw summary amounts with display strings.
type SummaryView struct {
	Summary
	CustomerTotalDisplay string `json:"customer_total_display"`
	SupplierTotalDisplay string `json:"supplier_total_display"`
	ProfitDisplay        string `json:"profit_display"`
}

func newSummaryView(sum Summary) SummaryView {
	return SummaryView{
		Summary:              sum,
		CustomerTotalDisplay: formatAmount(sum.Customer.Total),
		SupplierTotalDisplay: formatAmount(sum.Supplier.Total),
		ProfitDisplay:        formatAmount(sum.Profit),
	}
}

func formatAmount(v float64) string {
	return moneyPrinter.Sprintf("%.2f", v)
}
