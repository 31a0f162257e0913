package supplier

// Profile describes the column layout of a supplier delivery file.
// Adding a layout is adding a Profile to the profiles slice.
type Profile struct {
	Name         string
	DescCol      string
	QuantityCol  string
	CostCol      string
	BatchCol     string // optional
	ExpiryCol    string // optional
	InvoiceCol   string // optional
	DecimalComma bool   // "1.234,56" instead of "1,234.56"
	DateLayout   string
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	return []string{p.DescCol, p.QuantityCol, p.CostCol}
}

// profiles is the ordered list of layouts tried during auto-detection.
var profiles = []Profile{
	{
		Name:         "distributor",
		DescCol:      "artigo",
		QuantityCol:  "qtd",
		CostCol:      "preço unit.",
		BatchCol:     "lote",
		ExpiryCol:    "validade",
		InvoiceCol:   "fatura",
		DecimalComma: true,
		DateLayout:   "02-01-2006",
	},
	{
		Name:        "standard",
		DescCol:     "description",
		QuantityCol: "quantity",
		CostCol:     "unit cost",
		BatchCol:    "batch",
		ExpiryCol:   "expiry",
		InvoiceCol:  "invoice",
		DateLayout:  "2006-01-02",
	},
}
