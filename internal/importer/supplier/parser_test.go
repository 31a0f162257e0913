package supplier_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyurdhanani/store-management-project/internal/encoding"
	"github.com/keyurdhanani/store-management-project/internal/importer/supplier"
)

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		verify  func(t *testing.T, doc *supplier.Document)
	}{
		{
			name: "DistributorWithLetterhead",
			content: `Farmadist, Lda;NIF 500000000
Guia de remessa;GR 2025/118

Artigo;Qtd;Preço Unit.;Lote;Validade;Fatura
PARACETAMOL 500MG CX20;24;1.234,56;L2401;31-12-2026;FT 2025/77
IBUPROFENO 400MG;12,00;2,10;;;FT 2025/77
Total;;;;;
`,
			verify: func(t *testing.T, doc *supplier.Document) {
				assert.Equal(t, "distributor", doc.Profile)
				assert.Equal(t, encoding.UTF8, doc.Charset)
				require.Len(t, doc.Rows, 2)
				assert.Empty(t, doc.Skipped)

				first := doc.Rows[0]
				assert.Equal(t, 5, first.Line)
				assert.Equal(t, "PARACETAMOL 500MG CX20", first.Description)
				assert.Equal(t, 24, first.Quantity)
				assert.True(t, first.UnitCost.Equal(decimal.RequireFromString("1234.56")))
				assert.Equal(t, "L2401", first.BatchNumber)
				assert.Equal(t, "FT 2025/77", first.InvoiceNumber)
				require.NotNil(t, first.ExpiryDate)
				assert.True(t, first.ExpiryDate.Equal(time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)))

				second := doc.Rows[1]
				assert.Equal(t, 12, second.Quantity)
				assert.True(t, second.UnitCost.Equal(decimal.RequireFromString("2.10")))
				assert.Nil(t, second.ExpiryDate)
				assert.Empty(t, second.BatchNumber)
			},
		},
		{
			name: "StandardCommaSeparated",
			content: `Description,Quantity,Unit Cost,Batch,Expiry
Whole milk 1L,10,0.60,M2,2025-06-01
"Bread, sliced",4,"1,000.00",,
`,
			verify: func(t *testing.T, doc *supplier.Document) {
				assert.Equal(t, "standard", doc.Profile)
				require.Len(t, doc.Rows, 2)
				assert.Equal(t, "Whole milk 1L", doc.Rows[0].Description)
				assert.True(t, doc.Rows[0].UnitCost.Equal(decimal.RequireFromString("0.60")))
				assert.Equal(t, "Bread, sliced", doc.Rows[1].Description)
				assert.True(t, doc.Rows[1].UnitCost.Equal(decimal.NewFromInt(1000)))
			},
		},
		{
			name: "InvalidRowsReported",
			content: `description;quantity;unit cost;expiry
Yogurt;2.5;1.00;
Cheese;3;abc;
Butter;2;1.50;tomorrow
Cream;-1;1.00;
Milk;5;0.50;2025-05-10
`,
			verify: func(t *testing.T, doc *supplier.Document) {
				require.Len(t, doc.Rows, 1)
				assert.Equal(t, "Milk", doc.Rows[0].Description)
				require.Len(t, doc.Skipped, 4)
				assert.Equal(t, 2, doc.Skipped[0].Line)
				assert.Contains(t, doc.Skipped[0].Reason, "invalid quantity")
				assert.Contains(t, doc.Skipped[1].Reason, "invalid unit cost")
				assert.Contains(t, doc.Skipped[2].Reason, "invalid expiry date")
				assert.Contains(t, doc.Skipped[3].Reason, "invalid quantity")
			},
		},
		{
			name:    "EmptyFile",
			content: "",
			verify: func(t *testing.T, doc *supplier.Document) {
				assert.Empty(t, doc.Rows)
			},
		},
		{
			name:    "UnknownLayout",
			content: "Data mov.;Descrição;Montante\n30-01-2026;TEST;-10,00\n",
			wantErr: supplier.ErrUnknownLayout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := supplier.NewParser().Parse(strings.NewReader(tt.content))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.verify(t, doc)
		})
	}
}

func TestParser_Parse_Windows1252(t *testing.T) {
	// "Artigo;Qtd;Preço Unit." with ç = 0xE7, followed by one item.
	content := append([]byte("Artigo;Qtd;Pre"), 0xE7)
	content = append(content, []byte("o Unit.\nGAZE 10X10;3;0,95\n")...)

	doc, err := supplier.NewParser().Parse(strings.NewReader(string(content)))
	require.NoError(t, err)

	assert.Equal(t, "distributor", doc.Profile)
	assert.NotEqual(t, encoding.UTF8, doc.Charset)
	require.Len(t, doc.Rows, 1)
	assert.True(t, doc.Rows[0].UnitCost.Equal(decimal.RequireFromString("0.95")))
}
