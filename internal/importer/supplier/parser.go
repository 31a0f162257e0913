// Package supplier parses delivery files sent by suppliers into purchase rows.
package supplier

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/keyurdhanani/store-management-project/internal/encoding"
)

// ErrUnknownLayout means no header row matched a known profile.
var ErrUnknownLayout = errors.New("supplier: no matching file layout")

// Row is one delivered item.
type Row struct {
	Line          int // 1-based line in the file
	Description   string
	Quantity      int
	UnitCost      decimal.Decimal
	BatchNumber   string
	ExpiryDate    *time.Time
	InvoiceNumber string
}

// RowError describes a data row that could not be used.
type RowError struct {
	Line        int    `json:"line"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// Document is the parsed content of one file.
type Document struct {
	Profile string
	Charset enc.Charset
	Rows    []Row
	Skipped []RowError
}

// Parser reads supplier CSV files. The charset, the separator (';' or ',') and the column layout
// are detected from the content.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

var separators = []rune{';', ','}

func (p *Parser) Parse(r io.Reader) (*Document, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return &Document{Charset: charset}, nil
	}

	for _, sep := range separators {
		rows, err := readAll(data, sep)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		doc := parseRows(profile, cols, rows[headerIdx+1:])
		doc.Charset = charset

		return doc, nil
	}

	return nil, ErrUnknownLayout
}

// record is a CSV row with the file line it starts on. Empty lines produce no record.
type record struct {
	line  int
	cells []string
}

func readAll(data []byte, sep rune) ([]record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var out []record

	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}

		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		out = append(out, record{line: line, cells: cells})
	}
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func (c colIndex) lookup(name string) int {
	if name == "" {
		return -1
	}

	if i, ok := c[name]; ok {
		return i
	}

	return -1
}

// detectProfile scans rows for a header that matches a known profile and returns it with the
// header row index. Supplier files often carry a few lines of letterhead before the header.
func detectProfile(rows []record) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row.cells {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(p *Profile, cols colIndex, rows []record) *Document {
	doc := &Document{Profile: p.Name}

	descIdx := cols.lookup(p.DescCol)
	qtyIdx := cols.lookup(p.QuantityCol)
	costIdx := cols.lookup(p.CostCol)
	batchIdx := cols.lookup(p.BatchCol)
	expiryIdx := cols.lookup(p.ExpiryCol)
	invoiceIdx := cols.lookup(p.InvoiceCol)

	for _, rec := range rows {
		line, row := rec.line, rec.cells

		desc := cellValue(row, descIdx)
		qtyStr := cellValue(row, qtyIdx)

		// Blank lines and footers ("Total;;;123,00") carry no item.
		if desc == "" || qtyStr == "" {
			continue
		}

		skip := func(reason string) {
			doc.Skipped = append(doc.Skipped, RowError{Line: line, Description: desc, Reason: reason})
		}

		qty, err := parseQuantity(qtyStr, p.DecimalComma)
		if err != nil {
			skip(err.Error())
			continue
		}

		cost, err := parseAmount(cellValue(row, costIdx), p.DecimalComma)
		if err != nil {
			skip(fmt.Sprintf("invalid unit cost %q", cellValue(row, costIdx)))
			continue
		}

		var expiry *time.Time

		if s := cellValue(row, expiryIdx); s != "" {
			t, err := time.Parse(p.DateLayout, s)
			if err != nil {
				skip(fmt.Sprintf("invalid expiry date %q", s))
				continue
			}

			expiry = &t
		}

		doc.Rows = append(doc.Rows, Row{
			Line:          line,
			Description:   desc,
			Quantity:      qty,
			UnitCost:      cost,
			BatchNumber:   cellValue(row, batchIdx),
			ExpiryDate:    expiry,
			InvoiceNumber: cellValue(row, invoiceIdx),
		})
	}

	return doc
}

// parseQuantity accepts whole numbers, also when written as "12,00".
func parseQuantity(s string, decimalComma bool) (int, error) {
	d, err := parseAmount(s, decimalComma)
	if err != nil || !d.IsInteger() || !d.IsPositive() {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}

	return int(d.IntPart()), nil
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
