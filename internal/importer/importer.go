package importer

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/keyurdhanani/store-management-project/internal/encoding"
	"github.com/keyurdhanani/store-management-project/internal/importer/supplier"
	"github.com/keyurdhanani/store-management-project/internal/matching"
	"github.com/keyurdhanani/store-management-project/internal/purchase"
)

type Parser interface {
	Parse(r io.Reader) (*supplier.Document, error)
}

// Matcher resolves supplier item descriptions to catalog products.
type Matcher interface {
	Suggest(ctx context.Context, rawDescription string) (int64, bool, error)
	Learn(ctx context.Context, rawPattern string, productID int64) (*matching.Mapping, error)
}

// Recorder records one purchase in its own ledger transaction.
type Recorder interface {
	Record(ctx context.Context, params purchase.RecordParams) (*purchase.Purchase, error)
}

// Params apply to every row of one uploaded file.
type Params struct {
	SupplierID *int64
	// InvoiceNumber is used for rows without an invoice column value.
	InvoiceNumber string
	// Mappings resolves descriptions by exact text and teaches the matcher the same pairs.
	Mappings map[string]int64
}

// Result reports what happened to each row of the file.
type Result struct {
	ID        uuid.UUID
	Profile   string
	Charset   encoding.Charset
	Recorded  []*purchase.Purchase
	Unmatched []supplier.Row
	Skipped   []supplier.RowError
	Failed    []supplier.RowError
}
