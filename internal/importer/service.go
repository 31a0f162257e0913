package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/keyurdhanani/store-management-project/internal/importer/supplier"
	"github.com/keyurdhanani/store-management-project/internal/matching"
	"github.com/keyurdhanani/store-management-project/internal/purchase"
)

type Service struct {
	parser   Parser
	matcher  Matcher
	purchase Recorder
}

func NewService(matcher Matcher, recorder Recorder) *Service {
	return &Service{
		parser:   supplier.NewParser(),
		matcher:  matcher,
		purchase: recorder,
	}
}

// Import parses a supplier delivery file and records a purchase for every row whose product is
// known. Rows are independent: a failing row does not undo the ones recorded before it.
func (s *Service) Import(ctx context.Context, params Params, r io.Reader) (*Result, error) {
	doc, err := s.parser.Parse(r)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:      uuid.New(),
		Profile: doc.Profile,
		Charset: doc.Charset,
		Skipped: doc.Skipped,
	}

	for _, row := range doc.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		productID, ok, err := s.resolve(ctx, params, row.Description)
		if err != nil {
			return nil, fmt.Errorf("line %d: matching product: %w", row.Line, err)
		}

		if !ok {
			res.Unmatched = append(res.Unmatched, row)
			continue
		}

		invoice := row.InvoiceNumber
		if invoice == "" {
			invoice = strings.TrimSpace(params.InvoiceNumber)
		}

		p, err := s.purchase.Record(ctx, purchase.RecordParams{
			ProductID:     productID,
			SupplierID:    params.SupplierID,
			Quantity:      row.Quantity,
			UnitCost:      row.UnitCost,
			InvoiceNumber: invoice,
			BatchNumber:   row.BatchNumber,
			ExpiryDate:    row.ExpiryDate,
		})
		if err != nil {
			slog.Warn("import row failed", "import_id", res.ID, "line", row.Line, "error", err)
			res.Failed = append(res.Failed, supplier.RowError{Line: row.Line, Description: row.Description, Reason: err.Error()})

			continue
		}

		res.Recorded = append(res.Recorded, p)
	}

	slog.Info("supplier file imported",
		"import_id", res.ID,
		"profile", res.Profile,
		"charset", res.Charset,
		"recorded", len(res.Recorded),
		"unmatched", len(res.Unmatched),
		"skipped", len(res.Skipped),
		"failed", len(res.Failed),
	)

	return res, nil
}

// resolve prefers an explicit mapping from the caller, learning it for later files.
func (s *Service) resolve(ctx context.Context, params Params, description string) (int64, bool, error) {
	if id, ok := params.Mappings[description]; ok {
		if _, err := s.matcher.Learn(ctx, description, id); err != nil && !errors.Is(err, matching.ErrInvalidPattern) {
			return 0, false, err
		}

		return id, true, nil
	}

	return s.matcher.Suggest(ctx, description)
}
