package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientStock is matched by every *InsufficientStockError.
	ErrInsufficientStock = errors.New("ledger: insufficient stock")
	// ErrInconsistentState means the aggregate stock and the batch rows disagree.
	ErrInconsistentState = errors.New("ledger: inconsistent state")
	// ErrMissingLedgerRecord means a stock or batch row is absent where one is required.
	ErrMissingLedgerRecord = errors.New("ledger: missing ledger record")
	// ErrDuplicateInvoiceNumber means the invoice number sequence produced a collision.
	ErrDuplicateInvoiceNumber = errors.New("ledger: duplicate invoice number")
	// ErrDuplicateBatchNumber means the product already has a batch with the requested number.
	ErrDuplicateBatchNumber = errors.New("ledger: duplicate batch number")
	// ErrRetryable wraps store failures (deadlock, lock timeout, serialization) the caller may retry.
	ErrRetryable = errors.New("ledger: retryable store failure")
	// ErrInvalidQuantity indicates a non-positive quantity.
	ErrInvalidQuantity = errors.New("ledger: quantity must be positive")
)

// InsufficientStockError reports a request that exceeds the quantity on hand.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = fmt.Sprintf("product %d", e.ProductID)
	}

	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d (short by %d)",
		name, e.Requested, e.Available, e.Shortfall())
}

// Shortfall is how many units are missing to satisfy the request.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InconsistentStateError is raised when batches cannot cover a quantity the stock row claims exists.
type InconsistentStateError struct {
	ProductID int64
	Stock     int
	Requested int
	Remaining int
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("ledger: inconsistent state for product %d: stock %d covers %d but batches left %d undeducted",
		e.ProductID, e.Stock, e.Requested, e.Remaining)
}

func (e *InconsistentStateError) Unwrap() error {
	return ErrInconsistentState
}
