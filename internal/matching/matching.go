package matching

import (
	"errors"
	"time"
)

// Mapping links a fragment of a supplier item description to a catalog product.
type Mapping struct {
	ID          int64
	RawPattern  string
	ProductID   int64
	ProductName string // Loaded via JOIN
	CreatedAt   time.Time
}

// MinPatternLength keeps very short patterns from matching almost every description.
const MinPatternLength = 3

var (
	ErrNotFound       = errors.New("matching: mapping not found")
	ErrInvalidPattern = errors.New("matching: pattern too short")
	ErrUnknownProduct = errors.New("matching: unknown product")
)
