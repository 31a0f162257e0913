// Package ledgertest provides an in-memory ledger store for tests.
//
// Transactions are fully serialized and work on a private copy of the data that replaces the
// committed state on Commit, so a rolled-back transaction leaves no trace.
package ledgertest

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keyurdhanani/store-management-project/internal/ledger"
	"github.com/keyurdhanani/store-management-project/internal/purchase"
	"github.com/keyurdhanani/store-management-project/internal/sale"
)

var ErrTxDone = errors.New("ledgertest: transaction has already been committed or rolled back")

type state struct {
	nextID     int64
	invoiceSeq int64
	products   map[int64]string
	stock      map[int64]ledger.Stock
	batches    map[int64]ledger.Batch
	purchases  map[int64]purchase.Purchase
	invoices   map[int64]sale.Invoice
	items      map[int64][]sale.Item
}

func newState() *state {
	return &state{
		products:  make(map[int64]string),
		stock:     make(map[int64]ledger.Stock),
		batches:   make(map[int64]ledger.Batch),
		purchases: make(map[int64]purchase.Purchase),
		invoices:  make(map[int64]sale.Invoice),
		items:     make(map[int64][]sale.Item),
	}
}

func (st *state) clone() *state {
	return &state{
		nextID:     st.nextID,
		invoiceSeq: st.invoiceSeq,
		products:   maps.Clone(st.products),
		stock:      maps.Clone(st.stock),
		batches:    maps.Clone(st.batches),
		purchases:  maps.Clone(st.purchases),
		invoices:   maps.Clone(st.invoices),
		items:      maps.Clone(st.items),
	}
}

func (st *state) id() int64 {
	st.nextID++
	return st.nextID
}

func (st *state) withName(s ledger.Stock) ledger.Stock {
	s.ProductName = st.products[s.ProductID]
	return s
}

// Store is safe for concurrent use.
type Store struct {
	// Now stamps created rows. Tests may replace it before use.
	Now func() time.Time

	txMu sync.Mutex
	mu   sync.RWMutex
	data *state
}

func New() *Store {
	return &Store{Now: time.Now, data: newState()}
}

// Begin starts a transaction, blocking until any other transaction has finished.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.txMu.Lock()

	s.mu.RLock()
	st := s.data.clone()
	s.mu.RUnlock()

	return &Tx{store: s, st: st}, nil
}

func (s *Store) read() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data
}

// AddProduct registers a catalog product without a stock row.
func (s *Store) AddProduct(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.data.id()
	s.data.products[id] = name

	return id
}

// Seed stores a batch and raises the product's stock by the same quantity, creating the stock row
// when needed.
func (s *Store) Seed(productID int64, number string, cost decimal.Decimal, expiry *time.Time, quantity int) ledger.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := ledger.Batch{
		ID:         s.data.id(),
		ProductID:  productID,
		Number:     number,
		CostPrice:  cost,
		ExpiryDate: expiry,
		Quantity:   quantity,
		CreatedAt:  s.Now(),
	}
	s.data.batches[b.ID] = b

	st, ok := s.data.stock[productID]
	if !ok {
		st = ledger.Stock{ProductID: productID, LowStockThreshold: ledger.DefaultLowStockThreshold}
	}

	st.Quantity += quantity
	s.data.stock[productID] = st

	return b
}

// SetStockQuantity overwrites the aggregate quantity without touching batches.
func (s *Store) SetStockQuantity(productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.data.stock[productID]
	st.ProductID = productID
	st.Quantity = quantity
	s.data.stock[productID] = st
}

// DropStock removes the product's stock row and leaves its batches in place.
func (s *Store) DropStock(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data.stock, productID)
}

// DropBatch removes a batch row without touching stock or the purchases linked to it.
func (s *Store) DropBatch(batchID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data.batches, batchID)
}

// StockOf returns the committed stock row; the zero value when absent.
func (s *Store) StockOf(productID int64) ledger.Stock {
	st := s.read()
	return st.withName(st.stock[productID])
}

// HasStock reports whether a stock row exists for the product.
func (s *Store) HasStock(productID int64) bool {
	_, ok := s.read().stock[productID]
	return ok
}

// BatchesOf returns every committed batch of the product, exhausted ones included, in FEFO order.
func (s *Store) BatchesOf(productID int64) []ledger.Batch {
	var out []ledger.Batch

	for _, b := range s.read().batches {
		if b.ProductID == productID {
			out = append(out, b)
		}
	}

	sortFEFO(out)

	return out
}

// InvoiceCount returns the number of committed invoices.
func (s *Store) InvoiceCount() int {
	return len(s.read().invoices)
}

// SetInvoiceSequence moves the invoice counter, the next invoice gets seq+1.
func (s *Store) SetInvoiceSequence(seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.invoiceSeq = seq
}

func sortFEFO(bs []ledger.Batch) {
	slices.SortFunc(bs, func(a, b ledger.Batch) int {
		switch {
		case ledger.FEFOLess(a, b):
			return -1
		case ledger.FEFOLess(b, a):
			return 1
		}

		return 0
	})
}

// ledger.Repository

func (s *Store) GetStock(_ context.Context, productID int64) (*ledger.Stock, error) {
	st := s.read()

	stock, ok := st.stock[productID]
	if !ok {
		return nil, ledger.ErrMissingLedgerRecord
	}

	stock = st.withName(stock)

	return &stock, nil
}

func (s *Store) ListStock(_ context.Context) ([]*ledger.Stock, error) {
	st := s.read()

	out := make([]*ledger.Stock, 0, len(st.stock))
	for _, stock := range st.stock {
		stock = st.withName(stock)
		out = append(out, &stock)
	}

	slices.SortFunc(out, func(a, b *ledger.Stock) int {
		return strings.Compare(a.ProductName, b.ProductName)
	})

	return out, nil
}

func (s *Store) ListActiveBatches(_ context.Context, productID int64) ([]*ledger.Batch, error) {
	var out []*ledger.Batch

	for _, b := range s.BatchesOf(productID) {
		if b.Quantity > 0 {
			out = append(out, &b)
		}
	}

	return out, nil
}

func (s *Store) UpdateStockSettings(_ context.Context, productID int64, settings ledger.StockSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stock, ok := s.data.stock[productID]
	if !ok {
		return ledger.ErrMissingLedgerRecord
	}

	stock.LowStockThreshold = settings.LowStockThreshold
	stock.ExpiryDate = settings.ExpiryDate
	s.data.stock[productID] = stock

	return nil
}

func (s *Store) ListDrift(_ context.Context) ([]ledger.Drift, error) {
	st := s.read()

	totals := make(map[int64]int)
	for _, b := range st.batches {
		if b.Quantity > 0 {
			totals[b.ProductID] += b.Quantity
		}
	}

	var drift []ledger.Drift

	for id, stock := range st.stock {
		if stock.Quantity != totals[id] {
			drift = append(drift, ledger.Drift{
				ProductID:   id,
				ProductName: st.products[id],
				Stock:       stock.Quantity,
				BatchTotal:  totals[id],
			})
		}
	}

	slices.SortFunc(drift, func(a, b ledger.Drift) int { return cmp.Compare(a.ProductID, b.ProductID) })

	return drift, nil
}

// Purchases returns the store as a purchase.Repository.
func (s *Store) Purchases() purchase.Repository {
	return purchaseRepo{s}
}

// Sales returns the store as a sale.Repository.
func (s *Store) Sales() sale.Repository {
	return saleRepo{s}
}

type purchaseRepo struct{ s *Store }

func (r purchaseRepo) BeginTx(ctx context.Context) (purchase.Tx, error) {
	return r.s.Begin(ctx)
}

func (r purchaseRepo) GetPurchase(_ context.Context, id int64) (*purchase.Purchase, error) {
	st := r.s.read()

	p, ok := st.purchases[id]
	if !ok {
		return nil, purchase.ErrNotFound
	}

	p.ProductName = st.products[p.ProductID]

	return &p, nil
}

func (r purchaseRepo) ListPurchases(_ context.Context, filter purchase.ListFilter) ([]*purchase.Purchase, error) {
	st := r.s.read()

	var out []*purchase.Purchase

	for _, p := range st.purchases {
		if filter.ProductID != nil && p.ProductID != *filter.ProductID {
			continue
		}

		if filter.SupplierID != nil && (p.SupplierID == nil || *p.SupplierID != *filter.SupplierID) {
			continue
		}

		if filter.StartDate != nil && p.PurchasedAt.Before(*filter.StartDate) {
			continue
		}

		if filter.EndDate != nil && !p.PurchasedAt.Before(*filter.EndDate) {
			continue
		}

		p.ProductName = st.products[p.ProductID]
		out = append(out, &p)
	}

	slices.SortFunc(out, func(a, b *purchase.Purchase) int { return cmp.Compare(b.ID, a.ID) })

	return out, nil
}

type saleRepo struct{ s *Store }

func (r saleRepo) BeginTx(ctx context.Context) (sale.Tx, error) {
	return r.s.Begin(ctx)
}

func (r saleRepo) Availability(_ context.Context, productIDs []int64) (map[int64]ledger.Stock, error) {
	st := r.s.read()

	out := make(map[int64]ledger.Stock, len(productIDs))
	for _, id := range productIDs {
		if stock, ok := st.stock[id]; ok {
			out[id] = st.withName(stock)
		}
	}

	return out, nil
}

func (r saleRepo) GetInvoice(_ context.Context, id int64) (*sale.Invoice, error) {
	st := r.s.read()

	inv, ok := st.invoices[id]
	if !ok {
		return nil, sale.ErrNotFound
	}

	return assemble(st, inv), nil
}

func (r saleRepo) ListInvoices(_ context.Context, filter sale.ListFilter) ([]*sale.Invoice, error) {
	st := r.s.read()

	var out []*sale.Invoice

	for _, inv := range st.invoices {
		if filter.StartDate != nil && inv.SoldAt.Before(*filter.StartDate) {
			continue
		}

		if filter.EndDate != nil && !inv.SoldAt.Before(*filter.EndDate) {
			continue
		}

		out = append(out, assemble(st, inv))
	}

	slices.SortFunc(out, func(a, b *sale.Invoice) int { return cmp.Compare(b.ID, a.ID) })

	return out, nil
}

func (r saleRepo) DailySummary(_ context.Context, from, to time.Time) ([]sale.DailySummary, error) {
	st := r.s.read()

	days := make(map[time.Time]*sale.DailySummary)

	for _, inv := range st.invoices {
		if inv.SoldAt.Before(from) || !inv.SoldAt.Before(to) {
			continue
		}

		y, m, d := inv.SoldAt.UTC().Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

		sum, ok := days[day]
		if !ok {
			sum = &sale.DailySummary{Day: day}
			days[day] = sum
		}

		for _, item := range st.items[inv.ID] {
			sum.Revenue = sum.Revenue.Add(item.LineTotal)
			sum.Cost = sum.Cost.Add(item.CostTotal)
			sum.Items++
		}

		sum.Profit = sum.Revenue.Sub(sum.Cost)
	}

	out := make([]sale.DailySummary, 0, len(days))
	for _, sum := range days {
		out = append(out, *sum)
	}

	slices.SortFunc(out, func(a, b sale.DailySummary) int { return a.Day.Compare(b.Day) })

	return out, nil
}

func assemble(st *state, inv sale.Invoice) *sale.Invoice {
	items := st.items[inv.ID]

	inv.Items = make([]*sale.Item, len(items))
	for i := range items {
		item := items[i]
		item.ProductName = st.products[item.ProductID]
		inv.Items[i] = &item
	}

	return &inv
}

// Tx implements ledger.Tx, purchase.Tx and sale.Tx.
type Tx struct {
	store *Store
	st    *state
	done  bool
}

func (tx *Tx) Commit() error {
	if tx.done {
		return ErrTxDone
	}

	tx.done = true

	tx.store.mu.Lock()
	tx.store.data = tx.st
	tx.store.mu.Unlock()

	tx.store.txMu.Unlock()

	return nil
}

func (tx *Tx) Rollback() error {
	if tx.done {
		return ErrTxDone
	}

	tx.done = true
	tx.store.txMu.Unlock()

	return nil
}

func (tx *Tx) now() time.Time {
	return tx.store.Now()
}

func (tx *Tx) CreateStock(_ context.Context, productID int64, threshold int) error {
	if _, ok := tx.st.products[productID]; !ok {
		return fmt.Errorf("product %d: %w", productID, ledger.ErrMissingLedgerRecord)
	}

	if _, ok := tx.st.stock[productID]; ok {
		return nil
	}

	tx.st.stock[productID] = ledger.Stock{ProductID: productID, LowStockThreshold: threshold}

	return nil
}

func (tx *Tx) LockStock(_ context.Context, productID int64) (ledger.Stock, error) {
	stock, ok := tx.st.stock[productID]
	if !ok {
		return ledger.Stock{}, ledger.ErrMissingLedgerRecord
	}

	return tx.st.withName(stock), nil
}

func (tx *Tx) AddStock(_ context.Context, productID int64, delta int) error {
	stock, ok := tx.st.stock[productID]
	if !ok {
		return ledger.ErrMissingLedgerRecord
	}

	if stock.Quantity+delta < 0 {
		return fmt.Errorf("stock of product %d would become %d", productID, stock.Quantity+delta)
	}

	now := tx.now()
	stock.Quantity += delta
	stock.UpdatedAt = &now
	tx.st.stock[productID] = stock

	return nil
}

func (tx *Tx) LockActiveBatches(_ context.Context, productID int64) ([]ledger.Batch, error) {
	var out []ledger.Batch

	for _, b := range tx.st.batches {
		if b.ProductID == productID && b.Quantity > 0 {
			out = append(out, b)
		}
	}

	sortFEFO(out)

	return out, nil
}

func (tx *Tx) LockBatch(_ context.Context, batchID int64) (ledger.Batch, error) {
	b, ok := tx.st.batches[batchID]
	if !ok {
		return ledger.Batch{}, ledger.ErrMissingLedgerRecord
	}

	return b, nil
}

func (tx *Tx) LockBatchByNumber(_ context.Context, productID int64, number string) (ledger.Batch, error) {
	for _, b := range tx.st.batches {
		if b.ProductID == productID && b.Number == number {
			return b, nil
		}
	}

	return ledger.Batch{}, ledger.ErrMissingLedgerRecord
}

func (tx *Tx) CreateBatch(ctx context.Context, b *ledger.Batch) error {
	if _, err := tx.LockBatchByNumber(ctx, b.ProductID, b.Number); err == nil {
		return fmt.Errorf("batch %s of product %d: %w", b.Number, b.ProductID, ledger.ErrDuplicateBatchNumber)
	}

	if b.Quantity < 0 {
		return fmt.Errorf("batch %s quantity %d is negative", b.Number, b.Quantity)
	}

	b.ID = tx.st.id()
	b.CreatedAt = tx.now()
	tx.st.batches[b.ID] = *b

	return nil
}

func (tx *Tx) UpdateBatch(_ context.Context, b ledger.Batch) error {
	stored, ok := tx.st.batches[b.ID]
	if !ok {
		return ledger.ErrMissingLedgerRecord
	}

	for _, other := range tx.st.batches {
		if other.ID != b.ID && other.ProductID == stored.ProductID && other.Number == b.Number {
			return fmt.Errorf("batch %s of product %d: %w", b.Number, stored.ProductID, ledger.ErrDuplicateBatchNumber)
		}
	}

	stored.Number = b.Number
	stored.CostPrice = b.CostPrice
	stored.ExpiryDate = b.ExpiryDate
	tx.st.batches[b.ID] = stored

	return nil
}

func (tx *Tx) AddBatch(_ context.Context, batchID int64, delta int) error {
	b, ok := tx.st.batches[batchID]
	if !ok {
		return ledger.ErrMissingLedgerRecord
	}

	if b.Quantity+delta < 0 {
		return fmt.Errorf("batch %s would become %d", b.Number, b.Quantity+delta)
	}

	b.Quantity += delta
	tx.st.batches[batchID] = b

	return nil
}

// DeleteBatch removes the batch and unlinks the purchases that point at it.
func (tx *Tx) DeleteBatch(_ context.Context, batchID int64) error {
	if _, ok := tx.st.batches[batchID]; !ok {
		return ledger.ErrMissingLedgerRecord
	}

	delete(tx.st.batches, batchID)

	for id, p := range tx.st.purchases {
		if p.BatchID != nil && *p.BatchID == batchID {
			p.BatchID = nil
			tx.st.purchases[id] = p
		}
	}

	return nil
}

func (tx *Tx) CreatePurchase(_ context.Context, p *purchase.Purchase) error {
	if _, ok := tx.st.products[p.ProductID]; !ok {
		return fmt.Errorf("product %d: %w", p.ProductID, ledger.ErrMissingLedgerRecord)
	}

	p.ID = tx.st.id()
	p.PurchasedAt = tx.now()
	p.ProductName = tx.st.products[p.ProductID]
	tx.st.purchases[p.ID] = *p

	return nil
}

func (tx *Tx) LockPurchase(_ context.Context, id int64) (*purchase.Purchase, error) {
	p, ok := tx.st.purchases[id]
	if !ok {
		return nil, purchase.ErrNotFound
	}

	return &p, nil
}

func (tx *Tx) UpdatePurchase(_ context.Context, p *purchase.Purchase) error {
	if _, ok := tx.st.purchases[p.ID]; !ok {
		return purchase.ErrNotFound
	}

	now := tx.now()
	p.UpdatedAt = &now
	tx.st.purchases[p.ID] = *p

	return nil
}

func (tx *Tx) DeletePurchase(_ context.Context, id int64) error {
	if _, ok := tx.st.purchases[id]; !ok {
		return purchase.ErrNotFound
	}

	delete(tx.st.purchases, id)

	return nil
}

func (tx *Tx) NextInvoiceSequence(_ context.Context) (int64, error) {
	tx.st.invoiceSeq++
	return tx.st.invoiceSeq, nil
}

func (tx *Tx) CreateInvoice(_ context.Context, inv *sale.Invoice) error {
	for _, other := range tx.st.invoices {
		if other.Number == inv.Number {
			return fmt.Errorf("invoice %s: %w", inv.Number, ledger.ErrDuplicateInvoiceNumber)
		}
	}

	inv.ID = tx.st.id()
	inv.SoldAt = tx.now()

	stored := *inv
	stored.Items = nil
	tx.st.invoices[inv.ID] = stored

	return nil
}

func (tx *Tx) CreateItem(_ context.Context, item *sale.Item) error {
	if _, ok := tx.st.invoices[item.InvoiceID]; !ok {
		return sale.ErrNotFound
	}

	item.ID = tx.st.id()
	tx.st.items[item.InvoiceID] = append(slices.Clone(tx.st.items[item.InvoiceID]), *item)

	return nil
}
