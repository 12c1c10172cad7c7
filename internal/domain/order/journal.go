package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Sentinel errors for journal validation.
var (
	ErrEmptyLines    = errors.New("order must have at least one line")
	ErrUnknownMethod = errors.New("unknown payment method")
	ErrUnknownStatus = errors.New("unknown order status")
)

// Store persists the full order log after each mutation. The journal is the
// single writer; implementations only need to serialize the given snapshot.
type Store interface {
	SaveOrders(ctx context.Context, orders []Order) error
}

// Input holds the fields checkout supplies when committing an order.
// ID, status, and creation time are assigned by the journal.
type Input struct {
	Lines    []Line
	Gratuity decimal.Decimal
	Total    decimal.Decimal
	Method   PaymentMethod
	Note     string
}

// Update carries the fields a content edit may change. Nil pointers (and a
// nil Lines slice) leave the stored value untouched. Total is stored
// verbatim — the journal never recomputes it; the editing caller must.
type Update struct {
	Lines    []Line
	Method   *PaymentMethod
	Total    *decimal.Decimal
	Gratuity *decimal.Decimal
	Note     *string
}

// Filter selects orders for listing. The zero value matches everything in
// insertion order.
type Filter struct {
	// Status matches orders with exactly this status when non-nil.
	Status *Status
	// Month restricts to orders created in the given local-time month,
	// formatted as "2006-01". Empty means no window.
	Month string
	// NewestFirst sorts descending by id (history views). When false the
	// insertion order is kept (active queue, FIFO service order).
	NewestFirst bool
}

// Journal is the append-only order log. Appends assign strictly increasing
// time-derived ids; later edits mutate records in place. Mutations on an
// unknown id are deliberate no-ops reported through the returned bool, never
// through an error.
type Journal struct {
	store Store
	lg    *zap.Logger
	now   func() time.Time

	mu     sync.Mutex
	orders []Order
	lastID int64
}

// NewJournal creates a Journal seeded with previously persisted orders.
func NewJournal(store Store, seed []Order, lg *zap.Logger) *Journal {
	j := &Journal{
		store: store,
		lg:    lg,
		now:   time.Now,
	}
	for _, o := range seed {
		j.orders = append(j.orders, o.clone())
		if o.ID > j.lastID {
			j.lastID = o.ID
		}
	}
	return j
}

// Append validates the input, assigns an id and pending status, stamps the
// creation time, and persists the extended log. The append is atomic from
// the caller's perspective: if the snapshot write fails, the in-memory log
// is rolled back and the order does not exist.
func (j *Journal) Append(ctx context.Context, in Input) (Order, error) {
	if len(in.Lines) == 0 {
		return Order{}, ErrEmptyLines
	}
	if !in.Method.Valid() {
		return Order{}, errors.Wrapf(ErrUnknownMethod, "%q", in.Method)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	createdAt := j.now()
	// Millisecond timestamps sort chronologically on their own; the guard
	// keeps ids strictly increasing even within the same millisecond.
	id := createdAt.UnixMilli()
	if id <= j.lastID {
		id = j.lastID + 1
	}

	o := Order{
		ID:        id,
		Lines:     CloneLines(in.Lines),
		Gratuity:  in.Gratuity,
		Total:     in.Total,
		Method:    in.Method,
		Note:      in.Note,
		CreatedAt: createdAt,
		Status:    StatusPending,
	}

	j.orders = append(j.orders, o)
	prevLast := j.lastID
	j.lastID = id

	if err := j.persistLocked(ctx); err != nil {
		j.orders = j.orders[:len(j.orders)-1]
		j.lastID = prevLast
		return Order{}, errors.Wrap(err, "persist order")
	}

	return o.clone(), nil
}

// UpdateStatus sets the status of the given order. It reports whether the
// order existed; an unknown id is a silent no-op. Direction is not enforced
// — pending and completed are both accepted either way.
func (j *Journal) UpdateStatus(ctx context.Context, id int64, status Status) (bool, error) {
	if !status.Valid() {
		return false, errors.Wrapf(ErrUnknownStatus, "%q", status)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	i := j.indexLocked(id)
	if i < 0 {
		return false, nil
	}
	j.orders[i].Status = status
	j.persistBestEffortLocked(ctx)
	return true, nil
}

// Update merges the given fields into an existing order. The caller must
// supply a pre-recomputed total; it is stored verbatim. An update that would
// leave the order with zero lines is rejected. An unknown id is a no-op.
func (j *Journal) Update(ctx context.Context, id int64, upd Update) (bool, error) {
	if upd.Lines != nil && len(upd.Lines) == 0 {
		return false, ErrEmptyLines
	}
	if upd.Method != nil && !upd.Method.Valid() {
		return false, errors.Wrapf(ErrUnknownMethod, "%q", *upd.Method)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	i := j.indexLocked(id)
	if i < 0 {
		return false, nil
	}

	o := &j.orders[i]
	if upd.Lines != nil {
		o.Lines = CloneLines(upd.Lines)
	}
	if upd.Method != nil {
		o.Method = *upd.Method
	}
	if upd.Total != nil {
		o.Total = *upd.Total
	}
	if upd.Gratuity != nil {
		o.Gratuity = *upd.Gratuity
	}
	if upd.Note != nil {
		o.Note = *upd.Note
	}

	j.persistBestEffortLocked(ctx)
	return true, nil
}

// Get returns a copy of the order with the given id.
func (j *Journal) Get(id int64) (Order, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	i := j.indexLocked(id)
	if i < 0 {
		return Order{}, false
	}
	return j.orders[i].clone(), true
}

// List returns copies of the orders matching the filter.
func (j *Journal) List(f Filter) []Order {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Order, 0, len(j.orders))
	for _, o := range j.orders {
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.Month != "" && o.CreatedAt.Local().Format("2006-01") != f.Month {
			continue
		}
		out = append(out, o.clone())
	}

	if f.NewestFirst {
		sort.SliceStable(out, func(a, b int) bool { return out[a].ID > out[b].ID })
	}
	return out
}

// All returns a copy of the full log in insertion order.
func (j *Journal) All() []Order {
	return j.List(Filter{})
}

func (j *Journal) indexLocked(id int64) int {
	for i := range j.orders {
		if j.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (j *Journal) persistLocked(ctx context.Context) error {
	snapshot := make([]Order, len(j.orders))
	for i, o := range j.orders {
		snapshot[i] = o.clone()
	}
	return j.store.SaveOrders(ctx, snapshot)
}

// persistBestEffortLocked is used by edits: the in-memory change stands even
// when the snapshot write fails, since the next mutation rewrites the whole
// record anyway.
func (j *Journal) persistBestEffortLocked(ctx context.Context) {
	if err := j.persistLocked(ctx); err != nil {
		j.lg.Error("persist order journal", zap.Error(err))
	}
}
