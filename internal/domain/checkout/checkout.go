// Package checkout implements the short-lived state machine that converts a
// cart snapshot into a persisted order, and the session guard ensuring at
// most one checkout is in flight.
package checkout

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/karak-pos/internal/domain/cart"
	"github.com/xenking/karak-pos/internal/domain/order"
	"github.com/xenking/karak-pos/internal/receipt"
)

// State enumerates the checkout machine states.
type State string

const (
	StateSelectingMethod  State = "selecting_method"
	StateCapturingDetails State = "capturing_details"
	StateProcessing       State = "processing"
	StateCompleted        State = "completed"
	StateCancelled        State = "cancelled"
)

// Sentinel errors for checkout transitions.
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrNoteRequired  = errors.New("a note is required for this payment method")
	ErrUnknownMethod = errors.New("unknown payment method")
	ErrBadTransition = errors.New("operation not valid in current checkout state")
)

// Journal is the commit boundary. order.Journal satisfies it.
type Journal interface {
	Append(ctx context.Context, in order.Input) (order.Order, error)
}

// Renderer produces the best-effort receipt artifact after the commit.
type Renderer interface {
	Render(ctx context.Context, d receipt.Data) error
}

// Process is one checkout attempt. It is discarded on completion or
// cancellation; the session creates a fresh one per attempt.
type Process struct {
	cart     *cart.Cart
	journal  Journal
	receipts Renderer
	lg       *zap.Logger
	delay    time.Duration
	onDone   func()

	mu       sync.Mutex
	state    State
	method   order.PaymentMethod
	order    *order.Order
	timer    *time.Timer
	finished bool
}

func newProcess(c *cart.Cart, j Journal, r Renderer, delay time.Duration, onDone func(), lg *zap.Logger) *Process {
	return &Process{
		cart:     c,
		journal:  j,
		receipts: r,
		lg:       lg,
		delay:    delay,
		onDone:   onDone,
		state:    StateSelectingMethod,
	}
}

// State returns the current machine state.
func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Method returns the selected payment method, if one has been chosen.
func (p *Process) Method() (order.PaymentMethod, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.method, p.method != ""
}

// Order returns the committed order once the machine has reached Completed.
func (p *Process) Order() (order.Order, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.order == nil {
		return order.Order{}, false
	}
	return *p.order, true
}

// SelectMethod chooses the payment method. Cash and Card commit immediately;
// Account and Wastage move to detail capture and wait for Confirm.
func (p *Process) SelectMethod(ctx context.Context, m order.PaymentMethod) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateSelectingMethod {
		return ErrBadTransition
	}
	if !m.Valid() {
		return errors.Wrapf(ErrUnknownMethod, "%q", m)
	}

	p.method = m
	if m.RequiresNote() {
		p.state = StateCapturingDetails
		return nil
	}
	return p.processLocked(ctx, "")
}

// Confirm completes detail capture with the given note. An empty note keeps
// the machine in CapturingDetails.
func (p *Process) Confirm(ctx context.Context, note string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateCapturingDetails {
		return ErrBadTransition
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return ErrNoteRequired
	}
	return p.processLocked(ctx, note)
}

// Cancel discards the checkout without mutating the cart or the journal.
// Only the pre-commit states can be cancelled; Processing is not
// user-interruptible.
func (p *Process) Cancel() error {
	p.mu.Lock()
	if p.state != StateSelectingMethod && p.state != StateCapturingDetails {
		p.mu.Unlock()
		return ErrBadTransition
	}
	p.state = StateCancelled
	p.finished = true
	p.mu.Unlock()

	if p.onDone != nil {
		p.onDone()
	}
	return nil
}

// processLocked runs the Processing state: commit the order, attempt the
// receipt artifact, reach Completed, and schedule the auto-exit. The commit
// happens first so a receipt failure can never lose the transaction.
func (p *Process) processLocked(ctx context.Context, note string) error {
	p.state = StateProcessing

	cartLines := p.cart.Lines()
	lines := make([]order.Line, len(cartLines))
	for i, l := range cartLines {
		lines[i] = order.Line{
			ItemID:   l.ItemID,
			Name:     l.Name,
			Price:    l.Price,
			Category: l.Category,
			Quantity: l.Quantity,
		}
	}
	if len(lines) == 0 {
		p.state = StateSelectingMethod
		return ErrEmptyCart
	}

	o, err := p.journal.Append(ctx, order.Input{
		Lines:    lines,
		Gratuity: p.cart.Gratuity(),
		Total:    p.cart.Total(),
		Method:   p.method,
		Note:     note,
	})
	if err != nil {
		// Nothing was committed; let the operator pick a method again.
		p.state = StateSelectingMethod
		return errors.Wrap(err, "commit order")
	}
	p.order = &o

	if p.receipts != nil {
		if rerr := p.receipts.Render(ctx, receipt.Data{
			OrderID:   o.ID,
			Lines:     o.Lines,
			Total:     o.Total,
			Gratuity:  o.Gratuity,
			Method:    o.Method,
			Note:      o.Note,
			Timestamp: o.CreatedAt,
		}); rerr != nil {
			p.lg.Warn("receipt generation failed",
				zap.Int64("order_id", o.ID),
				zap.Error(rerr),
			)
		}
	}

	p.state = StateCompleted
	p.timer = time.AfterFunc(p.delay, p.autoExit)
	return nil
}

// autoExit fires once after the post-completion delay: it clears the cart
// and detaches the process from the session.
func (p *Process) autoExit() {
	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return
	}
	p.finished = true
	p.mu.Unlock()

	p.cart.Clear()
	if p.onDone != nil {
		p.onDone()
	}
}

// stop cancels a pending auto-exit without clearing the cart. Stopping after
// the timer has fired is harmless; the clear side effect runs at most once.
func (p *Process) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.finished = true
}
