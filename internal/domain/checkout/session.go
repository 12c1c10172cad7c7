package checkout

import (
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/karak-pos/internal/domain/cart"
)

// Session errors.
var (
	ErrCheckoutActive = errors.New("a checkout is already in progress")
	ErrNoCheckout     = errors.New("no checkout in progress")
)

// Session owns the terminal's single cart and enforces that at most one
// checkout process exists at a time.
type Session struct {
	cart     *cart.Cart
	journal  Journal
	receipts Renderer
	delay    time.Duration
	lg       *zap.Logger

	mu     sync.Mutex
	active *Process
}

// NewSession creates a Session around the given cart. delay is the fixed
// auto-return delay after a checkout reaches Completed.
func NewSession(c *cart.Cart, j Journal, r Renderer, delay time.Duration, lg *zap.Logger) *Session {
	return &Session{
		cart:     c,
		journal:  j,
		receipts: r,
		delay:    delay,
		lg:       lg,
	}
}

// Cart returns the session's cart.
func (s *Session) Cart() *cart.Cart {
	return s.cart
}

// Begin starts a new checkout for the current cart contents.
func (s *Session) Begin() (*Process, error) {
	if s.cart.Empty() {
		return nil, ErrEmptyCart
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return nil, ErrCheckoutActive
	}

	p := newProcess(s.cart, s.journal, s.receipts, s.delay, s.detach, s.lg)
	s.active = p
	return p, nil
}

// Active returns the in-flight checkout process, if any.
func (s *Session) Active() (*Process, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.active != nil
}

// Close stops any pending auto-exit timer without re-triggering the cart
// clear. Used when the session ends.
func (s *Session) Close() {
	s.mu.Lock()
	p := s.active
	s.active = nil
	s.mu.Unlock()

	if p != nil {
		p.stop()
	}
}

func (s *Session) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
}
