// Package access maps 4-digit codes to operator identities. Codes are
// compared in plain form with no lockout, hashing, or rate limiting — a
// known gap that is acceptable only on a single trusted device, kept as-is
// on purpose.
package access

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Role gates which UI surfaces an operator can reach; enforcement is
// presentation-level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// ErrInvalidCode is returned by ResetCode for codes shorter than 4
// characters or containing non-digits.
var ErrInvalidCode = errors.New("access code must be at least 4 digits")

// Identity is one operator.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
	Role Role   `json:"role"`
}

// Store persists the identity record after each mutation.
type Store interface {
	SaveIdentities(ctx context.Context, current *Identity, identities []Identity) error
}

// Directory holds the known identities and the currently signed-in operator.
type Directory struct {
	store Store
	lg    *zap.Logger

	mu         sync.Mutex
	current    *Identity
	identities []Identity
}

// NewDirectory creates a Directory seeded with persisted state.
func NewDirectory(store Store, current *Identity, identities []Identity, lg *zap.Logger) *Directory {
	return &Directory{
		store:      store,
		lg:         lg,
		current:    current,
		identities: append([]Identity(nil), identities...),
	}
}

// Authenticate matches code against the known identities in order and signs
// in the first match. It reports not-found through the bool.
func (d *Directory) Authenticate(ctx context.Context, code string) (Identity, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range d.identities {
		if id.Code == code {
			cur := id
			d.current = &cur
			d.persistLocked(ctx)
			return id, true
		}
	}
	return Identity{}, false
}

// Logout clears the signed-in operator.
func (d *Directory) Logout(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = nil
	d.persistLocked(ctx)
}

// Current returns the signed-in operator, if any.
func (d *Directory) Current() (Identity, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return Identity{}, false
	}
	return *d.current, true
}

// Identities returns all known identities.
func (d *Directory) Identities() []Identity {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Identity(nil), d.identities...)
}

// ResetCode replaces the stored code for the given identity. The new code
// must be at least 4 digits; uniqueness across identities is not checked.
// An unknown id is a no-op reported through the bool.
func (d *Directory) ResetCode(ctx context.Context, id, newCode string) (bool, error) {
	if !validCode(newCode) {
		return false, ErrInvalidCode
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.identities {
		if d.identities[i].ID != id {
			continue
		}
		d.identities[i].Code = newCode
		if d.current != nil && d.current.ID == id {
			d.current.Code = newCode
		}
		d.persistLocked(ctx)
		return true, nil
	}
	return false, nil
}

func validCode(code string) bool {
	if len(code) < 4 {
		return false
	}
	for i := range len(code) {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

func (d *Directory) persistLocked(ctx context.Context) {
	var current *Identity
	if d.current != nil {
		cur := *d.current
		current = &cur
	}
	identities := append([]Identity(nil), d.identities...)
	if err := d.store.SaveIdentities(ctx, current, identities); err != nil {
		d.lg.Error("persist identities", zap.Error(err))
	}
}

// DefaultIdentities is the identity set seeded on first run: an admin with
// code 1234 and a staff member with code 0000.
func DefaultIdentities() []Identity {
	return []Identity{
		{ID: uuid.NewString(), Name: "Admin", Code: "1234", Role: RoleAdmin},
		{ID: uuid.NewString(), Name: "Staff", Code: "0000", Role: RoleStaff},
	}
}
