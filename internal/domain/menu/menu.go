// Package menu holds the item and category catalog. Items are copied into
// cart and order lines at add-time, so catalog edits and deletes never
// retroactively change a cart or a historical order.
package menu

import (
	"context"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Sentinel errors for catalog validation.
var (
	ErrEmptyName     = errors.New("item name required")
	ErrNegativePrice = errors.New("price must not be negative")
	ErrEmptyCategory = errors.New("category name required")
)

// Item is a single catalog entry.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

// Store persists the catalog after each administrative mutation.
type Store interface {
	SaveMenu(ctx context.Context, categories []string, items []Item) error
}

// Catalog owns the menu definitions for one location.
type Catalog struct {
	store Store
	lg    *zap.Logger

	mu         sync.RWMutex
	categories []string
	items      []Item
}

// NewCatalog creates a Catalog seeded with previously persisted state.
func NewCatalog(store Store, categories []string, items []Item, lg *zap.Logger) *Catalog {
	return &Catalog{
		store:      store,
		lg:         lg,
		categories: append([]string(nil), categories...),
		items:      append([]Item(nil), items...),
	}
}

// Categories returns the category list in display order.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.categories...)
}

// Items returns all catalog items in display order.
func (c *Catalog) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Item(nil), c.items...)
}

// Get returns the item with the given id.
func (c *Catalog) Get(id string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Add appends a new item to the catalog.
func (c *Catalog) Add(ctx context.Context, name string, price decimal.Decimal, category string) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, ErrEmptyName
	}
	if price.IsNegative() {
		return Item{}, ErrNegativePrice
	}

	it := Item{
		ID:       uuid.NewString(),
		Name:     name,
		Price:    price,
		Category: category,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, it)
	c.persistLocked(ctx)
	return it, nil
}

// UpdateItem replaces the mutable fields of an existing item. An unknown id
// is a no-op reported through the bool.
func (c *Catalog) UpdateItem(ctx context.Context, id, name string, price decimal.Decimal, category string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrEmptyName
	}
	if price.IsNegative() {
		return false, ErrNegativePrice
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		c.items[i].Name = name
		c.items[i].Price = price
		c.items[i].Category = category
		c.persistLocked(ctx)
		return true, nil
	}
	return false, nil
}

// DeleteItem removes the item with the given id. Unknown ids are a no-op.
func (c *Catalog) DeleteItem(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		c.items = append(c.items[:i], c.items[i+1:]...)
		c.persistLocked(ctx)
		return true
	}
	return false
}

// AddCategory appends a new category name.
func (c *Catalog) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCategory
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = append(c.categories, name)
	c.persistLocked(ctx)
	return nil
}

func (c *Catalog) persistLocked(ctx context.Context) {
	categories := append([]string(nil), c.categories...)
	items := append([]Item(nil), c.items...)
	if err := c.store.SaveMenu(ctx, categories, items); err != nil {
		c.lg.Error("persist menu", zap.Error(err))
	}
}

// DefaultCategories is the category list seeded on first run.
func DefaultCategories() []string {
	return []string{"Karak", "Savoury Paratha", "Dessert Paratha"}
}

// DefaultItems is the menu seeded on first run or after a corrupt snapshot.
func DefaultItems() []Item {
	seed := []struct {
		name     string
		price    int64
		category string
	}{
		{"Signature Karak", 45, "Karak"},
		{"Less Sugar Karak", 45, "Karak"},
		{"Plain Paratha", 20, "Savoury Paratha"},
		{"Aloo & Cheese Paratha", 30, "Savoury Paratha"},
		{"Chicken Mince Paratha", 35, "Savoury Paratha"},
		{"Beef Mince Paratha", 35, "Savoury Paratha"},
		{"Nutella Paratha", 40, "Dessert Paratha"},
		{"Caramel Drizzle Paratha", 30, "Dessert Paratha"},
		{"Chocolate Drizzle Paratha", 30, "Dessert Paratha"},
		{"White Choc Drizzle Paratha", 30, "Dessert Paratha"},
	}

	items := make([]Item, len(seed))
	for i, s := range seed {
		items[i] = Item{
			ID:       uuid.NewString(),
			Name:     s.name,
			Price:    decimal.NewFromInt(s.price),
			Category: s.category,
		}
	}
	return items
}
