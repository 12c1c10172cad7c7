// Package file persists the terminal's three state records — menu, orders,
// and identities — as whole-document JSON snapshots on local disk. Each
// record is rewritten in full on every mutation and reloaded at process
// start. There is no schema versioning: a snapshot that fails to decode is
// treated as absent and replaced by defaults on the next save.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/karak-pos/internal/domain/access"
	"github.com/xenking/karak-pos/internal/domain/menu"
	"github.com/xenking/karak-pos/internal/domain/order"
)

const (
	menuFile       = "menu.json"
	ordersFile     = "orders.json"
	identitiesFile = "identities.json"
)

type menuSnapshot struct {
	Categories []string    `json:"categories"`
	Items      []menu.Item `json:"items"`
}

type ordersSnapshot struct {
	Orders []order.Order `json:"orders"`
}

type identitiesSnapshot struct {
	User  *access.Identity  `json:"user"`
	Users []access.Identity `json:"users"`
}

// State is everything loaded at process start.
type State struct {
	Categories []string
	Items      []menu.Item
	Orders     []order.Order
	User       *access.Identity
	Users      []access.Identity
}

// Store reads and writes the snapshot files under a single directory. It
// implements the store interfaces of the menu, order, and access packages.
type Store struct {
	dir string
	lg  *zap.Logger
}

// Compile-time checks that Store satisfies the domain store interfaces.
var (
	_ menu.Store   = (*Store)(nil)
	_ order.Store  = (*Store)(nil)
	_ access.Store = (*Store)(nil)
)

// New creates the data directory if needed.
func New(dir string, lg *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	return &Store{dir: dir, lg: lg}, nil
}

// Dir returns the data directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads the three records concurrently. Missing or structurally
// incompatible files fall back to defaults instead of failing.
func (s *Store) Load(ctx context.Context) (*State, error) {
	var (
		st State
		g  errgroup.Group
	)

	g.Go(func() error {
		var snap menuSnapshot
		if s.readSnapshot(menuFile, &snap) && len(snap.Items) > 0 {
			st.Categories = snap.Categories
			st.Items = snap.Items
			return nil
		}
		st.Categories = menu.DefaultCategories()
		st.Items = menu.DefaultItems()
		return nil
	})
	g.Go(func() error {
		var snap ordersSnapshot
		if s.readSnapshot(ordersFile, &snap) {
			st.Orders = snap.Orders
		}
		return nil
	})
	g.Go(func() error {
		var snap identitiesSnapshot
		if s.readSnapshot(identitiesFile, &snap) && len(snap.Users) > 0 {
			st.User = snap.User
			st.Users = snap.Users
			return nil
		}
		st.Users = access.DefaultIdentities()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveMenu implements menu.Store.
func (s *Store) SaveMenu(_ context.Context, categories []string, items []menu.Item) error {
	return s.writeSnapshot(menuFile, menuSnapshot{Categories: categories, Items: items})
}

// SaveOrders implements order.Store.
func (s *Store) SaveOrders(_ context.Context, orders []order.Order) error {
	return s.writeSnapshot(ordersFile, ordersSnapshot{Orders: orders})
}

// SaveIdentities implements access.Store.
func (s *Store) SaveIdentities(_ context.Context, current *access.Identity, identities []access.Identity) error {
	return s.writeSnapshot(identitiesFile, identitiesSnapshot{User: current, Users: identities})
}

// readSnapshot reports whether the file existed and decoded cleanly.
func (s *Store) readSnapshot(name string, v any) bool {
	path := filepath.Join(s.dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.lg.Warn("read snapshot", zap.String("file", name), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		// Incompatible stored shape: treat as absent rather than crash.
		s.lg.Warn("snapshot unreadable, falling back to defaults",
			zap.String("file", name),
			zap.Error(err),
		)
		return false
	}
	return true
}

// writeSnapshot writes to a temp file and renames it into place so a crash
// mid-write never leaves a truncated record.
func (s *Store) writeSnapshot(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", name)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "create temp for %s", name)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "write %s", name)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "close %s", name)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "replace %s", name)
	}
	return nil
}
