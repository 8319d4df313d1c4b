// Package cart implements the per-user and guest cart ledgers and their
// derived totals.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/dreamware/petsclaws/internal/catalog"
	"github.com/dreamware/petsclaws/internal/storage"
)

// DefaultGuest addresses the single anonymous cart of a local install.
const DefaultGuest = ""

// Line is one product snapshot and its quantity. Quantity is always >= 1.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Totals are derived from lines on every read and never stored.
type Totals struct {
	Items int     `json:"totalItems"`
	Price float64 `json:"totalPrice"`
}

// Compute sums quantities and quantity × effective price.
func Compute(lines []Line) Totals {
	var t Totals
	sum := decimal.Zero
	for _, l := range lines {
		t.Items += l.Quantity
		line := decimal.NewFromFloat(l.Product.EffectivePrice()).Mul(decimal.NewFromInt(int64(l.Quantity)))
		sum = sum.Add(line)
	}
	t.Price = sum.InexactFloat64()
	return t
}

// GuestKey is the store key of a guest cart.
func GuestKey(guestID string) string {
	if guestID == DefaultGuest {
		return storage.KeyGuestCart
	}
	return storage.KeyGuestCart + ":" + guestID
}

// Ledger owns the user carts map (storage.KeyCarts) and the guest cart keys.
// A single mutex serializes every read-modify-write it performs.
type Ledger struct {
	store storage.Store
	log   *zap.Logger
	mu    sync.Mutex
}

// NewLedger creates a ledger over s. A nil logger disables logging.
func NewLedger(s storage.Store, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: s, log: logger}
}

// Cart is a handle on one user's or one guest's lines.
type Cart struct {
	ledger *Ledger
	load   func(ctx context.Context) ([]Line, error)
	save   func(ctx context.Context, lines []Line) error
	owner  string
}

// User returns the cart handle of userID.
func (l *Ledger) User(userID string) *Cart {
	return &Cart{
		ledger: l,
		owner:  "user:" + userID,
		load: func(ctx context.Context) ([]Line, error) {
			carts, err := l.carts(ctx)
			return carts[userID], err
		},
		save: func(ctx context.Context, lines []Line) error {
			carts, err := l.carts(ctx)
			if err != nil {
				return err
			}
			if carts == nil {
				carts = make(map[string][]Line)
			}
			if len(lines) == 0 {
				delete(carts, userID)
			} else {
				carts[userID] = lines
			}
			return storage.WriteCollection(ctx, l.store, storage.KeyCarts, carts)
		},
	}
}

// Guest returns the cart handle of guestID (DefaultGuest for the local one).
func (l *Ledger) Guest(guestID string) *Cart {
	key := GuestKey(guestID)
	return &Cart{
		ledger: l,
		owner:  "guest:" + guestID,
		load: func(ctx context.Context) ([]Line, error) {
			lines, _, err := storage.ReadCollection[[]Line](ctx, l.store, key)
			return lines, err
		},
		save: func(ctx context.Context, lines []Line) error {
			if len(lines) == 0 {
				return l.store.Delete(ctx, key)
			}
			return storage.WriteCollection(ctx, l.store, key, lines)
		},
	}
}

func (l *Ledger) carts(ctx context.Context) (map[string][]Line, error) {
	carts, _, err := storage.ReadCollection[map[string][]Line](ctx, l.store, storage.KeyCarts)
	return carts, err
}

// Lines returns the cart's lines, empty when none.
func (c *Cart) Lines(ctx context.Context) ([]Line, error) {
	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()

	lines, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []Line{}
	}
	return lines, nil
}

// Totals returns the derived totals of the cart.
func (c *Cart) Totals(ctx context.Context) (Totals, error) {
	lines, err := c.Lines(ctx)
	if err != nil {
		return Totals{}, err
	}
	return Compute(lines), nil
}

// mutate runs fn over the current lines and persists the result.
func (c *Cart) mutate(ctx context.Context, op string, fn func([]Line) []Line) ([]Line, error) {
	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()

	lines, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	lines = fn(lines)
	if err := c.save(ctx, lines); err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, c.owner, err)
	}
	c.ledger.log.Debug("cart updated",
		zap.String("op", op),
		zap.String("owner", c.owner),
		zap.Int("lines", len(lines)))
	if lines == nil {
		lines = []Line{}
	}
	return lines, nil
}

// Add increments the line of p by quantity, appending a new line when p is
// not in the cart yet. A quantity below 1 adds one unit.
func (c *Cart) Add(ctx context.Context, p catalog.Product, quantity int) ([]Line, error) {
	if quantity < 1 {
		quantity = 1
	}
	return c.mutate(ctx, "add", func(lines []Line) []Line {
		idx := slices.IndexFunc(lines, func(l Line) bool { return l.Product.ID == p.ID })
		if idx >= 0 {
			lines[idx].Quantity += quantity
			return lines
		}
		return append(lines, Line{Product: p, Quantity: quantity})
	})
}

// SetQuantity replaces the quantity of productID. A quantity <= 0 removes
// the line. Setting a product that is not in the cart changes nothing.
func (c *Cart) SetQuantity(ctx context.Context, productID, quantity int) ([]Line, error) {
	if quantity <= 0 {
		return c.Remove(ctx, productID)
	}
	return c.mutate(ctx, "set_quantity", func(lines []Line) []Line {
		for i := range lines {
			if lines[i].Product.ID == productID {
				lines[i].Quantity = quantity
			}
		}
		return lines
	})
}

// Remove deletes the line of productID, if any.
func (c *Cart) Remove(ctx context.Context, productID int) ([]Line, error) {
	return c.mutate(ctx, "remove", func(lines []Line) []Line {
		return slices.DeleteFunc(lines, func(l Line) bool { return l.Product.ID == productID })
	})
}

// Clear deletes the cart entirely.
func (c *Cart) Clear(ctx context.Context) error {
	_, err := c.mutate(ctx, "clear", func([]Line) []Line { return nil })
	return err
}

// Get returns the lines of userID's cart.
func (l *Ledger) Get(ctx context.Context, userID string) ([]Line, error) {
	return l.User(userID).Lines(ctx)
}

// Add adds quantity units of p to userID's cart.
func (l *Ledger) Add(ctx context.Context, userID string, p catalog.Product, quantity int) ([]Line, error) {
	return l.User(userID).Add(ctx, p, quantity)
}

// SetQuantity sets the quantity of productID in userID's cart.
func (l *Ledger) SetQuantity(ctx context.Context, userID string, productID, quantity int) ([]Line, error) {
	return l.User(userID).SetQuantity(ctx, productID, quantity)
}

// Remove deletes productID from userID's cart.
func (l *Ledger) Remove(ctx context.Context, userID string, productID int) ([]Line, error) {
	return l.User(userID).Remove(ctx, productID)
}

// Clear deletes userID's cart entry.
func (l *Ledger) Clear(ctx context.Context, userID string) error {
	return l.User(userID).Clear(ctx)
}

// AdoptGuest moves the guest cart of guestID into userID's cart when the
// user's cart is empty and the guest cart is not. The guest key is cleared
// after the user cart is written; these are two independent writes. When
// the user already has lines the guest cart is left untouched.
func (l *Ledger) AdoptGuest(ctx context.Context, userID, guestID string) (bool, error) {
	user, guest := l.User(userID), l.Guest(guestID)

	l.mu.Lock()
	defer l.mu.Unlock()

	existing, err := user.load(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	lines, err := guest.load(ctx)
	if err != nil {
		return false, err
	}
	if len(lines) == 0 {
		return false, nil
	}
	if err := user.save(ctx, lines); err != nil {
		return false, fmt.Errorf("adopt guest cart: %w", err)
	}
	if err := guest.save(ctx, nil); err != nil {
		return true, fmt.Errorf("clear guest cart: %w", err)
	}
	l.log.Debug("guest cart adopted",
		zap.String("user_id", userID),
		zap.String("guest_id", guestID),
		zap.Int("lines", len(lines)))
	return true, nil
}
