package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/dreamware/petsclaws/internal/storage"
)

// ErrEmptyCart is returned when an order would have no items.
var ErrEmptyCart = errors.New("cart is empty")

// CartClearer empties a user's cart once their order is recorded.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// Log is the append-only order list under storage.KeyOrders.
type Log struct {
	store storage.Store
	carts CartClearer
	log   *zap.Logger
	now   func() time.Time
	mu    sync.Mutex
}

// NewLog creates an order log over s that clears carts through carts.
// A nil logger disables logging.
func NewLog(s storage.Store, carts CartClearer, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{store: s, carts: carts, log: logger, now: time.Now}
}

func (l *Log) all(ctx context.Context) ([]Order, error) {
	orders, _, err := storage.ReadCollection[[]Order](ctx, l.store, storage.KeyOrders)
	return orders, err
}

// Create appends the order and then clears the user's cart. The two writes
// are independent: if clearing fails the order stays recorded and the error
// is returned with it.
func (l *Log) Create(ctx context.Context, n NewOrder) (Order, error) {
	if len(n.Items) == 0 {
		return Order{}, ErrEmptyCart
	}
	o := Order{
		ID:              uuid.NewString(),
		UserID:          n.UserID,
		Items:           n.Items,
		TotalPrice:      n.TotalPrice,
		Status:          n.Status,
		CreatedAt:       n.CreatedAt,
		ShippingAddress: n.ShippingAddress,
		PaymentMethod:   n.PaymentMethod,
		DeliveryMethod:  n.DeliveryMethod,
		DeliveryPrice:   n.DeliveryPrice,
		DeliveryDate:    n.DeliveryDate,
		DeliveryTime:    n.DeliveryTime,
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = l.now().UTC()
	}

	if err := l.append(ctx, o); err != nil {
		return Order{}, err
	}
	l.log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
		zap.Int("items", len(o.Items)),
		zap.Float64("total", o.TotalPrice))

	if l.carts != nil {
		if err := l.carts.Clear(ctx, o.UserID); err != nil {
			return o, fmt.Errorf("clear cart after order %s: %w", o.ID, err)
		}
	}
	return o, nil
}

func (l *Log) append(ctx context.Context, o Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.all(ctx)
	if err != nil {
		return err
	}
	return storage.WriteCollection(ctx, l.store, storage.KeyOrders, append(orders, o))
}

// ByID looks an order up by id.
func (l *Log) ByID(ctx context.Context, id string) (Order, bool, error) {
	orders, err := l.all(ctx)
	if err != nil {
		return Order{}, false, err
	}
	idx := slices.IndexFunc(orders, func(o Order) bool { return o.ID == id })
	if idx < 0 {
		return Order{}, false, nil
	}
	return orders[idx], true, nil
}

// ByUser returns userID's orders in stored order. Use SortNewestFirst for
// display.
func (l *Log) ByUser(ctx context.Context, userID string) ([]Order, error) {
	orders, err := l.all(ctx)
	if err != nil {
		return nil, err
	}
	mine := []Order{}
	for _, o := range orders {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	return mine, nil
}
