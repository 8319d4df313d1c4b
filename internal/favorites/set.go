// Package favorites keeps each user's set of favorite product snapshots.
package favorites

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/dreamware/petsclaws/internal/catalog"
	"github.com/dreamware/petsclaws/internal/storage"
)

// Set stores map userId -> []Product under storage.KeyFavorites. Entries are
// unique by product id per user and keep insertion order.
type Set struct {
	store storage.Store
	log   *zap.Logger
	mu    sync.Mutex
}

// NewSet creates a favorites set over s. A nil logger disables logging.
func NewSet(s storage.Store, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Set{store: s, log: logger}
}

func (f *Set) all(ctx context.Context) (map[string][]catalog.Product, error) {
	favs, _, err := storage.ReadCollection[map[string][]catalog.Product](ctx, f.store, storage.KeyFavorites)
	if err != nil {
		return nil, err
	}
	if favs == nil {
		favs = make(map[string][]catalog.Product)
	}
	return favs, nil
}

// List returns userID's favorites, empty when none.
func (f *Set) List(ctx context.Context, userID string) ([]catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	favs, err := f.all(ctx)
	if err != nil {
		return nil, err
	}
	if list := favs[userID]; list != nil {
		return list, nil
	}
	return []catalog.Product{}, nil
}

// Contains reports whether productID is one of userID's favorites.
func (f *Set) Contains(ctx context.Context, userID string, productID int) (bool, error) {
	list, err := f.List(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(list, func(p catalog.Product) bool { return p.ID == productID }), nil
}

// Add appends p unless a product with the same id is already present.
// It reports whether the set changed.
func (f *Set) Add(ctx context.Context, userID string, p catalog.Product) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	favs, err := f.all(ctx)
	if err != nil {
		return false, err
	}
	list := favs[userID]
	if slices.ContainsFunc(list, func(e catalog.Product) bool { return e.ID == p.ID }) {
		return false, nil
	}
	favs[userID] = append(list, p)
	if err := storage.WriteCollection(ctx, f.store, storage.KeyFavorites, favs); err != nil {
		return false, err
	}
	f.log.Debug("favorite added", zap.String("user_id", userID), zap.Int("product_id", p.ID))
	return true, nil
}

// Remove deletes productID from userID's favorites. Removing an absent
// product is not an error; the result reports whether the set changed.
func (f *Set) Remove(ctx context.Context, userID string, productID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	favs, err := f.all(ctx)
	if err != nil {
		return false, err
	}
	list := favs[userID]
	kept := slices.DeleteFunc(slices.Clone(list), func(p catalog.Product) bool { return p.ID == productID })
	if len(kept) == len(list) {
		return false, nil
	}
	if len(kept) == 0 {
		delete(favs, userID)
	} else {
		favs[userID] = kept
	}
	if err := storage.WriteCollection(ctx, f.store, storage.KeyFavorites, favs); err != nil {
		return false, err
	}
	f.log.Debug("favorite removed", zap.String("user_id", userID), zap.Int("product_id", productID))
	return true, nil
}

// Clear drops every favorite of userID.
func (f *Set) Clear(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	favs, err := f.all(ctx)
	if err != nil {
		return err
	}
	if _, ok := favs[userID]; !ok {
		return nil
	}
	delete(favs, userID)
	return storage.WriteCollection(ctx, f.store, storage.KeyFavorites, favs)
}
