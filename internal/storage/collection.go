package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt is wrapped by ReadCollection when a stored payload cannot be decoded.
var ErrCorrupt = errors.New("corrupt collection payload")

// Collection keys of the storefront layout.
const (
	KeyUsers       = "petsclaws_users"
	KeyCurrentUser = "petsclaws_current_user"
	KeyCarts       = "petsclaws_carts"
	KeyOrders      = "petsclaws_orders"
	KeyFavorites   = "petsclaws_favorites"
	KeyReviews     = "reviews"
	KeyGuestCart   = "petsclaws_guest_cart"
	KeyTheme       = "theme"
)

// ReadCollection decodes the JSON collection stored under key into a T.
//
// An absent key is not an error: the zero T is returned with found=false, so
// callers see an empty list or map for a collection that was never written.
// A payload that does not decode is reported as ErrCorrupt.
func ReadCollection[T any](ctx context.Context, s Store, key string) (v T, found bool, err error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("read %s: %w: %v", key, ErrCorrupt, err)
	}
	return v, true, nil
}

// WriteCollection overwrites the collection stored under key with v.
func WriteCollection[T any](ctx context.Context, s Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
