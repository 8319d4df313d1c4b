// Package preferences stores display preferences of the storefront.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dreamware/petsclaws/internal/storage"
)

// Theme is the colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ErrInvalidTheme is returned for anything but light or dark.
var ErrInvalidTheme = errors.New("invalid theme")

// ParseTheme validates s.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
}

// Store persists the theme under storage.KeyTheme as the bare theme name.
type Store struct {
	store storage.Store
}

// NewStore creates a preference store over s.
func NewStore(s storage.Store) *Store {
	return &Store{store: s}
}

// Theme returns the stored theme, light when none is stored or the stored
// value is not a known theme. A JSON-quoted value from older writes is
// still read.
func (p *Store) Theme(ctx context.Context) (Theme, error) {
	raw, err := p.store.Get(ctx, storage.KeyTheme)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return ThemeLight, nil
	}
	if err != nil {
		return ThemeLight, err
	}
	t, err := ParseTheme(strings.Trim(string(raw), `"`))
	if err != nil {
		return ThemeLight, nil
	}
	return t, nil
}

// SetTheme stores t.
func (p *Store) SetTheme(ctx context.Context, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return p.store.Put(ctx, storage.KeyTheme, []byte(t))
}

// Toggle switches between light and dark and returns the new theme.
func (p *Store) Toggle(ctx context.Context) (Theme, error) {
	current, err := p.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	return next, p.SetTheme(ctx, next)
}
