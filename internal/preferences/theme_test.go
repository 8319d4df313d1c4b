package preferences

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/petsclaws/internal/storage"
)

func TestTheme(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	prefs := NewStore(store)

	theme, err := prefs.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme, "unset defaults to light")

	require.NoError(t, prefs.SetTheme(ctx, ThemeDark))
	theme, err = prefs.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	raw, err := store.Get(ctx, storage.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", string(raw), "stored as the bare name")

	assert.ErrorIs(t, prefs.SetTheme(ctx, "sepia"), ErrInvalidTheme)

	next, err := prefs.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, next)
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Theme
		wantErr bool
	}{
		{in: "light", want: ThemeLight},
		{in: "dark", want: ThemeDark},
		{in: "Dark", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTheme(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTheme)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestThemeStoredValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Theme
	}{
		{name: "bare name", raw: "dark", want: ThemeDark},
		{name: "json quoted", raw: `"dark"`, want: ThemeDark},
		{name: "unknown", raw: "sepia", want: ThemeLight},
		{name: "empty", raw: "", want: ThemeLight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewMemoryStore()
			require.NoError(t, store.Put(ctx, storage.KeyTheme, []byte(tt.raw)))

			theme, err := NewStore(store).Theme(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, theme)
		})
	}
}
