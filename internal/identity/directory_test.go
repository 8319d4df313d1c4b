package identity

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dreamware/petsclaws/internal/storage"
)

func newTestDirectory() (*Directory, storage.Store) {
	store := storage.NewMemoryStore()
	return NewDirectory(store, nil, WithHashCost(bcrypt.MinCost)), store
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory()

	u, ok, err := dir.Register(ctx, NewUser{Email: "a@x.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "secret1", u.Password, "password must be hashed")

	// Same email again is rejected without error
	_, ok, err = dir.Register(ctx, NewUser{Email: "a@x.com", Password: "another1", Name: "Other"})
	require.NoError(t, err)
	assert.False(t, ok)

	second, ok, err := dir.Register(ctx, NewUser{Email: "b@x.com", Password: "secret2", Name: "Bob"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, u.ID, second.ID)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory()

	tests := []struct {
		name string
		user NewUser
	}{
		{name: "missing email", user: NewUser{Password: "secret1", Name: "A"}},
		{name: "missing name", user: NewUser{Email: "a@x.com", Password: "secret1", Name: "  "}},
		{name: "short password", user: NewUser{Email: "a@x.com", Password: "12345", Name: "A"}},
		{name: "password over bcrypt limit", user: NewUser{Email: "a@x.com", Password: strings.Repeat("p", 80), Name: "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := dir.Register(ctx, tt.user)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrInvalidUser)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory()

	_, ok, err := dir.Register(ctx, NewUser{Email: "a@x.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	require.True(t, ok)

	tests := []struct {
		name     string
		email    string
		password string
		wantOK   bool
	}{
		{name: "correct credentials", email: "a@x.com", password: "secret1", wantOK: true},
		{name: "wrong password", email: "a@x.com", password: "secret2"},
		{name: "unknown email", email: "nobody@x.com", password: "secret1"},
		{name: "hash is not a password", email: "a@x.com", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok, err := dir.Authenticate(ctx, tt.email, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "Alice", u.Name)
			}
		})
	}
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory()

	_, found, err := dir.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, found, "empty directory")

	created, err := dir.Create(ctx, NewUser{Email: "a@x.com", Password: "secret1", Name: "Alice", Phone: "+7 900"})
	require.NoError(t, err)

	byEmail, found, err := dir.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created, byEmail)

	byID, found, err := dir.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "+7 900", byID.Phone)

	_, found, err = dir.FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFindCorruptUsers(t *testing.T) {
	ctx := context.Background()
	dir, store := newTestDirectory()
	require.NoError(t, store.Put(ctx, storage.KeyUsers, []byte("not json")))

	_, _, err := dir.FindByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, storage.ErrCorrupt)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory()
	u, err := dir.Create(ctx, NewUser{Email: "a@x.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)

	name, phone := "Alice K.", "+7 901"
	updated, ok, err := dir.UpdateProfile(ctx, u.ID, ProfileUpdate{Name: &name, Phone: &phone})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Alice K.", updated.Name)
	assert.Equal(t, "+7 901", updated.Phone)
	assert.Empty(t, updated.Address)

	stored, _, _ := dir.FindByID(ctx, u.ID)
	assert.Equal(t, updated, stored)

	_, ok, err = dir.UpdateProfile(ctx, "missing", ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.False(t, ok)

	blank := ""
	_, _, err = dir.UpdateProfile(ctx, u.ID, ProfileUpdate{Name: &blank})
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	dir, store := newTestDirectory()
	sessions := NewSessions(store)

	_, found, err := sessions.Current(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	u, err := dir.Create(ctx, NewUser{Email: "a@x.com", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	require.NoError(t, sessions.Set(ctx, u))

	current, found, err := sessions.Current(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, u.ID, current.ID)
	assert.Empty(t, current.Password, "session never carries the hash")

	// The pointer is independent of the user list
	users, _, err := storage.ReadCollection[[]User](ctx, store, storage.KeyUsers)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, sessions.Clear(ctx))
	_, found, err = sessions.Current(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, Session{UserID: u.ID, Email: "a@x.com", Name: "Alice"}, SessionFor(u))
}
