package storefront

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dreamware/petsclaws/internal/cart"
	"github.com/dreamware/petsclaws/internal/catalog"
	"github.com/dreamware/petsclaws/internal/identity"
	"github.com/dreamware/petsclaws/internal/orders"
	"github.com/dreamware/petsclaws/internal/storage"
)

func newTestStorefront(t *testing.T) (*Storefront, storage.Store) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	store := storage.NewMemoryStore()
	return New(store, cat, nil, identity.WithHashCost(bcrypt.MinCost)), store
}

var alice = identity.NewUser{Email: "a@x.com", Password: "secret1", Name: "Alice"}

var validForm = orders.Checkout{
	FullName:     "Alice",
	Email:        "a@x.com",
	Phone:        "+7 900 000 00 00",
	Address:      "Lenina 1",
	City:         "Moscow",
	PostalCode:   "101000",
	DeliveryDate: "2025-05-01",
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	sf, _ := newTestStorefront(t)

	sess, ok, err := sf.Register(ctx, alice, cart.DefaultGuest)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", sess.Email)
	assert.NotEmpty(t, sess.UserID)

	_, ok, err = sf.Register(ctx, alice, cart.DefaultGuest)
	require.NoError(t, err)
	assert.False(t, ok, "email already registered")

	tests := []struct {
		name     string
		password string
		wantOK   bool
	}{
		{name: "correct password", password: "secret1", wantOK: true},
		{name: "wrong password", password: "secret2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := sf.Login(ctx, "a@x.com", tt.password, cart.DefaultGuest)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, sess, got)
			}
		})
	}
}

func TestLoginAdoptsGuestCart(t *testing.T) {
	ctx := context.Background()
	sf, store := newTestStorefront(t)

	_, ok, err := sf.Register(ctx, alice, cart.DefaultGuest)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = sf.AddToCart(ctx, GuestShopper(cart.DefaultGuest), 2, 1)
	require.NoError(t, err)

	sess, ok, err := sf.Login(ctx, alice.Email, alice.Password, cart.DefaultGuest)
	require.NoError(t, err)
	require.True(t, ok)

	view, err := sf.ViewCart(ctx, UserShopper(sess))
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Product.ID)
	assert.Equal(t, 1, view.Items[0].Quantity)

	_, err = store.Get(ctx, storage.KeyGuestCart)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestLoginKeepsNonEmptyUserCart(t *testing.T) {
	ctx := context.Background()
	sf, _ := newTestStorefront(t)

	sess, _, err := sf.Register(ctx, alice, "g-1")
	require.NoError(t, err)
	_, err = sf.AddToCart(ctx, UserShopper(sess), 3, 2)
	require.NoError(t, err)
	_, err = sf.AddToCart(ctx, GuestShopper("g-1"), 2, 1)
	require.NoError(t, err)

	_, ok, err := sf.Login(ctx, alice.Email, alice.Password, "g-1")
	require.NoError(t, err)
	require.True(t, ok)

	view, err := sf.ViewCart(ctx, UserShopper(sess))
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Product.ID)

	guest, err := sf.ViewCart(ctx, GuestShopper("g-1"))
	require.NoError(t, err)
	assert.Len(t, guest.Items, 1, "guest cart is left untouched")
}

func TestCartByProductID(t *testing.T) {
	ctx := context.Background()
	sf, _ := newTestStorefront(t)
	shopper := GuestShopper("g-7")

	view, err := sf.AddToCart(ctx, shopper, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Totals.Items)
	assert.Equal(t, 780.0, view.Totals.Price)

	_, err = sf.AddToCart(ctx, shopper, 999, 1)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	view, err = sf.SetCartQuantity(ctx, shopper, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Totals.Items)

	view, err = sf.RemoveFromCart(ctx, shopper, 2)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = sf.AddToCart(ctx, shopper, 4, 1)
	require.NoError(t, err)
	require.NoError(t, sf.ClearCart(ctx, shopper))
	view, err = sf.ViewCart(ctx, shopper)
	require.NoError(t, err)
	assert.Zero(t, view.Totals.Items)
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	sf, _ := newTestStorefront(t)

	sess, _, err := sf.Register(ctx, alice, cart.DefaultGuest)
	require.NoError(t, err)
	shopper := UserShopper(sess)

	_, err = sf.AddToCart(ctx, shopper, 1, 1)
	require.NoError(t, err)
	_, err = sf.AddToCart(ctx, shopper, 2, 2)
	require.NoError(t, err)

	o, fieldErrs, err := sf.Checkout(ctx, sess, validForm)
	require.NoError(t, err)
	require.Nil(t, fieldErrs)

	assert.Len(t, o.Items, 2)
	assert.Equal(t, orders.StatusPending, o.Status)
	assert.Equal(t, orders.DeliveryCourier, o.DeliveryMethod)
	assert.Equal(t, orders.PaymentCard, o.PaymentMethod)
	assert.Equal(t, 300.0, o.DeliveryPrice)
	assert.Equal(t, 4590.0+2*390+300, o.TotalPrice)
	assert.Equal(t, "Moscow", o.ShippingAddress.City)

	view, err := sf.ViewCart(ctx, shopper)
	require.NoError(t, err)
	assert.Empty(t, view.Items, "checkout clears the cart")

	byID, found, err := sf.Orders.ByID(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sess.UserID, byID.UserID)

	mine, err := sf.Orders.ByUser(ctx, sess.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, o.ID, mine[0].ID)
}

func TestCheckoutRejections(t *testing.T) {
	ctx := context.Background()
	sf, _ := newTestStorefront(t)
	sess, _, err := sf.Register(ctx, alice, cart.DefaultGuest)
	require.NoError(t, err)

	_, _, err = sf.Checkout(ctx, sess, validForm)
	assert.ErrorIs(t, err, orders.ErrEmptyCart)

	_, err = sf.AddToCart(ctx, UserShopper(sess), 1, 1)
	require.NoError(t, err)

	bad := validForm
	bad.Email = "nope"
	_, fieldErrs, err := sf.Checkout(ctx, sess, bad)
	require.NoError(t, err)
	assert.Equal(t, []string{"email"}, fieldErrs.Fields())

	pickup := validForm
	pickup.DeliveryMethod = orders.DeliverySelfPickup
	pickup.DeliveryDate = ""
	o, fieldErrs, err := sf.Checkout(ctx, sess, pickup)
	require.NoError(t, err)
	require.Nil(t, fieldErrs)
	assert.Equal(t, 4590.0, o.TotalPrice, "self pickup is free")
}

func TestLocalSession(t *testing.T) {
	ctx := context.Background()
	sf, _ := newTestStorefront(t)

	_, found, err := sf.Current(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	sess, _, err := sf.Register(ctx, alice, cart.DefaultGuest)
	require.NoError(t, err)
	require.NoError(t, sf.Remember(ctx, sess))

	current, found, err := sf.Current(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sess, current)

	require.NoError(t, sf.Logout(ctx))
	_, found, err = sf.Current(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	err = sf.Remember(ctx, identity.Session{UserID: "ghost"})
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	sf, _ := newTestStorefront(t)
	sess, _, err := sf.Register(ctx, alice, cart.DefaultGuest)
	require.NoError(t, err)

	addr := "Lenina 1"
	u, err := sf.UpdateProfile(ctx, sess, identity.ProfileUpdate{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, addr, u.Address)
	assert.Empty(t, u.Password)

	u, err = sf.Profile(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, addr, u.Address)

	_, err = sf.Profile(ctx, identity.Session{UserID: "ghost"})
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestFavoritesAndReviews(t *testing.T) {
	ctx := context.Background()
	sf, _ := newTestStorefront(t)
	require.NoError(t, sf.Seed(ctx))

	sess, _, err := sf.Register(ctx, alice, cart.DefaultGuest)
	require.NoError(t, err)

	added, err := sf.AddFavorite(ctx, sess, 6)
	require.NoError(t, err)
	assert.True(t, added)
	_, err = sf.AddFavorite(ctx, sess, 999)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	r, err := sf.AddReview(ctx, sess, 2, 4, "Nice.")
	require.NoError(t, err)
	assert.Equal(t, "Alice", r.Author)
	assert.Equal(t, 6, r.ID, "ids continue after the seeded reviews")

	_, err = sf.AddReview(ctx, sess, 999, 4, "Nice.")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	// Seeding again never overwrites
	require.NoError(t, sf.Seed(ctx))
	all, err := sf.Reviews.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestReviewAuthorFollowsProfile(t *testing.T) {
	ctx := context.Background()
	sf, _ := newTestStorefront(t)

	sess, _, err := sf.Register(ctx, alice, cart.DefaultGuest)
	require.NoError(t, err)

	renamed := "Alicia"
	_, err = sf.UpdateProfile(ctx, sess, identity.ProfileUpdate{Name: &renamed})
	require.NoError(t, err)

	r, err := sf.AddReview(ctx, sess, 2, 5, "Still great.")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", r.Author)

	_, err = sf.AddReview(ctx, identity.Session{UserID: "gone", Name: "Ghost"}, 2, 5, "")
	assert.ErrorIs(t, err, ErrNotSignedIn)
}
