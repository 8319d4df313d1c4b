package storefront

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dreamware/petsclaws/internal/cart"
	"github.com/dreamware/petsclaws/internal/catalog"
	"github.com/dreamware/petsclaws/internal/favorites"
	"github.com/dreamware/petsclaws/internal/identity"
	"github.com/dreamware/petsclaws/internal/orders"
	"github.com/dreamware/petsclaws/internal/preferences"
	"github.com/dreamware/petsclaws/internal/reviews"
	"github.com/dreamware/petsclaws/internal/storage"
)

// NoGuest tells Register and Login that there is no guest cart to adopt.
const NoGuest = "-"

// ErrNotSignedIn is returned by operations that need a registered user.
var ErrNotSignedIn = errors.New("sign in required")

// Storefront wires every component over one record store.
type Storefront struct {
	Catalog   *catalog.Catalog
	Users     *identity.Directory
	Sessions  *identity.Sessions
	Carts     *cart.Ledger
	Favorites *favorites.Set
	Orders    *orders.Log
	Reviews   *reviews.Ledger
	Prefs     *preferences.Store

	log *zap.Logger
}

// New builds a storefront over s selling the products of cat. A nil logger
// disables logging. Directory options (such as the bcrypt cost) pass through.
func New(s storage.Store, cat *catalog.Catalog, logger *zap.Logger, opts ...identity.Option) *Storefront {
	if logger == nil {
		logger = zap.NewNop()
	}
	carts := cart.NewLedger(s, logger.Named("cart"))
	return &Storefront{
		Catalog:   cat,
		Users:     identity.NewDirectory(s, logger.Named("identity"), opts...),
		Sessions:  identity.NewSessions(s),
		Carts:     carts,
		Favorites: favorites.NewSet(s, logger.Named("favorites")),
		Orders:    orders.NewLog(s, carts, logger.Named("orders")),
		Reviews:   reviews.NewLedger(s, logger.Named("reviews")),
		Prefs:     preferences.NewStore(s),
		log:       logger,
	}
}

// Seed writes the sample reviews on a fresh store.
func (sf *Storefront) Seed(ctx context.Context) error {
	rs, err := reviews.Seed()
	if err != nil {
		return err
	}
	_, err = sf.Reviews.SeedIfAbsent(ctx, rs)
	return err
}

// Register creates the account and signs it in, adopting guestID's cart.
// ok is false when the email is taken.
func (sf *Storefront) Register(ctx context.Context, n identity.NewUser, guestID string) (identity.Session, bool, error) {
	u, ok, err := sf.Users.Register(ctx, n)
	if err != nil || !ok {
		return identity.Session{}, false, err
	}
	sf.log.Info("user registered", zap.String("user_id", u.ID))
	return sf.signIn(ctx, u, guestID)
}

// Login verifies the credentials and adopts guestID's cart. ok is false for
// an unknown email or a wrong password.
func (sf *Storefront) Login(ctx context.Context, email, password, guestID string) (identity.Session, bool, error) {
	u, ok, err := sf.Users.Authenticate(ctx, email, password)
	if err != nil || !ok {
		return identity.Session{}, false, err
	}
	return sf.signIn(ctx, u, guestID)
}

func (sf *Storefront) signIn(ctx context.Context, u identity.User, guestID string) (identity.Session, bool, error) {
	sess := identity.SessionFor(u)
	if guestID == NoGuest {
		return sess, true, nil
	}
	adopted, err := sf.Carts.AdoptGuest(ctx, u.ID, guestID)
	if err != nil {
		return sess, true, fmt.Errorf("adopt guest cart: %w", err)
	}
	sf.log.Debug("signed in", zap.String("user_id", u.ID), zap.Bool("guest_cart_adopted", adopted))
	return sess, true, nil
}

// Remember stores sess as the local current-user pointer.
func (sf *Storefront) Remember(ctx context.Context, sess identity.Session) error {
	u, found, err := sf.Users.FindByID(ctx, sess.UserID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("remember session: user %s: %w", sess.UserID, ErrNotSignedIn)
	}
	return sf.Sessions.Set(ctx, u)
}

// Current returns the session of the local current-user pointer, if any.
func (sf *Storefront) Current(ctx context.Context) (identity.Session, bool, error) {
	u, found, err := sf.Sessions.Current(ctx)
	if err != nil || !found {
		return identity.Session{}, false, err
	}
	return identity.SessionFor(u), true, nil
}

// Logout clears the local current-user pointer.
func (sf *Storefront) Logout(ctx context.Context) error {
	return sf.Sessions.Clear(ctx)
}

// Profile returns the public account data of sess.
func (sf *Storefront) Profile(ctx context.Context, sess identity.Session) (identity.User, error) {
	u, found, err := sf.Users.FindByID(ctx, sess.UserID)
	if err != nil {
		return identity.User{}, err
	}
	if !found {
		return identity.User{}, ErrNotSignedIn
	}
	return u.Public(), nil
}

// UpdateProfile edits the account of sess.
func (sf *Storefront) UpdateProfile(ctx context.Context, sess identity.Session, upd identity.ProfileUpdate) (identity.User, error) {
	u, found, err := sf.Users.UpdateProfile(ctx, sess.UserID, upd)
	if err != nil {
		return identity.User{}, err
	}
	if !found {
		return identity.User{}, ErrNotSignedIn
	}
	return u.Public(), nil
}

func (sf *Storefront) product(id int) (catalog.Product, error) {
	p, ok := sf.Catalog.ByID(id)
	if !ok {
		return catalog.Product{}, fmt.Errorf("product %d: %w", id, catalog.ErrProductNotFound)
	}
	return p, nil
}

// AddFavorite adds the product to the favorites of sess.
func (sf *Storefront) AddFavorite(ctx context.Context, sess identity.Session, productID int) (bool, error) {
	p, err := sf.product(productID)
	if err != nil {
		return false, err
	}
	return sf.Favorites.Add(ctx, sess.UserID, p)
}

// AddReview posts a review on productID signed with the current profile
// name of the account behind sess. Session names go stale after a rename.
func (sf *Storefront) AddReview(ctx context.Context, sess identity.Session, productID, rating int, text string) (reviews.Review, error) {
	if _, err := sf.product(productID); err != nil {
		return reviews.Review{}, err
	}
	author, err := sf.Profile(ctx, sess)
	if err != nil {
		return reviews.Review{}, err
	}
	return sf.Reviews.Append(ctx, reviews.NewReview{
		ProductID: productID,
		Author:    author.Name,
		Rating:    rating,
		Text:      text,
	})
}

// Checkout validates the form and turns the cart of sess into an order.
// Invalid forms return FieldErrors and no error; an empty cart returns
// orders.ErrEmptyCart.
func (sf *Storefront) Checkout(ctx context.Context, sess identity.Session, form orders.Checkout) (orders.Order, orders.FieldErrors, error) {
	form = form.WithDefaults()
	if errs := orders.ValidateCheckout(form); errs != nil {
		return orders.Order{}, errs, nil
	}

	lines, err := sf.Carts.Get(ctx, sess.UserID)
	if err != nil {
		return orders.Order{}, nil, err
	}
	if len(lines) == 0 {
		return orders.Order{}, nil, orders.ErrEmptyCart
	}

	delivery := orders.DeliveryPrice(form.DeliveryMethod)
	total := decimal.NewFromFloat(cart.Compute(lines).Price).Add(decimal.NewFromFloat(delivery))

	o, err := sf.Orders.Create(ctx, orders.NewOrder{
		UserID:          sess.UserID,
		Items:           lines,
		TotalPrice:      total.InexactFloat64(),
		ShippingAddress: form.ShippingAddress(),
		PaymentMethod:   form.PaymentMethod,
		DeliveryMethod:  form.DeliveryMethod,
		DeliveryPrice:   delivery,
		DeliveryDate:    form.DeliveryDate,
		DeliveryTime:    form.DeliveryTime,
	})
	return o, nil, err
}
