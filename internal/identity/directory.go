// Package identity keeps storefront user accounts and the current-session
// pointer.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slices"

	"github.com/dreamware/petsclaws/internal/storage"
)

// Password length bounds of Register. bcrypt rejects inputs over 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// ErrInvalidUser is wrapped by registration and profile validation failures.
var ErrInvalidUser = errors.New("invalid user")

// User is a registered account. Password holds a bcrypt hash, never plaintext.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Public returns u without its password hash.
func (u User) Public() User {
	u.Password = ""
	return u
}

// NewUser is the registration payload.
type NewUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Validate checks the fields registration requires.
func (n NewUser) Validate() error {
	switch {
	case strings.TrimSpace(n.Email) == "":
		return fmt.Errorf("%w: email is required", ErrInvalidUser)
	case strings.TrimSpace(n.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidUser)
	case len(n.Password) < MinPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidUser, MinPasswordLength)
	case len(n.Password) > MaxPasswordLength:
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidUser, MaxPasswordLength)
	}
	return nil
}

// ProfileUpdate carries the editable profile fields. Nil fields are left as is.
type ProfileUpdate struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Directory stores users under storage.KeyUsers.
type Directory struct {
	store    storage.Store
	log      *zap.Logger
	hashCost int
	mu       sync.Mutex
}

// Option configures a Directory.
type Option func(*Directory)

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(d *Directory) { d.hashCost = cost }
}

// NewDirectory creates a directory over s. A nil logger disables logging.
func NewDirectory(s storage.Store, logger *zap.Logger, opts ...Option) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Directory{store: s, log: logger, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Directory) users(ctx context.Context) ([]User, error) {
	users, _, err := storage.ReadCollection[[]User](ctx, d.store, storage.KeyUsers)
	return users, err
}

// Create hashes the password, assigns a fresh id and appends the user.
// Callers check for an existing email first; Register does both.
func (d *Directory) Create(ctx context.Context, n NewUser) (User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.create(ctx, n)
}

func (d *Directory) create(ctx context.Context, n NewUser) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(n.Password), d.hashCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	users, err := d.users(ctx)
	if err != nil {
		return User{}, err
	}
	u := User{
		ID:       uuid.NewString(),
		Email:    n.Email,
		Password: string(hash),
		Name:     n.Name,
		Phone:    n.Phone,
		Address:  n.Address,
	}
	users = append(users, u)
	if err := storage.WriteCollection(ctx, d.store, storage.KeyUsers, users); err != nil {
		return User{}, err
	}
	d.log.Debug("user created", zap.String("user_id", u.ID), zap.String("email", u.Email))
	return u, nil
}

// Register validates n and creates the user unless the email is taken.
// ok is false for a taken email; invalid input is reported as ErrInvalidUser.
func (d *Directory) Register(ctx context.Context, n NewUser) (u User, ok bool, err error) {
	if err := n.Validate(); err != nil {
		return User{}, false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists, err := d.FindByEmail(ctx, n.Email); err != nil || exists {
		return User{}, false, err
	}
	u, err = d.create(ctx, n)
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

// FindByEmail looks a user up by exact email.
func (d *Directory) FindByEmail(ctx context.Context, email string) (User, bool, error) {
	return d.find(ctx, func(u User) bool { return u.Email == email })
}

// FindByID looks a user up by id.
func (d *Directory) FindByID(ctx context.Context, id string) (User, bool, error) {
	return d.find(ctx, func(u User) bool { return u.ID == id })
}

func (d *Directory) find(ctx context.Context, match func(User) bool) (User, bool, error) {
	users, err := d.users(ctx)
	if err != nil {
		return User{}, false, err
	}
	idx := slices.IndexFunc(users, match)
	if idx < 0 {
		return User{}, false, nil
	}
	return users[idx], true, nil
}

// Authenticate verifies a claimed credential against the stored hash.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (User, bool, error) {
	u, found, err := d.FindByEmail(ctx, email)
	if err != nil || !found {
		return User{}, false, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		d.log.Debug("password mismatch", zap.String("email", email))
		return User{}, false, nil
	}
	return u, true, nil
}

// UpdateProfile applies upd to the user with id. ok is false when no such user.
func (d *Directory) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (User, bool, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return User{}, false, fmt.Errorf("%w: name is required", ErrInvalidUser)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := d.users(ctx)
	if err != nil {
		return User{}, false, err
	}
	idx := slices.IndexFunc(users, func(u User) bool { return u.ID == id })
	if idx < 0 {
		return User{}, false, nil
	}
	if upd.Name != nil {
		users[idx].Name = *upd.Name
	}
	if upd.Phone != nil {
		users[idx].Phone = *upd.Phone
	}
	if upd.Address != nil {
		users[idx].Address = *upd.Address
	}
	if err := storage.WriteCollection(ctx, d.store, storage.KeyUsers, users); err != nil {
		return User{}, false, err
	}
	return users[idx], true, nil
}
