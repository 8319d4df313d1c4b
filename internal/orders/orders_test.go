package orders

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/dreamware/petsclaws/internal/cart"
	"github.com/dreamware/petsclaws/internal/catalog"
	"github.com/dreamware/petsclaws/internal/storage"
)

type failingClearer struct{ calls int }

func (f *failingClearer) Clear(context.Context, string) error {
	f.calls++
	return errors.New("cart store offline")
}

func line(id int, price float64, qty int) cart.Line {
	return cart.Line{Product: catalog.Product{ID: id, Price: price}, Quantity: qty}
}

func TestCreateClearsCart(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	ledger := cart.NewLedger(store, nil)
	log := NewLog(store, ledger, nil)

	p := catalog.Product{ID: 1, Price: 1000}
	lines, err := ledger.Add(ctx, "u1", p, 1)
	require.NoError(t, err)

	o, err := log.Create(ctx, NewOrder{UserID: "u1", Items: lines, TotalPrice: 1300, DeliveryMethod: DeliveryCourier, DeliveryPrice: 300})
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.False(t, o.CreatedAt.IsZero())

	remaining, err := ledger.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	got, found, err := log.ByID(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, 1300.0, got.TotalPrice)
	assert.True(t, o.CreatedAt.Equal(got.CreatedAt))
}

func TestCreateKeepsExplicitFields(t *testing.T) {
	ctx := context.Background()
	log := NewLog(storage.NewMemoryStore(), nil, nil)
	at := time.Date(2025, 4, 12, 10, 0, 0, 0, time.UTC)

	o, err := log.Create(ctx, NewOrder{UserID: "u1", Items: []cart.Line{line(1, 10, 1)}, Status: StatusShipped, CreatedAt: at})
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, o.Status)
	assert.Equal(t, at, o.CreatedAt)
}

func TestCreateRejectsEmptyCart(t *testing.T) {
	log := NewLog(storage.NewMemoryStore(), nil, nil)
	_, err := log.Create(context.Background(), NewOrder{UserID: "u1"})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateCartClearFailure(t *testing.T) {
	ctx := context.Background()
	clearer := &failingClearer{}
	log := NewLog(storage.NewMemoryStore(), clearer, nil)

	o, err := log.Create(ctx, NewOrder{UserID: "u1", Items: []cart.Line{line(1, 10, 1)}})
	require.Error(t, err)
	assert.Equal(t, 1, clearer.calls)

	_, found, err := log.ByID(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, found, "order stays recorded when the cart clear fails")
}

func TestByUserAndSort(t *testing.T) {
	ctx := context.Background()
	log := NewLog(storage.NewMemoryStore(), nil, nil)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, u := range []string{"u1", "u2", "u1", "u1"} {
		_, err := log.Create(ctx, NewOrder{
			UserID:    u,
			Items:     []cart.Line{line(i+1, 10, 1)},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	mine, err := log.ByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, 1, mine[0].Items[0].Product.ID, "stored order is kept")

	SortNewestFirst(mine)
	assert.Equal(t, []int{4, 3, 1}, []int{mine[0].Items[0].Product.ID, mine[1].Items[0].Product.ID, mine[2].Items[0].Product.ID})

	none, err := log.ByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, found, err := log.ByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeliveryPrice(t *testing.T) {
	tests := []struct {
		method string
		want   float64
	}{
		{DeliveryCourier, 300},
		{DeliveryPickup, 200},
		{DeliverySelfPickup, 0},
		{"teleport", 0},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			assert.Equal(t, tt.want, DeliveryPrice(tt.method))
		})
	}
}

func TestValidateCheckout(t *testing.T) {
	valid := Checkout{
		FullName:       "Alice",
		Email:          "a@x.com",
		Phone:          "+7 900",
		Address:        "Lenina 1",
		City:           "Moscow",
		PostalCode:     "101000",
		DeliveryMethod: DeliveryCourier,
		DeliveryDate:   "2025-05-01",
	}

	tests := []struct {
		name   string
		modify func(c *Checkout)
		want   []string
	}{
		{name: "valid", modify: func(*Checkout) {}},
		{name: "blank name", modify: func(c *Checkout) { c.FullName = "   " }, want: []string{"fullName"}},
		{name: "malformed email", modify: func(c *Checkout) { c.Email = "a@x" }, want: []string{"email"}},
		{name: "missing email", modify: func(c *Checkout) { c.Email = "" }, want: []string{"email"}},
		{name: "courier without date", modify: func(c *Checkout) { c.DeliveryDate = "" }, want: []string{"deliveryDate"}},
		{name: "self pickup without date", modify: func(c *Checkout) {
			c.DeliveryMethod = DeliverySelfPickup
			c.DeliveryDate = ""
		}},
		{name: "empty form", modify: func(c *Checkout) { *c = Checkout{DeliveryMethod: DeliveryPickup} }, want: []string{
			"address", "city", "deliveryDate", "email", "fullName", "phone", "postalCode",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.modify(&c)
			errs := ValidateCheckout(c)
			if tt.want == nil {
				assert.Nil(t, errs)
				return
			}
			assert.Equal(t, tt.want, errs.Fields())
			assert.Contains(t, errs.Error(), tt.want[0])
		})
	}
}

func TestCheckoutDefaults(t *testing.T) {
	c := Checkout{}.WithDefaults()
	assert.Equal(t, DeliveryCourier, c.DeliveryMethod)
	assert.Equal(t, PaymentCard, c.PaymentMethod)

	c = Checkout{DeliveryMethod: DeliveryPickup, PaymentMethod: PaymentCash}.WithDefaults()
	assert.Equal(t, DeliveryPickup, c.DeliveryMethod)
	assert.Equal(t, PaymentCash, c.PaymentMethod)
}

func TestExportXLSX(t *testing.T) {
	orders := []Order{
		{ID: "o-1", Status: StatusPending, Items: []cart.Line{line(1, 10, 2), line(2, 5, 1)}, TotalPrice: 325},
		{ID: "o-2", Status: StatusDelivered, Items: []cart.Line{line(3, 7, 1)}, TotalPrice: 7},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, orders))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, ExportSheet, sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "ID", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "o-1", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "pending", sheet.Rows[1].Cells[2].String())
	assert.Equal(t, "o-2", sheet.Rows[2].Cells[0].String())
}
