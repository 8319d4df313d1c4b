package orders

import (
	"regexp"
	"strings"

	"golang.org/x/exp/slices"
)

// Delivery methods.
const (
	DeliveryCourier    = "courier"
	DeliveryPickup     = "pickup"
	DeliverySelfPickup = "selfPickup"
)

// Payment methods offered at checkout.
const (
	PaymentCard = "card"
	PaymentSBP  = "sbp"
	PaymentCash = "cash"
)

var deliveryPrices = map[string]float64{
	DeliveryCourier:    300,
	DeliveryPickup:     200,
	DeliverySelfPickup: 0,
}

// DeliveryPrice is the fee of a delivery method. Unknown methods cost nothing.
func DeliveryPrice(method string) float64 {
	return deliveryPrices[method]
}

// Checkout is the form a buyer submits.
type Checkout struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	City           string `json:"city"`
	PostalCode     string `json:"postalCode"`
	DeliveryMethod string `json:"deliveryMethod"`
	PaymentMethod  string `json:"paymentMethod"`
	DeliveryDate   string `json:"deliveryDate,omitempty"`
	DeliveryTime   string `json:"deliveryTime,omitempty"`
}

// WithDefaults fills the methods the form preselects: courier and card.
func (c Checkout) WithDefaults() Checkout {
	if c.DeliveryMethod == "" {
		c.DeliveryMethod = DeliveryCourier
	}
	if c.PaymentMethod == "" {
		c.PaymentMethod = PaymentCard
	}
	return c
}

// ShippingAddress returns the shipping address part of the form.
func (c Checkout) ShippingAddress() ShippingAddress {
	return ShippingAddress{
		FullName:   c.FullName,
		Address:    c.Address,
		City:       c.City,
		PostalCode: c.PostalCode,
		Phone:      c.Phone,
	}
}

// FieldErrors maps a form field name to its problem.
type FieldErrors map[string]string

// Fields returns the offending field names, sorted.
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, name := range fe.Fields() {
		parts = append(parts, name+": "+fe[name])
	}
	return "invalid checkout: " + strings.Join(parts, "; ")
}

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidateCheckout returns the problems of c, or nil when c can be submitted.
func ValidateCheckout(c Checkout) FieldErrors {
	errs := FieldErrors{}
	required := func(field, value, msg string) {
		if strings.TrimSpace(value) == "" {
			errs[field] = msg
		}
	}

	required("fullName", c.FullName, "name is required")
	required("email", c.Email, "email is required")
	if _, missing := errs["email"]; !missing && !emailPattern.MatchString(c.Email) {
		errs["email"] = "email is malformed"
	}
	required("phone", c.Phone, "phone is required")
	required("address", c.Address, "address is required")
	required("city", c.City, "city is required")
	required("postalCode", c.PostalCode, "postal code is required")
	if c.DeliveryMethod != DeliverySelfPickup && c.DeliveryDate == "" {
		errs["deliveryDate"] = "delivery date is required"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
