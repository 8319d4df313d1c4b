// Package storefront composes the catalog, identity, cart, favorites, order,
// review and preference components over one record store.
//
// The components each own a collection and know nothing of one another. The
// flows that span several of them live here:
//
//	Register / Login ──► identity.Directory ──► cart.Ledger.AdoptGuest
//	Checkout        ──► orders.ValidateCheckout ──► cart totals + delivery
//	                    ──► orders.Log.Create ──► cart cleared
//
// # Sessions
//
// Every per-user operation takes an explicit identity.Session. The HTTP API
// carries it in a bearer token; the local CLI keeps it in the current-user
// pointer (Remember, Current, Logout).
//
// # Shoppers
//
// Cart operations take a Shopper, which is either a signed-in user or a guest.
// Guest carts are adopted into an empty user cart on sign-in; a user cart that
// already has lines is kept and the guest cart is left as it was.
package storefront
