// Package httpapi serves a storefront as a JSON API over gin.
//
// Callers authenticate with HS256 bearer tokens. A guest first asks for a
// guest token and shops with it; registering or logging in with that token
// still attached adopts the guest cart into the (empty) user cart.
//
//	┌────────────────────────────────────────────────────────┐
//	│                     httpapi.Server                      │
//	├────────────────────────────────────────────────────────┤
//	│ public   /health /stats /auth/* /products/*             │
//	│          /preferences/theme                             │
//	│ guest    /cart/*                                        │
//	│ user     /cart/* /favorites/* /orders/* /profile        │
//	│          POST /products/:id/reviews                     │
//	│          POST /reviews/:id/helpful                      │
//	├────────────────────────────────────────────────────────┤
//	│ Tokens   sub = user id | guest id, role = user | guest  │
//	│ fail()   sentinel errors → 400 / 401 / 404, else 500    │
//	└────────────────────────────────────────────────────────┘
//
// Errors are answered as {"error": "..."}; checkout validation failures add
// a "fields" object naming each offending form field. Storage failures are
// logged with zap and reported as 500 without detail.
package httpapi
