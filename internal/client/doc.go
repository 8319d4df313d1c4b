// Package client is a small Go client for the petsclaws JSON API.
//
// Do is the single transport primitive: JSON in, JSON out, bearer token when
// set, and *APIError for every answer with status >= 300. The typed helpers
// cover the auth and cart endpoints; everything else goes through Do,
// PostJSON or GetJSON.
//
//	c := client.New("http://localhost:8080")
//	_, guestToken, _ := c.Guest(ctx)
//	guest := c.WithToken(guestToken)
//	guest.AddToCart(ctx, 2, 1, nil)
//	sess, _ := guest.Login(ctx, "a@x.com", "secret1") // adopts the guest cart
//	user := c.WithToken(sess.Token)
//
// An out argument that implements io.Writer receives the raw body, which is
// how binary answers such as the xlsx order export are fetched.
package client
