package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds every request of a Client built by New.
const DefaultTimeout = 5 * time.Second

// APIError is a non-2xx answer of the API.
type APIError struct {
	Fields  map[string]string `json:"fields,omitempty"`
	Message string            `json:"error"`
	Status  int               `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// Client talks to a petsclaws API. Token, when set, is sent as a bearer
// token on every request.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   string
}

// New creates a client for baseURL.
func New(baseURL string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: DefaultTimeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// WithToken returns a copy of c sending token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}

// Do sends body (when non-nil) as JSON and decodes the answer into out
// (when non-nil). Answers with status >= 300 are returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if w, ok := out.(io.Writer); ok {
		_, err := io.Copy(w, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// PostJSON posts body to path and decodes the answer into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// GetJSON gets path and decodes the answer into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.GetJSON(ctx, "/health", &body); err != nil {
		return err
	}
	if body.Status != "ok" {
		return fmt.Errorf("unhealthy: %q", body.Status)
	}
	return nil
}

// Session is the answer of register and login.
type Session struct {
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"token"`
	User      struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
		Name   string `json:"name"`
	} `json:"user"`
}

// Guest obtains a guest token.
func (c *Client) Guest(ctx context.Context) (guestID, token string, err error) {
	var body struct {
		GuestID string `json:"guestId"`
		Token   string `json:"token"`
	}
	if err := c.PostJSON(ctx, "/auth/guest", nil, &body); err != nil {
		return "", "", err
	}
	return body.GuestID, body.Token, nil
}

// Register creates an account. A guest token on c has its cart adopted.
func (c *Client) Register(ctx context.Context, email, password, name string) (Session, error) {
	var s Session
	err := c.PostJSON(ctx, "/auth/register", map[string]string{
		"email": email, "password": password, "name": name,
	}, &s)
	return s, err
}

// Login signs in. A guest token on c has its cart adopted.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := c.PostJSON(ctx, "/auth/login", map[string]string{"email": email, "password": password}, &s)
	return s, err
}

// AddToCart adds quantity units of productID and decodes the cart into out.
func (c *Client) AddToCart(ctx context.Context, productID, quantity int, out any) error {
	return c.PostJSON(ctx, "/cart", map[string]int{"productId": productID, "quantity": quantity}, out)
}

// Cart decodes the current cart into out.
func (c *Client) Cart(ctx context.Context, out any) error {
	return c.GetJSON(ctx, "/cart", out)
}

// SetQuantity replaces the quantity of productID.
func (c *Client) SetQuantity(ctx context.Context, productID, quantity int, out any) error {
	return c.Do(ctx, http.MethodPut, "/cart/"+strconv.Itoa(productID), map[string]int{"quantity": quantity}, out)
}
