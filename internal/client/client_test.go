package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDo(t *testing.T) {
	var gotAuth, gotType string
	var gotBody map[string]int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		switch r.URL.Path {
		case "/cart":
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_ = json.NewEncoder(w).Encode(map[string]int{"totalItems": 3})
		case "/conflict":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"email already registered"}`))
		case "/plain":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		case "/raw":
			_, _ = w.Write([]byte("PK\x03\x04"))
		}
	}))
	defer srv.Close()

	c := New(srv.URL + "/").WithToken("tok")
	ctx := context.Background()

	t.Run("json round trip", func(t *testing.T) {
		var out struct {
			TotalItems int `json:"totalItems"`
		}
		if err := c.AddToCart(ctx, 7, 3, &out); err != nil {
			t.Fatalf("AddToCart: %v", err)
		}
		if out.TotalItems != 3 {
			t.Errorf("expected 3 items, got %d", out.TotalItems)
		}
		if gotAuth != "Bearer tok" {
			t.Errorf("expected bearer header, got %q", gotAuth)
		}
		if gotType != "application/json" {
			t.Errorf("expected json content type, got %q", gotType)
		}
		if gotBody["productId"] != 7 || gotBody["quantity"] != 3 {
			t.Errorf("unexpected body %v", gotBody)
		}
	})

	t.Run("api error", func(t *testing.T) {
		err := c.PostJSON(ctx, "/conflict", map[string]string{}, nil)
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if apiErr.Status != http.StatusConflict || apiErr.Message != "email already registered" {
			t.Errorf("unexpected error %+v", apiErr)
		}
	})

	t.Run("non json error body", func(t *testing.T) {
		err := c.GetJSON(ctx, "/plain", nil)
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %v", err)
		}
		if apiErr.Message != http.StatusText(http.StatusBadGateway) {
			t.Errorf("unexpected message %q", apiErr.Message)
		}
	})

	t.Run("raw body into writer", func(t *testing.T) {
		var buf bytes.Buffer
		if err := c.GetJSON(ctx, "/raw", &buf); err != nil {
			t.Fatalf("GetJSON: %v", err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
			t.Errorf("expected raw bytes, got %q", buf.String())
		}
	})
}

func TestWithTokenCopies(t *testing.T) {
	base := New("http://example.invalid")
	user := base.WithToken("abc")
	if base.Token != "" {
		t.Errorf("WithToken must not modify the receiver")
	}
	if user.Token != "abc" {
		t.Errorf("expected token abc, got %q", user.Token)
	}
}

func TestHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	if err := New(addr).Health(context.Background()); err == nil {
		t.Error("expected an error from a closed server")
	}
}
