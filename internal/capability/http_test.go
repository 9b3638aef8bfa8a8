package capability

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTP_Register(t *testing.T) {
	r := NewRegistry()
	NewHTTP(nil).Register(r)

	for _, method := range []string{"GET", "POST", "PUT", "PATCH", "DELETE"} {
		if !r.Has(FamilyHTTP, method) {
			t.Errorf("HTTP.%s should be registered", method)
		}
	}
}

func TestHTTP_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Query().Get("limit") != "10" {
			t.Errorf("expected limit=10, got %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [{"id": 12345678901234567890, "name": "a"}]}`))
	}))
	defer server.Close()

	result, err := NewHTTP(nil).Do(context.Background(), "get", map[string]any{
		"url":     server.URL + "/items",
		"headers": map[string]any{"Authorization": "Bearer token"},
		"query":   map[string]any{"limit": json.Number("10")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result["status_code"] != 200 {
		t.Errorf("expected 200, got %v", result["status_code"])
	}
	body, ok := result["body"].(map[string]any)
	if !ok {
		t.Fatalf("expected JSON body, got %T", result["body"])
	}
	items := body["items"].([]any)
	item := items[0].(map[string]any)
	if item["id"] != json.Number("12345678901234567890") {
		t.Errorf("id should keep precision, got %v", item["id"])
	}
	headers := result["headers"].(map[string]any)
	if headers["Content-Type"] != "application/json" {
		t.Errorf("unexpected headers: %v", headers)
	}
}

func TestHTTP_PostBody(t *testing.T) {
	tests := []struct {
		name        string
		body        any
		wantBody    string
		contentType string
	}{
		{name: "object", body: map[string]any{"a": json.Number("1")}, wantBody: `{"a":1}`, contentType: "application/json"},
		{name: "string", body: "plain", wantBody: "plain", contentType: ""},
		{name: "binary", body: []byte{1, 2, 3}, wantBody: "\x01\x02\x03", contentType: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				data, _ := io.ReadAll(r.Body)
				if string(data) != tt.wantBody {
					t.Errorf("expected body %q, got %q", tt.wantBody, data)
				}
				if got := r.Header.Get("Content-Type"); got != tt.contentType {
					t.Errorf("expected content type %q, got %q", tt.contentType, got)
				}
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte("created"))
			}))
			defer server.Close()

			result, err := NewHTTP(nil).Do(context.Background(), http.MethodPost, map[string]any{
				"url":  server.URL,
				"body": tt.body,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result["status_code"] != http.StatusCreated || result["body"] != "created" {
				t.Errorf("unexpected result: %v", result)
			}
		})
	}
}

func TestHTTP_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("no such item"))
	}))
	defer server.Close()

	_, err := NewHTTP(nil).Do(context.Background(), http.MethodDelete, map[string]any{"url": server.URL})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != 404 || httpErr.Body != "no such item" {
		t.Errorf("unexpected error: %+v", httpErr)
	}
	if !IsHTTPError(err) {
		t.Error("IsHTTPError should be true")
	}
}

func TestHTTP_NoRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("new"))
	}))
	defer server.Close()

	result, err := NewHTTP(nil).Do(context.Background(), http.MethodGet, map[string]any{
		"url":              server.URL + "/old",
		"follow_redirects": false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result["status_code"] != http.StatusFound {
		t.Errorf("expected 302, got %v", result["status_code"])
	}
}

func TestHTTP_InvalidParams(t *testing.T) {
	_, err := NewHTTP(nil).Do(context.Background(), http.MethodGet, map[string]any{})
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestHTTP_Cancelled(t *testing.T) {
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-done
	}))
	defer server.Close()
	defer close(done)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTP(nil).Do(ctx, http.MethodGet, map[string]any{"url": server.URL})
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestHTTP_ResponseLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": "0123456789"}`))
	}))
	defer server.Close()

	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{name: "fits exactly", limit: 22},
		{name: "over limit", limit: 21, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHTTP(nil)
			h.maxBody = tt.limit

			result, err := h.Do(context.Background(), "GET", map[string]any{"url": server.URL})
			if tt.wantErr {
				if !errors.Is(err, ErrResponseTooLarge) {
					t.Fatalf("expected ErrResponseTooLarge, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, ok := result["body"].(map[string]any); !ok {
				t.Errorf("expected parsed JSON body, got %T", result["body"])
			}
		})
	}
}
