//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestRequestIDHeader(t *testing.T) {
	resp, _ := doRequest(t, http.MethodGet, "/livez", identity{}, nil)
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("response missing X-Request-ID header")
	}
}

func TestRequestIDEcho(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, baseURL+"/livez", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("X-Request-ID", "test-request-42")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "test-request-42" {
		t.Fatalf("X-Request-ID = %q, want echo of supplied value", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	req, err := http.NewRequest(http.MethodOptions, baseURL+"/orders", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", "https://market.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q", got)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	resp, _ := doRequest(t, http.MethodGet, "/nope", identity{}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
