//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestLiveness(t *testing.T) {
	resp, body := doRequest(t, http.MethodGet, "/livez", identity{}, nil)
	wantStatus(t, resp, body, http.StatusOK)

	var health healthResponse
	decodeInto(t, body, &health)
	if health.Status != "ok" {
		t.Fatalf("status = %s, want ok", health.Status)
	}
}

func TestReadiness(t *testing.T) {
	resp, body := doRequest(t, http.MethodGet, "/readyz", identity{}, nil)
	wantStatus(t, resp, body, http.StatusOK)

	var health healthResponse
	decodeInto(t, body, &health)
	if health.Status != "ok" {
		t.Fatalf("status = %s, want ok; checks: %v", health.Status, health.Checks)
	}
}
