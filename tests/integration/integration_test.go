//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/courier-market/internal/api"
	"github.com/xenking/courier-market/internal/domain/cart"
	"github.com/xenking/courier-market/internal/domain/order"
	"github.com/xenking/courier-market/internal/feed"
	"github.com/xenking/courier-market/internal/repository"
	"github.com/xenking/courier-market/pkg/health"
	"github.com/xenking/courier-market/pkg/httpmiddleware"
)

var (
	baseURL    string
	httpClient *http.Client
)

// Response types are defined locally so the assertions stay black-box over
// the wire contract rather than reusing internal structs.

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type orderResponse struct {
	ID              string                 `json:"id"`
	Status          string                 `json:"status"`
	Zone            string                 `json:"zone"`
	AssignedCourier string                 `json:"assigned_courier"`
	DeliveredBy     string                 `json:"delivered_by"`
	RewardAmount    string                 `json:"reward_amount"`
	TotalAmount     string                 `json:"total_amount"`
	CancelReason    string                 `json:"cancel_reason"`
	CancelledBy     string                 `json:"cancelled_by"`
	Interests       map[string]interestDoc `json:"interests"`
	History         []historyDoc           `json:"history"`
	Timestamps      timestampsDoc          `json:"timestamps"`
}

type interestDoc struct {
	CourierID string `json:"courier_id"`
	ETA       string `json:"eta"`
	Comment   string `json:"comment"`
}

type historyDoc struct {
	ActorRole string `json:"actor_role"`
	ActorID   string `json:"actor_id"`
	Details   string `json:"details"`
}

type timestampsDoc struct {
	Created   *time.Time `json:"created"`
	Published *time.Time `json:"published"`
	Assigned  *time.Time `json:"assigned"`
	Closed    *time.Time `json:"closed"`
}

type cartResponse struct {
	ClientID string          `json:"client_id"`
	Lines    []cartLineDoc   `json:"lines"`
	Total    json.RawMessage `json:"total"`
}

type cartLineDoc struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type eventEnvelope struct {
	Event   string                     `json:"event"`
	Payload map[string]json.RawMessage `json:"payload"`
	TS      int64                      `json:"ts"`
}

func TestMain(m *testing.M) {
	lg := zap.NewNop()

	orders := repository.NewMemoryOrderStore()
	menus := repository.NewMemoryMenuStore()
	hub := feed.New(lg, 64)
	engine := order.NewService(orders, hub)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(context.Background(), time.Second)
	healthSvc.SetReady(true)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	api.NewHandler(engine, cart.NewStore(), menus, hub).Register(mux)

	srv := httptest.NewServer(httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
	))

	baseURL = srv.URL
	httpClient = srv.Client()

	seedMenus(menus)

	code := m.Run()
	srv.Close()
	healthSvc.Stop()
	os.Exit(code)
}

func seedMenus(menus repository.MenuStore) {
	ctx := context.Background()
	must(menus.Upsert(ctx, repository.Menu{
		RestaurantID:   "resto_1",
		RestaurantName: "Pizza Bella",
		Zone:           "centre",
		Items: []repository.MenuItem{
			{ItemID: "it_1", Name: "Margherita", Price: mustDecimal("5.00")},
			{ItemID: "it_2", Name: "Tiramisu", Price: mustDecimal("3.00")},
		},
	}))
	must(menus.Upsert(ctx, repository.Menu{
		RestaurantID:   "resto_2",
		RestaurantName: "Wok Express",
		Zone:           "nord",
		Items: []repository.MenuItem{
			{ItemID: "it_10", Name: "Pad Thai", Price: mustDecimal("8.20")},
		},
	}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// --- Request helpers ---

type identity struct {
	ID, Role, Name, Zone string
}

var (
	asClient     = identity{ID: "cli_1", Role: "CLIENT", Name: "Alice", Zone: "centre"}
	asRestaurant = identity{ID: "resto_1", Role: "RESTAURANT", Name: "Pizza Bella", Zone: "centre"}
	asCourier    = identity{ID: "liv_1", Role: "COURIER", Name: "Karim", Zone: "centre"}
)

func doRequest(t *testing.T, method, path string, who identity, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, baseURL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if who.ID != "" {
		req.Header.Set("X-Actor-Id", who.ID)
		req.Header.Set("X-Actor-Role", who.Role)
		req.Header.Set("X-Actor-Name", who.Name)
		req.Header.Set("X-Actor-Zone", who.Zone)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, data
}

func wantStatus(t *testing.T, resp *http.Response, body []byte, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d; body: %s", resp.StatusCode, want, body)
	}
}

func decodeInto(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
