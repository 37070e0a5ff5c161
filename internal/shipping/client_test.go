package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/checkout-ecom/internal/order"
)

// fakeGateway mimics the shipment provider: counted logins with rotating
// tokens, adhoc order creation, status and cancel endpoints.
type fakeGateway struct {
	logins      int64
	creates     int64
	rejectToken string // create returns 401 for this token
	createFail  string // non-empty: create rejects everything with this message
	status      Status
	cancelFail  string
}

func (g *fakeGateway) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/external/auth/login", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&g.logins, 1)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": fmt.Sprintf("tok-%d", n)})
	})
	mux.HandleFunc("/v1/external/orders/create/adhoc", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&g.creates, 1)
		if r.Header.Get("Authorization") == "Bearer "+g.rejectToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if g.createFail != "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": g.createFail})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"order_id": 111, "shipment_id": 424242})
	})
	mux.HandleFunc("/v1/external/orders/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": g.status})
	})
	mux.HandleFunc("/v1/external/cancel/order", func(w http.ResponseWriter, r *http.Request) {
		if g.cancelFail != "" {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": g.cancelFail})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "success"})
	})
	return httptest.NewServer(mux)
}

func testOrder() (*order.Order, []order.Item) {
	o := &order.Order{
		ID:             "rec-1",
		OrderID:        "order_ABC123",
		CustomerName:   "Asha Raman",
		Email:          "asha@example.com",
		Phone:          "9876543210",
		Address:        "12 Gandhi Road",
		City:           "Chennai",
		State:          "Tamil Nadu",
		Country:        "India",
		Pincode:        "600001",
		PaymentMethod:  "Prepaid",
		ShippingCharge: "10",
		TotalAmount:    "1310",
		Weight:         "2",
		CreatedAt:      time.Now(),
	}
	items := []order.Item{
		{ID: "it-1", OrderID: "rec-1", ProductID: "p1", Name: "Saree A", Quantity: 2, Price: "500", Total: "1000"},
		{ID: "it-2", OrderID: "rec-1", ProductID: "p2", Name: "Saree B", Quantity: 1, Price: "300", Total: "300"},
	}
	return o, items
}

func TestToken_SingleFlight(t *testing.T) {
	t.Parallel()

	g := &fakeGateway{}
	srv := g.server(t)
	defer srv.Close()

	c := NewClient(srv.URL, "store@example.com", "pw", NewTokenCache(), nil)

	const n = 50
	var wg sync.WaitGroup
	tokens := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = c.Token(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if tokens[i] != "tok-1" {
			t.Fatalf("caller %d got token %q", i, tokens[i])
		}
	}
	if got := atomic.LoadInt64(&g.logins); got != 1 {
		t.Fatalf("expected exactly 1 login, got %d", got)
	}
}

func TestToken_CachedAcrossCalls(t *testing.T) {
	t.Parallel()

	g := &fakeGateway{}
	srv := g.server(t)
	defer srv.Close()

	c := NewClient(srv.URL, "store@example.com", "pw", NewTokenCache(), nil)
	for i := 0; i < 3; i++ {
		if _, err := c.Token(context.Background()); err != nil {
			t.Fatalf("token call %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt64(&g.logins); got != 1 {
		t.Fatalf("expected 1 login for repeated calls, got %d", got)
	}
}

func TestCreateShipment_OK(t *testing.T) {
	t.Parallel()

	g := &fakeGateway{}
	srv := g.server(t)
	defer srv.Close()

	c := NewClient(srv.URL, "store@example.com", "pw", NewTokenCache(), nil)
	o, items := testOrder()
	id, err := c.CreateShipment(context.Background(), o, items)
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	if id != "424242" {
		t.Fatalf("shipment id = %q, want 424242", id)
	}
}

func TestCreateShipment_RefreshesRejectedToken(t *testing.T) {
	t.Parallel()

	g := &fakeGateway{rejectToken: "tok-1"}
	srv := g.server(t)
	defer srv.Close()

	c := NewClient(srv.URL, "store@example.com", "pw", NewTokenCache(), nil)
	o, items := testOrder()
	id, err := c.CreateShipment(context.Background(), o, items)
	if err != nil {
		t.Fatalf("create shipment after token refresh: %v", err)
	}
	if id != "424242" {
		t.Fatalf("shipment id = %q, want 424242", id)
	}
	if got := atomic.LoadInt64(&g.logins); got != 2 {
		t.Fatalf("expected a re-login after 401, got %d logins", got)
	}
}

func TestCreateShipment_ProviderRejection(t *testing.T) {
	t.Parallel()

	g := &fakeGateway{createFail: "pincode not serviceable"}
	srv := g.server(t)
	defer srv.Close()

	c := NewClient(srv.URL, "store@example.com", "pw", NewTokenCache(), nil)
	o, items := testOrder()
	_, err := c.CreateShipment(context.Background(), o, items)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	// A validation rejection must not be retried.
	if got := atomic.LoadInt64(&g.creates); got != 1 {
		t.Fatalf("expected 1 create attempt, got %d", got)
	}
}

func TestOrderStatus_Parse(t *testing.T) {
	t.Parallel()

	g := &fakeGateway{status: Status{
		Status:          "Pickup Scheduled",
		ShippingCharges: decimal.NewFromInt(100),
		PackageCharges:  decimal.NewFromInt(50),
		TotalAmount:     decimal.NewFromInt(1000),
	}}
	srv := g.server(t)
	defer srv.Close()

	c := NewClient(srv.URL, "store@example.com", "pw", NewTokenCache(), nil)
	st, err := c.OrderStatus(context.Background(), "424242")
	if err != nil {
		t.Fatalf("order status: %v", err)
	}
	if st.Status != "Pickup Scheduled" || !st.TotalAmount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestCancelShipment_ProviderFailure(t *testing.T) {
	t.Parallel()

	g := &fakeGateway{cancelFail: "already dispatched"}
	srv := g.server(t)
	defer srv.Close()

	c := NewClient(srv.URL, "store@example.com", "pw", NewTokenCache(), nil)
	err := c.CancelShipment(context.Background(), "424242", decimal.NewFromInt(850))
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestCancelShipment_OK(t *testing.T) {
	t.Parallel()

	g := &fakeGateway{}
	srv := g.server(t)
	defer srv.Close()

	c := NewClient(srv.URL, "store@example.com", "pw", NewTokenCache(), nil)
	if err := c.CancelShipment(context.Background(), "424242", decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("cancel shipment: %v", err)
	}
}
