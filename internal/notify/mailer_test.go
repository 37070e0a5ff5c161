package notify

import (
	"strings"
	"testing"

	"github.com/MikeMC777/checkout-ecom/internal/order"
)

func confirmationFixture() (*order.Order, []order.Item) {
	o := &order.Order{
		OrderID:      "order_ABC123",
		CustomerName: "Asha Raman",
		Email:        "asha@example.com",
		Phone:        "9876543210",
		Address:      "12 Gandhi Road",
		Address2:     "2nd floor",
		City:         "Chennai",
		State:        "Tamil Nadu",
		Pincode:      "600001",
		TotalAmount:  "1310",
	}
	items := []order.Item{
		{Name: "Saree A", Quantity: 2, Price: "500", Total: "1000"},
		{Name: "Saree B", Quantity: 1, Price: "300", Total: "300"},
	}
	return o, items
}

func TestBuildMessages_TwoRecipients(t *testing.T) {
	t.Parallel()

	m := NewMailer("smtp.example.com", 587, "store@example.com", "pw", "owner@example.com", nil)
	o, items := confirmationFixture()

	msgs, err := m.buildMessages(o, items)
	if err != nil {
		t.Fatalf("build messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages (customer + owner), got %d", len(msgs))
	}
	if got := msgs[0].GetHeader("To"); len(got) != 1 || got[0] != "asha@example.com" {
		t.Fatalf("customer To = %v", got)
	}
	if got := msgs[1].GetHeader("To"); len(got) != 1 || got[0] != "owner@example.com" {
		t.Fatalf("owner To = %v", got)
	}
}

func TestRender_CustomerSummary(t *testing.T) {
	t.Parallel()

	o, items := confirmationFixture()
	body, err := render(customerTmpl, o, items)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Asha Raman", "Saree A", "Saree B", "1310"} {
		if !strings.Contains(body, want) {
			t.Fatalf("customer mail missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "12 Gandhi Road") {
		t.Fatalf("customer mail should not carry the full shipping address block")
	}
}

func TestRender_OwnerIncludesAddress(t *testing.T) {
	t.Parallel()

	o, items := confirmationFixture()
	body, err := render(ownerTmpl, o, items)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"12 Gandhi Road", "2nd floor", "Chennai", "Tamil Nadu", "600001", "Saree A"} {
		if !strings.Contains(body, want) {
			t.Fatalf("owner mail missing %q:\n%s", want, body)
		}
	}
}
