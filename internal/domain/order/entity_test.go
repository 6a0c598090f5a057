package order

import (
	"errors"
	"testing"
	"time"

	cartdom "storefront/internal/domain/cart"
)

var t0 = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func seedCart(t *testing.T, items ...cartdom.Item) *cartdom.Cart {
	t.Helper()
	c, err := cartdom.NewCart("u1", "2025-06-02", t0)
	if err != nil {
		t.Fatalf("NewCart: %v", err)
	}
	for _, it := range items {
		if err := c.ApplyDelta(it.ProductID, it.CategoryID, it.ProductCode, it.VariantName, it.Quantity, t0); err != nil {
			t.Fatalf("seed %s/%s: %v", it.ProductCode, it.VariantName, err)
		}
	}
	return c
}

func item(code, variant string, qty int) cartdom.Item {
	return cartdom.Item{ProductID: "p-" + code, CategoryID: "cat1", ProductCode: code, VariantName: variant, Quantity: qty}
}

func TestNewFromCart(t *testing.T) {
	c := seedCart(t, item("1005", "A", 3), item("1005", "B", 2))

	o, err := NewFromCart("o1", c, "deliver monday", t0)
	if err != nil {
		t.Fatalf("NewFromCart: %v", err)
	}
	if o.UserID != "u1" || o.Date != "2025-06-02" {
		t.Fatalf("key fields: %+v", o)
	}
	if o.Status != StatusPending {
		t.Fatalf("status = %v, want PENDING", o.Status)
	}
	if o.TotalQuantity != 5 || len(o.Items) != 2 {
		t.Fatalf("items=%d total=%d", len(o.Items), o.TotalQuantity)
	}
	if o.Note != "deliver monday" {
		t.Fatalf("note = %q", o.Note)
	}

	if _, err := NewFromCart("o2", nil, "", t0); !errors.Is(err, ErrNoItems) {
		t.Fatalf("nil cart: err = %v", err)
	}
	empty, _ := cartdom.NewCart("u1", "2025-06-02", t0)
	if _, err := NewFromCart("o3", empty, "", t0); !errors.Is(err, ErrNoItems) {
		t.Fatalf("empty cart: err = %v", err)
	}
}

func TestMergeCartSumsAndAppends(t *testing.T) {
	// P3: submitting [(1005,A,3)] then [(1005,A,2)] yields one line with qty 5.
	first := seedCart(t, item("1005", "A", 3))
	o, err := NewFromCart("o1", first, "", t0)
	if err != nil {
		t.Fatalf("NewFromCart: %v", err)
	}

	second := seedCart(t, item("1005", "A", 2), item("1006", "C", 6))
	if err := o.MergeCart(second.Items, t0.Add(time.Hour)); err != nil {
		t.Fatalf("MergeCart: %v", err)
	}

	if len(o.Items) != 2 {
		t.Fatalf("items = %+v, want A merged + C appended", o.Items)
	}
	if o.Items[0].ProductCode != "1005" || o.Items[0].VariantName != "A" || o.Items[0].Quantity != 5 {
		t.Fatalf("merged line = %+v", o.Items[0])
	}
	if o.Items[1].ProductCode != "1006" || o.Items[1].Quantity != 6 {
		t.Fatalf("appended line = %+v", o.Items[1])
	}
	if o.TotalQuantity != 11 {
		t.Fatalf("total = %d, want 11", o.TotalQuantity)
	}
}

func TestMergeCartPreservesExistingLines(t *testing.T) {
	first := seedCart(t, item("1005", "A", 3), item("1005", "B", 2))
	o, err := NewFromCart("o1", first, "", t0)
	if err != nil {
		t.Fatalf("NewFromCart: %v", err)
	}

	// second cart has no B line: B must survive untouched
	second := seedCart(t, item("1005", "A", 1))
	if err := o.MergeCart(second.Items, t0.Add(time.Hour)); err != nil {
		t.Fatalf("MergeCart: %v", err)
	}
	if len(o.Items) != 2 || o.Items[1].VariantName != "B" || o.Items[1].Quantity != 2 {
		t.Fatalf("B not preserved: %+v", o.Items)
	}
	if o.TotalQuantity != 6 {
		t.Fatalf("total = %d, want 6", o.TotalQuantity)
	}
}

func TestMergeCartEmpty(t *testing.T) {
	first := seedCart(t, item("1005", "A", 3))
	o, err := NewFromCart("o1", first, "", t0)
	if err != nil {
		t.Fatalf("NewFromCart: %v", err)
	}
	if err := o.MergeCart(nil, t0); !errors.Is(err, ErrNoItems) {
		t.Fatalf("err = %v, want ErrNoItems", err)
	}
}

func TestRemoveItemsRederivesTotal(t *testing.T) {
	first := seedCart(t, item("1005", "A", 3), item("1005", "B", 2), item("1006", "C", 6))
	o, err := NewFromCart("o1", first, "", t0)
	if err != nil {
		t.Fatalf("NewFromCart: %v", err)
	}

	later := t0.Add(time.Hour)
	removed := o.RemoveItems(func(it Item) bool { return it.ProductCode == "1005" }, later)
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if len(o.Items) != 1 || o.Items[0].ProductCode != "1006" {
		t.Fatalf("items = %+v", o.Items)
	}
	if o.TotalQuantity != 6 {
		t.Fatalf("total = %d, want 6", o.TotalQuantity)
	}
	if !o.UpdatedAt.Equal(later) {
		t.Fatalf("updatedAt = %v", o.UpdatedAt)
	}

	// no match: untouched, including UpdatedAt
	if n := o.RemoveItems(func(Item) bool { return false }, later.Add(time.Hour)); n != 0 {
		t.Fatalf("removed = %d, want 0", n)
	}
	if !o.UpdatedAt.Equal(later) {
		t.Fatalf("updatedAt moved on no-op removal: %v", o.UpdatedAt)
	}

	// removing the last line leaves an Empty order for the caller to delete
	if n := o.RemoveItems(func(Item) bool { return true }, later); n != 1 {
		t.Fatalf("removed = %d, want 1", n)
	}
	if !o.Empty() || o.TotalQuantity != 0 {
		t.Fatalf("order = %+v, want empty with zero total", o)
	}
}

func TestSetStatusPermissive(t *testing.T) {
	first := seedCart(t, item("1005", "A", 3))
	o, err := NewFromCart("o1", first, "", t0)
	if err != nil {
		t.Fatalf("NewFromCart: %v", err)
	}

	// forward, backward and repeated writes are all accepted
	o.SetStatus(StatusDone, t0)
	o.SetStatus(StatusPending, t0)
	o.SetStatus(StatusInProcess, t0)
	if o.Status != StatusInProcess {
		t.Fatalf("status = %v", o.Status)
	}
}

func TestStatusText(t *testing.T) {
	cases := []struct {
		in   Status
		want string
	}{
		{StatusPending, "PENDING"},
		{StatusInProcess, "IN PROCESS"},
		{StatusDone, "DONE"},
		{Status(7), "UNKNOWN"},
		{Status(-1), "UNKNOWN"},
	}
	for _, c := range cases {
		if got := c.in.Text(); got != c.want {
			t.Errorf("Text(%d) = %q, want %q", c.in, got, c.want)
		}
	}
	if ValidStatus(3) || ValidStatus(-1) {
		t.Error("ValidStatus accepted out-of-range code")
	}
	if !ValidStatus(0) || !ValidStatus(2) {
		t.Error("ValidStatus rejected defined code")
	}
}
