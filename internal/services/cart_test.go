package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"kle_back_end/internal/models"
	"kle_back_end/internal/store"
)

func ids(view *models.CartView) []string {
	out := make([]string, 0, len(view.Products))
	for _, p := range view.Products {
		out = append(out, p.ID)
	}
	return out
}

func TestAddProductsCreatesCartLazily(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := f.signup(t, "buyer@kle.io")
	p1 := f.product(t, "P1", 10)

	view, err := f.carts.GetCart(ctx, claims)
	if err != nil || view != nil {
		t.Fatalf("expected no cart, got %v %v", view, err)
	}

	view, err = f.carts.AddProducts(ctx, claims, []string{p1, p1, "unknown"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !reflect.DeepEqual(ids(view), []string{p1}) || view.Total != 10 {
		t.Errorf("unexpected cart %+v", view)
	}

	u, _ := f.stores.Users.FindByEmail(ctx, "buyer@kle.io")
	if !u.HasCart() || *u.CartID != view.ID {
		t.Errorf("user must reference the new cart")
	}
}

func TestAddProductsNoDoubleCounting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := f.signup(t, "buyer@kle.io")
	p1 := f.product(t, "P1", 10)
	p2 := f.product(t, "P2", 5)

	if _, err := f.carts.AddProducts(ctx, claims, []string{p1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	view, err := f.carts.AddProducts(ctx, claims, []string{p1, p2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !reflect.DeepEqual(ids(view), []string{p1, p2}) || view.Total != 15 {
		t.Errorf("unexpected cart %+v", view)
	}

	again, err := f.carts.AddProducts(ctx, claims, []string{p2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !reflect.DeepEqual(ids(again), ids(view)) || again.Total != 15 {
		t.Errorf("re-adding must not change the cart, got %+v", again)
	}
}

func TestCartTotalInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := f.signup(t, "buyer@kle.io")
	a := f.product(t, "A", 0.1)
	b := f.product(t, "B", 0.2)
	c := f.product(t, "C", 19.99)

	steps := []struct {
		add    []string
		remove string
		total  float64
	}{
		{add: []string{a}, total: 0.1},
		{add: []string{b}, total: 0.3},
		{add: []string{c, a}, total: 20.29},
		{remove: a, total: 20.19},
		{remove: c, total: 0.2},
		{add: []string{a, c}, total: 20.29},
	}
	for i, s := range steps {
		var (
			view *models.CartView
			err  error
		)
		if s.remove != "" {
			view, err = f.carts.RemoveProduct(ctx, claims, s.remove)
		} else {
			view, err = f.carts.AddProducts(ctx, claims, s.add)
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if view.Total != s.total {
			t.Errorf("step %d: total %v, want %v", i, view.Total, s.total)
		}
		var sum float64
		byID := make(map[string]models.Product)
		for _, p := range view.Products {
			byID[p.ID] = p
		}
		sum = Total(ids(view), byID)
		if sum != view.Total {
			t.Errorf("step %d: total %v differs from listed prices %v", i, view.Total, sum)
		}
	}
}

func TestRemoveProductNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := f.signup(t, "buyer@kle.io")
	p1 := f.product(t, "P1", 10)
	p2 := f.product(t, "P2", 5)

	_, err := f.carts.RemoveProduct(ctx, claims, p1)
	assertKind(t, err, ErrNotFound)
	if Message(err) != "Cart Not Found" {
		t.Errorf("unexpected message %q", Message(err))
	}

	before, err := f.carts.AddProducts(ctx, claims, []string{p1})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err = f.carts.RemoveProduct(ctx, claims, p2)
	assertKind(t, err, ErrNotFound)
	if Message(err) != "Product Not Found in Cart" {
		t.Errorf("unexpected message %q", Message(err))
	}

	after, err := f.carts.GetCart(ctx, claims)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(ids(after), ids(before)) || after.Total != before.Total {
		t.Errorf("cart changed after failed removal: %+v", after)
	}
}

func TestCartOperationsForDeletedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := f.signup(t, "buyer@kle.io")
	claims.Email = "gone@kle.io"

	_, err := f.carts.AddProducts(ctx, claims, nil)
	assertKind(t, err, ErrNotFound)
	_, err = f.carts.RemoveProduct(ctx, claims, "x")
	assertKind(t, err, ErrNotFound)
	_, err = f.carts.GetCart(ctx, claims)
	assertKind(t, err, ErrNotFound)
}

func TestGetCartDropsDeletedProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := f.signup(t, "buyer@kle.io")
	p1 := f.product(t, "P1", 10)
	p2 := f.product(t, "P2", 5)

	if _, err := f.carts.AddProducts(ctx, claims, []string{p1, p2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := f.stores.Products.Delete(ctx, p1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	view, err := f.carts.GetCart(ctx, claims)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(ids(view), []string{p2}) || view.Total != 5 {
		t.Errorf("unexpected cart %+v", view)
	}
}

// conflictingCarts simule des écritures concurrentes en échouant les premiers Save.
type conflictingCarts struct {
	store.CartStore
	failures int
	calls    int
}

func (c *conflictingCarts) Save(ctx context.Context, cart *models.Cart) error {
	c.calls++
	if c.calls <= c.failures {
		return store.ErrVersionConflict
	}
	return c.CartStore.Save(ctx, cart)
}

func TestCartRetriesOnVersionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := f.signup(t, "buyer@kle.io")
	p1 := f.product(t, "P1", 10)
	p2 := f.product(t, "P2", 5)

	if _, err := f.carts.AddProducts(ctx, claims, []string{p1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	flaky := &conflictingCarts{CartStore: f.stores.Carts, failures: 2}
	f.carts.carts = flaky
	view, err := f.carts.AddProducts(ctx, claims, []string{p2})
	if err != nil {
		t.Fatalf("add after conflicts: %v", err)
	}
	if view.Total != 15 || flaky.calls != 3 {
		t.Errorf("total %v after %d saves", view.Total, flaky.calls)
	}

	f.carts.carts = &conflictingCarts{CartStore: f.stores.Carts, failures: DefaultCartAttempts}
	_, err = f.carts.RemoveProduct(ctx, claims, p1)
	assertKind(t, err, ErrStore)
}

func TestConcurrentAddsKeepTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	claims := f.signup(t, "buyer@kle.io")
	seed := f.product(t, "Seed", 1)
	if _, err := f.carts.AddProducts(ctx, claims, []string{seed}); err != nil {
		t.Fatalf("add: %v", err)
	}

	products := make([]string, 4)
	for i := range products {
		products[i] = f.product(t, "P", 2)
	}

	var wg sync.WaitGroup
	for _, id := range products {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.carts.AddProducts(ctx, claims, []string{id})
			if err != nil && !errors.Is(err, ErrStore) {
				t.Errorf("add: %v", err)
			}
		}(id)
	}
	wg.Wait()

	view, err := f.carts.GetCart(ctx, claims)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	byID := make(map[string]models.Product)
	for _, p := range view.Products {
		byID[p.ID] = p
	}
	if got := Total(ids(view), byID); got != view.Total {
		t.Errorf("total %v differs from listed prices %v", view.Total, got)
	}
}
